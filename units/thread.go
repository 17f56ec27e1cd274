// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package units

import "sync"

// ThreadRegistry backs the JIT primitive table's cl_thread_spawn/join pair:
// a handle table of in-flight goroutines, one per JIT-spawned thread.
// Handles start at 1, matching §4.5's "handle starts at 1" contract.
type ThreadRegistry struct {
	mu         sync.Mutex
	nextHandle uint64
	threads    map[uint64]*spawnedThread
}

type spawnedThread struct {
	done   chan struct{}
	result int64
}

// NewThreadRegistry returns an empty registry.
func NewThreadRegistry() *ThreadRegistry {
	return &ThreadRegistry{nextHandle: 0, threads: make(map[uint64]*spawnedThread)}
}

// Spawn runs fn on a new goroutine and returns its handle.
func (r *ThreadRegistry) Spawn(fn func() int64) uint64 {
	r.mu.Lock()
	r.nextHandle++
	handle := r.nextHandle
	st := &spawnedThread{done: make(chan struct{})}
	r.threads[handle] = st
	r.mu.Unlock()

	go func() {
		st.result = fn()
		close(st.done)
	}()
	return handle
}

// Join blocks until handle's goroutine completes, returning its result or
// -1 for an already-joined or unknown handle (§4.5: "double-join returns
// -1"). The handle is removed from the table once joined.
func (r *ThreadRegistry) Join(handle uint64) int64 {
	r.mu.Lock()
	st, ok := r.threads[handle]
	if ok {
		delete(r.threads, handle)
	}
	r.mu.Unlock()
	if !ok {
		return -1
	}
	<-st.done
	return st.result
}

// Cleanup joins every outstanding thread, matching the cl_thread_cleanup
// contract ("cleanup joins any un-joined threads").
func (r *ThreadRegistry) Cleanup() {
	r.mu.Lock()
	handles := make([]uint64, 0, len(r.threads))
	for h := range r.threads {
		handles = append(handles, h)
	}
	r.mu.Unlock()
	for _, h := range handles {
		r.Join(h)
	}
}
