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

// Package units implements the per-kind worker bodies dispatched
// asynchronously by the scheduler: Memory, SIMD, Computational, File,
// Network, GPU, LMDB, and HashTable. Every unit shares the same shape — a
// mailbox poll loop that, on work, executes a contiguous span of actions
// and then releases the caller's completion flag — but owns its own
// private state (register files, handle tables, open files).
package units

import (
	"github.com/streamforge/actionrt/action"
	"github.com/streamforge/actionrt/mailbox"
	"github.com/streamforge/actionrt/payload"
)

// Executor runs one action against a unit's private state.
type Executor interface {
	Execute(a action.Action)
}

// Run polls mbox until it is closed, executing each posted work span
// against exec and then releasing the span's completion flag. actions is
// the program's full action list; start/end index into it. The harness
// runs this loop for every SIMD, Computational, File, Network, FFI, Memory
// and GPU pool instance; JIT workers use RunBroadcast instead.
func Run(mbox *mailbox.Mailbox, actions []action.Action, mem *payload.Memory, exec Executor) {
	backoff := mailbox.NewBackoff()
	for {
		result, start, end, flag := mbox.Poll()
		switch result {
		case mailbox.Work:
			for i := start; i < end; i++ {
				exec.Execute(actions[i])
			}
			mem.AtomicStore64(int(flag), 1, payload.OrderRelease)
			backoff.Reset()
		case mailbox.Closed:
			return
		case mailbox.Empty:
			backoff.Step()
		}
	}
}

// RunBroadcast polls a Broadcast until shutdown, executing this worker's
// slice of every dispatched range and, if this call brought the shared done
// latch to zero, releasing the completion flag. This is the fan-out
// counterpart to Run, used by pools (currently just JIT) that process one
// dispatched range as a whole pool rather than routing to a single
// instance.
func RunBroadcast(b *mailbox.Broadcast, workerIdx int, actions []action.Action, mem *payload.Memory, exec Executor) {
	backoff := mailbox.NewBackoff()
	var lastEpoch uint64
	for {
		if b.ShuttingDown() {
			return
		}
		start, end, flag, ok := b.Poll(workerIdx, &lastEpoch)
		if !ok {
			backoff.Step()
			continue
		}
		for i := start; i < end; i++ {
			exec.Execute(actions[i])
		}
		if b.Done() {
			mem.AtomicStore64(int(flag), 1, payload.OrderRelease)
		}
		backoff.Reset()
	}
}

// readCString reads a NUL-terminated UTF-8 string from mem starting at off,
// scanning at most maxLen bytes (clamped to what mem actually holds).
func readCString(mem *payload.Memory, off, maxLen int) string {
	if avail := mem.Len() - off; maxLen > avail {
		maxLen = avail
	}
	buf := mem.Read(off, maxLen)
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}
