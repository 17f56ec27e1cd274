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

package jit

import "github.com/streamforge/actionrt/action"

// Worker implements units.Executor for the JIT unit pool: it runs compiled
// functions for side effect only, exactly as the scheduler's synchronous
// ClifCall does, but dispatched off a Describe action posted to a mailbox
// by ClifCallAsync (§4.5 — "async invocation posts a Describe action per
// dispatched worker; the return value is discarded, all observable behavior
// is through primitive side effects on Payload Memory, files, sockets, GPU
// buffers, or the KV store").
type Worker struct {
	compiler *Compiler
}

// NewWorker binds a Worker to compiler.
func NewWorker(compiler *Compiler) *Worker {
	return &Worker{compiler: compiler}
}

// Execute runs the compiled function named by a.Src for Describe and
// ClifCall actions; every other Kind is ignored (a JIT worker only ever
// receives these two, the scheduler having already resolved ClifCallAsync
// into a Describe broadcast before any work reaches the mailbox).
func (w *Worker) Execute(a action.Action) {
	switch a.Kind {
	case action.KindDescribe, action.KindClifCall:
		w.compiler.Call(int(a.Src))
	}
}
