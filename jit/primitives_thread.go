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

import "github.com/streamforge/actionrt/units"

// CompilerRef is a settable indirection to the Compiler a thread primitive
// dispatches into. Primitives are registered before Compile runs (Compile
// needs the finished signature table to validate against), so
// cl_thread_spawn cannot close over a *Compiler directly; the caller wires
// ref.C = compiler once Compile returns, before any IR that might spawn
// a thread actually executes.
type CompilerRef struct {
	C *Compiler
}

// RegisterThreadPrimitives binds cl_thread_spawn/cl_thread_join/
// cl_thread_cleanup against reg, dispatching spawned threads back into ref's
// compiler by function index.
func RegisterThreadPrimitives(p *Primitives, reg *units.ThreadRegistry, ref *CompilerRef) {
	p.Register("cl_thread_spawn", 2, func(args []int64) int64 {
		fnIndex := int(args[1])
		return int64(reg.Spawn(func() int64 {
			return ref.C.Call(fnIndex)
		}))
	})

	p.Register("cl_thread_join", 2, func(args []int64) int64 {
		return reg.Join(uint64(args[1]))
	})

	p.Register("cl_thread_cleanup", 1, func(args []int64) int64 {
		reg.Cleanup()
		return 0
	})
}
