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

import "github.com/streamforge/actionrt/payload"

// RegisterMemoryPrimitives binds cl_mem_store_i64/cl_mem_load_i64 against
// mem. ClifCall and the JIT worker discard Compiler.Call's return value
// (matching the scheduler's synchronous, side-effect-only dispatch
// contract; only cl_thread_join hands a result back, and only to IR), so
// any IR function that needs its result visible
// to a later action — or to output materialization — has to hand it to
// Payload Memory explicitly, the same way cl_file_write/cl_ht_insert expose
// their side effects instead of returning a value.
func RegisterMemoryPrimitives(p *Primitives, mem *payload.Memory) {
	p.Register("cl_mem_store_i64", 3, func(args []int64) int64 {
		mem.WriteU64(int(args[1]), uint64(args[2]))
		return 0
	})

	p.Register("cl_mem_load_i64", 2, func(args []int64) int64 {
		return int64(mem.ReadU64(int(args[1])))
	})
}
