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

import (
	"encoding/binary"

	"github.com/streamforge/actionrt/payload"
)

// RegisterProcessPrimitives binds get_argc/get_argv (§6: "the harness may
// expose process argv as two C-callable functions... to be registered in the
// FFI table"), generalized here into the JIT primitive table instead since
// JIT-compiled code is the only caller any embedding application actually
// has. get_argv's struct argument is {index: u32, max_len: u32,
// buffer[...]}, packed starting at the struct offset the caller passes.
func RegisterProcessPrimitives(p *Primitives, mem *payload.Memory, args []string) {
	p.Register("get_argc", 1, func(_ []int64) int64 {
		return int64(len(args))
	})

	p.Register("get_argv", 2, func(callArgs []int64) int64 {
		structOff := int(callArgs[1])
		index := int(binary.LittleEndian.Uint32(mem.Read(structOff, 4)))
		maxLen := int(binary.LittleEndian.Uint32(mem.Read(structOff+4, 4)))
		bufOff := structOff + 8

		if index < 0 || index >= len(args) {
			return -1
		}
		arg := args[index]
		n := len(arg)
		if n > maxLen-1 {
			n = maxLen - 1
		}
		if n < 0 {
			return -1
		}
		buf := make([]byte, n+1)
		copy(buf, arg[:n])
		mem.Write(bufOff, buf)
		return int64(n)
	})
}
