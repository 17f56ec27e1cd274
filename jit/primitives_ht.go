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
	"github.com/streamforge/actionrt/payload"
	"github.com/streamforge/actionrt/units"
)

// RegisterHashTablePrimitives binds the cl_ht_* primitives against ht,
// reusing units.HashTableUnit's table-of-tables.
func RegisterHashTablePrimitives(p *Primitives, mem *payload.Memory, ht *units.HashTableUnit) {
	p.Register("cl_ht_create", 1, func(args []int64) int64 {
		return int64(ht.Create())
	})

	p.Register("cl_ht_insert", 6, func(args []int64) int64 {
		handle := uint32(args[1])
		key := mem.Read(int(args[2]), int(args[3]))
		val := mem.Read(int(args[4]), int(args[5]))
		ht.Insert(handle, key, val)
		return 0
	})

	p.Register("cl_ht_lookup", 5, func(args []int64) int64 {
		handle := uint32(args[1])
		key := mem.Read(int(args[2]), int(args[3]))
		dstOff := args[4]
		val, ok := ht.Lookup(handle, key)
		if !ok {
			return -1
		}
		mem.Write(int(dstOff), val)
		return int64(len(val))
	})

	p.Register("cl_ht_delete", 4, func(args []int64) int64 {
		handle := uint32(args[1])
		key := mem.Read(int(args[2]), int(args[3]))
		ht.Delete(handle, key)
		return 0
	})
}
