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

// RegisterLMDBPrimitives binds the cl_lmdb_* primitives against kv, reusing
// the same transaction bookkeeping the KVOpen/KVPut/... actions use.
func RegisterLMDBPrimitives(p *Primitives, mem *payload.Memory, kv *units.LMDBUnit) {
	p.Register("cl_lmdb_open", 4, func(args []int64) int64 {
		dirOff, dirLen, mapSizeMiB := args[1], args[2], args[3]
		dir := readCString(mem, int(dirOff), int(dirLen))
		return kv.OpenEnv(dir, mapSizeMiB)
	})

	p.Register("cl_lmdb_begin_write_txn", 2, func(args []int64) int64 {
		kv.BeginWrite(uint64(args[1]))
		return 0
	})

	p.Register("cl_lmdb_commit_write_txn", 2, func(args []int64) int64 {
		kv.CommitWrite(uint64(args[1]))
		return 0
	})

	p.Register("cl_lmdb_put", 6, func(args []int64) int64 {
		env := uint64(args[1])
		key := mem.Read(int(args[2]), int(args[3]))
		val := mem.Read(int(args[4]), int(args[5]))
		return kv.Put(env, key, val)
	})

	p.Register("cl_lmdb_get", 5, func(args []int64) int64 {
		env := uint64(args[1])
		key := mem.Read(int(args[2]), int(args[3]))
		dstOff := args[4]
		val, ok := kv.Get(env, key)
		if !ok {
			return -1
		}
		mem.Write(int(dstOff), val)
		return int64(len(val))
	})

	p.Register("cl_lmdb_delete", 4, func(args []int64) int64 {
		env := uint64(args[1])
		key := mem.Read(int(args[2]), int(args[3]))
		kv.Delete(env, key)
		return 0
	})

	p.Register("cl_lmdb_sync", 2, func(args []int64) int64 {
		return kv.Sync(uint64(args[1]))
	})
}
