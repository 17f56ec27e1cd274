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

import (
	"encoding/binary"

	"github.com/streamforge/actionrt/action"
	"github.com/streamforge/actionrt/payload"
)

// notFoundSentinel is written by Lookup when the key is absent.
const notFoundSentinel = 0xFFFFFFFF

// HashTableUnit is an in-memory table-of-tables: Create allocates a fresh
// table and returns its handle, Insert/Lookup/Delete operate on raw byte
// keys and values read straight out of Payload Memory.
type HashTableUnit struct {
	mem        *payload.Memory
	tables     map[uint32]map[string][]byte
	nextHandle uint32
}

// NewHashTableUnit returns an empty HashTableUnit.
func NewHashTableUnit(mem *payload.Memory) *HashTableUnit {
	return &HashTableUnit{mem: mem, tables: make(map[uint32]map[string][]byte)}
}

// Execute dispatches one hash table action.
func (u *HashTableUnit) Execute(a action.Action) {
	switch a.Kind {
	case action.KindHTCreate:
		handle := u.Create()
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], handle)
		u.mem.Write(int(a.Dst), buf[:])
	case action.KindHTInsert:
		u.insert(a)
	case action.KindHTLookup:
		u.lookup(a)
	case action.KindHTDelete:
		u.del(a)
	}
}

// Create allocates a fresh table and returns its handle. Shared by
// HTCreate and cl_ht_create.
func (u *HashTableUnit) Create() uint32 {
	handle := u.nextHandle
	u.nextHandle++
	u.tables[handle] = make(map[string][]byte)
	return handle
}

// Insert stores val under key in table handle, a no-op for an unknown
// handle. Shared by HTInsert and cl_ht_insert.
func (u *HashTableUnit) Insert(handle uint32, key, val []byte) {
	table, ok := u.tables[handle]
	if !ok {
		return
	}
	cp := make([]byte, len(val))
	copy(cp, val)
	table[string(key)] = cp
}

// Lookup returns the value stored under key in table handle, or ok=false
// if absent or the handle is unknown. Shared by HTLookup and cl_ht_lookup.
func (u *HashTableUnit) Lookup(handle uint32, key []byte) (val []byte, ok bool) {
	table, exists := u.tables[handle]
	if !exists {
		return nil, false
	}
	val, ok = table[string(key)]
	return val, ok
}

// Delete removes key from table handle. Shared by HTDelete and cl_ht_delete.
func (u *HashTableUnit) Delete(handle uint32, key []byte) {
	if table, ok := u.tables[handle]; ok {
		delete(table, string(key))
	}
}

func (u *HashTableUnit) insert(a action.Action) {
	handle := a.Offset
	keySize, valSize := int(a.Size>>16), int(a.Size&0xFFFF)
	key := u.mem.Read(int(a.Dst), keySize)
	val := u.mem.Read(int(a.Src), valSize)
	u.Insert(handle, key, val)
}

func (u *HashTableUnit) lookup(a action.Action) {
	handle := a.Offset
	keySize := int(a.Size >> 16)
	key := u.mem.Read(int(a.Dst), keySize)

	if val, ok := u.Lookup(handle, key); ok {
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(val)))
		u.mem.Write(int(a.Src), lenBuf[:])
		u.mem.Write(int(a.Src)+4, val)
		return
	}

	var sentinel [4]byte
	binary.LittleEndian.PutUint32(sentinel[:], notFoundSentinel)
	u.mem.Write(int(a.Src), sentinel[:])
}

func (u *HashTableUnit) del(a action.Action) {
	handle := a.Offset
	keySize := int(a.Size)
	key := u.mem.Read(int(a.Dst), keySize)
	u.Delete(handle, key)
}
