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
	"bytes"
	"encoding/binary"
	"os"
	"sort"
	"sync"

	"github.com/streamforge/actionrt/action"
	"github.com/streamforge/actionrt/payload"
)

// KVEntry is one key/value pair returned by a cursor scan.
type KVEntry struct {
	Key   []byte
	Value []byte
}

// KVBackend is the seam between the LMDB unit and whatever actually stores
// its key/value data. No real LMDB cgo binding is in this module's
// dependency set, so the unit is built against this interface and shipped
// with one concrete, stdlib-only implementation (FileKVBackend); a real
// lmdb binding can satisfy the same interface without touching the unit's
// transaction bookkeeping.
type KVBackend interface {
	// Open creates dir if needed and returns an opaque environment handle.
	Open(dir string, mapSize int64) (uint64, error)
	Put(env uint64, key, val []byte) error
	Get(env uint64, key []byte) ([]byte, bool)
	Delete(env uint64, key []byte)
	// Scan returns up to maxEntries entries in key order starting at the
	// first key >= seek (or from the beginning if seek is nil).
	Scan(env uint64, seek []byte, maxEntries int) []KVEntry
}

// FileKVBackend implements KVBackend with one in-process map per
// environment, touching the filesystem only to honor the "Open creates the
// directory" contract.
type FileKVBackend struct {
	mu      sync.Mutex
	nextEnv uint64
	envs    map[uint64]map[string][]byte
}

// NewFileKVBackend returns an empty FileKVBackend.
func NewFileKVBackend() *FileKVBackend {
	return &FileKVBackend{envs: make(map[uint64]map[string][]byte)}
}

// Open creates dir (and parents) and allocates a fresh environment handle.
// mapSize is accepted for interface parity but unused: the backing map
// grows as needed.
func (b *FileKVBackend) Open(dir string, mapSize int64) (uint64, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	handle := b.nextEnv
	b.nextEnv++
	b.envs[handle] = make(map[string][]byte)
	return handle, nil
}

func (b *FileKVBackend) Put(env uint64, key, val []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	table, ok := b.envs[env]
	if !ok {
		return os.ErrNotExist
	}
	cp := make([]byte, len(val))
	copy(cp, val)
	table[string(key)] = cp
	return nil
}

func (b *FileKVBackend) Get(env uint64, key []byte) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	table, ok := b.envs[env]
	if !ok {
		return nil, false
	}
	val, ok := table[string(key)]
	return val, ok
}

func (b *FileKVBackend) Delete(env uint64, key []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if table, ok := b.envs[env]; ok {
		delete(table, string(key))
	}
}

func (b *FileKVBackend) Scan(env uint64, seek []byte, maxEntries int) []KVEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	table, ok := b.envs[env]
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []KVEntry
	for _, k := range keys {
		if len(out) >= maxEntries {
			break
		}
		if seek != nil && bytes.Compare([]byte(k), seek) < 0 {
			continue
		}
		out = append(out, KVEntry{Key: []byte(k), Value: table[k]})
	}
	return out
}

// LMDBUnit enforces the "at most one active write transaction per
// environment" invariant on top of a KVBackend; the backend itself has no
// notion of transactions.
type LMDBUnit struct {
	mem     *payload.Memory
	backend KVBackend

	activeWriteTxn map[uint64]bool
}

// NewLMDBUnit binds an LMDBUnit to backend, defaulting to a fresh
// FileKVBackend when backend is nil.
func NewLMDBUnit(mem *payload.Memory, backend KVBackend) *LMDBUnit {
	if backend == nil {
		backend = NewFileKVBackend()
	}
	return &LMDBUnit{mem: mem, backend: backend, activeWriteTxn: make(map[uint64]bool)}
}

// Execute dispatches one LMDB action.
func (u *LMDBUnit) Execute(a action.Action) {
	switch a.Kind {
	case action.KindKVOpen:
		u.open(a)
	case action.KindKVPut:
		u.put(a)
	case action.KindKVGet:
		u.get(a)
	case action.KindKVDelete:
		u.delete(a)
	case action.KindKVCursorScan:
		u.cursorScan(a)
	case action.KindKVBeginWriteTxn:
		u.BeginWrite(uint64(a.Dst))
	case action.KindKVCommitWriteTxn:
		u.CommitWrite(uint64(a.Dst))
	}
}

// OpenEnv creates dir and opens an environment with the given map size in
// MiB (0 => 1 GiB default per §6), returning its handle or -1 on failure.
// Shared by the KVOpen action and cl_lmdb_open.
func (u *LMDBUnit) OpenEnv(dir string, mapSizeMiB int64) int64 {
	if mapSizeMiB == 0 {
		mapSizeMiB = 1024
	}
	handle, err := u.backend.Open(dir, mapSizeMiB*1024*1024)
	if err != nil {
		return -1
	}
	return int64(handle)
}

// BeginWrite marks env as having an active write txn. Shared by
// KVBeginWriteTxn and cl_lmdb_begin_write_txn. The backend has no
// transactions: Put and Delete apply immediately whether or not a marker is
// set, and a BeginWrite on an env that already has one replaces the marker
// without rolling back any earlier write.
func (u *LMDBUnit) BeginWrite(env uint64) {
	u.activeWriteTxn[env] = true
}

// CommitWrite clears the active write txn marker for env.
func (u *LMDBUnit) CommitWrite(env uint64) {
	delete(u.activeWriteTxn, env)
}

// Put stores key/val under env, returning 0 on success or -1 for an
// invalid handle. Shared by KVPut and cl_lmdb_put.
func (u *LMDBUnit) Put(env uint64, key, val []byte) int64 {
	if err := u.backend.Put(env, key, val); err != nil {
		return -1
	}
	return 0
}

// Get returns the value stored under key in env, or ok=false if absent or
// env is invalid. Shared by KVGet and cl_lmdb_get.
func (u *LMDBUnit) Get(env uint64, key []byte) (val []byte, ok bool) {
	return u.backend.Get(env, key)
}

// Delete removes key from env. Shared by KVDelete and cl_lmdb_delete.
func (u *LMDBUnit) Delete(env uint64, key []byte) {
	u.backend.Delete(env, key)
}

// Scan returns up to maxEntries entries from env in key order, starting at
// the first key >= seek. Used by KVCursorScan; the JIT primitive table has
// no cursor-scan primitive.
func (u *LMDBUnit) Scan(env uint64, seek []byte, maxEntries int) []KVEntry {
	return u.backend.Scan(env, seek, maxEntries)
}

// Sync is a no-op on FileKVBackend (every Put is already durable in its
// in-process map); exposed for cl_lmdb_sync parity with a real LMDB binding.
func (u *LMDBUnit) Sync(env uint64) int64 {
	return 0
}

// Shutdown clears every outstanding write txn marker. Writes were already
// applied to the backend, so nothing is rolled back.
func (u *LMDBUnit) Shutdown() {
	for env := range u.activeWriteTxn {
		delete(u.activeWriteTxn, env)
	}
}

func (u *LMDBUnit) open(a action.Action) {
	dir := readCString(u.mem, int(a.Src), 4096)
	mapSizeMiB := int64(u.mem.ReadU64(int(a.Offset)))
	handle := u.OpenEnv(dir, mapSizeMiB)
	if handle < 0 {
		return
	}
	u.mem.WriteU64(int(a.Dst), uint64(handle))
}

func (u *LMDBUnit) put(a action.Action) {
	env := uint64(a.Offset)
	keySize, valSize := int(a.Size>>16), int(a.Size&0xFFFF)
	key := u.mem.Read(int(a.Dst), keySize)
	val := u.mem.Read(int(a.Src), valSize)
	u.Put(env, key, val)
}

func (u *LMDBUnit) get(a action.Action) {
	env := uint64(a.Offset)
	keySize := int(a.Size)
	key := u.mem.Read(int(a.Dst), keySize)
	val, ok := u.Get(env, key)
	if !ok {
		var sentinel [4]byte
		binary.LittleEndian.PutUint32(sentinel[:], 0xFFFFFFFF)
		u.mem.Write(int(a.Src), sentinel[:])
		return
	}
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(val)))
	u.mem.Write(int(a.Src), lenBuf[:])
	u.mem.Write(int(a.Src)+4, val)
}

func (u *LMDBUnit) delete(a action.Action) {
	env := uint64(a.Offset)
	key := u.mem.Read(int(a.Dst), int(a.Size))
	u.Delete(env, key)
}

func (u *LMDBUnit) cursorScan(a action.Action) {
	env := uint64(a.Offset)
	maxEntries := int(a.Size)
	var seek []byte
	if a.Src != 0 {
		seekLen := binary.LittleEndian.Uint32(u.mem.Read(int(a.Src), 4))
		seek = u.mem.Read(int(a.Src)+4, int(seekLen))
	}

	entries := u.Scan(env, seek, maxEntries)

	var out []byte
	countBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(countBuf, uint32(len(entries)))
	out = append(out, countBuf...)
	for _, e := range entries {
		var klen, vlen [2]byte
		binary.LittleEndian.PutUint16(klen[:], uint16(len(e.Key)))
		binary.LittleEndian.PutUint16(vlen[:], uint16(len(e.Value)))
		out = append(out, klen[:]...)
		out = append(out, vlen[:]...)
		out = append(out, e.Key...)
		out = append(out, e.Value...)
	}
	u.mem.Write(int(a.Dst), out)
}
