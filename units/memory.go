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

// MemoryUnit executes every atomic/memory action kind plus Compare. The
// scheduler uses one MemoryUnit to execute synchronous memory actions
// inline, and Memory workers use MemoryUnits for spans a program
// explicitly dispatches to them.
type MemoryUnit struct {
	mem *payload.Memory
}

// NewMemoryUnit returns a MemoryUnit bound to mem.
func NewMemoryUnit(mem *payload.Memory) *MemoryUnit {
	return &MemoryUnit{mem: mem}
}

// Execute dispatches one memory action.
func (u *MemoryUnit) Execute(a action.Action) {
	switch a.Kind {
	case action.KindMemCopy:
		data := u.mem.Read(int(a.Src), int(a.Size))
		u.mem.Write(int(a.Dst), data)
	case action.KindMemWrite:
		u.memWrite(a)
	case action.KindMemCopyIndirect:
		indirect := binary.LittleEndian.Uint32(u.mem.Read(int(a.Src), 4))
		data := u.mem.Read(int(indirect)+int(a.Offset), int(a.Size))
		u.mem.Write(int(a.Dst), data)
	case action.KindMemStoreIndirect:
		indirect := binary.LittleEndian.Uint32(u.mem.Read(int(a.Dst), 4))
		data := u.mem.Read(int(a.Src), int(a.Size))
		u.mem.Write(int(indirect)+int(a.Offset), data)
	case action.KindConditionalWrite:
		cond := u.mem.ReadU64(int(a.Offset))
		if cond != 0 {
			data := u.mem.Read(int(a.Src), int(a.Size))
			u.mem.Write(int(a.Dst), data)
		}
	case action.KindAtomicLoad:
		u.atomicLoad(a)
	case action.KindAtomicStore:
		u.atomicStore(a)
	case action.KindAtomicFetchAdd:
		u.atomicFetchAddSub(a, true)
	case action.KindAtomicFetchSub:
		u.atomicFetchAddSub(a, false)
	case action.KindAtomicCAS:
		u.atomicCAS(a)
	case action.KindFence:
		// SeqCst fence; Go's atomic package gives every op sequential
		// consistency already, so there is nothing further to do here.
	case action.KindCompare:
		u.compare(a)
	case action.KindMemScan:
		u.memScan(a)
	}
}

func (u *MemoryUnit) memWrite(a action.Action) {
	switch a.Size {
	case 1:
		u.mem.Write(int(a.Dst), []byte{byte(a.Src)})
	case 2:
		var buf [2]byte
		binary.LittleEndian.PutUint16(buf[:], uint16(a.Src))
		u.mem.Write(int(a.Dst), buf[:])
	case 4:
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], a.Src)
		u.mem.Write(int(a.Dst), buf[:])
	case 8:
		u.mem.WriteU64(int(a.Dst), uint64(a.Src))
	default:
		buf := make([]byte, a.Size)
		for i := range buf {
			buf[i] = byte(a.Src)
		}
		u.mem.Write(int(a.Dst), buf)
	}
}

func (u *MemoryUnit) atomicLoad(a action.Action) {
	ord := payload.DecodeOrdering(a.Offset)
	switch a.Size {
	case 1, 2:
		u.mem.Write(int(a.Dst), u.mem.Read(int(a.Src), int(a.Size)))
	case 4:
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], uint32(u.mem.AtomicLoad64(int(a.Src), ord)))
		u.mem.Write(int(a.Dst), buf[:])
	case 8:
		v := u.mem.AtomicLoad64(int(a.Src), ord)
		u.mem.AtomicStore64(int(a.Dst), v, ord)
	}
}

func (u *MemoryUnit) atomicStore(a action.Action) {
	ord := payload.DecodeOrdering(a.Offset)
	switch a.Size {
	case 1, 2:
		u.mem.Write(int(a.Dst), u.mem.Read(int(a.Src), int(a.Size)))
	case 4:
		v := binary.LittleEndian.Uint32(u.mem.Read(int(a.Src), 4))
		u.mem.AtomicStore64(int(a.Dst), uint64(v), ord)
	case 8:
		v := u.mem.ReadU64(int(a.Src))
		u.mem.AtomicStore64(int(a.Dst), v, ord)
	}
}

func (u *MemoryUnit) atomicFetchAddSub(a action.Action, add bool) {
	width, _ := payload.DecodeAtomicSize(a.Size)
	addend := int64(u.mem.ReadU64(int(a.Offset)))
	if !add {
		addend = -addend
	}
	var prev uint64
	switch width {
	case 4:
		prev = u.mem.AtomicFetchAdd64(int(a.Dst), addend) & 0xFFFFFFFF
	case 8:
		prev = u.mem.AtomicFetchAdd64(int(a.Dst), addend)
	}
	u.mem.WriteU64(int(a.Src), prev)
}

func (u *MemoryUnit) atomicCAS(a action.Action) {
	switch a.Size {
	case 16:
		expLo := u.mem.ReadU64(int(a.Src))
		expHi := u.mem.ReadU64(int(a.Src) + 8)
		newLo := u.mem.ReadU64(int(a.Offset))
		newHi := u.mem.ReadU64(int(a.Offset) + 8)
		ok := u.mem.CAS128(int(a.Dst), expLo, expHi, newLo, newHi)
		if !ok {
			// On failure, report the word actually observed so the caller
			// can retry with fresh expected values.
			u.mem.WriteU64(int(a.Src), u.mem.ReadU64(int(a.Dst)))
			u.mem.WriteU64(int(a.Src)+8, u.mem.ReadU64(int(a.Dst)+8))
		}
	case 4:
		exp := binary.LittleEndian.Uint32(u.mem.Read(int(a.Src), 4))
		nw := binary.LittleEndian.Uint32(u.mem.Read(int(a.Offset), 4))
		if !u.mem.CAS32(int(a.Dst), exp, nw) {
			// On failure, report the word actually observed so the caller
			// can retry with fresh expected values.
			var buf [4]byte
			binary.LittleEndian.PutUint32(buf[:], binary.LittleEndian.Uint32(u.mem.Read(int(a.Dst), 4)))
			u.mem.Write(int(a.Src), buf[:])
		}
	default:
		exp := u.mem.ReadU64(int(a.Src))
		nw := u.mem.ReadU64(int(a.Offset))
		if !u.mem.CAS64(int(a.Dst), exp, nw) {
			// On failure, report the word actually observed so the caller
			// can retry with fresh expected values.
			u.mem.WriteU64(int(a.Src), u.mem.ReadU64(int(a.Dst)))
		}
	}
}

func (u *MemoryUnit) compare(a action.Action) {
	av := int32(binary.LittleEndian.Uint32(u.mem.Read(int(a.Src), 4)))
	bv := int32(binary.LittleEndian.Uint32(u.mem.Read(int(a.Offset), 4)))
	var result int32
	if a.Size == 5 {
		if av >= bv {
			result = 1
		}
	} else if av > bv {
		result = 1
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(result))
	u.mem.Write(int(a.Dst), buf[:])
}

func (u *MemoryUnit) memScan(a action.Action) {
	patternSize, resultOffset := payload.DecodeMemScan(a.Offset)
	if patternSize == 0 || patternSize > int(a.Size) {
		writeI64(u.mem, resultOffset, -1)
		return
	}
	pattern := u.mem.Read(int(a.Src), patternSize)
	region := u.mem.Read(int(a.Dst), int(a.Size))

	found := int64(-1)
	for i := 0; i+patternSize <= len(region); i++ {
		if bytesEqual(region[i:i+patternSize], pattern) {
			found = int64(a.Dst) + int64(i)
			break
		}
	}
	writeI64(u.mem, resultOffset, found)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func writeI64(mem *payload.Memory, off int, v int64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	mem.Write(off, buf[:])
}
