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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamforge/actionrt/action"
	"github.com/streamforge/actionrt/payload"
)

func TestMemoryUnitMemCopy(t *testing.T) {
	mem := payload.New(32)
	mem.Write(0, []byte{1, 2, 3, 4})
	u := NewMemoryUnit(mem)
	u.Execute(action.Action{Kind: action.KindMemCopy, Src: 0, Dst: 16, Size: 4})
	require.Equal(t, []byte{1, 2, 3, 4}, mem.Read(16, 4))
}

func TestMemoryUnitConditionalWriteGatesOnNonZero(t *testing.T) {
	mem := payload.New(32)
	mem.Write(0, []byte{0xAA})
	u := NewMemoryUnit(mem)

	mem.WriteU64(24, 0)
	u.Execute(action.Action{Kind: action.KindConditionalWrite, Src: 0, Dst: 16, Size: 1, Offset: 24})
	require.Equal(t, byte(0), mem.Read(16, 1)[0])

	mem.WriteU64(24, 1)
	u.Execute(action.Action{Kind: action.KindConditionalWrite, Src: 0, Dst: 16, Size: 1, Offset: 24})
	require.Equal(t, byte(0xAA), mem.Read(16, 1)[0])
}

func TestMemoryUnitCompareGreaterOrEqual(t *testing.T) {
	mem := payload.New(32)
	var a, b [4]byte
	binary.LittleEndian.PutUint32(a[:], uint32(int32(5)))
	binary.LittleEndian.PutUint32(b[:], uint32(int32(5)))
	mem.Write(0, a[:])
	mem.Write(4, b[:])
	u := NewMemoryUnit(mem)

	u.Execute(action.Action{Kind: action.KindCompare, Src: 0, Offset: 4, Dst: 8, Size: 5})
	require.Equal(t, int32(1), int32(binary.LittleEndian.Uint32(mem.Read(8, 4))))

	u.Execute(action.Action{Kind: action.KindCompare, Src: 0, Offset: 4, Dst: 8, Size: 0})
	require.Equal(t, int32(0), int32(binary.LittleEndian.Uint32(mem.Read(8, 4))))
}

func TestMemoryUnitMemScanFindsAndMisses(t *testing.T) {
	mem := payload.New(64)
	mem.Write(20, []byte{0xDE, 0xAD, 0xBE, 0xEF})
	mem.Write(0, []byte{0xDE, 0xAD})
	u := NewMemoryUnit(mem)

	offsetField := uint32(2) | uint32(40)<<16
	u.Execute(action.Action{Kind: action.KindMemScan, Src: 0, Dst: 16, Size: 16, Offset: offsetField})
	found := int64(binary.LittleEndian.Uint64(mem.Read(40, 8)))
	require.Equal(t, int64(20), found)

	mem.Write(0, []byte{0x00, 0x01})
	u.Execute(action.Action{Kind: action.KindMemScan, Src: 0, Dst: 16, Size: 16, Offset: offsetField})
	found = int64(binary.LittleEndian.Uint64(mem.Read(40, 8)))
	require.Equal(t, int64(-1), found)
}

// S2 — CAS success/failure, including the re-run that must observe the
// value the first CAS actually wrote.
func TestMemoryUnitAtomicCASSuccessThenFailureReportsObserved(t *testing.T) {
	mem := payload.New(320)
	mem.WriteU64(100, 42)
	mem.WriteU64(200, 42)
	mem.WriteU64(300, 100)
	u := NewMemoryUnit(mem)

	u.Execute(action.Action{Kind: action.KindAtomicCAS, Dst: 100, Src: 200, Offset: 300, Size: 8})
	require.Equal(t, uint64(100), mem.ReadU64(100), "CAS succeeded: dst takes the new value")
	require.Equal(t, uint64(42), mem.ReadU64(200), "success leaves src (the expected value) untouched")

	u.Execute(action.Action{Kind: action.KindAtomicCAS, Dst: 100, Src: 200, Offset: 300, Size: 8})
	require.Equal(t, uint64(100), mem.ReadU64(100), "dst is unchanged by the failing CAS")
	require.Equal(t, uint64(100), mem.ReadU64(200), "failure reports the value actually observed at dst, not the stale expected value")
}

func TestMemoryUnitAtomicCAS32ReportsObservedOnFailure(t *testing.T) {
	mem := payload.New(32)
	var v [4]byte
	binary.LittleEndian.PutUint32(v[:], 7)
	mem.Write(0, v[:])
	binary.LittleEndian.PutUint32(v[:], 99) // stale expected value
	mem.Write(8, v[:])
	binary.LittleEndian.PutUint32(v[:], 42)
	mem.Write(16, v[:])

	u := NewMemoryUnit(mem)
	u.Execute(action.Action{Kind: action.KindAtomicCAS, Dst: 0, Src: 8, Offset: 16, Size: 4})

	require.Equal(t, uint32(7), binary.LittleEndian.Uint32(mem.Read(0, 4)), "dst unchanged by the failing CAS")
	require.Equal(t, uint32(7), binary.LittleEndian.Uint32(mem.Read(8, 4)), "observed value reported at src, not the stale expected value")
}

func TestMemoryUnitAtomicFetchAdd(t *testing.T) {
	mem := payload.New(32)
	mem.WriteU64(0, 10)
	mem.WriteU64(8, 5) // addend
	u := NewMemoryUnit(mem)

	sizeField := uint32(8)
	u.Execute(action.Action{Kind: action.KindAtomicFetchAdd, Dst: 0, Src: 16, Offset: 8, Size: sizeField})
	require.Equal(t, uint64(15), mem.AtomicLoad64(0, payload.OrderSeqCst))
	require.Equal(t, uint64(10), mem.ReadU64(16), "previous value should be reported at Src")
}
