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

package scheduler

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamforge/actionrt/action"
	"github.com/streamforge/actionrt/payload"
	"github.com/streamforge/actionrt/units"
)

// S1 — Compare-and-store.
func TestS1CompareAndStore(t *testing.T) {
	mem := payload.New(64)
	mem.WriteU64(0, 0x2A)

	s := New(Config{
		Actions: []action.Action{
			{Kind: action.KindMemWrite, Dst: 16, Src: 99, Size: 8},
			{Kind: action.KindCompare, Src: 0, Offset: 16, Dst: 32, Size: 0},
		},
		Mem:        mem,
		MemoryUnit: units.NewMemoryUnit(mem),
		TimeoutMs:  1000,
	})
	require.NoError(t, s.Run())
	require.Equal(t, uint32(0), binary.LittleEndian.Uint32(mem.Read(32, 4)))
}

// S4 — Conditional jump width: a jump target equal to len(actions) ends the
// run without executing the fall-through action, so whether the marker gets
// written distinguishes "jumped" from "fell through".
func TestS4ConditionalJumpWidth(t *testing.T) {
	payloadBytes := []byte{0x00, 0x00, 0x00, 0x00, 0xFF, 0x00, 0x00, 0x00}

	runWithSize := func(size uint32) bool {
		mem := payload.New(64)
		mem.Write(0, payloadBytes)
		s := New(Config{
			Actions: []action.Action{
				{Kind: action.KindConditionalJump, Src: 0, Dst: 2, Size: size},
				{Kind: action.KindMemWrite, Dst: 16, Src: 1, Size: 8},
			},
			Mem:        mem,
			MemoryUnit: units.NewMemoryUnit(mem),
			TimeoutMs:  1000,
		})
		require.NoError(t, s.Run())
		return mem.ReadU64(16) != 0
	}

	require.True(t, runWithSize(4), "first 4 bytes are zero: falls through, marker written")
	require.False(t, runWithSize(8), "byte 4 is 0xFF within the 8-byte window: jumps, marker untouched")
}

// Invariant 6: MemCopy/ConditionalJump/MemWrite are deterministic given the
// same initial Payload Memory and action list.
func TestDeterministicReplay(t *testing.T) {
	build := func() (*payload.Memory, []action.Action) {
		mem := payload.New(64)
		mem.Write(0, []byte{1, 2, 3, 4, 5, 6, 7, 8})
		actions := []action.Action{
			{Kind: action.KindMemCopy, Src: 0, Dst: 16, Size: 8},
			{Kind: action.KindMemWrite, Dst: 32, Src: 7, Size: 8},
			{Kind: action.KindConditionalJump, Src: 16, Dst: 4, Size: 8},
			{Kind: action.KindMemWrite, Dst: 40, Src: 1, Size: 8},
			{Kind: action.KindMemWrite, Dst: 48, Src: 2, Size: 8},
		}
		return mem, actions
	}

	mem1, actions1 := build()
	s1 := New(Config{Actions: actions1, Mem: mem1, MemoryUnit: units.NewMemoryUnit(mem1), TimeoutMs: 1000})
	require.NoError(t, s1.Run())

	mem2, actions2 := build()
	s2 := New(Config{Actions: actions2, Mem: mem2, MemoryUnit: units.NewMemoryUnit(mem2), TimeoutMs: 1000})
	require.NoError(t, s2.Run())

	require.Equal(t, mem1.Read(0, 64), mem2.Read(0, 64))
}

// Boundary: empty action list returns success immediately, without ever
// checking the clock (TimeoutMs: 0 would otherwise always time out).
func TestEmptyActionListSucceedsImmediately(t *testing.T) {
	mem := payload.New(8)
	s := New(Config{Actions: nil, Mem: mem, TimeoutMs: 0})
	require.NoError(t, s.Run())
}

// Boundary: timeout_ms=0 with any action returns Timeout.
func TestZeroTimeoutReturnsTimeout(t *testing.T) {
	mem := payload.New(8)
	s := New(Config{
		Actions:    []action.Action{{Kind: action.KindMemWrite, Dst: 0, Src: 1, Size: 8}},
		Mem:        mem,
		MemoryUnit: units.NewMemoryUnit(mem),
		TimeoutMs:  0,
	})
	err := s.Run()
	require.Error(t, err)
	var timeoutErr *ErrTimeout
	require.ErrorAs(t, err, &timeoutErr)
}

// Boundary: AsyncDispatch to an unconfigured unit kind silently advances.
func TestAsyncDispatchToUnconfiguredUnitAdvances(t *testing.T) {
	mem := payload.New(64)
	s := New(Config{
		Actions: []action.Action{
			{Kind: action.KindAsyncDispatch, Dst: uint32(action.UnitSIMD), Src: 1, Offset: 8, Size: 1},
			{Kind: action.KindMemWrite, Dst: 32, Src: 1, Size: 8},
		},
		Mem:        mem,
		MemoryUnit: units.NewMemoryUnit(mem),
		Pools:      Pools{},
		TimeoutMs:  1000,
	})
	require.NoError(t, s.Run())
	require.NotEqual(t, uint64(0), mem.ReadU64(32), "scheduler must keep advancing past the unconfigured dispatch")
}
