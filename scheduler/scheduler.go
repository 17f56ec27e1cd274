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

// Package scheduler implements the single-threaded action interpreter: a
// program counter walk over an Algorithm's action list, dispatching
// synchronous memory/file ops directly, routing asynchronous work to unit
// mailboxes or the JIT broadcast pool, and polling the global timeout
// between every tick. Ground: original_source src/lib.rs::execute_internal's
// dispatch loop, adapted from a giant match over an enum to a Go type switch
// over action.Kind.
package scheduler

import (
	"fmt"
	"time"

	"github.com/streamforge/actionrt/action"
	"github.com/streamforge/actionrt/internal/obslog"
	"github.com/streamforge/actionrt/jit"
	"github.com/streamforge/actionrt/mailbox"
	"github.com/streamforge/actionrt/payload"
	"github.com/streamforge/actionrt/units"
)

// ErrTimeout is returned when the Algorithm's declared timeout elapses
// before the action list runs to completion.
type ErrTimeout struct {
	Elapsed time.Duration
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("scheduler: timeout after %s", e.Elapsed)
}

// Pools holds, per async-dispatchable unit kind, one Mailbox per configured
// unit instance. AsyncDispatch routes into exactly one instance of the
// chosen kind; kinds with an empty pool silently no-op (§4.3).
type Pools struct {
	GPU           []*mailbox.Mailbox
	SIMD          []*mailbox.Mailbox
	File          []*mailbox.Mailbox
	Network       []*mailbox.Mailbox
	FFI           []*mailbox.Mailbox
	Computational []*mailbox.Mailbox
	Memory        []*mailbox.Mailbox
}

func (p *Pools) byKind(k action.UnitKind) []*mailbox.Mailbox {
	switch k {
	case action.UnitGPU:
		return p.GPU
	case action.UnitSIMD:
		return p.SIMD
	case action.UnitFile:
		return p.File
	case action.UnitNetwork:
		return p.Network
	case action.UnitFFI:
		return p.FFI
	case action.UnitComputational:
		return p.Computational
	case action.UnitMemory:
		return p.Memory
	default:
		return nil
	}
}

func (p *Pools) assignmentFor(k action.UnitKind, a action.Assignments) []uint8 {
	switch k {
	case action.UnitGPU:
		return a.GPU
	case action.UnitSIMD:
		return a.SIMD
	case action.UnitFile:
		return a.File
	case action.UnitNetwork:
		return a.Network
	case action.UnitFFI:
		return a.FFI
	case action.UnitComputational:
		return a.Computational
	case action.UnitMemory:
		return a.Memory
	default:
		return nil
	}
}

// Scheduler interprets one Algorithm's action list.
type Scheduler struct {
	actions     []action.Action
	mem         *payload.Memory
	assignments action.Assignments

	memoryUnit *units.MemoryUnit
	fileUnit   *units.FileUnit

	compiler *jit.Compiler
	jitPool  *mailbox.Broadcast

	pools Pools
	ffi   FFITable

	timeout time.Duration
	log     *obslog.Logger
}

// Config bundles everything Scheduler.Run needs to interpret one Algorithm.
type Config struct {
	Actions     []action.Action
	Mem         *payload.Memory
	Assignments action.Assignments

	MemoryUnit *units.MemoryUnit
	FileUnit   *units.FileUnit

	Compiler *jit.Compiler
	JITPool  *mailbox.Broadcast

	Pools Pools
	FFI   FFITable

	TimeoutMs uint64
	Log       *obslog.Logger
}

// New builds a Scheduler from cfg. A nil Log defaults to obslog.Default().
func New(cfg Config) *Scheduler {
	log := cfg.Log
	if log == nil {
		log = obslog.Default()
	}
	return &Scheduler{
		actions:     cfg.Actions,
		mem:         cfg.Mem,
		assignments: cfg.Assignments,
		memoryUnit:  cfg.MemoryUnit,
		fileUnit:    cfg.FileUnit,
		compiler:    cfg.Compiler,
		jitPool:     cfg.JITPool,
		pools:       cfg.Pools,
		ffi:         cfg.FFI,
		timeout:     time.Duration(cfg.TimeoutMs) * time.Millisecond,
		log:         log,
	}
}

// syncMemoryKinds are the Kinds executed directly on the scheduler thread
// via the shared MemoryUnit (§4.3: "executed synchronously on the scheduler
// thread via the Memory primitives").
var syncMemoryKinds = map[action.Kind]bool{
	action.KindMemCopy:          true,
	action.KindMemWrite:         true,
	action.KindMemCopyIndirect:  true,
	action.KindMemStoreIndirect: true,
	action.KindAtomicLoad:       true,
	action.KindAtomicStore:      true,
	action.KindAtomicFetchAdd:   true,
	action.KindAtomicFetchSub:   true,
	action.KindAtomicCAS:        true,
	action.KindFence:            true,
	action.KindCompare:          true,
	action.KindConditionalWrite: true,
	action.KindMemScan:          true,
}

// Run interprets the action list to completion, returning *ErrTimeout if the
// declared deadline elapses first. The Algorithm's timeout of 0 with a
// non-empty action list always fails this way; an empty action list returns
// nil immediately without ever checking the clock.
func (s *Scheduler) Run() error {
	if len(s.actions) == 0 {
		return nil
	}

	deadline := time.Now().Add(s.timeout)
	pc := 0
	for pc < len(s.actions) {
		if now := time.Now(); !now.Before(deadline) {
			return &ErrTimeout{Elapsed: now.Sub(deadline) + s.timeout}
		}

		a := s.actions[pc]
		switch {
		case a.Kind == action.KindConditionalJump:
			if s.conditionalJumpTaken(a) {
				pc = int(a.Dst)
				continue
			}
			pc++
			continue

		case a.Kind == action.KindAsyncDispatch:
			s.asyncDispatch(a)

		case a.Kind == action.KindWait:
			s.wait(a)

		case a.Kind == action.KindWaitUntil:
			s.waitUntil(a)

		case a.Kind == action.KindWake:
			s.mem.AtomicFetchAdd64(int(a.Dst), 1)

		case a.Kind == action.KindPark:
			s.park(a)

		case a.Kind == action.KindFileRead, a.Kind == action.KindFileWrite:
			if s.fileUnit != nil {
				s.fileUnit.Execute(a)
			}

		case a.Kind == action.KindClifCall:
			if s.compiler != nil {
				s.compiler.Call(int(a.Src))
			}

		case a.Kind == action.KindClifCallAsync:
			s.clifCallAsync(a)

		case a.Kind == action.KindDescribe:
			// no-op at scheduler level (§4.3)

		case a.Kind == action.KindFFICall:
			s.ffiCall(a)

		case syncMemoryKinds[a.Kind]:
			if s.memoryUnit != nil {
				s.memoryUnit.Execute(a)
			}

		default:
			// No-op at scheduler level. GPU/SIMD/Computational/Network
			// action kinds reach their unit only through AsyncDispatch,
			// never directly at the pc. Pools has no LMDB, HashTable or
			// Thread pool, so those action kinds reach no unit from the
			// action stream; those units are driven only through the JIT
			// primitive table.
		}
		pc++
	}
	return nil
}

func (s *Scheduler) conditionalJumpTaken(a action.Action) bool {
	size := int(a.Size)
	if size == 0 {
		size = 8
	}
	buf := s.mem.Read(int(a.Src)+int(a.Offset), size)
	for _, b := range buf {
		if b != 0 {
			return true
		}
	}
	return false
}

func (s *Scheduler) wait(a action.Action) {
	backoff := mailbox.NewBackoff()
	for s.mem.AtomicLoad64(int(a.Dst), payload.OrderAcquire) == 0 {
		backoff.Step()
	}
}

func (s *Scheduler) waitUntil(a action.Action) {
	backoff := mailbox.NewBackoff()
	for s.mem.AtomicLoad64(int(a.Dst), payload.OrderAcquire) != s.mem.AtomicLoad64(int(a.Src), payload.OrderAcquire) {
		backoff.Step()
	}
}

func (s *Scheduler) park(a action.Action) {
	initial := s.mem.AtomicLoad64(int(a.Dst), payload.OrderAcquire)
	if initial != s.mem.AtomicLoad64(int(a.Src), payload.OrderAcquire) {
		s.mem.AtomicStore64(int(a.Offset), 1, payload.OrderRelease)
		return
	}

	deadline := time.Now().Add(time.Duration(a.Size) * time.Millisecond)
	for time.Now().Before(deadline) {
		time.Sleep(100 * time.Microsecond)
		if s.mem.AtomicLoad64(int(a.Dst), payload.OrderAcquire) != s.mem.AtomicLoad64(int(a.Src), payload.OrderAcquire) {
			s.mem.AtomicStore64(int(a.Offset), 1, payload.OrderRelease)
			return
		}
	}
	s.mem.AtomicStore64(int(a.Offset), 0, payload.OrderRelease)
}

// asyncDispatch clears the declared flag, then posts a single-item (or
// size-wide) packet into the chosen unit kind's mailbox, selecting the
// instance via the dispatched-to action's (a.Src's) position in that kind's
// assignment vector — validation and auto-assignment both populate that
// vector per dispatched-action index, not per AsyncDispatch instruction.
// UnassignedUnit (255) selects instance 0; any other out-of-range value
// clamps to the pool size. An empty pool is a silent no-op (§4.3).
func (s *Scheduler) asyncDispatch(a action.Action) {
	s.mem.AtomicStore64(int(a.Offset), 0, payload.OrderRelease)

	kind := action.UnitKind(a.Dst)
	pool := s.pools.byKind(kind)
	if len(pool) == 0 {
		return
	}

	assign := s.pools.assignmentFor(kind, s.assignments)
	targetIdx := int(a.Src)
	instance := 0
	if targetIdx < len(assign) {
		v := assign[targetIdx]
		if v == action.UnassignedUnit {
			instance = 0
		} else {
			instance = int(v)
		}
	}
	if instance >= len(pool) {
		instance = len(pool) - 1
	}

	start := a.Src
	end := start + 1
	if a.Size > 0 {
		end = start + a.Size
	}
	pool[instance].Post(start, end, a.Offset)
}

// clifCallAsync broadcasts a span of Describe actions to the entire JIT
// worker pool, fanning [src, src+size) out across every JIT unit instance
// (§4.5). Calling ClifCallAsync with no JIT pool configured is a no-op.
func (s *Scheduler) clifCallAsync(a action.Action) {
	if s.jitPool == nil {
		return
	}
	s.mem.AtomicStore64(int(a.Offset), 0, payload.OrderRelease)
	end := a.Src + a.Size
	if a.Size == 0 {
		end = a.Src + 1
	}
	s.jitPool.Dispatch(a.Src, end, a.Offset)
}
