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

// Package harness builds the runtime around one Algorithm: it validates the
// program against the mailbox's packed-field limits, auto-assigns unit
// instances where the producer left an assignment vector empty, wires the
// scheduler and unit worker pools, and drives the run to completion or
// timeout. Ground: original_source src/validation.rs plus the teacher's
// cmd/hwygen/generator.go::Run top-level orchestration.
package harness

import (
	"errors"
	"fmt"

	"github.com/streamforge/actionrt/action"
	"github.com/streamforge/actionrt/mailbox"
)

// ErrValidation is wrapped by every error Validate returns, so callers can
// test for it with errors.Is without string-matching the message.
var ErrValidation = errors.New("harness: validation failed")

// ErrGPUInit is wrapped by any error returned from a GPUBackend's optional
// Init method during Execute.
var ErrGPUInit = errors.New("harness: GPU backend initialization failed")

// flagBearingKinds are the action Kinds that carry a completion-flag offset
// subject to the mailbox's 22-bit flag field limit.
var flagBearingKinds = map[action.Kind]bool{
	action.KindAsyncDispatch:  true,
	action.KindClifCallAsync: true,
}

// Validate checks alg against the hard limits §4.7 requires before any
// worker is spawned. It returns the first violation found.
func Validate(alg *action.Algorithm) error {
	if len(alg.Actions) > mailbox.MaxEnd {
		return fmt.Errorf("harness: action count %d exceeds mailbox end-field width %d", len(alg.Actions), mailbox.MaxEnd)
	}

	for i, a := range alg.Actions {
		if flagBearingKinds[a.Kind] && int(a.Offset) > mailbox.MaxFlag {
			return fmt.Errorf("harness: action %d flag offset %d exceeds mailbox flag-field width %d", i, a.Offset, mailbox.MaxFlag)
		}
	}

	u := alg.Units
	for name, n := range map[string]int{
		"SIMDUnits": u.SIMDUnits, "ComputationalUnits": u.ComputationalUnits,
		"FileUnits": u.FileUnits, "NetworkUnits": u.NetworkUnits,
		"FFIUnits": u.FFIUnits, "MemoryUnits": u.MemoryUnits,
		"GPUUnits": u.GPUUnits, "JITUnits": u.JITUnits,
		"LMDBUnits": u.LMDBUnits, "HashTableUnits": u.HashTableUnits,
	} {
		if n < 0 {
			return fmt.Errorf("harness: %s is negative (%d)", name, n)
		}
	}

	n := len(alg.Actions)
	checks := []struct {
		name string
		vec  []uint8
		pool int
	}{
		{"SIMD", alg.Assignments.SIMD, u.SIMDUnits},
		{"Computational", alg.Assignments.Computational, u.ComputationalUnits},
		{"File", alg.Assignments.File, u.FileUnits},
		{"Network", alg.Assignments.Network, u.NetworkUnits},
		{"FFI", alg.Assignments.FFI, u.FFIUnits},
		{"Memory", alg.Assignments.Memory, u.MemoryUnits},
		{"GPU", alg.Assignments.GPU, u.GPUUnits},
		{"JIT", alg.Assignments.JIT, u.JITUnits},
	}
	for _, c := range checks {
		if len(c.vec) == 0 {
			continue
		}
		if len(c.vec) != n {
			return fmt.Errorf("harness: %s assignment vector length %d does not match action count %d", c.name, len(c.vec), n)
		}
		for i, v := range c.vec {
			if v == action.UnassignedUnit {
				continue
			}
			if int(v) >= c.pool {
				return fmt.Errorf("harness: %s assignment[%d]=%d is outside its pool of size %d", c.name, i, v, c.pool)
			}
		}
	}

	return nil
}
