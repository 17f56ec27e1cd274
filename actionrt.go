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

// Package actionrt is the top-level entry point for the heterogeneous
// action-stream runtime: it accepts one Algorithm and drives it to
// completion through the harness package, translating every failure into
// the Kind taxonomy §7 describes. Embedding applications (the cmd/actionrt
// CLI, the examples/* fixtures, or a host program linking this module
// directly) should only ever call Execute.
package actionrt

import (
	"errors"
	"fmt"

	"github.com/streamforge/actionrt/action"
	"github.com/streamforge/actionrt/harness"
	"github.com/streamforge/actionrt/output"
	"github.com/streamforge/actionrt/scheduler"
)

// ErrorKind classifies why Execute failed (§7).
type ErrorKind int

const (
	// InvalidConfig means alg failed validation before any worker started
	// (a bad assignment vector, an out-of-range mailbox field, ...).
	InvalidConfig ErrorKind = iota
	// RuntimeCreation means the harness could not build the units, JIT
	// compiler, or worker pools the Algorithm asked for.
	RuntimeCreation
	// Execution means the scheduler started running and either hit the
	// declared timeout or a dispatch-time failure.
	Execution
	// GpuInit means constructing or initializing the GPU backend failed.
	GpuInit
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidConfig:
		return "InvalidConfig"
	case RuntimeCreation:
		return "RuntimeCreation"
	case Execution:
		return "Execution"
	case GpuInit:
		return "GpuInit"
	default:
		return "Unknown"
	}
}

// Error wraps every failure Execute can return with a Kind, so callers can
// branch on the taxonomy without string-matching error text.
type Error struct {
	Kind   ErrorKind
	Reason string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("actionrt: %s: %s: %v", e.Kind, e.Reason, e.Cause)
	}
	return fmt.Sprintf("actionrt: %s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error { return e.Cause }

// Execute validates alg, builds the runtime it describes, drives it to
// completion (or timeout), and returns the materialized output batches. It
// is the sole entry point every embedding application calls — the CLI, the
// bundled examples, and any host program linking this module directly all
// funnel through here.
func Execute(alg *action.Algorithm, opts harness.Options) ([]output.Batch, error) {
	batches, err := harness.Execute(alg, opts)
	if err == nil {
		return batches, nil
	}

	return nil, classify(err)
}

func classify(err error) *Error {
	var already *Error
	if errors.As(err, &already) {
		return already
	}

	var timeout *scheduler.ErrTimeout
	if errors.As(err, &timeout) {
		return &Error{Kind: Execution, Reason: "algorithm did not complete before its deadline", Cause: err}
	}

	switch {
	case errors.Is(err, harness.ErrValidation):
		return &Error{Kind: InvalidConfig, Reason: "algorithm failed validation", Cause: err}
	case errors.Is(err, harness.ErrGPUInit):
		return &Error{Kind: GpuInit, Reason: "GPU backend initialization failed", Cause: err}
	default:
		return &Error{Kind: RuntimeCreation, Reason: "runtime construction failed", Cause: err}
	}
}
