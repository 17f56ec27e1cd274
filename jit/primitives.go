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

// Package jit implements the "Cranelift unit": it parses the Algorithm's
// embedded textual low-level IR (package jit/ir), links it against a fixed
// extern-C primitive table, compiles every function into a cached Go
// closure, and exposes them to the scheduler for synchronous (ClifCall) or
// dispatched (ClifCallAsync) invocation. Ground: the teacher's cross-package
// call resolution (cmd/hwygen/resolver.go) is exactly this "link against a
// fixed symbol table" step; the emitter (cmd/hwygen/ir/emitter.go) is
// generalized from "emit target code from an IR graph" into "compile an IR
// function into a cached Go closure" — see DESIGN.md Open Question 4 for why
// this module never emits native machine code.
package jit

import (
	"fmt"

	"github.com/streamforge/actionrt/jit/ir"
)

// PrimitiveFunc is one extern-C primitive's Go body. Every primitive takes
// the Payload Memory pointer as its logical first argument (represented in
// IR source as the literal operand "ptr") plus zero or more integer
// arguments; args is the full argument list exactly as written at the call
// site, including that leading ptr operand (always 0, since Go has no
// portable way to hand out a real pointer value to IR-level arithmetic —
// primitives receive the real *payload.Memory through closure capture
// instead). Return values are integer byte counts, handles, or 0/-1 status
// codes per §4.5.
type PrimitiveFunc func(args []int64) int64

// Primitives is the fixed extern-C symbol table the IR linker resolves
// imported calls against. One Primitives value is built per Algorithm
// execution, bound by closure to that run's unit instances.
type Primitives struct {
	funcs map[string]PrimitiveFunc
	sigs  map[string]ir.Signature
}

// NewPrimitives returns an empty table; call Register for every primitive
// this runtime exposes before compiling any IR against it.
func NewPrimitives() *Primitives {
	return &Primitives{
		funcs: make(map[string]PrimitiveFunc),
		sigs:  make(map[string]ir.Signature),
	}
}

// Register adds one primitive under name with the given argument arity
// (counting the leading ptr operand), panicking on a duplicate name since
// the table is built once at startup from a fixed, non-overlapping set of
// registration calls.
func (p *Primitives) Register(name string, arity ir.Arity, fn PrimitiveFunc) {
	if _, exists := p.funcs[name]; exists {
		panic(fmt.Sprintf("jit: duplicate primitive registration %q", name))
	}
	p.funcs[name] = fn
	p.sigs[name] = ir.Signature{Name: name, Arity: arity}
}

// Signatures returns the arity table Analyze links IR calls against.
func (p *Primitives) Signatures() map[string]ir.Signature {
	return p.sigs
}

// Call invokes the named primitive, returning -1 for an unregistered name
// (the linker's Analyze pass should already have rejected this at compile
// time, so this is defense in depth, not a reachable path in practice).
func (p *Primitives) Call(name string, args []int64) int64 {
	fn, ok := p.funcs[name]
	if !ok {
		return -1
	}
	return fn(args)
}
