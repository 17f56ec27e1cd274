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
	"fmt"

	"github.com/streamforge/actionrt/jit/ir"
)

// CompiledFunc is one function's cached, callable form — the optimizer
// target this module actually produces (see DESIGN.md Open Question 4).
type CompiledFunc func() int64

// Compiler parses one Algorithm's embedded IR source, links it against a
// Primitives table, and caches the resulting compiled functions in
// declaration order — the index ClifCall/ClifCallAsync address by.
type Compiler struct {
	prim  *Primitives
	fns   []CompiledFunc
	names []string
}

// Compile parses source, validates it against prim's signature table
// (§4.5: "compiles every function with the optimizer at speed" — here,
// validated and closure-wrapped once, then reused for every invocation),
// and returns a ready Compiler.
func Compile(source string, prim *Primitives) (*Compiler, error) {
	mod, err := ir.Parse(source)
	if err != nil {
		return nil, err
	}
	if err := ir.Analyze(mod, prim.Signatures()); err != nil {
		return nil, err
	}

	c := &Compiler{prim: prim}
	for _, fn := range mod.Functions {
		fn := fn // capture
		c.fns = append(c.fns, func() int64 { return c.eval(fn) })
		c.names = append(c.names, fn.Name)
	}
	return c, nil
}

// Count returns how many functions were compiled.
func (c *Compiler) Count() int { return len(c.fns) }

// Name returns the declared name of function index, or "" if out of range.
func (c *Compiler) Name(index int) string {
	if index < 0 || index >= len(c.names) {
		return ""
	}
	return c.names[index]
}

// Call synchronously runs function index, as ClifCall does. Out-of-range
// indices panic rather than silently no-op; harness validation does not
// check ClifCall indices against the compiled functions beforehand.
func (c *Compiler) Call(index int) int64 {
	if index < 0 || index >= len(c.fns) {
		panic(fmt.Sprintf("jit: function index %d out of range [0,%d)", index, len(c.fns)))
	}
	return c.fns[index]()
}

// eval tree-walks one function body over a fresh register file. Atomics
// and side effects performed by primitives called along the way use the
// shared-memory primitives' aligned path directly, giving ClifCall/Wait
// boundaries the SeqCst semantics §4.5 requires.
func (c *Compiler) eval(fn *ir.Function) int64 {
	regs := make([]int64, fn.NumRegs)
	for _, node := range fn.Body {
		switch node.Op {
		case ir.OpMov:
			regs[node.Dst] = c.operand(regs, node.Src)
		case ir.OpBinary:
			regs[node.Dst] = node.BinOp.Apply(c.operand(regs, node.Src), c.operand(regs, node.RHS))
		case ir.OpCall:
			args := make([]int64, len(node.Args))
			for i, a := range node.Args {
				args[i] = c.operand(regs, a)
			}
			regs[node.Dst] = c.prim.Call(node.Primitive, args)
		case ir.OpRet:
			return c.operand(regs, node.RetVal)
		}
	}
	return 0
}

func (c *Compiler) operand(regs []int64, op ir.Operand) int64 {
	switch op.Kind {
	case ir.OperandImmediate:
		return op.Imm
	case ir.OperandRegister:
		return regs[op.Reg]
	case ir.OperandPtr:
		// No real pointer value exists in Go's memory-safe model; primitives
		// receive the actual *payload.Memory via closure capture instead
		// (see Primitives.Register). The operand still occupies its
		// argument slot so arities match the documented C signatures.
		return 0
	default:
		return 0
	}
}
