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

package ir

import "fmt"

// Arity is the expected argument count for an imported primitive signature.
// -1 means variadic (cl_gpu_dispatch accepts 1 to 3 workgroup dimensions).
type Arity int

const Variadic Arity = -1

// Signature is one imported-function entry the linker resolves OpCall nodes
// against.
type Signature struct {
	Name  string
	Arity Arity
}

// Analyze walks every function in mod and verifies that:
//   - every OpCall names a primitive present in sigs, with a matching arity
//     (the leading ptr argument IS counted: registered arities include it,
//     and source calls pass it explicitly as their first argument),
//   - every register operand refers to a register within [0, NumRegs),
//   - every function ends with a Ret node.
//
// This mirrors the resolver step in the teacher's cross-package call
// resolution (cmd/hwygen/resolver.go): link against a fixed symbol table
// before anything is compiled.
func Analyze(mod *Module, sigs map[string]Signature) error {
	for _, fn := range mod.Functions {
		if len(fn.Body) == 0 {
			return fmt.Errorf("ir: function %q has an empty body", fn.Name)
		}
		for i, node := range fn.Body {
			if err := checkRegisters(fn, node); err != nil {
				return fmt.Errorf("ir: function %q: %w", fn.Name, err)
			}
			if node.Op == OpCall {
				sig, ok := sigs[node.Primitive]
				if !ok {
					return fmt.Errorf("ir: function %q: unresolved primitive %q", fn.Name, node.Primitive)
				}
				if sig.Arity != Variadic && int(sig.Arity) != len(node.Args) {
					return fmt.Errorf("ir: function %q: primitive %q wants %d args, got %d", fn.Name, node.Primitive, sig.Arity, len(node.Args))
				}
			}
			if node.Op == OpRet && i != len(fn.Body)-1 {
				return fmt.Errorf("ir: function %q: ret is not the final instruction", fn.Name)
			}
		}
		if fn.Body[len(fn.Body)-1].Op != OpRet {
			return fmt.Errorf("ir: function %q does not end with ret", fn.Name)
		}
	}
	return nil
}

func checkRegisters(fn *Function, node Node) error {
	check := func(op Operand) error {
		if op.Kind == OperandRegister && (op.Reg < 0 || op.Reg >= fn.NumRegs) {
			return fmt.Errorf("register r%d out of range", op.Reg)
		}
		return nil
	}
	if err := check(node.Src); err != nil {
		return err
	}
	if err := check(node.RHS); err != nil {
		return err
	}
	if err := check(node.RetVal); err != nil {
		return err
	}
	for _, a := range node.Args {
		if err := check(a); err != nil {
			return err
		}
	}
	return nil
}
