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
	"github.com/streamforge/actionrt/action"
	"github.com/streamforge/actionrt/payload"
	"github.com/streamforge/actionrt/simd"
)

// SIMDUnit owns a bank of 4-wide f32 registers and a parallel bank of
// 4-wide i32 registers.
type SIMDUnit struct {
	mem *payload.Memory
	f32 *simd.File[float32]
	i32 *simd.File[int32]
}

// NewSIMDUnit allocates regs registers of each lane type.
func NewSIMDUnit(mem *payload.Memory, regs int) *SIMDUnit {
	return &SIMDUnit{
		mem: mem,
		f32: simd.NewFile[float32](regs),
		i32: simd.NewFile[int32](regs),
	}
}

// Execute dispatches one SIMD action.
func (u *SIMDUnit) Execute(a action.Action) {
	switch a.Kind {
	case action.KindSimdLoadF32:
		simd.LoadF32(u.f32.At(int(a.Dst)), u.mem, int(a.Src))
	case action.KindSimdStoreF32:
		simd.StoreF32(u.f32.At(int(a.Src)), u.mem, int(a.Offset))
	case action.KindSimdLoadI32:
		simd.LoadI32(u.i32.At(int(a.Dst)), u.mem, int(a.Src))
	case action.KindSimdStoreI32:
		simd.StoreI32(u.i32.At(int(a.Src)), u.mem, int(a.Offset))
	case action.KindSimdAdd:
		u.binop(a, simd.Add[float32], simd.Add[int32])
	case action.KindSimdSub:
		u.binop(a, simd.Sub[float32], simd.Sub[int32])
	case action.KindSimdMul:
		u.binop(a, simd.Mul[float32], simd.Mul[int32])
	case action.KindSimdDiv:
		u.binop(a, simd.Div[float32], simd.Div[int32])
	}
}

// binop applies an elementwise f32 op when a.Size == 0 and an i32 op
// otherwise, following the register-file convention that Size selects the
// lane type for elementwise SIMD actions.
func (u *SIMDUnit) binop(a action.Action, f32op func(dst, a, b *simd.Reg[float32]), i32op func(dst, a, b *simd.Reg[int32])) {
	if a.Size == 0 {
		f32op(u.f32.At(int(a.Dst)), u.f32.At(int(a.Src)), u.f32.At(int(a.Offset)))
	} else {
		i32op(u.i32.At(int(a.Dst)), u.i32.At(int(a.Src)), u.i32.At(int(a.Offset)))
	}
}
