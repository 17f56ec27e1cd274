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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamforge/actionrt/action"
	"github.com/streamforge/actionrt/payload"
	"github.com/streamforge/actionrt/simd"
)

func TestSIMDUnitLoadAddStoreF32(t *testing.T) {
	mem := payload.New(64)
	u := NewSIMDUnit(mem, 4)

	a, b := &simd.Reg[float32]{}, &simd.Reg[float32]{}
	a.SetLanes([4]float32{1, 2, 3, 4})
	b.SetLanes([4]float32{10, 20, 30, 40})
	simd.StoreF32(a, mem, 0)
	simd.StoreF32(b, mem, 16)

	u.Execute(action.Action{Kind: action.KindSimdLoadF32, Dst: 0, Src: 0})
	u.Execute(action.Action{Kind: action.KindSimdLoadF32, Dst: 1, Src: 16})
	u.Execute(action.Action{Kind: action.KindSimdAdd, Dst: 2, Src: 0, Offset: 1, Size: 0})
	u.Execute(action.Action{Kind: action.KindSimdStoreF32, Src: 2, Offset: 32})

	out := &simd.Reg[float32]{}
	simd.LoadF32(out, mem, 32)
	require.Equal(t, [4]float32{11, 22, 33, 44}, out.Lanes())
}

func TestSIMDUnitDivI32ZeroDivisorIsZero(t *testing.T) {
	mem := payload.New(64)
	u := NewSIMDUnit(mem, 4)

	a, b := &simd.Reg[int32]{}, &simd.Reg[int32]{}
	a.SetLanes([4]int32{10, 20, 30, 40})
	b.SetLanes([4]int32{2, 0, 5, 0})
	simd.StoreI32(a, mem, 0)
	simd.StoreI32(b, mem, 16)

	u.Execute(action.Action{Kind: action.KindSimdLoadI32, Dst: 0, Src: 0})
	u.Execute(action.Action{Kind: action.KindSimdLoadI32, Dst: 1, Src: 16})
	u.Execute(action.Action{Kind: action.KindSimdDiv, Dst: 2, Src: 0, Offset: 1, Size: 1})
	u.Execute(action.Action{Kind: action.KindSimdStoreI32, Src: 2, Offset: 32})

	out := &simd.Reg[int32]{}
	simd.LoadI32(out, mem, 32)
	require.Equal(t, [4]int32{5, 0, 6, 0}, out.Lanes())
}
