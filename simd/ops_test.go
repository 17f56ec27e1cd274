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

package simd

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamforge/actionrt/payload"
)

func TestFileLoadStoreRoundTrip(t *testing.T) {
	f := NewFile[float32](4)
	require.Equal(t, 4, f.Count())

	f.At(0).SetLanes([4]float32{1, 2, 3, 4})
	out := make([]float32, 4)
	f.At(0).Store(out)
	require.Equal(t, []float32{1, 2, 3, 4}, out)
}

func TestAddSubMulFloat32(t *testing.T) {
	a, b, dst := &Reg[float32]{}, &Reg[float32]{}, &Reg[float32]{}
	a.SetLanes([4]float32{1, 2, 3, 4})
	b.SetLanes([4]float32{10, 20, 30, 40})

	Add(dst, a, b)
	require.Equal(t, [4]float32{11, 22, 33, 44}, dst.Lanes())

	Sub(dst, b, a)
	require.Equal(t, [4]float32{9, 18, 27, 36}, dst.Lanes())

	Mul(dst, a, a)
	require.Equal(t, [4]float32{1, 4, 9, 16}, dst.Lanes())
}

func TestDivInt32ZeroDivisorYieldsZero(t *testing.T) {
	a, b, dst := &Reg[int32]{}, &Reg[int32]{}, &Reg[int32]{}
	a.SetLanes([4]int32{10, 20, 30, 40})
	b.SetLanes([4]int32{2, 0, 5, 0})

	Div(dst, a, b)
	require.Equal(t, [4]int32{5, 0, 6, 0}, dst.Lanes())
}

func TestDivFloat32ByZeroFollowsIEEE(t *testing.T) {
	a, b, dst := &Reg[float32]{}, &Reg[float32]{}, &Reg[float32]{}
	a.SetLanes([4]float32{1, -1, 0, 1})
	b.SetLanes([4]float32{0, 0, 0, 2})

	Div(dst, a, b)
	lanes := dst.Lanes()
	require.True(t, math.IsInf(float64(lanes[0]), 1))
	require.True(t, math.IsInf(float64(lanes[1]), -1))
	require.True(t, math.IsNaN(float64(lanes[2])))
	require.Equal(t, float32(0.5), lanes[3])
}

func TestLoadStoreF32ThroughPayload(t *testing.T) {
	mem := payload.New(32)
	src := &Reg[float32]{}
	src.SetLanes([4]float32{1.5, -2.5, 3.25, 0})
	StoreF32(src, mem, 8)

	dst := &Reg[float32]{}
	LoadF32(dst, mem, 8)
	require.Equal(t, src.Lanes(), dst.Lanes())
}

func TestLoadStoreI32ThroughPayload(t *testing.T) {
	mem := payload.New(32)
	src := &Reg[int32]{}
	src.SetLanes([4]int32{1, -2, 3, -4})
	StoreI32(src, mem, 0)

	dst := &Reg[int32]{}
	LoadI32(dst, mem, 0)
	require.Equal(t, src.Lanes(), dst.Lanes())
}
