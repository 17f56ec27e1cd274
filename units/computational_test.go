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
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamforge/actionrt/action"
	"github.com/streamforge/actionrt/payload"
)

func TestComputationalApproximateConvergesToSqrt(t *testing.T) {
	mem := payload.New(8)
	u := NewComputationalUnit(mem, 4)
	u.f64[0] = 2.0

	u.Execute(action.Action{Kind: action.KindApproximate, Src: 0, Dst: 1, Offset: 20})
	require.InDelta(t, math.Sqrt(2), u.f64[1], 1e-12)
}

func TestComputationalChooseBoundedByRegister(t *testing.T) {
	mem := payload.New(8)
	u := NewComputationalUnit(mem, 4)
	u.u64[0] = 7
	for i := 0; i < 100; i++ {
		u.Execute(action.Action{Kind: action.KindChoose, Src: 0, Dst: 1})
		require.Less(t, u.u64[1], uint64(7))
	}
}

func TestComputationalTimestampAdvancesMonotonically(t *testing.T) {
	mem := payload.New(8)
	u := NewComputationalUnit(mem, 2)
	u.Execute(action.Action{Kind: action.KindTimestamp, Dst: 0})
	first := u.u64[0]
	u.Execute(action.Action{Kind: action.KindTimestamp, Dst: 1})
	require.GreaterOrEqual(t, u.u64[1], first)
}

func TestComputationalLoadStoreF64(t *testing.T) {
	mem := payload.New(16)
	u := NewComputationalUnit(mem, 2)
	u.f64[0] = 3.14159
	u.Execute(action.Action{Kind: action.KindStoreF64, Src: 0, Offset: 0})
	u.Execute(action.Action{Kind: action.KindLoadF64, Src: 0, Dst: 1})
	require.Equal(t, 3.14159, u.f64[1])
}
