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
	"encoding/binary"
	"math"
	"math/rand/v2"
	"time"

	"github.com/streamforge/actionrt/action"
	"github.com/streamforge/actionrt/payload"
)

// ComputationalUnit owns a scalar f64 register bank and a parallel u64
// register bank, plus a monotonic raw clock.
type ComputationalUnit struct {
	mem   *payload.Memory
	f64   []float64
	u64   []uint64
	start time.Time
	rand  *rand.Rand
}

// NewComputationalUnit allocates regs registers of each scalar type.
func NewComputationalUnit(mem *payload.Memory, regs int) *ComputationalUnit {
	return &ComputationalUnit{
		mem:   mem,
		f64:   make([]float64, regs),
		u64:   make([]uint64, regs),
		start: time.Now(),
		rand:  rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Execute dispatches one computational action.
func (u *ComputationalUnit) Execute(a action.Action) {
	switch a.Kind {
	case action.KindApproximate:
		base := u.f64[a.Src]
		x := base
		for i := uint32(0); i < a.Offset; i++ {
			x = 0.5 * (x + base/x)
		}
		u.f64[a.Dst] = x
	case action.KindChoose:
		n := u.u64[a.Src]
		if n > 0 {
			u.u64[a.Dst] = u.rand.Uint64() % n
		}
	case action.KindTimestamp:
		u.u64[a.Dst] = uint64(time.Since(u.start))
	case action.KindLoadF64:
		bits := binary.LittleEndian.Uint64(u.mem.Read(int(a.Src), 8))
		u.f64[a.Dst] = math.Float64frombits(bits)
	case action.KindStoreF64:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(u.f64[a.Src]))
		u.mem.Write(int(a.Offset), buf[:])
	case action.KindLoadU64:
		u.u64[a.Dst] = u.mem.ReadU64(int(a.Src))
	case action.KindStoreU64:
		u.mem.WriteU64(int(a.Offset), u.u64[a.Src])
	}
}
