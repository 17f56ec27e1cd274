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
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamforge/actionrt/payload"
	"github.com/streamforge/actionrt/units"
)

// S6 — GPU vec-add via JIT: two 64-element f32 buffers A=[1..64], B=[100;64]
// bound to one pipeline, driven entirely through the cl_gpu_* primitive
// table (the same calls a compiled IR function would make).
func TestS6GPUVecAddViaPrimitiveTable(t *testing.T) {
	const n = 64
	mem := payload.New(4096)
	gpu := units.NewGPUUnit(mem, units.CPUFallbackBackend{})

	p := NewPrimitives()
	RegisterGPUPrimitives(p, mem, gpu)

	aID := p.Call("cl_gpu_create_buffer", []int64{0, n * 4})
	bID := p.Call("cl_gpu_create_buffer", []int64{0, n * 4})
	rID := p.Call("cl_gpu_create_buffer", []int64{0, n * 4})

	const aOff, bOff, shaderOff, bindingsOff, rOff = 0, 512, 1024, 1536, 2048

	aBuf := make([]byte, n*4)
	bBuf := make([]byte, n*4)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(aBuf[i*4:i*4+4], math.Float32bits(float32(i+1)))
		binary.LittleEndian.PutUint32(bBuf[i*4:i*4+4], math.Float32bits(100))
	}
	mem.Write(aOff, aBuf)
	mem.Write(bOff, bBuf)

	require.Equal(t, int64(0), p.Call("cl_gpu_upload", []int64{0, aID, aOff, n * 4}))
	require.Equal(t, int64(0), p.Call("cl_gpu_upload", []int64{0, bID, bOff, n * 4}))

	shader := []byte("vec_add")
	mem.Write(shaderOff, shader)

	writeBinding := func(off int, bufID int64, readOnly bool) {
		var ro uint32
		if readOnly {
			ro = 1
		}
		var entry [8]byte
		binary.LittleEndian.PutUint32(entry[0:4], uint32(bufID))
		binary.LittleEndian.PutUint32(entry[4:8], ro)
		mem.Write(off, entry[:])
	}
	writeBinding(bindingsOff, aID, true)
	writeBinding(bindingsOff+8, bID, true)
	writeBinding(bindingsOff+16, rID, false)

	pipeID := p.Call("cl_gpu_create_pipeline", []int64{0, shaderOff, int64(len(shader)), bindingsOff, 3})
	require.GreaterOrEqual(t, pipeID, int64(1))

	require.Equal(t, int64(0), p.Call("cl_gpu_dispatch", []int64{0, pipeID}))
	require.Equal(t, int64(n*4), p.Call("cl_gpu_download", []int64{0, rID, rOff, n * 4}))

	out := mem.Read(rOff, n*4)
	for i := 0; i < n; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(out[i*4 : i*4+4]))
		require.Equal(t, float32(i+1+100), got, "R[%d]", i)
	}
}
