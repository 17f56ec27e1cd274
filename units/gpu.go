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

	"github.com/streamforge/actionrt/action"
	"github.com/streamforge/actionrt/payload"
)

// gpuBuffer is one JIT-visible storage buffer: a byte-sized scratch region
// private to the GPU unit, distinct from Payload Memory.
type gpuBuffer struct {
	data []byte
}

// GPUBinding is one entry of a compute pipeline's binding descriptor.
type GPUBinding struct {
	BufferID uint32
	ReadOnly bool
}

// gpuPipeline is a compiled shader plus its binding descriptor. The shader
// source is opaque text (§1: "WGSL shaders... treated as opaque vendor
// services"); CPUFallbackBackend keys its kernel selection off it.
type gpuPipeline struct {
	shader   string
	bindings []GPUBinding
}

// GPUBackend is the seam between the GPU unit and whatever actually runs
// its fixed kernel. No real GPU compute binding for Go exists in this
// module's dependency set, so the unit is built against this interface and
// shipped with one concrete, always-available implementation
// (CPUFallbackBackend); a vendor GPU SDK binding can satisfy the same
// interface without touching the unit's dispatch logic.
type GPUBackend interface {
	// RunKernel applies the device's fixed kernel to ins, one f32 slice per
	// read-only bound buffer (same index across every slice is one lane),
	// returning the output of equal length.
	RunKernel(ins [][]float32) []float32
}

// GPUInitializer is an optional capability a GPUBackend can implement when
// binding to the device requires a fallible setup step (driver handle,
// device selection, ...). CPUFallbackBackend has nothing to initialize and
// does not implement it.
type GPUInitializer interface {
	Init() error
}

// CPUFallbackBackend implements GPUBackend entirely in-process, matching
// the "fixed kernel provided at program init" contract without a real
// device behind it: one input buffer is squared elementwise, two or more
// are summed elementwise (vec_add), matching the binding count a pipeline
// was created with.
type CPUFallbackBackend struct{}

// RunKernel squares a single input elementwise, or sums two-or-more inputs
// elementwise. The output length matches the shortest input.
func (CPUFallbackBackend) RunKernel(ins [][]float32) []float32 {
	if len(ins) == 0 {
		return nil
	}
	if len(ins) == 1 {
		in := ins[0]
		out := make([]float32, len(in))
		for i, v := range in {
			out[i] = v * v
		}
		return out
	}

	n := len(ins[0])
	for _, in := range ins[1:] {
		if len(in) < n {
			n = len(in)
		}
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		var sum float32
		for _, in := range ins {
			sum += in[i]
		}
		out[i] = sum
	}
	return out
}

// GPUUnit holds one long-lived backend plus the scratch buffer used by the
// scheduler-driven Dispatch path, and the per-program tables of storage
// buffers and compute pipelines the JIT-driven path (§4.5) keeps resident
// across dispatches.
type GPUUnit struct {
	mem     *payload.Memory
	backend GPUBackend

	buffers      map[uint32]*gpuBuffer
	pipelines    map[uint32]*gpuPipeline
	nextBuffer   uint32
	nextPipeline uint32
}

// NewGPUUnit binds a GPUUnit to backend, defaulting to CPUFallbackBackend
// when backend is nil.
func NewGPUUnit(mem *payload.Memory, backend GPUBackend) *GPUUnit {
	if backend == nil {
		backend = CPUFallbackBackend{}
	}
	return &GPUUnit{
		mem:       mem,
		backend:   backend,
		buffers:   make(map[uint32]*gpuBuffer),
		pipelines: make(map[uint32]*gpuPipeline),
	}
}

// CreateBuffer allocates a size-byte storage buffer and returns its handle.
// Ground: cl_gpu_create_buffer (§4.5).
func (u *GPUUnit) CreateBuffer(size int) uint32 {
	u.nextBuffer++
	id := u.nextBuffer
	u.buffers[id] = &gpuBuffer{data: make([]byte, size)}
	return id
}

// Upload copies size bytes from Payload Memory at off into buffer id at
// buffer-relative offset 0, returning 0 on success or -1 for an invalid
// handle. Ground: cl_gpu_upload.
func (u *GPUUnit) Upload(id uint32, mem []byte, size int) int64 {
	buf, ok := u.buffers[id]
	if !ok {
		return -1
	}
	n := size
	if n > len(buf.data) {
		n = len(buf.data)
	}
	if n > len(mem) {
		n = len(mem)
	}
	copy(buf.data, mem[:n])
	return 0
}

// Download copies size bytes out of buffer id, or nil for an invalid
// handle. Ground: cl_gpu_download.
func (u *GPUUnit) Download(id uint32, size int) []byte {
	buf, ok := u.buffers[id]
	if !ok {
		return nil
	}
	n := size
	if n > len(buf.data) {
		n = len(buf.data)
	}
	out := make([]byte, n)
	copy(out, buf.data[:n])
	return out
}

// CreatePipeline registers a shader plus its binding descriptor and returns
// a pipeline handle. Ground: cl_gpu_create_pipeline.
func (u *GPUUnit) CreatePipeline(shader string, bindings []GPUBinding) uint32 {
	u.nextPipeline++
	id := u.nextPipeline
	u.pipelines[id] = &gpuPipeline{shader: shader, bindings: bindings}
	return id
}

// DispatchPipeline runs pipeline id's shader over its read-only bound
// buffer(s), writing into its one read-write bound buffer via the
// backend's fixed kernel, returning 0 on success or -1 for an invalid
// pipeline. Ground: cl_gpu_dispatch.
func (u *GPUUnit) DispatchPipeline(id uint32) int64 {
	pipe, ok := u.pipelines[id]
	if !ok {
		return -1
	}
	var in []*gpuBuffer
	var out *gpuBuffer
	for _, b := range pipe.bindings {
		buf, ok := u.buffers[b.BufferID]
		if !ok {
			return -1
		}
		if b.ReadOnly {
			in = append(in, buf)
		} else {
			out = buf
		}
	}
	if out == nil || len(in) == 0 {
		return -1
	}
	ins := make([][]float32, len(in))
	for i, b := range in {
		ins[i] = decodeF32Buffer(b)
	}
	result := u.backend.RunKernel(ins)
	encodeF32Buffer(out, result)
	return 0
}

// Cleanup drops every buffer and pipeline, matching the gpu_init/gpu_cleanup
// bounded-lifetime contract (§3).
func (u *GPUUnit) Cleanup() {
	u.buffers = make(map[uint32]*gpuBuffer)
	u.pipelines = make(map[uint32]*gpuPipeline)
	u.nextBuffer, u.nextPipeline = 0, 0
}

func decodeF32Buffer(b *gpuBuffer) []float32 {
	count := len(b.data) / 4
	out := make([]float32, count)
	for i := 0; i < count; i++ {
		bits := binary.LittleEndian.Uint32(b.data[i*4 : i*4+4])
		out[i] = math.Float32frombits(bits)
	}
	return out
}

func encodeF32Buffer(b *gpuBuffer, vals []float32) {
	n := len(vals)
	if n*4 > len(b.data) {
		n = len(b.data) / 4
	}
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(b.data[i*4:i*4+4], math.Float32bits(vals[i]))
	}
}

// Execute dispatches one GPU action. Dispatch is the only scheduler-level
// GPU action; the fine-grained create_buffer/upload/dispatch/download path
// lives in the JIT primitive table instead.
func (u *GPUUnit) Execute(a action.Action) {
	if a.Kind != action.KindDispatch {
		return
	}
	n := int(a.Size) / 4
	in := make([]float32, n)
	raw := u.mem.Read(int(a.Src), n*4)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(raw[i*4 : i*4+4])
		in[i] = math.Float32frombits(bits)
	}

	out := u.backend.RunKernel([][]float32{in})

	buf := make([]byte, len(out)*4)
	for i, v := range out {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(v))
	}
	u.mem.Write(int(a.Dst), buf)
}
