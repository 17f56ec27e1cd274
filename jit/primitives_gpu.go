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

	"github.com/streamforge/actionrt/jit/ir"
	"github.com/streamforge/actionrt/payload"
	"github.com/streamforge/actionrt/units"
)

// gpuBindingStride is the byte width of one packed binding descriptor entry:
// a uint32 buffer handle followed by a uint32 read-only flag (0/1).
const gpuBindingStride = 8

// RegisterGPUPrimitives binds the fine-grained cl_gpu_* primitives against
// gpu, distinct from the scheduler-level KindDispatch path (§4.5 vs §4.4.f —
// see DESIGN.md Open Question 3 for why these are two separate code paths
// over the same GPUUnit).
func RegisterGPUPrimitives(p *Primitives, mem *payload.Memory, gpu *units.GPUUnit) {
	p.Register("cl_gpu_create_buffer", 2, func(args []int64) int64 {
		return int64(gpu.CreateBuffer(int(args[1])))
	})

	p.Register("cl_gpu_upload", 4, func(args []int64) int64 {
		id, memOff, size := uint32(args[1]), args[2], args[3]
		data := mem.Read(int(memOff), int(size))
		return gpu.Upload(id, data, int(size))
	})

	p.Register("cl_gpu_download", 4, func(args []int64) int64 {
		id, dstOff, size := uint32(args[1]), args[2], args[3]
		buf := gpu.Download(id, int(size))
		if buf == nil {
			return -1
		}
		mem.Write(int(dstOff), buf)
		return int64(len(buf))
	})

	p.Register("cl_gpu_create_pipeline", 5, func(args []int64) int64 {
		shaderOff, shaderLen, bindingsOff, bindingCount := args[1], args[2], args[3], args[4]
		shader := string(mem.Read(int(shaderOff), int(shaderLen)))
		bindings := decodeGPUBindings(mem, int(bindingsOff), int(bindingCount))
		return int64(gpu.CreatePipeline(shader, bindings))
	})

	p.Register("cl_gpu_dispatch", ir.Variadic, func(args []int64) int64 {
		// Workgroup dimensions beyond the pipeline id are accepted for wire
		// compatibility with the documented C signature but unused: the
		// fallback backend runs its fixed kernel over the whole buffer.
		return gpu.DispatchPipeline(uint32(args[1]))
	})
}

func decodeGPUBindings(mem *payload.Memory, off, count int) []units.GPUBinding {
	out := make([]units.GPUBinding, 0, count)
	for i := 0; i < count; i++ {
		entry := mem.Read(off+i*gpuBindingStride, gpuBindingStride)
		bufferID := binary.LittleEndian.Uint32(entry[0:4])
		readOnly := binary.LittleEndian.Uint32(entry[4:8]) != 0
		out = append(out, units.GPUBinding{BufferID: bufferID, ReadOnly: readOnly})
	}
	return out
}
