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

package harness

import "github.com/streamforge/actionrt/action"

var simdKinds = map[action.Kind]bool{
	action.KindSimdLoadF32: true, action.KindSimdLoadI32: true,
	action.KindSimdStoreF32: true, action.KindSimdStoreI32: true,
	action.KindSimdAdd: true, action.KindSimdMul: true,
	action.KindSimdSub: true, action.KindSimdDiv: true,
}

var computationalKinds = map[action.Kind]bool{
	action.KindLoadF64: true, action.KindStoreF64: true,
	action.KindLoadU64: true, action.KindStoreU64: true,
	action.KindApproximate: true, action.KindChoose: true, action.KindTimestamp: true,
}

var fileKinds = map[action.Kind]bool{
	action.KindFileRead: true, action.KindFileWrite: true,
}

var networkKinds = map[action.Kind]bool{
	action.KindNetConnect: true, action.KindNetAccept: true,
	action.KindNetSend: true, action.KindNetRecv: true,
}

var ffiKinds = map[action.Kind]bool{action.KindFFICall: true}

var memoryKinds = map[action.Kind]bool{
	action.KindMemCopy: true, action.KindMemWrite: true,
	action.KindMemCopyIndirect: true, action.KindMemStoreIndirect: true,
	action.KindAtomicLoad: true, action.KindAtomicStore: true,
	action.KindAtomicFetchAdd: true, action.KindAtomicFetchSub: true,
	action.KindAtomicCAS: true, action.KindFence: true,
	action.KindCompare: true, action.KindConditionalWrite: true, action.KindMemScan: true,
}

var gpuKinds = map[action.Kind]bool{
	action.KindCreateBuffer: true, action.KindWriteBuffer: true,
	action.KindCreateShader: true, action.KindCreatePipeline: true,
	action.KindDispatch: true, action.KindReadBuffer: true,
}

var jitKinds = map[action.Kind]bool{
	action.KindClifCall: true, action.KindClifCallAsync: true, action.KindDescribe: true,
}

// AutoAssign fills in every empty assignment vector on alg in place. Kinds
// that round-robin across their pool (SIMD, File, GPU, per §4.7) advance a
// per-kind cursor; every other kind (Memory, Computational, FFI, Network,
// JIT — the JIT pool is otherwise only reached via the Broadcast fan-out,
// so assignment is a formality there) is pinned to unit 0.
func AutoAssign(alg *action.Algorithm) {
	n := len(alg.Actions)
	u := alg.Units

	roundRobin := func(vec *[]uint8, kinds map[action.Kind]bool, poolSize int) {
		if len(*vec) != 0 || poolSize <= 0 {
			return
		}
		out := make([]uint8, n)
		for i := range out {
			out[i] = action.UnassignedUnit
		}
		cursor := 0
		for i, a := range alg.Actions {
			if kinds[a.Kind] {
				out[i] = uint8(cursor % poolSize)
				cursor++
			}
		}
		*vec = out
	}

	pinZero := func(vec *[]uint8, kinds map[action.Kind]bool, poolSize int) {
		if len(*vec) != 0 || poolSize <= 0 {
			return
		}
		out := make([]uint8, n)
		for i := range out {
			out[i] = action.UnassignedUnit
		}
		for i, a := range alg.Actions {
			if kinds[a.Kind] {
				out[i] = 0
			}
		}
		*vec = out
	}

	roundRobin(&alg.Assignments.SIMD, simdKinds, u.SIMDUnits)
	roundRobin(&alg.Assignments.File, fileKinds, u.FileUnits)
	roundRobin(&alg.Assignments.GPU, gpuKinds, u.GPUUnits)

	pinZero(&alg.Assignments.Memory, memoryKinds, u.MemoryUnits)
	pinZero(&alg.Assignments.Computational, computationalKinds, u.ComputationalUnits)
	pinZero(&alg.Assignments.FFI, ffiKinds, u.FFIUnits)
	pinZero(&alg.Assignments.Network, networkKinds, u.NetworkUnits)
	pinZero(&alg.Assignments.JIT, jitKinds, u.JITUnits)
}
