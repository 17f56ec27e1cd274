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

	"github.com/streamforge/actionrt/payload"
)

// LoadF32 fills dst from the 16-byte, 128-bit block at off in mem —
// one 128-bit load duplicated across no further lanes, since the register
// file is itself exactly 128 bits wide.
func LoadF32(dst *Reg[float32], mem *payload.Memory, off int) {
	raw := mem.Read(off, 16)
	var lanes [Width]float32
	for i := range lanes {
		bits := uint32(raw[i*4]) | uint32(raw[i*4+1])<<8 | uint32(raw[i*4+2])<<16 | uint32(raw[i*4+3])<<24
		lanes[i] = math.Float32frombits(bits)
	}
	dst.SetLanes(lanes)
}

// StoreF32 writes src's 4 lanes as a 16-byte little-endian block at off.
func StoreF32(src *Reg[float32], mem *payload.Memory, off int) {
	lanes := src.Lanes()
	var raw [16]byte
	for i, v := range lanes {
		bits := math.Float32bits(v)
		raw[i*4] = byte(bits)
		raw[i*4+1] = byte(bits >> 8)
		raw[i*4+2] = byte(bits >> 16)
		raw[i*4+3] = byte(bits >> 24)
	}
	mem.Write(off, raw[:])
}

// LoadI32 fills dst from the 16-byte block at off in mem.
func LoadI32(dst *Reg[int32], mem *payload.Memory, off int) {
	raw := mem.Read(off, 16)
	var lanes [Width]int32
	for i := range lanes {
		bits := uint32(raw[i*4]) | uint32(raw[i*4+1])<<8 | uint32(raw[i*4+2])<<16 | uint32(raw[i*4+3])<<24
		lanes[i] = int32(bits)
	}
	dst.SetLanes(lanes)
}

// StoreI32 writes src's 4 lanes as a 16-byte little-endian block at off.
func StoreI32(src *Reg[int32], mem *payload.Memory, off int) {
	lanes := src.Lanes()
	var raw [16]byte
	for i, v := range lanes {
		bits := uint32(v)
		raw[i*4] = byte(bits)
		raw[i*4+1] = byte(bits >> 8)
		raw[i*4+2] = byte(bits >> 16)
		raw[i*4+3] = byte(bits >> 24)
	}
	mem.Write(off, raw[:])
}
