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

// Package simd implements the SIMD unit's 4-wide f32/i32 register file:
// Load/Store between Payload Memory and a register, and elementwise
// Add/Sub/Mul/Div between two registers into a third. There is no runtime
// ISA dispatch here; every register is a plain 4-element Go array, which is
// what every action in a single-threaded program actually touches.
package simd

// Lane is the constraint satisfied by the two register file element types.
type Lane interface {
	~float32 | ~int32
}

// Width is the fixed number of lanes per register, matching the 16 bytes
// (four 4-byte elements) an action's Load/Store pair moves at a time.
const Width = 4

// Reg is one 4-wide SIMD register holding either float32 or int32 lanes.
type Reg[T Lane] struct {
	lanes [Width]T
}

// Load fills the register from the first Width elements of data. data must
// hold at least Width elements.
func (r *Reg[T]) Load(data []T) {
	copy(r.lanes[:], data[:Width])
}

// Store writes the register's 4 lanes into dst, which must have room for
// Width elements.
func (r *Reg[T]) Store(dst []T) {
	copy(dst[:Width], r.lanes[:])
}

// Lanes returns a copy of the register's 4 elements.
func (r *Reg[T]) Lanes() [Width]T {
	return r.lanes
}

// SetLanes overwrites the register's 4 elements.
func (r *Reg[T]) SetLanes(lanes [Width]T) {
	r.lanes = lanes
}

// File is a fixed-size bank of SIMD registers of one lane type, indexed by
// the register number an action's Dst/Src/Offset field carries.
type File[T Lane] struct {
	regs []Reg[T]
}

// NewFile allocates a bank of n zeroed registers.
func NewFile[T Lane](n int) *File[T] {
	return &File[T]{regs: make([]Reg[T], n)}
}

// Count returns how many registers the file holds.
func (f *File[T]) Count() int {
	return len(f.regs)
}

// At returns a pointer to register i, panicking if i is out of range;
// SIMDUnit passes action register indices through without checking them
// against Count.
func (f *File[T]) At(i int) *Reg[T] {
	return &f.regs[i]
}
