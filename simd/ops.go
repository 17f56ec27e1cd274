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

// Add writes dst = a + b lane-wise.
func Add[T Lane](dst, a, b *Reg[T]) {
	var out [Width]T
	al, bl := a.Lanes(), b.Lanes()
	for i := range out {
		out[i] = addLane(al[i], bl[i])
	}
	dst.SetLanes(out)
}

// Sub writes dst = a - b lane-wise.
func Sub[T Lane](dst, a, b *Reg[T]) {
	var out [Width]T
	al, bl := a.Lanes(), b.Lanes()
	for i := range out {
		out[i] = subLane(al[i], bl[i])
	}
	dst.SetLanes(out)
}

// Mul writes dst = a * b lane-wise.
func Mul[T Lane](dst, a, b *Reg[T]) {
	var out [Width]T
	al, bl := a.Lanes(), b.Lanes()
	for i := range out {
		out[i] = mulLane(al[i], bl[i])
	}
	dst.SetLanes(out)
}

// Div writes dst = a / b lane-wise. A zero divisor lane in an integer
// register yields 0 in that lane rather than panicking; float division by
// zero follows normal IEEE 754 semantics (±Inf or NaN).
func Div[T Lane](dst, a, b *Reg[T]) {
	var out [Width]T
	al, bl := a.Lanes(), b.Lanes()
	for i := range out {
		out[i] = divLane(al[i], bl[i])
	}
	dst.SetLanes(out)
}

func addLane[T Lane](a, b T) T {
	switch av := any(a).(type) {
	case float32:
		return any(av + any(b).(float32)).(T)
	case int32:
		return any(av + any(b).(int32)).(T)
	default:
		return a
	}
}

func subLane[T Lane](a, b T) T {
	switch av := any(a).(type) {
	case float32:
		return any(av - any(b).(float32)).(T)
	case int32:
		return any(av - any(b).(int32)).(T)
	default:
		return a
	}
}

func mulLane[T Lane](a, b T) T {
	switch av := any(a).(type) {
	case float32:
		return any(av * any(b).(float32)).(T)
	case int32:
		return any(av * any(b).(int32)).(T)
	default:
		return a
	}
}

func divLane[T Lane](a, b T) T {
	switch av := any(a).(type) {
	case float32:
		return any(av / any(b).(float32)).(T)
	case int32:
		bv := any(b).(int32)
		if bv == 0 {
			return any(int32(0)).(T)
		}
		return any(av / bv).(T)
	default:
		return a
	}
}
