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

package scheduler

import (
	"github.com/streamforge/actionrt/action"
	"github.com/streamforge/actionrt/units"
)

// FFIFunc and FFITable are aliases of the units package's definitions so
// both the scheduler's own synchronous FFICall handling and an
// AsyncDispatch(dst=FFI)-routed units.FFIUnit worker share one registered
// table type (ground: units/ffi.go).
type (
	FFIFunc  = units.FFIFunc
	FFITable = units.FFITable
)

// ffiCall implements the FFICall action on the scheduler thread: every
// FFICall encountered directly by the program counter executes
// synchronously here, regardless of its unit assignment (§4.3). A program
// that also assigns FFICall actions to AsyncDispatch(dst=FFI) reaches the
// same body through a pooled units.FFIUnit instead.
func (s *Scheduler) ffiCall(a action.Action) {
	units.NewFFIUnit(s.mem, s.ffi).Call(a)
}
