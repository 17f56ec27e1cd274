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
	"github.com/streamforge/actionrt/action"
	"github.com/streamforge/actionrt/payload"
)

// FFIFunc is one registered foreign-function-table entry: called with the
// run's Payload Memory and the offset the action's declared argument
// pointer resolved to, returning an int64 result.
//
// Go has no portable way to read a raw function pointer out of a byte
// buffer and call through it, so FFICall's "8-byte function pointer" is
// adapted here to an integer ID into this fixed, pre-registered table — the
// same adaptation the JIT primitive table already makes for its extern-C
// calls. The "argument pointer" is likewise widened from the spec's literal
// single byte to a full Payload Memory offset, since a 1-byte address
// space cannot address anything useful.
type FFIFunc func(mem *payload.Memory, argOff int64) int64

// FFITable maps a registered function ID to its Go body. ID 0 is reserved
// as the null-pointer sentinel: FFICall treats it as a silent no-op.
type FFITable map[uint64]FFIFunc

// FFIUnit lets FFICall actions be routed through AsyncDispatch(dst=FFI) to a
// dedicated worker pool, in addition to the scheduler's own synchronous
// FFICall handling (§4.3 lists FFI, kind 4, among the seven AsyncDispatch
// targets). Both paths share this Call body.
type FFIUnit struct {
	mem   *payload.Memory
	table FFITable
}

// NewFFIUnit binds an FFIUnit to mem and its registered function table. A
// nil table means every FFICall this unit sees is a no-op.
func NewFFIUnit(mem *payload.Memory, table FFITable) *FFIUnit {
	return &FFIUnit{mem: mem, table: table}
}

// Execute dispatches one FFICall action.
func (u *FFIUnit) Execute(a action.Action) {
	if a.Kind != action.KindFFICall {
		return
	}
	u.Call(a)
}

// Call reads the function ID at a.Src, the argument offset at a.Dst, calls
// the registered function if present, and writes its result at a.Offset.
// An unregistered or null (0) ID is a silent no-op.
func (u *FFIUnit) Call(a action.Action) {
	fnID := u.mem.ReadU64(int(a.Src))
	if fnID == 0 || u.table == nil {
		return
	}
	fn, ok := u.table[fnID]
	if !ok {
		return
	}
	argOff := int64(u.mem.ReadU64(int(a.Dst)))
	result := fn(u.mem, argOff)
	u.mem.WriteU64(int(a.Offset), uint64(result))
}
