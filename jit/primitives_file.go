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
	"github.com/streamforge/actionrt/payload"
	"github.com/streamforge/actionrt/units"
)

// RegisterFilePrimitives binds cl_file_read/cl_file_write against file,
// reusing the exact read/write bodies the scheduler's synchronous FileRead
// and FileWrite actions call (units.FileUnit.ReadFile/WriteFile).
func RegisterFilePrimitives(p *Primitives, mem *payload.Memory, file *units.FileUnit) {
	p.Register("cl_file_read", 5, func(args []int64) int64 {
		pathOff, dstOff, fileOff, size := args[1], args[2], args[3], args[4]
		path := readCString(mem, int(pathOff), 4096)
		return file.ReadFile(path, int(dstOff), fileOff, int(size))
	})

	p.Register("cl_file_write", 5, func(args []int64) int64 {
		pathOff, srcOff, fileOff, size := args[1], args[2], args[3], args[4]
		path := readCString(mem, int(pathOff), 4096)
		return file.WriteFile(path, int(srcOff), fileOff, int(size))
	})
}
