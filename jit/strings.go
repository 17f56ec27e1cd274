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

import "github.com/streamforge/actionrt/payload"

// readCString reads a NUL-terminated UTF-8 string from mem starting at off,
// scanning at most maxLen bytes (clamped to what mem actually holds). Mirrors
// units.readCString; duplicated here rather than exported across the package
// boundary since it is a three-line primitive, not shared state.
func readCString(mem *payload.Memory, off, maxLen int) string {
	if avail := mem.Len() - off; maxLen > avail {
		maxLen = avail
	}
	buf := mem.Read(off, maxLen)
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}
