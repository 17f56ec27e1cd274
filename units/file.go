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
	"io"
	"os"

	"golang.org/x/sys/unix"

	"github.com/streamforge/actionrt/action"
	"github.com/streamforge/actionrt/payload"
)

// FileUnit owns one chunking buffer used for both reads and writes.
type FileUnit struct {
	mem    *payload.Memory
	buffer []byte
}

// NewFileUnit allocates a FileUnit with the given chunk buffer size.
func NewFileUnit(mem *payload.Memory, bufferSize int) *FileUnit {
	return &FileUnit{mem: mem, buffer: make([]byte, bufferSize)}
}

// Execute dispatches one file action. Errors are swallowed at this layer
// (matching the unit's soft-failure contract: a missing file or short read
// simply leaves the destination bytes untouched); neither this unit nor
// the harness logs them.
func (u *FileUnit) Execute(a action.Action) {
	switch a.Kind {
	case action.KindFileRead:
		u.read(a)
	case action.KindFileWrite:
		u.write(a)
	}
}

func (u *FileUnit) read(a action.Action) int64 {
	return u.ReadFile(readCString(u.mem, int(a.Src), 4096), int(a.Dst), int64(a.Offset), int(a.Size))
}

// ReadFile reads size bytes (0 = whole file, chunked through the unit's
// buffer) from path at fileOff into Payload Memory at dst, returning the
// number of bytes actually read or -1 on failure. This is the body shared
// by the scheduler-dispatched FileRead action and the JIT primitive
// cl_file_read (§4.5).
func (u *FileUnit) ReadFile(path string, dst int, fileOff int64, size int) int64 {
	f, err := os.Open(path)
	if err != nil {
		return -1
	}
	defer f.Close()

	if fileOff > 0 {
		if _, err := f.Seek(fileOff, io.SeekStart); err != nil {
			return -1
		}
	}

	if size == 0 {
		total := 0
		for {
			n, err := f.Read(u.buffer)
			if n > 0 {
				u.mem.Write(dst+total, u.buffer[:n])
				total += n
			}
			if err != nil {
				return int64(total)
			}
		}
	}

	total := 0
	for total < size {
		readSize := size - total
		if readSize > len(u.buffer) {
			readSize = len(u.buffer)
		}
		n, err := f.Read(u.buffer[:readSize])
		if n > 0 {
			u.mem.Write(dst+total, u.buffer[:n])
			total += n
		}
		if err != nil {
			break
		}
	}
	if total == 0 {
		return -1
	}
	return int64(total)
}

func (u *FileUnit) write(a action.Action) int64 {
	return u.WriteFile(readCString(u.mem, int(a.Dst), 4096), int(a.Src), int64(a.Offset), int(a.Size))
}

// WriteFile writes size bytes (0 = up to the first NUL in source) from
// Payload Memory at src to path at fileOff (0 => truncate-create, else
// open-write at offset), fsyncing on completion. Returns the byte count
// written or -1 on failure. Shared by FileWrite and cl_file_write (§4.5).
func (u *FileUnit) WriteFile(path string, src int, fileOff int64, size int) int64 {
	var f *os.File
	var err error
	if fileOff == 0 {
		f, err = os.Create(path)
	} else {
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0o644)
	}
	if err != nil {
		return -1
	}
	defer f.Close()

	if fileOff > 0 {
		if _, err := f.Seek(fileOff, io.SeekStart); err != nil {
			return -1
		}
	}

	written := 0
	if size == 0 {
		length := 0
		for length < len(u.buffer) {
			if u.mem.Read(src+length, 1)[0] == 0 {
				break
			}
			length++
		}
		if length > 0 {
			if _, err := f.Write(u.mem.Read(src, length)); err != nil {
				return -1
			}
			written = length
		}
	} else {
		total := size
		for written < total {
			chunk := total - written
			if chunk > len(u.buffer) {
				chunk = len(u.buffer)
			}
			if _, err := f.Write(u.mem.Read(src+written, chunk)); err != nil {
				break
			}
			written += chunk
		}
	}

	_ = unix.Fsync(int(f.Fd()))
	return int64(written)
}
