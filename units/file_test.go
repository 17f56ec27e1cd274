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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamforge/actionrt/action"
	"github.com/streamforge/actionrt/payload"
)

func TestFileUnitWriteThenReadWholeFile(t *testing.T) {
	mem := payload.New(4096)
	u := NewFileUnit(mem, 512)

	path := filepath.Join(t.TempDir(), "out.bin")
	mem.Write(0, append([]byte(path), 0))
	payloadData := []byte("hello, action stream runtime")
	mem.Write(1024, append(payloadData, 0))

	u.Execute(action.Action{Kind: action.KindFileWrite, Dst: 0, Src: 1024, Offset: 0, Size: 0})

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, payloadData, onDisk)

	u.Execute(action.Action{Kind: action.KindFileRead, Src: 0, Dst: 2048, Offset: 0, Size: 0})
	require.Equal(t, payloadData, mem.Read(2048, len(payloadData)))
}

func TestFileUnitWriteFixedSizeAtOffset(t *testing.T) {
	mem := payload.New(4096)
	u := NewFileUnit(mem, 16)

	path := filepath.Join(t.TempDir(), "out2.bin")
	mem.Write(0, append([]byte(path), 0))
	data := []byte("0123456789abcdef0123456789abcdef")
	mem.Write(1024, data)

	u.Execute(action.Action{Kind: action.KindFileWrite, Dst: 0, Src: 1024, Offset: 1, Size: uint32(len(data))})

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, data, onDisk[1:])
}
