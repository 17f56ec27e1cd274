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
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamforge/actionrt/action"
	"github.com/streamforge/actionrt/payload"
)

func TestHashTableUnitCreateInsertLookupDelete(t *testing.T) {
	mem := payload.New(128)
	u := NewHashTableUnit(mem)

	u.Execute(action.Action{Kind: action.KindHTCreate, Dst: 64})
	handle := binary.LittleEndian.Uint32(mem.Read(64, 4))

	key, val := []byte("k"), []byte("value")
	mem.Write(0, key)
	mem.Write(8, val)
	sizeField := uint32(len(key))<<16 | uint32(len(val))
	u.Execute(action.Action{Kind: action.KindHTInsert, Dst: 0, Src: 8, Offset: handle, Size: sizeField})

	lookupSize := uint32(len(key)) << 16
	u.Execute(action.Action{Kind: action.KindHTLookup, Dst: 0, Src: 32, Offset: handle, Size: lookupSize})
	gotLen := binary.LittleEndian.Uint32(mem.Read(32, 4))
	require.Equal(t, uint32(len(val)), gotLen)
	require.Equal(t, val, mem.Read(36, int(gotLen)))

	u.Execute(action.Action{Kind: action.KindHTDelete, Dst: 0, Offset: handle, Size: uint32(len(key))})
	u.Execute(action.Action{Kind: action.KindHTLookup, Dst: 0, Src: 32, Offset: handle, Size: lookupSize})
	require.Equal(t, uint32(notFoundSentinel), binary.LittleEndian.Uint32(mem.Read(32, 4)))
}

func TestHashTableUnitLookupMissingHandleIsNotFound(t *testing.T) {
	mem := payload.New(64)
	u := NewHashTableUnit(mem)
	u.Execute(action.Action{Kind: action.KindHTLookup, Dst: 0, Src: 32, Offset: 99, Size: 0})
	require.Equal(t, uint32(notFoundSentinel), binary.LittleEndian.Uint32(mem.Read(32, 4)))
}
