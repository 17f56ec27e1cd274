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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamforge/actionrt/action"
	"github.com/streamforge/actionrt/payload"
)

func TestLMDBUnitOpenPutGetDelete(t *testing.T) {
	mem := payload.New(256)
	u := NewLMDBUnit(mem, nil)

	dir := filepath.Join(t.TempDir(), "env1")
	mem.Write(0, append([]byte(dir), 0))
	mem.WriteU64(64, 1<<20)
	u.Execute(action.Action{Kind: action.KindKVOpen, Src: 0, Offset: 64, Dst: 72})
	env := mem.ReadU64(72)

	key, val := []byte("hello"), []byte("world")
	mem.Write(100, key)
	mem.Write(120, val)
	sizeField := uint32(len(key))<<16 | uint32(len(val))
	u.Execute(action.Action{Kind: action.KindKVPut, Dst: 100, Src: 120, Offset: uint32(env), Size: sizeField})

	u.Execute(action.Action{Kind: action.KindKVGet, Dst: 100, Src: 140, Offset: uint32(env), Size: uint32(len(key))})
	gotLen := binary.LittleEndian.Uint32(mem.Read(140, 4))
	require.Equal(t, uint32(len(val)), gotLen)
	require.Equal(t, val, mem.Read(144, int(gotLen)))

	u.Execute(action.Action{Kind: action.KindKVDelete, Dst: 100, Offset: uint32(env), Size: uint32(len(key))})
	u.Execute(action.Action{Kind: action.KindKVGet, Dst: 100, Src: 140, Offset: uint32(env), Size: uint32(len(key))})
	require.Equal(t, uint32(0xFFFFFFFF), binary.LittleEndian.Uint32(mem.Read(140, 4)))
}

// S5 — LMDB overwrite: a second Put under the same key must be what Get
// returns afterward.
func TestLMDBUnitOverwriteReturnsNewestValue(t *testing.T) {
	mem := payload.New(256)
	u := NewLMDBUnit(mem, nil)

	dir := filepath.Join(t.TempDir(), "env2")
	mem.Write(0, append([]byte(dir), 0))
	mem.WriteU64(64, 1<<20)
	u.Execute(action.Action{Kind: action.KindKVOpen, Src: 0, Offset: 64, Dst: 72})
	env := mem.ReadU64(72)

	key := []byte("k")
	mem.Write(100, key)

	old := []byte("old")
	mem.Write(120, old)
	u.Execute(action.Action{Kind: action.KindKVPut, Dst: 100, Src: 120, Offset: uint32(env), Size: uint32(len(key))<<16 | uint32(len(old))})

	newVal := []byte("new")
	mem.Write(120, newVal)
	u.Execute(action.Action{Kind: action.KindKVPut, Dst: 100, Src: 120, Offset: uint32(env), Size: uint32(len(key))<<16 | uint32(len(newVal))})

	u.Execute(action.Action{Kind: action.KindKVGet, Dst: 100, Src: 140, Offset: uint32(env), Size: uint32(len(key))})
	gotLen := binary.LittleEndian.Uint32(mem.Read(140, 4))
	require.Equal(t, uint32(len(newVal)), gotLen)
	require.Equal(t, newVal, mem.Read(144, int(gotLen)))
}

func TestLMDBUnitWriteTxnLatchIsSingleActive(t *testing.T) {
	u := NewLMDBUnit(payload.New(8), nil)
	u.Execute(action.Action{Kind: action.KindKVBeginWriteTxn, Dst: 1})
	require.True(t, u.activeWriteTxn[1])
	u.Execute(action.Action{Kind: action.KindKVBeginWriteTxn, Dst: 1})
	require.True(t, u.activeWriteTxn[1])
	u.Execute(action.Action{Kind: action.KindKVCommitWriteTxn, Dst: 1})
	require.False(t, u.activeWriteTxn[1])
}

func TestLMDBUnitShutdownAbortsOutstandingTxns(t *testing.T) {
	u := NewLMDBUnit(payload.New(8), nil)
	u.Execute(action.Action{Kind: action.KindKVBeginWriteTxn, Dst: 1})
	u.Execute(action.Action{Kind: action.KindKVBeginWriteTxn, Dst: 2})
	u.Shutdown()
	require.Empty(t, u.activeWriteTxn)
}
