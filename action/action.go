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

// Package action defines the closed set of action Kinds dispatched by the
// scheduler, the Action tuple they parameterize, and the Algorithm that
// bundles an action list with its initial payload, unit topology, and
// per-kind unit assignments.
package action

import "fmt"

// Kind discriminates the fixed set of actions a program may contain. The
// action set is closed: there is no registration mechanism and no plugin
// kind.
type Kind int32

const (
	KindConditionalJump Kind = iota
	KindAsyncDispatch
	KindWait
	KindWaitUntil
	KindWake
	KindPark

	KindMemCopy
	KindMemWrite
	KindMemCopyIndirect
	KindMemStoreIndirect
	KindAtomicLoad
	KindAtomicStore
	KindAtomicFetchAdd
	KindAtomicFetchSub
	KindAtomicCAS
	KindFence
	KindCompare
	KindConditionalWrite
	KindMemScan

	KindFileRead
	KindFileWrite

	KindClifCall
	KindClifCallAsync
	KindDescribe

	KindCreateBuffer
	KindWriteBuffer
	KindCreateShader
	KindCreatePipeline
	KindDispatch
	KindReadBuffer

	KindSimdLoadF32
	KindSimdLoadI32
	KindSimdStoreF32
	KindSimdStoreI32
	KindSimdAdd
	KindSimdMul
	KindSimdSub
	KindSimdDiv

	KindLoadF64
	KindStoreF64
	KindLoadU64
	KindStoreU64
	KindApproximate
	KindChoose
	KindTimestamp

	KindNetConnect
	KindNetAccept
	KindNetSend
	KindNetRecv

	KindFFICall

	KindKVOpen
	KindKVPut
	KindKVGet
	KindKVDelete
	KindKVCursorScan
	KindKVBeginWriteTxn
	KindKVCommitWriteTxn

	KindHTCreate
	KindHTInsert
	KindHTLookup
	KindHTDelete

	KindThreadSpawn
	KindThreadJoin
)

var kindNames = [...]string{
	"ConditionalJump", "AsyncDispatch", "Wait", "WaitUntil", "Wake", "Park",
	"MemCopy", "MemWrite", "MemCopyIndirect", "MemStoreIndirect",
	"AtomicLoad", "AtomicStore", "AtomicFetchAdd", "AtomicFetchSub",
	"AtomicCAS", "Fence", "Compare", "ConditionalWrite", "MemScan",
	"FileRead", "FileWrite",
	"ClifCall", "ClifCallAsync", "Describe",
	"CreateBuffer", "WriteBuffer", "CreateShader", "CreatePipeline", "Dispatch", "ReadBuffer",
	"SimdLoadF32", "SimdLoadI32", "SimdStoreF32", "SimdStoreI32", "SimdAdd", "SimdMul", "SimdSub", "SimdDiv",
	"LoadF64", "StoreF64", "LoadU64", "StoreU64", "Approximate", "Choose", "Timestamp",
	"NetConnect", "NetAccept", "NetSend", "NetRecv",
	"FFICall",
	"KVOpen", "KVPut", "KVGet", "KVDelete", "KVCursorScan", "KVBeginWriteTxn", "KVCommitWriteTxn",
	"HTCreate", "HTInsert", "HTLookup", "HTDelete",
	"ThreadSpawn", "ThreadJoin",
}

// String returns the human-readable name of the Kind, or "Kind(n)" for an
// out-of-range value.
func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// UnassignedUnit is the sentinel assignment value meaning "auto-assign".
const UnassignedUnit uint8 = 255

// UnitKind identifies the asynchronous-dispatch target of an AsyncDispatch
// action.
type UnitKind uint32

const (
	UnitGPU UnitKind = iota
	UnitSIMD
	UnitFile
	UnitNetwork
	UnitFFI
	UnitComputational
	UnitMemory
)

// Action is the 5-tuple every program instruction is built from. Field
// meaning is Kind-specific; see each unit's doc comment in package units.
type Action struct {
	Kind   Kind
	Dst    uint32
	Src    uint32
	Offset uint32
	Size   uint32
}

// UnitSpec declares how many worker instances exist per unit kind.
type UnitSpec struct {
	SIMDUnits          int
	ComputationalUnits int
	FileUnits          int
	NetworkUnits       int
	FFIUnits           int
	MemoryUnits        int
	GPUUnits           int
	JITUnits           int
	LMDBUnits          int
	HashTableUnits     int
	RegsPerUnit        int // SIMD registers per SIMD unit
	ComputationalRegs  int // f64/u64 registers per Computational unit
	FileBufferSize     int
	GPUSize            int
}

// QueueSpec tunes the mailbox/broadcast queue behind each unit pool.
type QueueSpec struct {
	Capacity  int
	BatchSize int
}

// Assignments holds, per unit kind, a parallel vector to Actions mapping
// each action index to the unit instance it runs on (or UnassignedUnit).
type Assignments struct {
	SIMD          []uint8
	Computational []uint8
	File          []uint8
	Network       []uint8
	FFI           []uint8
	Memory        []uint8
	GPU           []uint8
	JIT           []uint8
}

// ColumnType is the output column's element type.
type ColumnType int

const (
	ColumnI64 ColumnType = iota
	ColumnF64
	ColumnUtf8
)

// Column describes one field of a declared output batch.
type Column struct {
	Name       string
	Type       ColumnType
	DataOffset uint64
	LenOffset  uint64 // only meaningful for ColumnUtf8
}

// BatchSchema declares one record batch materialized from Payload Memory
// after execution.
type BatchSchema struct {
	RowCountOffset uint64
	Columns        []Column
}

// OutputSchema is the full set of batches an Algorithm declares.
type OutputSchema struct {
	Batches []BatchSchema
}

// Algorithm is the top-level unit of work consumed once by Execute.
type Algorithm struct {
	Actions []Action
	Payload []byte

	IRSource string // embedded low-level IR source, compiled by the JIT subsystem

	Units  UnitSpec
	Queues QueueSpec

	Assignments Assignments

	WorkerThreads    *int
	BlockingThreads  *int
	StackSize        *int
	ThreadNamePrefix string
	TimeoutMs        *uint64

	Output OutputSchema

	// GPUShaderOffsets[i] is the byte offset of GPU unit i's NUL-terminated
	// WGSL shader source within Payload, or 0 if unit i has no shader.
	GPUShaderOffsets []uint64
}
