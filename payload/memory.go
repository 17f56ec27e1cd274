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

// Package payload implements the single pinned byte buffer every unit reads
// and writes: plain byte access, alignment-aware atomic
// load/store/CAS/fetch-add/fetch-sub over 32/64/128-bit widths, and a
// byte-pattern scan. The buffer's address is pinned for the lifetime of one
// Algorithm execution: Memory owns a []byte that is never reallocated after
// New returns.
package payload

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// Ordering mirrors the 3-bit ordering field packed into action fields:
// 0 Relaxed, 1 Acquire, 2 Release, 3 AcqRel, 4 SeqCst.
// Go's sync/atomic does not expose per-op memory order below SeqCst; the
// weaker orderings are honored where Go gives us the primitive (atomic
// loads/stores are implemented as SeqCst, which is a valid strengthening of
// every weaker ordering) and otherwise documented as best-effort.
type Ordering uint8

const (
	OrderRelaxed Ordering = iota
	OrderAcquire
	OrderRelease
	OrderAcqRel
	OrderSeqCst
)

// DecodeOrdering extracts an Ordering from the low 3 bits of a packed field.
func DecodeOrdering(packed uint32) Ordering {
	return Ordering(packed & 0x7)
}

// Memory is the pinned, shared payload buffer. All methods are safe to call
// concurrently from multiple units; callers are responsible for the
// completion-flag discipline that keeps non-atomic ranges single-writer.
type Memory struct {
	buf []byte
}

// New pins a zero-initialized buffer of the given length.
func New(size int) *Memory {
	return &Memory{buf: make([]byte, size)}
}

// NewFrom pins the given slice directly (no copy); used by the harness to
// hand the Algorithm's initial payload bytes straight to the runtime.
func NewFrom(buf []byte) *Memory {
	return &Memory{buf: buf}
}

// Len returns the buffer length in bytes.
func (m *Memory) Len() int { return len(m.buf) }

// Bytes returns the raw backing slice. Callers outside package payload
// should prefer the typed accessors below; this exists for units (File,
// Network, GPU, LMDB) that hand the buffer to I/O APIs expecting []byte.
func (m *Memory) Bytes() []byte { return m.buf }

func (m *Memory) basePtr() unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(m.buf))
}

func (m *Memory) checkRange(off, n int) {
	if off < 0 || n < 0 || off+n > len(m.buf) {
		panic(fmt.Sprintf("payload: out of range access offset=%d size=%d len=%d", off, n, len(m.buf)))
	}
}

// Read returns a copy of n bytes starting at off.
func (m *Memory) Read(off, n int) []byte {
	m.checkRange(off, n)
	out := make([]byte, n)
	copy(out, m.buf[off:off+n])
	return out
}

// Write copies data into the buffer starting at off.
func (m *Memory) Write(off int, data []byte) {
	m.checkRange(off, len(data))
	copy(m.buf[off:off+len(data)], data)
}

// ReadU64 reads a little-endian uint64 at off (used for completion flags,
// program-counter test words, and mailbox-adjacent scalar reads).
func (m *Memory) ReadU64(off int) uint64 {
	m.checkRange(off, 8)
	return *(*uint64)(unsafe.Pointer(&m.buf[off]))
}

// WriteU64 writes a little-endian uint64 at off.
func (m *Memory) WriteU64(off int, v uint64) {
	m.checkRange(off, 8)
	*(*uint64)(unsafe.Pointer(&m.buf[off])) = v
}

// isAligned reports whether off is naturally aligned for a width-byte access.
func isAligned(off, width int) bool {
	return off%width == 0
}

// AtomicLoad64 performs an aligned-or-fenced-unaligned 64-bit load.
func (m *Memory) AtomicLoad64(off int, ord Ordering) uint64 {
	m.checkRange(off, 8)
	p := (*uint64)(unsafe.Add(m.basePtr(), off))
	if isAligned(off, 8) {
		return atomic.LoadUint64(p)
	}
	// Unaligned fallback: plain read plus the nearest matching fence.
	v := m.ReadU64(off)
	if ord == OrderAcquire || ord == OrderAcqRel || ord == OrderSeqCst {
		atomic.LoadUint32(new(uint32)) // acquire fence surrogate (see Fence)
	}
	return v
}

// AtomicStore64 performs an aligned-or-fenced-unaligned 64-bit store.
func (m *Memory) AtomicStore64(off int, v uint64, ord Ordering) {
	m.checkRange(off, 8)
	p := (*uint64)(unsafe.Add(m.basePtr(), off))
	if isAligned(off, 8) {
		atomic.StoreUint64(p, v)
		return
	}
	if ord == OrderRelease || ord == OrderAcqRel || ord == OrderSeqCst {
		atomic.StoreUint32(new(uint32), 0) // release fence surrogate
	}
	m.WriteU64(off, v)
}

// AtomicFetchAdd64 adds delta to the 64-bit word at off and returns the
// previous value. Interleaved FetchAdd/FetchSub on an aligned offset sum
// exactly regardless of interleaving.
func (m *Memory) AtomicFetchAdd64(off int, delta int64) uint64 {
	m.checkRange(off, 8)
	if !isAligned(off, 8) {
		panic("payload: AtomicFetchAdd64 requires an aligned offset")
	}
	p := (*uint64)(unsafe.Add(m.basePtr(), off))
	return atomic.AddUint64(p, uint64(delta)) - uint64(delta)
}

// AtomicFetchSub64 is AtomicFetchAdd64 with the sign flipped.
func (m *Memory) AtomicFetchSub64(off int, delta int64) uint64 {
	return m.AtomicFetchAdd64(off, -delta)
}

// CAS32/CAS64 perform aligned compare-and-swap. CAS has no unaligned
// fallback: an unaligned offset panics (nothing rejects it before
// dispatch).
func (m *Memory) CAS32(off int, old, new uint32) bool {
	m.checkRange(off, 4)
	if !isAligned(off, 4) {
		panic("payload: CAS32 requires an aligned offset")
	}
	p := (*uint32)(unsafe.Add(m.basePtr(), off))
	return atomic.CompareAndSwapUint32(p, old, new)
}

func (m *Memory) CAS64(off int, old, new uint64) bool {
	m.checkRange(off, 8)
	if !isAligned(off, 8) {
		panic("payload: CAS64 requires an aligned offset")
	}
	p := (*uint64)(unsafe.Add(m.basePtr(), off))
	return atomic.CompareAndSwapUint64(p, old, new)
}

// CAS128 performs a 128-bit compare-and-swap over two consecutive aligned
// 64-bit words. Go has no native 128-bit atomic primitive, so this makes a
// single attempt: a CAS on the low word, then a check of the high word
// (rolling the low word back on mismatch), then a store of the high word.
// It does not retry. An unaligned offset panics, as for CAS32/CAS64.
func (m *Memory) CAS128(off int, oldLo, oldHi, newLo, newHi uint64) bool {
	m.checkRange(off, 16)
	if !isAligned(off, 16) {
		panic("payload: CAS128 requires an aligned offset")
	}
	loPtr := (*uint64)(unsafe.Add(m.basePtr(), off))
	hiPtr := (*uint64)(unsafe.Add(m.basePtr(), off+8))
	// Narrow but documented race window: the low word is the single point
	// of arbitration. Only one CAS128 can win per call because the low
	// word swap is atomic; the high word write happens only after the low
	// word swap succeeds, under the caller's completion-flag discipline
	// which guarantees no concurrent mutator of this range.
	if !atomic.CompareAndSwapUint64(loPtr, oldLo, newLo) {
		return false
	}
	if atomic.LoadUint64(hiPtr) != oldHi {
		atomic.StoreUint64(loPtr, oldLo) // roll back
		return false
	}
	atomic.StoreUint64(hiPtr, newHi)
	return true
}

// Scan searches [from, len) for the first occurrence of pattern, returning
// its absolute offset or -1.
func (m *Memory) Scan(from int, pattern []byte) int64 {
	if from < 0 || from > len(m.buf) || len(pattern) == 0 {
		return -1
	}
	if len(pattern) == 1 {
		b := pattern[0]
		for i := from; i < len(m.buf); i++ {
			if m.buf[i] == b {
				return int64(i)
			}
		}
		return -1
	}
	end := len(m.buf) - len(pattern) + 1
	for i := from; i < end; i++ {
		if bytesEqual(m.buf[i:i+len(pattern)], pattern) {
			return int64(i)
		}
	}
	return -1
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// DecodeMemScan splits MemScan's packed field into (patternSize,
// resultOffset): pattern size in the low 16 bits, result offset in the high
// 16 bits.
func DecodeMemScan(packed uint32) (patternSize int, resultOffset int) {
	return int(packed & 0xFFFF), int(packed >> 16)
}

// DecodeAtomicSize splits AtomicFetchAdd/Sub's Size field: ordering packed
// into the top 3 bits, op-width into the low 29 bits.
func DecodeAtomicSize(size uint32) (width int, ord Ordering) {
	return int(size & 0x1FFFFFFF), Ordering((size >> 29) & 0x7)
}
