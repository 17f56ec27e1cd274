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

package payload

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAtomicFetchAddSubConcurrent(t *testing.T) {
	m := New(64)
	const workers = 8
	const perWorker = 1000

	var wg sync.WaitGroup
	var want int64
	for i := 0; i < workers; i++ {
		delta := int64(i + 1)
		if i%2 == 0 {
			delta = -delta
		}
		want += delta * perWorker
		wg.Add(1)
		go func(delta int64) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if delta >= 0 {
					m.AtomicFetchAdd64(0, delta)
				} else {
					m.AtomicFetchSub64(0, -delta)
				}
			}
		}(delta)
	}
	wg.Wait()

	require.Equal(t, uint64(want), m.AtomicLoad64(0, OrderSeqCst))
}

func TestCAS64SuccessAndFailure(t *testing.T) {
	m := New(64)
	m.WriteU64(8, 42)

	require.True(t, m.CAS64(8, 42, 100))
	require.Equal(t, uint64(100), m.ReadU64(8))
	require.False(t, m.CAS64(8, 42, 200))
	require.Equal(t, uint64(100), m.ReadU64(8))
}

func TestCAS128(t *testing.T) {
	m := New(64)
	m.WriteU64(16, 1)
	m.WriteU64(24, 2)

	require.True(t, m.CAS128(16, 1, 2, 10, 20))
	require.Equal(t, uint64(10), m.ReadU64(16))
	require.Equal(t, uint64(20), m.ReadU64(24))
	require.False(t, m.CAS128(16, 1, 2, 99, 99))
}

func TestScanFindsSmallestOffset(t *testing.T) {
	m := New(32)
	m.Write(4, []byte{0xAB, 0xCD})
	m.Write(20, []byte{0xAB, 0xCD})

	require.Equal(t, int64(4), m.Scan(0, []byte{0xAB, 0xCD}))
	require.Equal(t, int64(20), m.Scan(5, []byte{0xAB, 0xCD}))
	require.Equal(t, int64(-1), m.Scan(0, []byte{0xDE, 0xAD}))
}

func TestScanSingleByte(t *testing.T) {
	m := New(16)
	m.Write(9, []byte{0x7F})
	require.Equal(t, int64(9), m.Scan(0, []byte{0x7F}))
}

func TestDecodeMemScan(t *testing.T) {
	packed := uint32(5) | uint32(1024)<<16
	size, off := DecodeMemScan(packed)
	require.Equal(t, 5, size)
	require.Equal(t, 1024, off)
}

func TestDecodeAtomicSize(t *testing.T) {
	packed := uint32(8) | uint32(OrderAcquire)<<29
	width, ord := DecodeAtomicSize(packed)
	require.Equal(t, 8, width)
	require.Equal(t, OrderAcquire, ord)
}

func TestDoubleStoreIdempotent(t *testing.T) {
	m := New(8)
	m.AtomicStore64(0, 7, OrderRelease)
	m.AtomicStore64(0, 7, OrderRelease)
	require.Equal(t, uint64(7), m.AtomicLoad64(0, OrderAcquire))
}
