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

package mailbox

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBroadcastPollChunksEvenly(t *testing.T) {
	b := NewBroadcast(4)
	b.Dispatch(0, 256, 7)

	var epochs [4]uint64
	var total uint32
	for i := 0; i < 4; i++ {
		start, end, flag, ok := b.Poll(i, &epochs[i])
		require.True(t, ok)
		require.Equal(t, uint32(7), flag)
		total += end - start
	}
	require.Equal(t, uint32(256), total)
}

func TestBroadcastPollMissWithoutNewEpoch(t *testing.T) {
	b := NewBroadcast(2)
	b.Dispatch(0, 10, 1)

	var epoch uint64
	_, _, _, ok := b.Poll(0, &epoch)
	require.True(t, ok)

	_, _, _, ok = b.Poll(0, &epoch)
	require.False(t, ok, "same worker polling again before the next dispatch should see no new epoch")
}

func TestBroadcastDoneLatchSingleWinner(t *testing.T) {
	b := NewBroadcast(8)
	b.Dispatch(0, 64, 0)

	var wg sync.WaitGroup
	winners := make(chan int, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if b.Done() {
				winners <- i
			}
		}(i)
	}
	wg.Wait()
	close(winners)

	count := 0
	for range winners {
		count++
	}
	require.Equal(t, 1, count, "exactly one worker should observe the latch reach zero")
}

func TestBroadcastShutdownFlagObserved(t *testing.T) {
	b := NewBroadcast(1)
	require.False(t, b.ShuttingDown())
	b.Shutdown()
	require.True(t, b.ShuttingDown())
}

func TestBroadcastDispatchAdvancesEpochForAllWorkers(t *testing.T) {
	b := NewBroadcast(3)
	var epochs [3]uint64
	for i := range epochs {
		_, _, _, ok := b.Poll(i, &epochs[i])
		require.False(t, ok)
	}

	b.Dispatch(5, 20, 2)
	for i := range epochs {
		start, end, flag, ok := b.Poll(i, &epochs[i])
		require.True(t, ok)
		require.Equal(t, uint32(2), flag)
		require.True(t, start >= 5 && end <= 20)
	}
}
