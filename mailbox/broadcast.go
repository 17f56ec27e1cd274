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

import "sync/atomic"

// Broadcast fans one work range out to a fixed pool of W identical workers.
// Dispatch stores the range and bumps a monotonic epoch counter; each
// worker tracks the last epoch it handled and, on seeing a newer one,
// computes its own slice of [start, end) and processes just that slice.
// A shared done counter, initialized to W on every dispatch, lets the last
// worker to finish know it is the one responsible for the completion flag.
type Broadcast struct {
	workers int

	epoch atomic.Uint64
	start atomic.Uint32
	end   atomic.Uint32
	flag  atomic.Uint32
	done  atomic.Int64

	shutdown atomic.Bool
}

// NewBroadcast returns a Broadcast sized for the given worker count.
func NewBroadcast(workers int) *Broadcast {
	return &Broadcast{workers: workers}
}

// Dispatch stores a new work range and flag, resets the done latch to the
// worker count, then publishes the new epoch. The epoch bump is the
// release point: any worker observing the new epoch value is guaranteed to
// see the range and flag stored just before it.
func (b *Broadcast) Dispatch(start, end, flag uint32) {
	b.start.Store(start)
	b.end.Store(end)
	b.flag.Store(flag)
	b.done.Store(int64(b.workers))
	b.epoch.Add(1)
}

// Shutdown sets the shutdown flag; workers re-check it on every poll and
// exit their loop once observed.
func (b *Broadcast) Shutdown() {
	b.shutdown.Store(true)
}

// ShuttingDown reports whether Shutdown has been called.
func (b *Broadcast) ShuttingDown() bool {
	return b.shutdown.Load()
}

// Poll checks whether a new epoch has been dispatched since *lastEpoch (the
// caller's own bookkeeping, updated in place on a hit). On a hit it returns
// this worker's chunk of the dispatched range — an equal ceil((end-start)/W)
// span of the whole range, clamped to end — plus the dispatched flag, with
// ok=true. On a miss (no new epoch), ok is false and the other return
// values are zero.
func (b *Broadcast) Poll(workerIdx int, lastEpoch *uint64) (start, end, flag uint32, ok bool) {
	cur := b.epoch.Load()
	if cur == *lastEpoch {
		return 0, 0, 0, false
	}
	*lastEpoch = cur

	fullStart := b.start.Load()
	fullEnd := b.end.Load()
	flag = b.flag.Load()

	if b.workers <= 0 || fullEnd <= fullStart {
		return fullStart, fullStart, flag, true
	}
	span := (fullEnd - fullStart + uint32(b.workers) - 1) / uint32(b.workers)
	start = fullStart + uint32(workerIdx)*span
	if start > fullEnd {
		start = fullEnd
	}
	end = start + span
	if end > fullEnd {
		end = fullEnd
	}
	return start, end, flag, true
}

// Done decrements the done latch for the current dispatch and reports
// whether this call was the one that brought it to zero. The caller for
// which Done returns true owns setting the completion flag with release
// ordering; every other caller must not touch it.
func (b *Broadcast) Done() (last bool) {
	return b.done.Add(-1) == 0
}
