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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	cases := []struct{ start, end, flag uint32 }{
		{0, 0, 0},
		{1, 2, 3},
		{uint32(MaxStart), uint32(MaxEnd), uint32(MaxFlag)},
		{12345, 54321, 999},
	}
	for _, c := range cases {
		word := Pack(c.start, c.end, c.flag)
		start, end, flag := Unpack(word)
		require.Equal(t, c.start, start)
		require.Equal(t, c.end, end)
		require.Equal(t, c.flag, flag)
	}
}

func TestMailboxPostPollRoundTrip(t *testing.T) {
	var mb Mailbox

	result, _, _, _ := mb.Poll()
	require.Equal(t, Empty, result)

	mb.Post(10, 20, 5)
	result, start, end, flag := mb.Poll()
	require.Equal(t, Work, result)
	require.Equal(t, uint32(10), start)
	require.Equal(t, uint32(20), end)
	require.Equal(t, uint32(5), flag)

	result, _, _, _ = mb.Poll()
	require.Equal(t, Empty, result)
}

func TestMailboxShutdownIsSticky(t *testing.T) {
	var mb Mailbox
	mb.Shutdown()
	result, _, _, _ := mb.Poll()
	require.Equal(t, Closed, result)
	result, _, _, _ = mb.Poll()
	require.Equal(t, Closed, result)
}

func TestBackoffResetReturnsToSpinPhase(t *testing.T) {
	b := NewBackoff()
	for i := 0; i < 150; i++ {
		b.Step()
	}
	require.Greater(t, b.iter, 100)
	b.Reset()
	require.Equal(t, 0, b.iter)
}
