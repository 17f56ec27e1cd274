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
	"net"
	"strings"

	"github.com/streamforge/actionrt/action"
	"github.com/streamforge/actionrt/payload"
)

// NetworkUnit holds handle tables of IPv4 TCP connections and listeners.
// Handles start at 1 and increment on every allocation, shared between the
// two tables so a handle is unambiguous regardless of which table it
// indexes into.
type NetworkUnit struct {
	mem         *payload.Memory
	connections map[uint32]net.Conn
	listeners   map[uint32]net.Listener
	nextHandle  uint32
}

// NewNetworkUnit returns an empty NetworkUnit.
func NewNetworkUnit(mem *payload.Memory) *NetworkUnit {
	return &NetworkUnit{
		mem:         mem,
		connections: make(map[uint32]net.Conn),
		listeners:   make(map[uint32]net.Listener),
		nextHandle:  1,
	}
}

// Execute dispatches one network action.
func (u *NetworkUnit) Execute(a action.Action) {
	switch a.Kind {
	case action.KindNetConnect:
		u.connect(a)
	case action.KindNetAccept:
		u.accept(a)
	case action.KindNetSend:
		u.send(a)
	case action.KindNetRecv:
		u.recv(a)
	}
}

// Close shuts down every open connection and listener, used on unit
// shutdown so no file descriptor outlives the Algorithm execution.
func (u *NetworkUnit) Close() {
	for _, c := range u.connections {
		_ = c.Close()
	}
	for _, l := range u.listeners {
		_ = l.Close()
	}
}

func isListenAddr(addr string) bool {
	return strings.HasPrefix(addr, ":") || strings.Contains(addr, "0.0.0.0:")
}

func (u *NetworkUnit) connect(a action.Action) {
	maxLen := int(a.Offset)
	if maxLen == 0 {
		maxLen = 256
	}
	addr := readCString(u.mem, int(a.Src), maxLen)
	handle := u.Connect(addr)
	if handle != 0 {
		u.writeHandle(int(a.Dst), handle)
	}
}

func (u *NetworkUnit) accept(a action.Action) {
	handle := u.Accept(u.readHandle(int(a.Src)))
	if handle != 0 {
		u.writeHandle(int(a.Dst), handle)
	}
}

func (u *NetworkUnit) send(a action.Action) {
	handle := u.readHandle(int(a.Dst))
	data := u.mem.Read(int(a.Src), int(a.Size))
	u.Send(handle, data)
}

func (u *NetworkUnit) recv(a action.Action) {
	handle := u.readHandle(int(a.Src))
	buf := u.Recv(handle, int(a.Size))
	if buf != nil {
		u.mem.Write(int(a.Dst), buf)
	}
}

// Connect opens a listener (addr starts with ':' or contains "0.0.0.0:") or
// an outgoing TCP4 connection, returning the new handle or 0 on failure.
// Shared by NetConnect and the cl_net_connect/cl_net_listen primitives.
func (u *NetworkUnit) Connect(addr string) uint32 {
	if isListenAddr(addr) {
		ln, err := net.Listen("tcp4", addr)
		if err != nil {
			return 0
		}
		handle := u.nextHandle
		u.nextHandle++
		u.listeners[handle] = ln
		return handle
	}
	conn, err := net.Dial("tcp4", addr)
	if err != nil {
		return 0
	}
	handle := u.nextHandle
	u.nextHandle++
	u.connections[handle] = conn
	return handle
}

// Accept blocks on the listener referenced by handle, returning a new
// connection handle or 0 on failure/invalid handle.
func (u *NetworkUnit) Accept(handle uint32) uint32 {
	ln, ok := u.listeners[handle]
	if !ok {
		return 0
	}
	conn, err := ln.Accept()
	if err != nil {
		return 0
	}
	connHandle := u.nextHandle
	u.nextHandle++
	u.connections[connHandle] = conn
	return connHandle
}

// Send writes data to the stream referenced by handle, returning the byte
// count written or -1 for an invalid handle/write error.
func (u *NetworkUnit) Send(handle uint32, data []byte) int64 {
	conn, ok := u.connections[handle]
	if !ok {
		return -1
	}
	n, err := conn.Write(data)
	if err != nil && n == 0 {
		return -1
	}
	return int64(n)
}

// Recv reads up to size bytes from the stream referenced by handle, or nil
// for an invalid handle/read error.
func (u *NetworkUnit) Recv(handle uint32, size int) []byte {
	conn, ok := u.connections[handle]
	if !ok {
		return nil
	}
	buf := make([]byte, size)
	n, err := conn.Read(buf)
	if err != nil && n == 0 {
		return nil
	}
	return buf[:n]
}

func (u *NetworkUnit) writeHandle(off int, handle uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], handle)
	u.mem.Write(off, buf[:])
}

func (u *NetworkUnit) readHandle(off int) uint32 {
	return binary.LittleEndian.Uint32(u.mem.Read(off, 4))
}
