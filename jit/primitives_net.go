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

package jit

import (
	"github.com/streamforge/actionrt/payload"
	"github.com/streamforge/actionrt/units"
)

// RegisterNetworkPrimitives binds cl_net_connect/cl_net_listen/cl_net_accept/
// cl_net_send/cl_net_recv against net, reusing units.NetworkUnit's
// connection/listener handle tables.
func RegisterNetworkPrimitives(p *Primitives, mem *payload.Memory, net *units.NetworkUnit) {
	dial := func(args []int64) int64 {
		addrOff, addrLen := args[1], args[2]
		addr := readCString(mem, int(addrOff), int(addrLen))
		return int64(net.Connect(addr))
	}
	p.Register("cl_net_connect", 3, dial)
	p.Register("cl_net_listen", 3, dial)

	p.Register("cl_net_accept", 2, func(args []int64) int64 {
		return int64(net.Accept(uint32(args[1])))
	})

	p.Register("cl_net_send", 4, func(args []int64) int64 {
		handle, off, size := uint32(args[1]), args[2], args[3]
		data := mem.Read(int(off), int(size))
		return net.Send(handle, data)
	})

	p.Register("cl_net_recv", 4, func(args []int64) int64 {
		handle, dstOff, size := uint32(args[1]), args[2], args[3]
		buf := net.Recv(handle, int(size))
		if buf == nil {
			return -1
		}
		mem.Write(int(dstOff), buf)
		return int64(len(buf))
	})
}
