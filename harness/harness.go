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

package harness

import (
	"fmt"
	"sync"
	"time"

	"github.com/streamforge/actionrt/action"
	"github.com/streamforge/actionrt/internal/obslog"
	"github.com/streamforge/actionrt/jit"
	"github.com/streamforge/actionrt/mailbox"
	"github.com/streamforge/actionrt/output"
	"github.com/streamforge/actionrt/payload"
	"github.com/streamforge/actionrt/scheduler"
	"github.com/streamforge/actionrt/units"
)

// defaultShutdownGrace bounds how long Run waits for worker goroutines to
// notice a closed mailbox/broadcast before returning regardless (§4.7:
// "wait up to a short grace period").
const defaultShutdownGrace = 200 * time.Millisecond

// Options configures a Harness run beyond what the Algorithm itself carries.
type Options struct {
	// ProcessArgs backs the get_argc/get_argv FFI primitives (§6). Empty by
	// default — embedding applications that need argv must supply it.
	ProcessArgs []string

	// GPUBackend overrides the GPU unit's backend; nil uses the in-process
	// CPU fallback kernel (no real GPU compute binding exists in this
	// module's dependency set — see DESIGN.md).
	GPUBackend units.GPUBackend

	// KVBackend overrides the LMDB unit's backend; nil uses FileKVBackend.
	KVBackend units.KVBackend

	// FFI is the foreign-function table FFICall actions dispatch into.
	// Nil means no Algorithm run through this Options may use FFICall (it
	// silently no-ops, per the null-ID contract).
	FFI scheduler.FFITable

	Log *obslog.Logger

	// Config supplies process-level defaults (default timeout, log level)
	// for anything the Algorithm itself leaves unset. The zero Config is
	// equivalent to harness.DefaultConfig().
	Config Config
}

// Execute validates alg, auto-assigns unit instances, builds the worker pools
// and JIT subsystem, drives the scheduler to completion or timeout, and
// materializes the declared output batches. It is the sole entry point
// every embedding application (CLI or library) calls.
func Execute(alg *action.Algorithm, opts Options) ([]output.Batch, error) {
	log := opts.Log
	cfg := opts.Config
	if cfg.DefaultTimeoutMs == 0 && cfg.LogLevel == 0 {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = cfg.Logger()
	}

	if err := Validate(alg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	AutoAssign(alg)

	mem := payload.NewFrom(append([]byte(nil), alg.Payload...))

	if init, ok := opts.GPUBackend.(units.GPUInitializer); ok {
		if err := init.Init(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGPUInit, err)
		}
	}

	memoryUnit := units.NewMemoryUnit(mem)
	fileUnit := units.NewFileUnit(mem, fileBufferSize(alg.Units.FileBufferSize))
	gpuUnit := units.NewGPUUnit(mem, opts.GPUBackend)
	kvUnit := units.NewLMDBUnit(mem, opts.KVBackend)
	htUnit := units.NewHashTableUnit(mem)
	threads := units.NewThreadRegistry()

	simdUnits := make([]*units.SIMDUnit, alg.Units.SIMDUnits)
	for i := range simdUnits {
		simdUnits[i] = units.NewSIMDUnit(mem, regsPerUnit(alg.Units.RegsPerUnit))
	}
	compUnits := make([]*units.ComputationalUnit, alg.Units.ComputationalUnits)
	for i := range compUnits {
		compUnits[i] = units.NewComputationalUnit(mem, regsPerUnit(alg.Units.ComputationalRegs))
	}
	netUnit := units.NewNetworkUnit(mem)

	// Instance 0 of the File/GPU/Network/Memory pools is the same
	// singleton driving the scheduler's synchronous actions and the JIT
	// primitive table, so a program that both dispatches through
	// AsyncDispatch and calls ClifCall sees one consistent handle table per
	// kind. Instances beyond 0 get their own private state (§5: "GPU/LMDB/
	// network/thread handle tables are private to their owning worker").
	// Every FFI pool instance is a fresh FFIUnit over the same opts.FFI table.
	fileUnits := make([]*units.FileUnit, maxInt(alg.Units.FileUnits, 0))
	for i := range fileUnits {
		if i == 0 {
			fileUnits[i] = fileUnit
		} else {
			fileUnits[i] = units.NewFileUnit(mem, fileBufferSize(alg.Units.FileBufferSize))
		}
	}
	gpuUnits := make([]*units.GPUUnit, maxInt(alg.Units.GPUUnits, 0))
	for i := range gpuUnits {
		if i == 0 {
			gpuUnits[i] = gpuUnit
		} else {
			gpuUnits[i] = units.NewGPUUnit(mem, opts.GPUBackend)
		}
	}
	netUnits := make([]*units.NetworkUnit, maxInt(alg.Units.NetworkUnits, 0))
	for i := range netUnits {
		if i == 0 {
			netUnits[i] = netUnit
		} else {
			netUnits[i] = units.NewNetworkUnit(mem)
		}
	}
	memUnits := make([]*units.MemoryUnit, maxInt(alg.Units.MemoryUnits, 0))
	for i := range memUnits {
		if i == 0 {
			memUnits[i] = memoryUnit
		} else {
			memUnits[i] = units.NewMemoryUnit(mem)
		}
	}
	ffiUnits := make([]*units.FFIUnit, maxInt(alg.Units.FFIUnits, 0))
	for i := range ffiUnits {
		ffiUnits[i] = units.NewFFIUnit(mem, opts.FFI)
	}

	prim := jit.NewPrimitives()
	compilerRef := &jit.CompilerRef{}
	jit.RegisterMemoryPrimitives(prim, mem)
	jit.RegisterFilePrimitives(prim, mem, fileUnit)
	jit.RegisterNetworkPrimitives(prim, mem, netUnit)
	jit.RegisterGPUPrimitives(prim, mem, gpuUnit)
	jit.RegisterLMDBPrimitives(prim, mem, kvUnit)
	jit.RegisterHashTablePrimitives(prim, mem, htUnit)
	jit.RegisterThreadPrimitives(prim, threads, compilerRef)
	jit.RegisterProcessPrimitives(prim, mem, opts.ProcessArgs)

	var compiler *jit.Compiler
	if alg.IRSource != "" {
		c, err := jit.Compile(alg.IRSource, prim)
		if err != nil {
			return nil, fmt.Errorf("harness: %w", err)
		}
		compiler = c
		compilerRef.C = compiler
	}

	var jitBroadcast *mailbox.Broadcast
	if alg.Units.JITUnits > 0 && compiler != nil {
		jitBroadcast = mailbox.NewBroadcast(alg.Units.JITUnits)
	}

	pools := scheduler.Pools{
		SIMD:          make([]*mailbox.Mailbox, len(simdUnits)),
		Computational: make([]*mailbox.Mailbox, len(compUnits)),
		File:          make([]*mailbox.Mailbox, len(fileUnits)),
		Network:       make([]*mailbox.Mailbox, len(netUnits)),
		FFI:           make([]*mailbox.Mailbox, len(ffiUnits)),
		Memory:        make([]*mailbox.Mailbox, len(memUnits)),
		GPU:           make([]*mailbox.Mailbox, len(gpuUnits)),
	}

	var wg sync.WaitGroup
	spawn := func(mb *mailbox.Mailbox, exec units.Executor) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			units.Run(mb, alg.Actions, mem, exec)
		}()
	}
	for i, u := range simdUnits {
		mb := &mailbox.Mailbox{}
		pools.SIMD[i] = mb
		spawn(mb, u)
	}
	for i, u := range compUnits {
		mb := &mailbox.Mailbox{}
		pools.Computational[i] = mb
		spawn(mb, u)
	}
	for i, u := range fileUnits {
		mb := &mailbox.Mailbox{}
		pools.File[i] = mb
		spawn(mb, u)
	}
	for i, u := range netUnits {
		mb := &mailbox.Mailbox{}
		pools.Network[i] = mb
		spawn(mb, u)
	}
	for i, u := range ffiUnits {
		mb := &mailbox.Mailbox{}
		pools.FFI[i] = mb
		spawn(mb, u)
	}
	for i, u := range memUnits {
		mb := &mailbox.Mailbox{}
		pools.Memory[i] = mb
		spawn(mb, u)
	}
	for i, u := range gpuUnits {
		mb := &mailbox.Mailbox{}
		pools.GPU[i] = mb
		spawn(mb, u)
	}

	if jitBroadcast != nil {
		for w := 0; w < alg.Units.JITUnits; w++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				units.RunBroadcast(jitBroadcast, idx, alg.Actions, mem, jit.NewWorker(compiler))
			}(w)
		}
	}

	sched := scheduler.New(scheduler.Config{
		Actions:     alg.Actions,
		Mem:         mem,
		Assignments: alg.Assignments,
		MemoryUnit:  memoryUnit,
		FileUnit:    fileUnit,
		Compiler:    compiler,
		JITPool:     jitBroadcast,
		Pools:       pools,
		FFI:         opts.FFI,
		TimeoutMs:   cfg.ApplyTimeout(alg.TimeoutMs),
		Log:         log,
	})

	runErr := sched.Run()

	for _, pool := range [][]*mailbox.Mailbox{
		pools.SIMD, pools.Computational, pools.File, pools.Network, pools.FFI, pools.Memory, pools.GPU,
	} {
		for _, mb := range pool {
			mb.Shutdown()
		}
	}
	if jitBroadcast != nil {
		jitBroadcast.Shutdown()
	}
	for _, n := range netUnits {
		n.Close()
	}
	if len(netUnits) == 0 {
		netUnit.Close()
	}
	for _, g := range gpuUnits {
		g.Cleanup()
	}
	if len(gpuUnits) == 0 {
		gpuUnit.Cleanup()
	}
	kvUnit.Shutdown()
	threads.Cleanup()

	waitWithGrace(&wg, defaultShutdownGrace)

	if runErr != nil {
		return nil, runErr
	}

	return output.Materialize(mem, alg.Output)
}

func waitWithGrace(wg *sync.WaitGroup, grace time.Duration) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(grace):
	}
}

func fileBufferSize(n int) int {
	if n <= 0 {
		return 64 * 1024
	}
	return n
}

func regsPerUnit(n int) int {
	if n <= 0 {
		return 8
	}
	return n
}

func maxInt(n, floor int) int {
	if n < floor {
		return floor
	}
	return n
}
