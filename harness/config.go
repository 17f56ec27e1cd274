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
	"os"
	"strconv"

	"github.com/joeycumines/logiface"

	"github.com/streamforge/actionrt/internal/obslog"
)

// Config holds process-level tuning that sits above any single Algorithm:
// defaults an Algorithm can leave unset, plus the log level the embedding
// process wants. It is not the producer's opaque (Config, Algorithm) wire
// tuple (§6) — that pairing is an external, out-of-scope serialization
// concern; Config is this module's own ambient settings object, populated
// the way the teacher's hwygen reads its HWY_NO_SIMD/HWY_ENABLE_F16
// environment toggles.
type Config struct {
	// DefaultTimeoutMs is used for any Algorithm whose own TimeoutMs is nil.
	DefaultTimeoutMs uint64
	// DefaultWorkerThreads/DefaultBlockingThreads mirror the Algorithm
	// fields of the same intent for programs that leave them unset.
	DefaultWorkerThreads   int
	DefaultBlockingThreads int
	// LogLevel is applied to the Logger Execute constructs when Options.Log
	// is nil.
	LogLevel logiface.Level
}

// Environment variable names FromEnv reads, following the teacher's
// ACTIONRT_-prefixed convention (ground: go-highway's HWY_NO_SIMD /
// HWY_ENABLE_F16 toggles).
const (
	envTimeoutMs       = "ACTIONRT_DEFAULT_TIMEOUT_MS"
	envWorkerThreads   = "ACTIONRT_WORKER_THREADS"
	envBlockingThreads = "ACTIONRT_BLOCKING_THREADS"
	envLogLevel        = "ACTIONRT_LOG_LEVEL"
)

// DefaultConfig returns the baseline Config every Algorithm runs under
// absent an explicit override: a 30s timeout, no extra worker/blocking
// threads beyond what the Algorithm's own UnitSpec demands, and Warning-
// level logging (§7: soft failures log at warn).
func DefaultConfig() Config {
	return Config{
		DefaultTimeoutMs: 30_000,
		LogLevel:         logiface.LevelWarning,
	}
}

// FromEnv starts from DefaultConfig and overrides any field whose
// corresponding ACTIONRT_* environment variable is set and parses cleanly;
// an unparsable value is ignored and the default is kept (matching the
// teacher's env-toggle tolerance for garbage input).
func FromEnv() Config {
	cfg := DefaultConfig()
	if v, ok := os.LookupEnv(envTimeoutMs); ok {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.DefaultTimeoutMs = n
		}
	}
	if v, ok := os.LookupEnv(envWorkerThreads); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DefaultWorkerThreads = n
		}
	}
	if v, ok := os.LookupEnv(envBlockingThreads); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DefaultBlockingThreads = n
		}
	}
	if v, ok := os.LookupEnv(envLogLevel); ok {
		if lvl, ok := parseLevel(v); ok {
			cfg.LogLevel = lvl
		}
	}
	return cfg
}

func parseLevel(s string) (logiface.Level, bool) {
	switch s {
	case "trace":
		return logiface.LevelTrace, true
	case "debug":
		return logiface.LevelDebug, true
	case "info":
		return logiface.LevelInformational, true
	case "notice":
		return logiface.LevelNotice, true
	case "warn", "warning":
		return logiface.LevelWarning, true
	case "error":
		return logiface.LevelError, true
	case "crit", "critical":
		return logiface.LevelCritical, true
	default:
		return 0, false
	}
}

// Logger builds the obslog.Logger this Config describes, writing to
// os.Stderr.
func (c Config) Logger() *obslog.Logger {
	return obslog.New(os.Stderr, c.LogLevel)
}

// ApplyTimeout returns the Algorithm's own timeout when algTimeoutMs is
// non-nil, and c.DefaultTimeoutMs otherwise. It never overrides a timeout
// the Algorithm already set.
func (c Config) ApplyTimeout(algTimeoutMs *uint64) uint64 {
	if algTimeoutMs != nil {
		return *algTimeoutMs
	}
	return c.DefaultTimeoutMs
}
