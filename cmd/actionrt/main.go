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

// Command actionrt runs the bundled example Algorithms through the
// runtime and prints their materialized output batches. It exists for
// manual smoke-testing of the engine; embedding applications that build
// their own Algorithm values should link this module directly instead of
// shelling out to this binary.
package main

import (
	"fmt"
	"os"

	"github.com/joeycumines/logiface"
	"github.com/spf13/cobra"

	"github.com/streamforge/actionrt"
	"github.com/streamforge/actionrt/action"
	"github.com/streamforge/actionrt/examples/compress"
	"github.com/streamforge/actionrt/examples/csvagg"
	"github.com/streamforge/actionrt/examples/fft"
	"github.com/streamforge/actionrt/examples/lean4eval"
	"github.com/streamforge/actionrt/examples/sat"
	"github.com/streamforge/actionrt/harness"
	"github.com/streamforge/actionrt/output"
)

var (
	// Version is set at build time via -ldflags.
	Version = "dev"

	timeoutMs uint64
	logLevel  string

	rootCmd = &cobra.Command{
		Use:     "actionrt",
		Short:   "Drive the heterogeneous action-stream runtime",
		Long:    "actionrt runs a program built from the closed set of action kinds this runtime interprets, materializing its declared output batches.",
		Version: Version,
	}
)

func init() {
	rootCmd.PersistentFlags().Uint64Var(&timeoutMs, "timeout-ms", 0, "override the default run deadline (0 keeps the harness.FromEnv default)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "trace|debug|info|notice|warn|error|crit (default: warn)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(versionCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the bundled example fixtures",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range exampleNames() {
			fmt.Println(name)
		}
	},
}

var runCmd = &cobra.Command{
	Use:       "run <example>",
	Short:     "Run one of the bundled example fixtures and print its output batches",
	Args:      cobra.ExactArgs(1),
	ValidArgs: exampleNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		alg, err := buildExample(args[0])
		if err != nil {
			return err
		}

		cfg := harness.FromEnv()
		if timeoutMs > 0 {
			cfg.DefaultTimeoutMs = timeoutMs
		}
		if lvl, ok := parseLogLevel(logLevel); ok {
			cfg.LogLevel = lvl
		}

		batches, err := actionrt.Execute(alg, harness.Options{Config: cfg})
		if err != nil {
			return fmt.Errorf("actionrt: %w", err)
		}
		printBatches(batches)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("actionrt version %s\n", Version)
	},
}

func exampleNames() []string {
	return []string{"csvagg", "sat", "fft", "compress", "lean4eval"}
}

func buildExample(name string) (*action.Algorithm, error) {
	switch name {
	case "csvagg":
		return csvagg.Build([]int64{10, 20, 30, 40, 15}), nil
	case "sat":
		return sat.Build(2, [][]sat.Literal{
			{{Var: 0}, {Var: 1}},
			{{Var: 0, Neg: true}, {Var: 1, Neg: true}},
		}), nil
	case "fft":
		return fft.Build([4]int32{10, 3, 4, 1}), nil
	case "compress":
		return compress.Build([]byte("aaabbcaa")), nil
	case "lean4eval":
		return lean4eval.Build([]lean4eval.Expr{
			lean4eval.Sqrt(lean4eval.Literal(2)),
			lean4eval.Variable(0),
		}, []float64{3.5}, 12), nil
	default:
		return nil, fmt.Errorf("unknown example %q (see `actionrt list`)", name)
	}
}

func parseLogLevel(s string) (logiface.Level, bool) {
	switch s {
	case "":
		return 0, false
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

func printBatches(batches []output.Batch) {
	for i, b := range batches {
		fmt.Printf("batch %d:\n", i)
		for _, col := range b.Columns {
			fmt.Printf("  %s: %v\n", col.Name, columnValues(col))
		}
	}
}

func columnValues(col output.Column) any {
	switch col.Type {
	case action.ColumnI64:
		return col.I64
	case action.ColumnF64:
		return col.F64
	case action.ColumnUtf8:
		return col.Utf8
	default:
		return nil
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
