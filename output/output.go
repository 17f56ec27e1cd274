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

// Package output implements the at-end pull model (§4.6): after a
// successful run, each declared batch's row count gates whether it appears
// at all, and its columns are read straight out of Payload Memory as either
// contiguous scalars or a run of NUL-terminated strings.
package output

import (
	"fmt"
	"math"

	"github.com/streamforge/actionrt/action"
	"github.com/streamforge/actionrt/payload"
)

// Batch is one materialized record batch: parallel columns, all of length
// RowCount.
type Batch struct {
	Columns []Column
}

// Column is one materialized, named, typed column. Exactly one of I64, F64,
// Utf8 is populated, matching Type.
type Column struct {
	Name string
	Type action.ColumnType
	I64  []int64
	F64  []float64
	Utf8 []string
}

// Materialize reads every declared batch out of mem per schema, eliding any
// batch whose row count reads as 0.
func Materialize(mem *payload.Memory, schema action.OutputSchema) ([]Batch, error) {
	var batches []Batch
	for _, b := range schema.Batches {
		rowCount := mem.ReadU64(int(b.RowCountOffset))
		if rowCount == 0 {
			continue
		}

		batch := Batch{Columns: make([]Column, len(b.Columns))}
		for i, col := range b.Columns {
			materialized, err := materializeColumn(mem, col, rowCount)
			if err != nil {
				return nil, fmt.Errorf("output: batch column %q: %w", col.Name, err)
			}
			batch.Columns[i] = materialized
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

func materializeColumn(mem *payload.Memory, col action.Column, rowCount uint64) (Column, error) {
	out := Column{Name: col.Name, Type: col.Type}
	switch col.Type {
	case action.ColumnI64:
		vals := make([]int64, rowCount)
		for i := range vals {
			off := int(col.DataOffset) + i*8
			vals[i] = int64(mem.ReadU64(off))
		}
		out.I64 = vals

	case action.ColumnF64:
		vals := make([]float64, rowCount)
		for i := range vals {
			off := int(col.DataOffset) + i*8
			vals[i] = math.Float64frombits(mem.ReadU64(off))
		}
		out.F64 = vals

	case action.ColumnUtf8:
		totalLen := mem.ReadU64(int(col.LenOffset))
		region := mem.Read(int(col.DataOffset), int(totalLen))
		strs, err := splitNulTerminated(region, int(rowCount))
		if err != nil {
			return out, err
		}
		out.Utf8 = strs

	default:
		return out, fmt.Errorf("unknown column type %v", col.Type)
	}
	return out, nil
}

func splitNulTerminated(region []byte, rowCount int) ([]string, error) {
	strs := make([]string, 0, rowCount)
	start := 0
	for i, b := range region {
		if b == 0 {
			strs = append(strs, string(region[start:i]))
			start = i + 1
			if len(strs) == rowCount {
				break
			}
		}
	}
	if len(strs) != rowCount {
		return nil, fmt.Errorf("expected %d NUL-terminated strings, found %d", rowCount, len(strs))
	}
	return strs, nil
}
