// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package benchmark

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/jeranaias/sortbench/internal/util"
)

// Column names of the results CSV.
const (
	ColImplementation = "IMPLEMENTATION"
	ColThreadCount    = "THREAD_COUNT"
	ColMeasurements   = "MEASUREMENTS"
	ColSize           = "SIZE"
	ColMedianRuntime  = "MEDIAN_RUNTIME_MUS"
)

// Columns is the canonical column order.
var Columns = []string{ColImplementation, ColThreadCount, ColMeasurements, ColSize, ColMedianRuntime}

var (
	// ErrMissingColumn is returned when a results header lacks a required column.
	ErrMissingColumn = errors.New("missing column")
	// ErrEmptyTable is returned for empty input and by operations that need at least one row.
	ErrEmptyTable = errors.New("table has no rows")
)

// ParseError describes a malformed value in a results file.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: column %s: invalid value %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// =============================================================================
// ROW AND TABLE
// =============================================================================

// Row is one benchmark result.
type Row struct {
	Implementation      string  `json:"implementation"`
	ThreadCount         int     `json:"thread_count"`
	Measurements        int     `json:"measurements"`
	Size                float64 `json:"size"`
	MedianRuntimeMicros float64 `json:"median_runtime_mus"`
}

// Table is an ordered list of rows.
type Table struct {
	Rows []Row
}

// NewTable creates a table holding rows.
func NewTable(rows ...Row) *Table {
	return &Table{Rows: rows}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Clone returns a copy that shares nothing with t.
func (t *Table) Clone() *Table {
	rows := make([]Row, len(t.Rows))
	copy(rows, t.Rows)
	return &Table{Rows: rows}
}

// Filter returns a new table with the rows for which keep returns true.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := &Table{Rows: make([]Row, 0, len(t.Rows))}
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Append adds rows to the end of the table.
func (t *Table) Append(rows ...Row) {
	t.Rows = append(t.Rows, rows...)
}

// ThreadCounts returns the distinct thread counts in order of first appearance.
func (t *Table) ThreadCounts() []int {
	seen := make(map[int]bool)
	var out []int
	for _, r := range t.Rows {
		if !seen[r.ThreadCount] {
			seen[r.ThreadCount] = true
			out = append(out, r.ThreadCount)
		}
	}
	return out
}

// Implementations returns the distinct implementation labels in order of
// first appearance.
func (t *Table) Implementations() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range t.Rows {
		if !seen[r.Implementation] {
			seen[r.Implementation] = true
			out = append(out, r.Implementation)
		}
	}
	return out
}

// MaxRuntime returns the largest median runtime in the table.
func (t *Table) MaxRuntime() (float64, error) {
	if len(t.Rows) == 0 {
		return 0, ErrEmptyTable
	}
	maxRuntime := math.Inf(-1)
	for _, r := range t.Rows {
		maxRuntime = max(maxRuntime, r.MedianRuntimeMicros)
	}
	return maxRuntime, nil
}

// =============================================================================
// CSV LOAD
// =============================================================================

// LoadFile reads a results table from a CSV file.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results: %w", err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ReadCSV reads a results table. Columns are located by header name and
// extra columns are ignored. Input without a header is accepted when it
// has exactly the canonical five columns.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	first, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty input", ErrEmptyTable)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	t := &Table{}
	var index map[string]int

	if looksLikeHeader(first) {
		index, err = headerIndex(first)
		if err != nil {
			return nil, err
		}
	} else {
		if len(first) != len(Columns) {
			return nil, fmt.Errorf("%w: no header and %d fields, want %d", ErrMissingColumn, len(first), len(Columns))
		}
		index = canonicalIndex()
		row, err := parseRow(first, index, 1)
		if err != nil {
			return nil, err
		}
		t.Rows = append(t.Rows, row)
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read results: %w", err)
		}
		line, _ := cr.FieldPos(0)
		row, err := parseRow(record, index, line)
		if err != nil {
			return nil, err
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

func looksLikeHeader(record []string) bool {
	for _, field := range record {
		name := strings.TrimSpace(field)
		for _, col := range Columns {
			if name == col {
				return true
			}
		}
	}
	return false
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(Columns))
	for i, field := range header {
		index[strings.TrimSpace(field)] = i
	}

	var missing []string
	for _, col := range Columns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return index, nil
}

func canonicalIndex() map[string]int {
	index := make(map[string]int, len(Columns))
	for i, col := range Columns {
		index[col] = i
	}
	return index
}

func parseRow(record []string, index map[string]int, line int) (Row, error) {
	field := func(col string) (string, error) {
		i := index[col]
		if i >= len(record) {
			return "", &ParseError{Line: line, Column: col, Err: errors.New("field missing")}
		}
		return strings.TrimSpace(record[i]), nil
	}

	var row Row
	var err error
	var v string

	if row.Implementation, err = field(ColImplementation); err != nil {
		return row, err
	}
	if v, err = field(ColThreadCount); err != nil {
		return row, err
	}
	if row.ThreadCount, err = parseInt(v); err != nil {
		return row, &ParseError{Line: line, Column: ColThreadCount, Value: v, Err: err}
	}
	if v, err = field(ColMeasurements); err != nil {
		return row, err
	}
	if row.Measurements, err = parseInt(v); err != nil {
		return row, &ParseError{Line: line, Column: ColMeasurements, Value: v, Err: err}
	}
	if v, err = field(ColSize); err != nil {
		return row, err
	}
	if row.Size, err = parseFloat(v); err != nil {
		return row, &ParseError{Line: line, Column: ColSize, Value: v, Err: err}
	}
	if v, err = field(ColMedianRuntime); err != nil {
		return row, err
	}
	if row.MedianRuntimeMicros, err = parseFloat(v); err != nil {
		return row, &ParseError{Line: line, Column: ColMedianRuntime, Value: v, Err: err}
	}
	return row, nil
}

// parseFloat rejects NaN and infinities.
func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("value is not finite")
	}
	return f, nil
}

// parseInt accepts plain integers and integral floats ("4.0").
func parseInt(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer")
	}
	return int(f), nil
}

// =============================================================================
// CSV SAVE
// =============================================================================

// WriteCSV writes the table with a header row.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range t.Rows {
		record := []string{
			r.Implementation,
			strconv.Itoa(r.ThreadCount),
			strconv.Itoa(r.Measurements),
			util.FormatNumber(r.Size),
			util.FormatNumber(r.MedianRuntimeMicros),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveFile writes the table to path atomically.
func (t *Table) SaveFile(path string) error {
	if err := util.AtomicWriteFunc(path, 0644, t.WriteCSV); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}
	return nil
}
