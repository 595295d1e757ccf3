// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package benchmark

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureCSV = `IMPLEMENTATION,THREAD_COUNT,MEASUREMENTS,SIZE,MEDIAN_RUNTIME_MUS
std,1,23,2000,60
boost,1,23,2000,45
std,2,23,2000,66
boost,2,23,2000,48
std,1,23,512000,31000
boost,1,23,512000,24500
`

func TestReadCSV_WithHeader(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(fixtureCSV))
	require.NoError(t, err)
	require.Equal(t, 6, table.Len())

	assert.Equal(t, Row{
		Implementation:      "std",
		ThreadCount:         1,
		Measurements:        23,
		Size:                2000,
		MedianRuntimeMicros: 60,
	}, table.Rows[0])
	assert.Equal(t, 24500.0, table.Rows[5].MedianRuntimeMicros)
}

func TestReadCSV_ReorderedAndExtraColumns(t *testing.T) {
	input := "SIZE,NOTE,MEDIAN_RUNTIME_MUS,IMPLEMENTATION,MEASUREMENTS,THREAD_COUNT\n" +
		"8000,warm,120.5,slices,23,4\n"

	table, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, Row{"slices", 4, 23, 8000, 120.5}, table.Rows[0])
}

func TestReadCSV_Headerless(t *testing.T) {
	// Raw producer output: quoted implementation, no header
	input := "\"std\",1,23,2000,60\n\"boost\",1,23,2000,45\n"

	table, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "std", table.Rows[0].Implementation)
	assert.Equal(t, "boost", table.Rows[1].Implementation)
}

func TestReadCSV_MissingColumn(t *testing.T) {
	input := "IMPLEMENTATION,THREAD_COUNT,SIZE\nstd,1,2000\n"

	_, err := ReadCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.Contains(t, err.Error(), "MEASUREMENTS")
	assert.Contains(t, err.Error(), "MEDIAN_RUNTIME_MUS")
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestReadCSV_NonFinite(t *testing.T) {
	tests := []struct {
		name   string
		row    string
		column string
		value  string
	}{
		{"nan runtime", "std,1,23,4000,NaN", ColMedianRuntime, "NaN"},
		{"inf runtime", "std,1,23,4000,+Inf", ColMedianRuntime, "+Inf"},
		{"inf size", "std,1,23,Inf,60", ColSize, "Inf"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := "IMPLEMENTATION,THREAD_COUNT,MEASUREMENTS,SIZE,MEDIAN_RUNTIME_MUS\n" + tc.row + "\n"
			_, err := ReadCSV(strings.NewReader(input))
			var perr *ParseError
			require.True(t, errors.As(err, &perr), "expected ParseError, got %v", err)
			assert.Equal(t, 2, perr.Line)
			assert.Equal(t, tc.column, perr.Column)
			assert.Equal(t, tc.value, perr.Value)
		})
	}
}

func TestReadCSV_BadValue(t *testing.T) {
	input := "IMPLEMENTATION,THREAD_COUNT,MEASUREMENTS,SIZE,MEDIAN_RUNTIME_MUS\n" +
		"std,1,23,2000,60\n" +
		"std,two,23,2000,60\n"

	_, err := ReadCSV(strings.NewReader(input))
	var perr *ParseError
	require.True(t, errors.As(err, &perr), "expected ParseError, got %v", err)
	assert.Equal(t, 3, perr.Line)
	assert.Equal(t, ColThreadCount, perr.Column)
	assert.Equal(t, "two", perr.Value)
}

func TestReadCSV_IntegralFloats(t *testing.T) {
	input := "IMPLEMENTATION,THREAD_COUNT,MEASUREMENTS,SIZE,MEDIAN_RUNTIME_MUS\n" +
		"std,4.0,23.0,2000.0,60.25\n"

	table, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 4, table.Rows[0].ThreadCount)
	assert.Equal(t, 23, table.Rows[0].Measurements)

	_, err = ReadCSV(strings.NewReader(strings.Replace(input, "4.0", "4.5", 1)))
	assert.Error(t, err)
}

func TestTable_WriteCSVRoundTrip(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(fixtureCSV))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf))
	assert.Equal(t, fixtureCSV, buf.String())
}

func TestTable_SaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rel", "results.csv")
	table := NewTable(Row{"sort", 8, 23, 64000, 1234.5})

	require.NoError(t, table.SaveFile(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, table.Rows, loaded.Rows)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTable_Helpers(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(fixtureCSV))
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, table.ThreadCounts())
	assert.Equal(t, []string{"std", "boost"}, table.Implementations())

	maxRuntime, err := table.MaxRuntime()
	require.NoError(t, err)
	assert.Equal(t, 31000.0, maxRuntime)

	small := table.Filter(func(r Row) bool { return r.Size < 10000 })
	assert.Equal(t, 4, small.Len())
	assert.Equal(t, 6, table.Len(), "Filter must not modify the source")

	clone := table.Clone()
	clone.Rows[0].Implementation = "changed"
	clone.Append(Row{Implementation: "extra"})
	assert.Equal(t, "std", table.Rows[0].Implementation)
	assert.Equal(t, 6, table.Len())
}

func TestTable_MaxRuntimeEmpty(t *testing.T) {
	_, err := NewTable().MaxRuntime()
	assert.ErrorIs(t, err, ErrEmptyTable)
}
