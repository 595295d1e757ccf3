// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package regime

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/sortbench/internal/benchmark"
)

// fixture uses L2 = 256KB: values_per_l2 = 64000, cutoff = 192000.
func fixture() *benchmark.Table {
	return benchmark.NewTable(
		benchmark.Row{Implementation: "std", ThreadCount: 1, Measurements: 23, Size: 2000, MedianRuntimeMicros: 50},
		benchmark.Row{Implementation: "boost", ThreadCount: 1, Measurements: 23, Size: 2000, MedianRuntimeMicros: 40},
		benchmark.Row{Implementation: "std", ThreadCount: 4, Measurements: 23, Size: 192000, MedianRuntimeMicros: 9000},
		benchmark.Row{Implementation: "std", ThreadCount: 2, Measurements: 23, Size: 512000, MedianRuntimeMicros: 30000},
		benchmark.Row{Implementation: "boost", ThreadCount: 2, Measurements: 23, Size: 1000000, MedianRuntimeMicros: 52000},
		benchmark.Row{Implementation: "std", ThreadCount: 1, Measurements: 23, Size: 16000, MedianRuntimeMicros: 700},
	)
}

func TestValuesPerL2(t *testing.T) {
	tests := []struct {
		l2KB int
		want float64
	}{
		{256, 64000},
		{1280, 320000},
		{1, 250},
		{3, 750},
		{0, 0},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ValuesPerL2(tc.l2KB), "l2KB=%d", tc.l2KB)
	}
}

func TestSanitizeBrand(t *testing.T) {
	tests := []struct {
		brand string
		want  string
	}{
		{"Intel(R) Core(TM) i7-8700 CPU @ 3.20GHz", "IntelRCoreTMi7-8700CPU3_20GHz"},
		{"AMD Ryzen 9 5950X 16-Core Processor", "AMDRyzen95950X16-CoreProcessor"},
		{"Apple M2", "AppleM2"},
		{"Intel® Core™ i5", "Intel®CoreTMi5"},
		{"Ｘｅｏｎ（Ｒ） ２．４", "XeonR2_4"},
		{"", ""},
	}
	for _, tc := range tests {
		t.Run(tc.brand, func(t *testing.T) {
			got := SanitizeBrand(tc.brand)
			assert.Equal(t, tc.want, got)
			assert.False(t, strings.ContainsAny(got, " @()."), "sanitized brand %q has forbidden characters", got)
		})
	}
}

func TestParse(t *testing.T) {
	for _, r := range Regimes {
		got, err := Parse(strings.ToUpper(r.String()))
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
	_, err := Parse("medium")
	assert.Error(t, err)
}

func TestOptions_Cutoff(t *testing.T) {
	assert.Equal(t, 192000.0, Options{L2KB: 256}.Cutoff())
	assert.Equal(t, 128000.0, Options{L2KB: 256, CutoffFactor: 2}.Cutoff())
}

func TestFilter_StrictBounds(t *testing.T) {
	table := fixture()
	cutoff := Options{L2KB: 256}.Cutoff()

	small := Filter(table, Small, cutoff)
	for _, row := range small.Rows {
		assert.Less(t, row.Size, cutoff)
	}
	assert.Equal(t, 3, small.Len())

	large := Filter(table, Large, cutoff)
	for _, row := range large.Rows {
		assert.Greater(t, row.Size, cutoff)
	}
	assert.Equal(t, 2, large.Len())

	// The row sitting exactly on the cutoff belongs to neither
	all := Filter(table, All, cutoff)
	assert.Equal(t, table.Rows, all.Rows)
	assert.Equal(t, table.Len(), small.Len()+large.Len()+1)
}

func TestReferenceRows(t *testing.T) {
	rows := ReferenceRows([]int{1, 8}, 8000, 64000, 1234)
	require.Len(t, rows, 8)

	assert.Equal(t, benchmark.Row{Implementation: "L1", ThreadCount: 1, Measurements: 1, Size: 8000, MedianRuntimeMicros: 0}, rows[0])
	assert.Equal(t, benchmark.Row{Implementation: "L1", ThreadCount: 1, Measurements: 1, Size: 8000, MedianRuntimeMicros: 1234}, rows[1])
	assert.Equal(t, benchmark.Row{Implementation: "L2", ThreadCount: 1, Measurements: 1, Size: 64000, MedianRuntimeMicros: 0}, rows[2])
	assert.Equal(t, benchmark.Row{Implementation: "L2", ThreadCount: 1, Measurements: 1, Size: 64000, MedianRuntimeMicros: 1234}, rows[3])
	assert.Equal(t, 8, rows[4].ThreadCount)
}

func TestBuild_ReferenceRowsPerRegime(t *testing.T) {
	table := fixture()
	frames, err := Build(table, Options{L2KB: 256})
	require.NoError(t, err)
	require.Len(t, frames, 3)

	wantMax := map[Regime]float64{Small: 700, Large: 52000, All: 52000}
	wantMeasured := map[Regime]int{Small: 3, Large: 2, All: 6}

	for i, f := range frames {
		assert.Equal(t, Regimes[i], f.Regime)
		assert.Equal(t, 64000.0, f.ValuesPerL2)
		assert.Equal(t, 192000.0, f.Cutoff)
		assert.Equal(t, wantMax[f.Regime], f.MaxRuntime, f.Regime.String())
		assert.Equal(t, wantMeasured[f.Regime], f.Measured, f.Regime.String())

		// Thread counts come from the unfiltered table, even for regimes
		// that contain none of a thread count's rows
		assert.Equal(t, []int{1, 4, 2}, f.ThreadCounts)

		refs := f.Table.Rows[f.Measured:]
		require.Len(t, refs, 4*3, "one L1 pair and one L2 pair per thread count, no carry-over")

		perThread := make(map[int]map[string]int)
		for _, row := range refs {
			if perThread[row.ThreadCount] == nil {
				perThread[row.ThreadCount] = make(map[string]int)
			}
			perThread[row.ThreadCount][row.Implementation]++

			switch row.Implementation {
			case LabelL1:
				assert.Equal(t, 8000.0, row.Size)
			case LabelL2:
				assert.Equal(t, 64000.0, row.Size)
			default:
				t.Fatalf("unexpected reference label %q", row.Implementation)
			}
			assert.Contains(t, []float64{0, f.MaxRuntime}, row.MedianRuntimeMicros)
		}
		for _, tc := range []int{1, 2, 4} {
			assert.Equal(t, map[string]int{"L1": 2, "L2": 2}, perThread[tc])
		}

		for _, row := range f.MeasuredRows() {
			assert.NotContains(t, []string{LabelL1, LabelL2}, row.Implementation)
		}
	}

	assert.Equal(t, 6, table.Len(), "Build must not modify its input")
}

func TestBuild_SelectedRegimes(t *testing.T) {
	frames, err := Build(fixture(), Options{L2KB: 256}, All)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, All, frames[0].Regime)
}

func TestBuild_EmptyRegime(t *testing.T) {
	// Everything is small with a huge L2
	_, err := Build(fixture(), Options{L2KB: 1 << 20})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyRegime))
	assert.Contains(t, err.Error(), "large")
}

func TestBuildFrame_InvalidL2(t *testing.T) {
	_, err := BuildFrame(fixture(), All, Options{})
	assert.Error(t, err)
}

func TestBuildFrame_CustomL1(t *testing.T) {
	f, err := BuildFrame(fixture(), All, Options{L2KB: 256, L1Values: 12000})
	require.NoError(t, err)
	assert.Equal(t, 12000.0, f.Table.Rows[f.Measured].Size)
}
