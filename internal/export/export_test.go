// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/sortbench/internal/benchmark"
	"github.com/jeranaias/sortbench/internal/regime"
)

const testBrand = "Intel(R) Core(TM) i7-8700 CPU @ 3.20GHz"

func testTable() *benchmark.Table {
	return benchmark.NewTable(
		benchmark.Row{Implementation: "std", ThreadCount: 2, Measurements: 23, Size: 2000, MedianRuntimeMicros: 60},
		benchmark.Row{Implementation: "boost", ThreadCount: 2, Measurements: 23, Size: 2000, MedianRuntimeMicros: 45},
		benchmark.Row{Implementation: "std", ThreadCount: 1, Measurements: 23, Size: 2000, MedianRuntimeMicros: 55},
		benchmark.Row{Implementation: "std", ThreadCount: 1, Measurements: 23, Size: 2000, MedianRuntimeMicros: 65},
		benchmark.Row{Implementation: "std", ThreadCount: 1, Measurements: 23, Size: 16000, MedianRuntimeMicros: 700},
		benchmark.Row{Implementation: "boost", ThreadCount: 1, Measurements: 23, Size: 512000, MedianRuntimeMicros: 24500},
		benchmark.Row{Implementation: "std", ThreadCount: 2, Measurements: 23, Size: 1000000, MedianRuntimeMicros: 52000},
	)
}

func testFrames(t *testing.T) []*regime.Frame {
	t.Helper()
	frames, err := regime.Build(testTable(), regime.Options{L2KB: 256})
	require.NoError(t, err)
	return frames
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "IntelRCoreTMi7-8700CPU3_20GHz__plot_small.pdf", FileName(testBrand, regime.Small, FormatPDF))
	assert.Equal(t, "IntelRCoreTMi7-8700CPU3_20GHz__plot_large.pdf", FileName(testBrand, regime.Large, FormatPDF))
	assert.Equal(t, "IntelRCoreTMi7-8700CPU3_20GHz__plot_all.svg", FileName(testBrand, regime.All, FormatSVG))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatPDF, false},
		{"PDF", FormatPDF, false},
		{".svg", FormatSVG, false},
		{"png", FormatPNG, false},
		{"eps", "", true},
	}
	for _, tc := range tests {
		got, err := ParseFormat(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestRenderFrame_Formats(t *testing.T) {
	frame := testFrames(t)[2]

	tests := []struct {
		format Format
		magic  []byte
	}{
		{FormatPDF, []byte("%PDF")},
		{FormatSVG, []byte("<?xml")},
		{FormatPNG, []byte("\x89PNG")},
	}
	for _, tc := range tests {
		t.Run(string(tc.format), func(t *testing.T) {
			var buf bytes.Buffer
			opts := DefaultPlotOptions()
			opts.Format = tc.format
			require.NoError(t, RenderFrame(&buf, frame, opts))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), tc.magic), "unexpected header %q", buf.Bytes()[:min(8, buf.Len())])
		})
	}
}

func TestRenderFrame_Empty(t *testing.T) {
	var buf bytes.Buffer
	err := RenderFrame(&buf, &regime.Frame{Table: benchmark.NewTable()}, DefaultPlotOptions())
	assert.Error(t, err)
}

func TestSaveFrame_WritesEveryRegime(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultPlotOptions()
	opts.OutputDir = dir

	var names []string
	for _, f := range testFrames(t) {
		path, err := SaveFrame(f, testBrand, opts)
		require.NoError(t, err)
		assert.Equal(t, dir, filepath.Dir(path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
		names = append(names, filepath.Base(path))
	}

	assert.Equal(t, []string{
		"IntelRCoreTMi7-8700CPU3_20GHz__plot_small.pdf",
		"IntelRCoreTMi7-8700CPU3_20GHz__plot_large.pdf",
		"IntelRCoreTMi7-8700CPU3_20GHz__plot_all.pdf",
	}, names)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "no temp files left behind")
}

func TestFacetSeries(t *testing.T) {
	frame := testFrames(t)[2]
	labels := hueOrder(frame.Table)
	assert.Equal(t, []string{"std", "boost", "L1", "L2"}, labels)

	got := facetSeries(frame.Table.Rows, 1, labels)
	require.Len(t, got, 4)

	// Duplicate sizes are averaged and points are sorted by size
	assert.Equal(t, "std", got[0].label)
	require.Len(t, got[0].xys, 2)
	assert.Equal(t, 2000.0, got[0].xys[0].X)
	assert.Equal(t, 60.0, got[0].xys[0].Y)
	assert.Equal(t, 16000.0, got[0].xys[1].X)

	assert.Equal(t, "L1", got[2].label)
	require.Len(t, got[2].xys, 2)
	assert.Equal(t, 8000.0, got[2].xys[0].X)
	assert.Equal(t, 0.0, got[2].xys[0].Y)
	assert.Equal(t, 52000.0, got[2].xys[1].Y)

	assert.Equal(t, "L2", got[3].label)
	assert.Equal(t, 64000.0, got[3].xys[0].X)
}

func TestFacetSeries_ReferenceOnlyFacet(t *testing.T) {
	// Thread count 2 has no small rows, but still gets its boundaries
	frame := testFrames(t)[0]
	got := facetSeries(frame.Table.Rows, 2, hueOrder(frame.Table))

	var labels []string
	for _, s := range got {
		labels = append(labels, s.label)
	}
	assert.Contains(t, labels, "L1")
	assert.Contains(t, labels, "L2")
}

func TestFacetSeries_ReferenceLabelsNotAveraged(t *testing.T) {
	rows := []benchmark.Row{
		{Implementation: "L1", ThreadCount: 1, Measurements: 23, Size: 4000, MedianRuntimeMicros: 10},
		{Implementation: "L1", ThreadCount: 1, Measurements: 23, Size: 4000, MedianRuntimeMicros: 30},
		{Implementation: "std", ThreadCount: 1, Measurements: 23, Size: 4000, MedianRuntimeMicros: 10},
		{Implementation: "std", ThreadCount: 1, Measurements: 23, Size: 4000, MedianRuntimeMicros: 30},
	}
	got := facetSeries(rows, 1, []string{"std", "L1"})
	require.Len(t, got, 2)

	assert.Equal(t, "std", got[0].label)
	require.Len(t, got[0].xys, 1)
	assert.Equal(t, 20.0, got[0].xys[0].Y)

	assert.Equal(t, "L1", got[1].label)
	assert.Len(t, got[1].xys, 2)
}

func TestPalette(t *testing.T) {
	for _, n := range []int{1, 3, 8, 11} {
		colors, err := palette(n)
		require.NoError(t, err)
		assert.Len(t, colors, n)
	}
}

func testReport(t *testing.T) *Report {
	t.Helper()
	r := &Report{
		Brand:          testBrand,
		SanitizedBrand: regime.SanitizeBrand(testBrand),
		L2KB:           256,
		ValuesPerL2:    64000,
		Cutoff:         192000,
		ResultsPath:    "rel/results.csv",
		Rows:           7,
		Format:         FormatPDF,
		CreatedAt:      time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Duration:       1500 * time.Millisecond,
	}
	for _, f := range testFrames(t) {
		r.Plots = append(r.Plots, NewPlotSummary(f, FileName(testBrand, f.Regime, FormatPDF)))
	}
	return r
}

func TestMarkdownExporter(t *testing.T) {
	md, err := NewMarkdownExporter().Export(testReport(t))
	require.NoError(t, err)

	out := string(md)
	assert.Contains(t, out, "# Intel(R) Core(TM) i7-8700 CPU @ 3.20GHz")
	assert.Contains(t, out, "**Values per L2**: 64000")
	assert.Contains(t, out, "**Duration**: 1.50s")
	assert.Contains(t, out, "| small | 5 | 8 | 2, 1 | 700 | `IntelRCoreTMi7-8700CPU3_20GHz__plot_small.pdf` |")
	assert.Equal(t, 3, strings.Count(out, "__plot_"))

	_, err = NewMarkdownExporter().Export(&Report{})
	assert.Error(t, err)
}

func TestJSONExporter(t *testing.T) {
	data, err := NewJSONExporter().Export(testReport(t))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "IntelRCoreTMi7-8700CPU3_20GHz", decoded["sanitized_brand"])
	assert.Len(t, decoded["plots"], 3)
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	path, err := ExportToFile(testReport(t), NewJSONExporter(), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "IntelRCoreTMi7-8700CPU3_20GHz__summary.json"), path)
	assert.FileExists(t, path)
}

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown("# Title\n\nbody text\n")
	assert.Contains(t, out, "body text")
}
