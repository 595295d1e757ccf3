// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"cmp"
	"fmt"
	"image/color"
	"io"
	"math"
	"path/filepath"
	"slices"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/jeranaias/sortbench/internal/benchmark"
	"github.com/jeranaias/sortbench/internal/regime"
	"github.com/jeranaias/sortbench/internal/util"
)

// Axis labels.
const (
	XLabel = "Input size"
	YLabel = "Runtime [microseconds]"
)

// pngDPI is the resolution of PNG output.
const pngDPI = 150

// =============================================================================
// PLOT OPTIONS
// =============================================================================

// PlotOptions configures plot rendering.
type PlotOptions struct {
	// OutputDir is the directory where documents are saved.
	// Default: current working directory
	OutputDir string

	// Format of the documents. Default: PDF
	Format Format

	// FacetWidth and Height are the size of one facet in inches.
	FacetWidth float64
	Height     float64
}

// DefaultPlotOptions returns default plot options.
func DefaultPlotOptions() PlotOptions {
	return PlotOptions{
		OutputDir:  ".",
		Format:     FormatPDF,
		FacetWidth: 4,
		Height:     4,
	}
}

func (o PlotOptions) withDefaults() PlotOptions {
	def := DefaultPlotOptions()
	if o.OutputDir == "" {
		o.OutputDir = def.OutputDir
	}
	if o.Format == "" {
		o.Format = def.Format
	}
	if o.FacetWidth <= 0 {
		o.FacetWidth = def.FacetWidth
	}
	if o.Height <= 0 {
		o.Height = def.Height
	}
	return o
}

// =============================================================================
// FACET GRID
// =============================================================================

// series is one line in one facet.
type series struct {
	label string
	xys   plotter.XYs
}

// facetSeries groups a frame's rows by implementation for one thread count.
// Measured rows are reduced to the mean runtime per size; reference rows are
// kept as-is so each boundary draws as a vertical segment. Rows whose
// implementation is literally "L1" or "L2" join the reference series.
func facetSeries(rows []benchmark.Row, threadCount int, labels []string) []series {
	type acc struct {
		sum float64
		n   int
	}
	sums := make(map[string]map[float64]*acc)
	refs := make(map[string]plotter.XYs)

	for _, r := range rows {
		if r.ThreadCount != threadCount {
			continue
		}
		if r.Implementation == regime.LabelL1 || r.Implementation == regime.LabelL2 {
			refs[r.Implementation] = append(refs[r.Implementation], plotter.XY{X: r.Size, Y: r.MedianRuntimeMicros})
			continue
		}
		bySize := sums[r.Implementation]
		if bySize == nil {
			bySize = make(map[float64]*acc)
			sums[r.Implementation] = bySize
		}
		a := bySize[r.Size]
		if a == nil {
			a = &acc{}
			bySize[r.Size] = a
		}
		a.sum += r.MedianRuntimeMicros
		a.n++
	}

	var out []series
	for _, label := range labels {
		if xys, ok := refs[label]; ok {
			out = append(out, series{label: label, xys: xys})
			continue
		}
		bySize, ok := sums[label]
		if !ok {
			continue
		}
		xys := make(plotter.XYs, 0, len(bySize))
		for size, a := range bySize {
			xys = append(xys, plotter.XY{X: size, Y: a.sum / float64(a.n)})
		}
		slices.SortFunc(xys, func(a, b plotter.XY) int {
			return cmp.Compare(a.X, b.X)
		})
		out = append(out, series{label: label, xys: xys})
	}
	return out
}

// hueOrder returns the implementation labels in first appearance order with
// the reference labels last.
func hueOrder(table *benchmark.Table) []string {
	var labels []string
	for _, l := range table.Implementations() {
		if l != regime.LabelL1 && l != regime.LabelL2 {
			labels = append(labels, l)
		}
	}
	return append(labels, regime.LabelL1, regime.LabelL2)
}

// palette returns n distinguishable colors.
func palette(n int) ([]color.Color, error) {
	// Dark2 has between 3 and 8 colors
	p, err := brewer.GetPalette(brewer.TypeQualitative, "Dark2", min(max(n, 3), 8))
	if err != nil {
		return nil, err
	}
	base := p.Colors()
	out := make([]color.Color, n)
	for i := range out {
		out[i] = base[i%len(base)]
	}
	return out, nil
}

// axisRange returns the shared x range of a frame with a small margin.
func axisRange(rows []benchmark.Row) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, r := range rows {
		lo = min(lo, r.Size)
		hi = max(hi, r.Size)
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	pad := (hi - lo) * 0.02
	return lo - pad, hi + pad
}

// buildPlots creates one plot per thread count, ascending.
func buildPlots(f *regime.Frame) ([]*plot.Plot, error) {
	if f == nil || f.Table == nil || f.Table.Len() == 0 {
		return nil, fmt.Errorf("frame has no rows")
	}

	threadCounts := slices.Clone(f.ThreadCounts)
	slices.Sort(threadCounts)

	labels := hueOrder(f.Table)
	colors, err := palette(len(labels))
	if err != nil {
		return nil, fmt.Errorf("palette: %w", err)
	}
	colorOf := make(map[string]color.Color, len(labels))
	for i, l := range labels {
		colorOf[l] = colors[i]
	}

	xMin, xMax := axisRange(f.Table.Rows)
	yMax := f.MaxRuntime * 1.05
	if yMax <= 0 {
		yMax = 1
	}

	plots := make([]*plot.Plot, 0, len(threadCounts))
	for i, tc := range threadCounts {
		p := plot.New()
		p.Title.Text = fmt.Sprintf("THREAD_COUNT = %d", tc)
		p.X.Label.Text = XLabel
		if i == 0 {
			p.Y.Label.Text = YLabel
		}

		for _, s := range facetSeries(f.Table.Rows, tc, labels) {
			line, err := plotter.NewLine(s.xys)
			if err != nil {
				return nil, fmt.Errorf("thread count %d, %s: %w", tc, s.label, err)
			}
			line.LineStyle.Color = colorOf[s.label]
			line.LineStyle.Width = vg.Points(1.5)
			if s.label == regime.LabelL1 || s.label == regime.LabelL2 {
				line.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
			}
			p.Add(line)

			// One legend, on the last facet
			if i == len(threadCounts)-1 {
				p.Legend.Add(s.label, line)
			}
		}
		p.Legend.Top = true

		p.X.Min, p.X.Max = xMin, xMax
		p.Y.Min, p.Y.Max = 0, yMax
		plots = append(plots, p)
	}
	return plots, nil
}

// =============================================================================
// RENDERING
// =============================================================================

// canvas is a vg canvas that can serialize itself.
type canvas interface {
	vg.CanvasSizer
	io.WriterTo
}

func newCanvas(format Format, w, h vg.Length) (canvas, error) {
	switch format {
	case FormatPDF:
		return vgpdf.New(w, h), nil
	case FormatSVG:
		return vgsvg.New(w, h), nil
	case FormatPNG:
		return vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(pngDPI))}, nil
	}
	return nil, fmt.Errorf("unsupported plot format %q", format)
}

// RenderFrame draws frame f as a facet grid and writes the document to w.
func RenderFrame(w io.Writer, f *regime.Frame, opts PlotOptions) error {
	opts = opts.withDefaults()

	plots, err := buildPlots(f)
	if err != nil {
		return err
	}

	width := vg.Length(opts.FacetWidth*float64(len(plots))) * vg.Inch
	height := vg.Length(opts.Height) * vg.Inch

	c, err := newCanvas(opts.Format, width, height)
	if err != nil {
		return err
	}

	tiles := draw.Tiles{
		Rows:      1,
		Cols:      len(plots),
		PadX:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align([][]*plot.Plot{plots}, tiles, draw.New(c))
	for i, p := range plots {
		p.Draw(canvases[0][i])
	}

	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("write %s: %w", opts.Format, err)
	}
	return nil
}

// SaveFrame renders frame f to {OutputDir}/{FileName} and returns the path.
func SaveFrame(f *regime.Frame, brand string, opts PlotOptions) (string, error) {
	opts = opts.withDefaults()
	path := filepath.Join(opts.OutputDir, FileName(brand, f.Regime, opts.Format))

	err := util.AtomicWriteFunc(path, 0644, func(w io.Writer) error {
		return RenderFrame(w, f, opts)
	})
	if err != nil {
		return "", fmt.Errorf("save %s plot: %w", f.Regime, err)
	}
	return path, nil
}
