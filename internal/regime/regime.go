// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package regime

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/sortbench/internal/benchmark"
)

// Reference series labels.
const (
	LabelL1 = "L1"
	LabelL2 = "L2"
)

const (
	// DefaultL1Values is the SIZE of the L1 reference line.
	DefaultL1Values = 8000
	// DefaultCutoffFactor multiplies values_per_l2 to give the small/large cutoff.
	DefaultCutoffFactor = 3.0
)

// ErrEmptyRegime is returned when a regime filters out every row.
var ErrEmptyRegime = errors.New("no rows in regime")

// =============================================================================
// REGIME
// =============================================================================

// Regime is a size partition of the results.
type Regime int

const (
	Small Regime = iota
	Large
	All
)

// Regimes lists every regime in processing order.
var Regimes = []Regime{Small, Large, All}

func (r Regime) String() string {
	switch r {
	case Small:
		return "small"
	case Large:
		return "large"
	case All:
		return "all"
	default:
		return fmt.Sprintf("regime(%d)", int(r))
	}
}

// Parse returns the regime named s.
func Parse(s string) (Regime, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "small":
		return Small, nil
	case "large":
		return Large, nil
	case "all":
		return All, nil
	}
	return 0, fmt.Errorf("unknown regime %q (valid: small, large, all)", s)
}

// Contains reports whether a row of the given size belongs to the regime.
func (r Regime) Contains(size, cutoff float64) bool {
	switch r {
	case Small:
		return size < cutoff
	case Large:
		return size > cutoff
	default:
		return true
	}
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// ValuesPerL2 returns how many 4-byte integers fit in an L2 cache of l2KB
// kilobytes: (l2KB * 1000) / 4.
func ValuesPerL2(l2KB int) float64 {
	return float64(l2KB) * 1000 / 4
}

var brandReplacer = strings.NewReplacer(
	" ", "",
	"@", "",
	"(", "",
	")", "",
	".", "_",
)

// SanitizeBrand turns a CPU brand string into a file name prefix.
// The brand is NFKC-normalised before replacement, so "™" becomes "TM"
// and fullwidth characters fold to ASCII; spaces, '@', '(' and ')' are
// dropped and '.' becomes '_'.
func SanitizeBrand(brand string) string {
	return brandReplacer.Replace(norm.NFKC.String(brand))
}

// Options controls frame construction.
type Options struct {
	// L2KB is the L2 cache size in kilobytes
	L2KB int
	// L1Values is the SIZE of the L1 reference line, DefaultL1Values if zero
	L1Values float64
	// CutoffFactor scales values_per_l2 into the regime cutoff, DefaultCutoffFactor if zero
	CutoffFactor float64
}

func (o Options) withDefaults() Options {
	if o.L1Values == 0 {
		o.L1Values = DefaultL1Values
	}
	if o.CutoffFactor == 0 {
		o.CutoffFactor = DefaultCutoffFactor
	}
	return o
}

// Cutoff returns the small/large boundary size.
func (o Options) Cutoff() float64 {
	o = o.withDefaults()
	return o.CutoffFactor * ValuesPerL2(o.L2KB)
}

// =============================================================================
// FRAMES
// =============================================================================

// Frame is the data for one regime plot.
type Frame struct {
	Regime Regime
	// Table holds the filtered rows followed by the reference rows
	Table *benchmark.Table
	// ThreadCounts are the distinct thread counts of the unfiltered table
	ThreadCounts []int
	// Measured is the number of filtered (non-reference) rows
	Measured    int
	MaxRuntime  float64
	Cutoff      float64
	ValuesPerL2 float64
	L1Values    float64
}

// Filter returns the rows of table that belong to r.
func Filter(table *benchmark.Table, r Regime, cutoff float64) *benchmark.Table {
	if r == All {
		return table.Clone()
	}
	return table.Filter(func(row benchmark.Row) bool {
		return r.Contains(row.Size, cutoff)
	})
}

// ReferenceRows returns the L1 and L2 boundary rows for every thread count.
// Each line is a pair of rows spanning runtime 0 to maxRuntime.
func ReferenceRows(threadCounts []int, l1Values, valuesPerL2, maxRuntime float64) []benchmark.Row {
	rows := make([]benchmark.Row, 0, 4*len(threadCounts))
	for _, tc := range threadCounts {
		rows = append(rows,
			benchmark.Row{Implementation: LabelL1, ThreadCount: tc, Measurements: 1, Size: l1Values, MedianRuntimeMicros: 0},
			benchmark.Row{Implementation: LabelL1, ThreadCount: tc, Measurements: 1, Size: l1Values, MedianRuntimeMicros: maxRuntime},
			benchmark.Row{Implementation: LabelL2, ThreadCount: tc, Measurements: 1, Size: valuesPerL2, MedianRuntimeMicros: 0},
			benchmark.Row{Implementation: LabelL2, ThreadCount: tc, Measurements: 1, Size: valuesPerL2, MedianRuntimeMicros: maxRuntime},
		)
	}
	return rows
}

// BuildFrame filters table for r and appends the reference rows.
func BuildFrame(table *benchmark.Table, r Regime, opts Options) (*Frame, error) {
	opts = opts.withDefaults()
	if opts.L2KB <= 0 {
		return nil, fmt.Errorf("l2 cache size must be positive, got %d KB", opts.L2KB)
	}

	vpl2 := ValuesPerL2(opts.L2KB)
	cutoff := opts.Cutoff()

	filtered := Filter(table, r, cutoff)
	maxRuntime, err := filtered.MaxRuntime()
	if err != nil {
		return nil, fmt.Errorf("%s (cutoff %g): %w", r, cutoff, ErrEmptyRegime)
	}

	threadCounts := table.ThreadCounts()
	measured := filtered.Len()
	filtered.Append(ReferenceRows(threadCounts, opts.L1Values, vpl2, maxRuntime)...)

	return &Frame{
		Regime:       r,
		Table:        filtered,
		ThreadCounts: threadCounts,
		Measured:     measured,
		MaxRuntime:   maxRuntime,
		Cutoff:       cutoff,
		ValuesPerL2:  vpl2,
		L1Values:     opts.L1Values,
	}, nil
}

// Build returns one frame per requested regime, in order. With no regimes
// it builds small, large and all. The first empty regime aborts the build.
func Build(table *benchmark.Table, opts Options, regimes ...Regime) ([]*Frame, error) {
	if len(regimes) == 0 {
		regimes = Regimes
	}
	frames := make([]*Frame, 0, len(regimes))
	for _, r := range regimes {
		f, err := BuildFrame(table, r, opts)
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}

// MeasuredRows returns the frame rows that are not reference rows.
func (f *Frame) MeasuredRows() []benchmark.Row {
	return f.Table.Rows[:f.Measured]
}
