// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package benchmark

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config describes a benchmark sweep.
type Config struct {
	// Sizes are the vector lengths to sort
	Sizes []int
	// Workers are the concurrent worker counts (THREAD_COUNT)
	Workers []int
	// Measurements is the number of timed sorts per worker
	Measurements int
	// Implementations are Sorter names
	Implementations []string
	// Seed makes the shuffles reproducible; worker i uses Seed+i
	Seed uint64
}

// DefaultConfig returns the standard sweep: sizes around a 32KB L1 cache
// followed by sizes well past typical L2 capacity.
func DefaultConfig() Config {
	return Config{
		Sizes: []int{
			2_000, 4_000, 6_000, 8_000, 10_000, 12_000,
			16_000, 32_000, 64_000, 128_000, 256_000, 512_000, 1_000_000,
		},
		Workers:         []int{1, 2, 4, 8, 16, 32},
		Measurements:    23,
		Implementations: []string{"sort", "slices"},
		Seed:            121216,
	}
}

// Validate checks the sweep for values that cannot be run.
func (c Config) Validate() error {
	var errs []error
	if len(c.Sizes) == 0 {
		errs = append(errs, errors.New("no sizes"))
	}
	for _, s := range c.Sizes {
		if s <= 0 {
			errs = append(errs, fmt.Errorf("size must be positive, got %d", s))
		}
	}
	if len(c.Workers) == 0 {
		errs = append(errs, errors.New("no worker counts"))
	}
	for _, w := range c.Workers {
		if w <= 0 {
			errs = append(errs, fmt.Errorf("worker count must be positive, got %d", w))
		}
	}
	if c.Measurements <= 0 {
		errs = append(errs, fmt.Errorf("measurements must be positive, got %d", c.Measurements))
	}
	if len(c.Implementations) == 0 {
		errs = append(errs, errors.New("no implementations"))
	}
	for _, name := range c.Implementations {
		if _, err := LookupSorter(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// =============================================================================
// BENCHMARK RUNNER
// =============================================================================

// Progress is reported after every completed case.
type Progress struct {
	Done    int
	Total   int
	Row     Row
	Elapsed time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithProgress registers a callback invoked after each case. It runs on the
// goroutine that called Run.
func WithProgress(fn func(Progress)) Option {
	return func(r *Runner) {
		r.progress = fn
	}
}

// Runner executes a benchmark sweep.
// Note: Runner is not safe for concurrent Run calls.
type Runner struct {
	cfg      Config
	sorters  []Sorter
	progress func(Progress)
}

// NewRunner validates cfg and creates a runner.
func NewRunner(cfg Config, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid benchmark config: %w", err)
	}

	r := &Runner{cfg: cfg}
	for _, name := range cfg.Implementations {
		s, _ := LookupSorter(name)
		r.sorters = append(r.sorters, s)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Cases returns the number of rows a full run produces.
func (r *Runner) Cases() int {
	return len(r.cfg.Workers) * len(r.cfg.Sizes) * len(r.sorters)
}

// Run executes every case, worker counts outermost, and returns one row per
// (workers, size, implementation).
func (r *Runner) Run(ctx context.Context) (*Table, error) {
	table := &Table{Rows: make([]Row, 0, r.Cases())}
	start := time.Now()
	total := r.Cases()

	for _, workers := range r.cfg.Workers {
		for _, size := range r.cfg.Sizes {
			for _, s := range r.sorters {
				row, err := r.runCase(ctx, size, workers, s)
				if err != nil {
					return table, fmt.Errorf("%s workers=%d size=%d: %w", s.Name, workers, size, err)
				}
				table.Append(row)

				if r.progress != nil {
					r.progress(Progress{
						Done:    table.Len(),
						Total:   total,
						Row:     row,
						Elapsed: time.Since(start),
					})
				}
			}
		}
	}

	return table, nil
}

// runCase starts workers goroutines that each time cfg.Measurements sorts,
// then reduces the pooled samples to their median.
func (r *Runner) runCase(ctx context.Context, size, workers int, s Sorter) (Row, error) {
	samples := make([][]float64, workers)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			got, err := measure(gctx, size, r.cfg.Measurements, s, r.cfg.Seed+uint64(i))
			samples[i] = got
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Row{}, err
	}

	pooled := make([]float64, 0, workers*r.cfg.Measurements)
	for _, sm := range samples {
		pooled = append(pooled, sm...)
	}

	return Row{
		Implementation:      s.Name,
		ThreadCount:         workers,
		Measurements:        r.cfg.Measurements,
		Size:                float64(size),
		MedianRuntimeMicros: Median(pooled),
	}, nil
}

// measure shuffles a 0..size-1 vector before each of n timed sorts and
// returns the runtimes in microseconds.
func measure(ctx context.Context, size, n int, s Sorter, seed uint64) ([]float64, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	vec := make([]int, size)
	for i := range vec {
		vec[i] = i
	}

	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		rng.Shuffle(len(vec), func(a, b int) { vec[a], vec[b] = vec[b], vec[a] })

		begin := time.Now()
		s.Sort(vec)
		out = append(out, float64(time.Since(begin).Microseconds()))
	}
	return out, nil
}

// Median returns the empirical 0.5 quantile of samples (the lower middle
// value for even counts). It returns 0 for no samples.
func Median(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sorted := slices.Clone(samples)
	slices.Sort(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}
