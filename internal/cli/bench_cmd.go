// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// bench_cmd.go - The bench command: run the sort sweep and write results.
//
// Usage:
//
//	sortbench bench [--out PATH] [--sizes LIST] [--workers LIST]
//	                [--measurements N] [--impl LIST] [--seed N] [--plot]
package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/sortbench/internal/benchmark"
	"github.com/jeranaias/sortbench/internal/config"
	"github.com/jeranaias/sortbench/internal/history"
)

var (
	benchFlags = []string{"out", "sizes", "workers", "measurements", "impl", "seed", "plot"}
	benchBools = []string{"plot"}
)

// benchRequest is a fully resolved bench invocation.
type benchRequest struct {
	Sweep      benchmark.Config
	OutputPath string
	Plot       bool
}

func parseBenchArgs(raw []string, cfg *config.Config) (*benchRequest, error) {
	args := NewArgParser(raw, benchBools...)
	if err := args.Unknown(benchFlags...); err != nil {
		return nil, err
	}
	if args.PositionalCount() > 0 {
		return nil, NewValidationErrorWithExample("argument", args.Positional(0), "bench takes no positional arguments",
			"sortbench bench --sizes 2k,8k --workers 1,4")
	}

	req := &benchRequest{
		Sweep:      cfg.BenchmarkConfig(),
		OutputPath: args.FlagOrDefault("out", cfg.Bench.OutputPath),
		Plot:       args.BoolFlag("plot"),
	}

	if sizes, ok, err := args.FlagIntList("sizes"); err != nil {
		return nil, err
	} else if ok {
		req.Sweep.Sizes = sizes
	}
	if workers, ok, err := args.FlagIntList("workers"); err != nil {
		return nil, err
	} else if ok {
		req.Sweep.Workers = workers
	}
	if impls, ok := args.FlagStringList("impl"); ok {
		req.Sweep.Implementations = impls
	}
	if v := args.Flag("measurements"); v != "" {
		n, err := ParseIntWithValidation(v, "measurements")
		if err != nil {
			return nil, NewValidationErrorWithExample("measurements", v, "must be a positive integer", "--measurements 23")
		}
		req.Sweep.Measurements = n
	}
	if v := args.Flag("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, NewValidationErrorWithExample("seed", v, "must be a non-negative integer", "--seed 121216")
		}
		req.Sweep.Seed = seed
	}

	if err := req.Sweep.Validate(); err != nil {
		return nil, NewValidationErrorWithExample("sweep", "", strings.ReplaceAll(err.Error(), "\n", "; "),
			"--impl "+strings.Join(benchmark.SorterNames(), ","))
	}
	return req, nil
}

func (a *App) runBench(ctx context.Context, raw []string) error {
	cfg, err := a.config()
	if err != nil {
		return err
	}
	req, err := parseBenchArgs(raw, cfg)
	if err != nil {
		return err
	}

	start := a.Now()
	sweep := req.Sweep
	a.log.Infof("BENCH_STARTED | sizes=%d workers=%v impl=%s measurements=%d out=%s",
		len(sweep.Sizes), sweep.Workers, strings.Join(sweep.Implementations, ","), sweep.Measurements, req.OutputPath)

	var table *benchmark.Table
	if a.Stderr == os.Stderr && IsStderrTTY() && !a.Args.Quiet && !a.Args.Verbose {
		table, err = runWithProgressBar(ctx, sweep, a.Stderr)
	} else {
		table, err = a.runBenchLogged(ctx, sweep)
	}
	if err != nil {
		return NewCommandError("bench", "run", "sweep stopped", err)
	}

	if err := table.SaveFile(req.OutputPath); err != nil {
		return NewCommandError("bench", "save", req.OutputPath, err)
	}

	elapsed := a.Now().Sub(start)
	a.log.Infof("BENCH_COMPLETE | rows=%d file=%s duration=%s", table.Len(), req.OutputPath, elapsed.Round(time.Millisecond))
	fmt.Fprintf(a.Stdout, "%s %s\n", SuccessStyle.Render("wrote"), req.OutputPath)

	run := history.Run{
		Kind:      history.KindBench,
		StartedAt: start,
		Duration:  elapsed,
		Source:    req.OutputPath,
		Rows:      table.Len(),
		Files:     []string{req.OutputPath},
	}
	if info, err := a.DetectCPU(ctx); err == nil && info != nil {
		info = info.WithOverrides(cfg.CPU.Brand, cfg.CPU.L2KB)
		run.Brand, run.L2KB = info.Brand, info.L2KB
	}
	a.recordRun(ctx, cfg, run)

	if !req.Plot {
		return nil
	}

	plotReq, err := defaultPlotRequest(cfg)
	if err != nil {
		return err
	}
	plotReq.ResultsPath = req.OutputPath
	report, err := a.plot(ctx, cfg, plotReq)
	if err != nil {
		return err
	}
	return a.printPlotReport(report, plotReq)
}

// runBenchLogged runs the sweep and logs one line per case.
func (a *App) runBenchLogged(ctx context.Context, sweep benchmark.Config) (*benchmark.Table, error) {
	runner, err := benchmark.NewRunner(sweep, benchmark.WithProgress(func(p benchmark.Progress) {
		a.log.Infof("BENCH_CASE | done=%d/%d impl=%s workers=%d size=%.0f median_mus=%g",
			p.Done, p.Total, p.Row.Implementation, p.Row.ThreadCount, p.Row.Size, p.Row.MedianRuntimeMicros)
	}))
	if err != nil {
		return nil, err
	}
	return runner.Run(ctx)
}
