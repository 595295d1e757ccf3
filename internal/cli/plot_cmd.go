// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// plot_cmd.go - The plot command: results CSV in, one figure per regime out.
//
// Usage:
//
//	sortbench plot [--results PATH] [--out DIR] [--format pdf|svg|png]
//	               [--regime LIST] [--l2-kb N] [--brand NAME]
//	               [--summary] [--json] [--watch] [--open]
package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jeranaias/sortbench/internal/benchmark"
	"github.com/jeranaias/sortbench/internal/config"
	"github.com/jeranaias/sortbench/internal/detect"
	"github.com/jeranaias/sortbench/internal/export"
	"github.com/jeranaias/sortbench/internal/history"
	"github.com/jeranaias/sortbench/internal/regime"
)

var (
	plotFlags = []string{"results", "out", "format", "regime", "l2-kb", "brand", "summary", "json", "watch", "open"}
	plotBools = []string{"summary", "json", "watch", "open"}
)

// plotRequest is a fully resolved plot invocation.
type plotRequest struct {
	ResultsPath string
	Regimes     []regime.Regime
	L2KB        int
	Brand       string

	Regime regime.Options
	Plot   export.PlotOptions

	Summary bool
	JSON    bool
	Watch   bool
	Open    bool
}

// defaultPlotRequest builds a request from the configuration alone.
func defaultPlotRequest(cfg *config.Config) (*plotRequest, error) {
	format, err := export.ParseFormat(cfg.Plot.Format)
	if err != nil {
		return nil, &configError{err: err}
	}
	return &plotRequest{
		ResultsPath: cfg.Plot.ResultsPath,
		Regimes:     regime.Regimes,
		L2KB:        cfg.CPU.L2KB,
		Brand:       cfg.CPU.Brand,
		Regime: regime.Options{
			L1Values:     cfg.Plot.L1Values,
			CutoffFactor: cfg.Plot.CutoffFactor,
		},
		Plot: export.PlotOptions{
			OutputDir:  cfg.Plot.OutputDir,
			Format:     format,
			FacetWidth: cfg.Plot.FacetWidthIn,
			Height:     cfg.Plot.HeightIn,
		},
	}, nil
}

// parsePlotArgs applies command line flags on top of the configuration.
func parsePlotArgs(raw []string, cfg *config.Config) (*plotRequest, error) {
	args := NewArgParser(raw, plotBools...)
	if err := args.Unknown(plotFlags...); err != nil {
		return nil, err
	}
	if args.PositionalCount() > 0 {
		return nil, NewValidationErrorWithExample("argument", args.Positional(0), "plot takes no positional arguments",
			"sortbench plot --results rel/results.csv")
	}

	req, err := defaultPlotRequest(cfg)
	if err != nil {
		return nil, err
	}

	req.ResultsPath = args.FlagOrDefault("results", req.ResultsPath)
	req.Plot.OutputDir = args.FlagOrDefault("out", req.Plot.OutputDir)
	req.Brand = args.FlagOrDefault("brand", req.Brand)

	if f := args.Flag("format"); f != "" {
		format, err := export.ParseFormat(f)
		if err != nil {
			return nil, NewValidationErrorWithExample("format", f, "unsupported format", "--format svg")
		}
		req.Plot.Format = format
	}

	if names, ok := args.FlagStringList("regime"); ok {
		req.Regimes = req.Regimes[:0:0]
		for _, name := range names {
			r, err := regime.Parse(name)
			if err != nil {
				return nil, NewValidationErrorWithExample("regime", name, "unknown regime", "--regime small,large")
			}
			req.Regimes = append(req.Regimes, r)
		}
	}

	if v := args.Flag("l2-kb"); v != "" {
		n, err := ParseIntWithValidation(v, "l2-kb")
		if err != nil {
			return nil, NewValidationErrorWithExample("l2-kb", v, "must be a positive number of kilobytes", "--l2-kb 256")
		}
		req.L2KB = n
	}

	req.Summary = args.BoolFlag("summary")
	req.JSON = args.BoolFlag("json")
	req.Watch = args.BoolFlag("watch")
	req.Open = args.BoolFlag("open")
	return req, nil
}

func (a *App) runPlot(ctx context.Context, raw []string) error {
	cfg, err := a.config()
	if err != nil {
		return err
	}
	req, err := parsePlotArgs(raw, cfg)
	if err != nil {
		return err
	}

	if req.Watch {
		return a.watchPlot(ctx, cfg, req)
	}

	report, err := a.plot(ctx, cfg, req)
	if err != nil {
		return err
	}
	return a.printPlotReport(report, req)
}

// =============================================================================
// PIPELINE
// =============================================================================

// resolveCPU returns the brand and L2 size to plot with. Detection is
// skipped when both are overridden.
func (a *App) resolveCPU(ctx context.Context, brand string, l2KB int) (*detect.CPUInfo, error) {
	if brand != "" && l2KB > 0 {
		return &detect.CPUInfo{Brand: brand, L2KB: l2KB, Source: "override"}, nil
	}

	info, err := a.DetectCPU(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		a.log.Warnf("CPU_DETECT_FAILED | err=%q", err)
	}
	if info == nil {
		info = &detect.CPUInfo{}
	}

	info = info.WithOverrides(brand, l2KB)
	if err := info.Validate(); err != nil {
		return nil, NewCommandErrorWithHint("plot", "describe CPU", "CPU description incomplete",
			"pass --brand and --l2-kb, or set brand and l2_kb under [cpu] in the config", err)
	}

	a.log.Debugf("CPU_RESOLVED | brand=%q l2_kb=%d source=%s", info.Brand, info.L2KB, info.Source)
	return info, nil
}

// plot runs the pipeline once: load, then per regime build and render.
// Regimes are rendered in order, so an empty regime aborts after the
// earlier regimes' files are written.
func (a *App) plot(ctx context.Context, cfg *config.Config, req *plotRequest) (*export.Report, error) {
	start := a.Now()

	cpu, err := a.resolveCPU(ctx, req.Brand, req.L2KB)
	if err != nil {
		return nil, err
	}

	table, err := benchmark.LoadFile(req.ResultsPath)
	if err != nil {
		return nil, NewCommandErrorWithHint("plot", "load", req.ResultsPath,
			`run "sortbench bench" to produce a results file, or pass --results`, err)
	}
	a.log.Debugf("RESULTS_LOADED | path=%s rows=%d thread_counts=%v", req.ResultsPath, table.Len(), table.ThreadCounts())

	opts := req.Regime
	opts.L2KB = cpu.L2KB

	report := &export.Report{
		Brand:          cpu.Brand,
		SanitizedBrand: regime.SanitizeBrand(cpu.Brand),
		L2KB:           cpu.L2KB,
		ValuesPerL2:    regime.ValuesPerL2(cpu.L2KB),
		Cutoff:         opts.Cutoff(),
		ResultsPath:    req.ResultsPath,
		Rows:           table.Len(),
		Format:         req.Plot.Format,
		CreatedAt:      start,
	}

	for _, r := range req.Regimes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frame, err := regime.BuildFrame(table, r, opts)
		if err != nil {
			return nil, NewCommandErrorWithHint("plot", r.String(), "no rows to plot",
				fmt.Sprintf("the cutoff is %s values; check --l2-kb against the SIZE column", strconv.FormatFloat(report.Cutoff, 'f', -1, 64)), err)
		}

		path, err := export.SaveFrame(frame, cpu.Brand, req.Plot)
		if err != nil {
			return nil, NewCommandError("plot", r.String(), "render failed", err)
		}

		a.log.Infof("PLOT_RENDERED | regime=%s file=%s facets=%d rows=%d", r, path, len(frame.ThreadCounts), frame.Measured)
		report.Plots = append(report.Plots, export.NewPlotSummary(frame, path))
	}

	report.Duration = a.Now().Sub(start)

	a.recordRun(ctx, cfg, history.Run{
		Kind:      history.KindPlot,
		StartedAt: start,
		Duration:  report.Duration,
		Brand:     cpu.Brand,
		L2KB:      cpu.L2KB,
		Source:    req.ResultsPath,
		Rows:      table.Len(),
		Files:     report.Files(),
	})

	return report, nil
}

// =============================================================================
// OUTPUT
// =============================================================================

func (a *App) printPlotReport(report *export.Report, req *plotRequest) error {
	switch {
	case req.JSON:
		data, err := export.NewJSONExporter().Export(report)
		if err != nil {
			return err
		}
		if _, err := a.Stdout.Write(data); err != nil {
			return err
		}

	case req.Summary:
		md := export.NewMarkdownExporter()
		path, err := export.ExportToFile(report, md, req.Plot.OutputDir)
		if err != nil {
			return NewCommandError("plot", "summary", "could not write summary", err)
		}
		a.log.Infof("SUMMARY_WRITTEN | file=%s", path)

		content, err := md.Export(report)
		if err != nil {
			return err
		}
		fmt.Fprint(a.Stdout, export.RenderMarkdown(string(content)))

	default:
		for _, p := range report.Plots {
			fmt.Fprintf(a.Stdout, "%s %s\n", SuccessStyle.Render("wrote"), p.File)
		}
		a.log.Debugf("PLOT_COMPLETE | plots=%d duration=%s", len(report.Plots), report.Duration.Round(time.Millisecond))
	}

	if req.Open {
		for _, file := range report.Files() {
			if err := export.Open(file); err != nil {
				a.log.Warnf("OPEN_FAILED | file=%s err=%q", file, err)
			}
		}
	}
	return nil
}
