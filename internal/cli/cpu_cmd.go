// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cpu_cmd.go - The cpu command: show what the plots will be drawn against.
package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jeranaias/sortbench/internal/detect"
	"github.com/jeranaias/sortbench/internal/regime"
	"github.com/jeranaias/sortbench/internal/util"
)

// CPUReport is the JSON form of "sortbench cpu --json".
type CPUReport struct {
	CPU            *detect.CPUInfo `json:"cpu"`
	SanitizedBrand string          `json:"sanitized_brand"`
	ValuesPerL2    float64         `json:"values_per_l2"`
	L1Values       float64         `json:"l1_values"`
	Cutoff         float64         `json:"cutoff"`
}

func (a *App) runCPU(ctx context.Context, raw []string) error {
	args := NewArgParser(raw, "json")
	if err := args.Unknown("json"); err != nil {
		return err
	}
	cfg, err := a.config()
	if err != nil {
		return err
	}

	info, err := a.DetectCPU(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.log.Warnf("CPU_DETECT_FAILED | err=%q", err)
	}
	if info == nil {
		info = &detect.CPUInfo{}
	}
	info = info.WithOverrides(cfg.CPU.Brand, cfg.CPU.L2KB)

	opts := regime.Options{L2KB: info.L2KB, L1Values: cfg.Plot.L1Values, CutoffFactor: cfg.Plot.CutoffFactor}
	report := CPUReport{
		CPU:            info,
		SanitizedBrand: regime.SanitizeBrand(info.Brand),
		ValuesPerL2:    regime.ValuesPerL2(info.L2KB),
		L1Values:       cfg.Plot.L1Values,
		Cutoff:         opts.Cutoff(),
	}

	if args.BoolFlag("json") {
		if err := NewJSONResponse("cpu", report).Print(a.Stdout); err != nil {
			return err
		}
	} else {
		a.printCPUReport(report)
	}

	// The report is still printed so the user sees what is missing
	if err := info.Validate(); err != nil {
		return NewCommandErrorWithHint("cpu", "detect", "CPU description incomplete",
			"set brand and l2_kb under [cpu] in the config, or pass --brand and --l2-kb to plot", err)
	}
	return nil
}

func (a *App) printCPUReport(r CPUReport) {
	info := r.CPU
	kb := func(n int) string {
		if n <= 0 {
			return WarningStyle.Render("unknown")
		}
		return strconv.Itoa(n) + " KB"
	}
	orUnknown := func(s string) string {
		if s == "" {
			return WarningStyle.Render("unknown")
		}
		return s
	}

	rows := [][2]string{
		{"Brand", orUnknown(info.Brand)},
		{"File prefix", orUnknown(r.SanitizedBrand)},
		{"Vendor", orUnknown(info.Vendor)},
		{"L1 data cache", kb(info.L1DataKB)},
		{"L2 cache", kb(info.L2KB)},
		{"L3 cache", kb(info.L3KB)},
		{"Cores", fmt.Sprintf("%d physical, %d logical", info.PhysicalCores, info.LogicalCores)},
		{"Source", orUnknown(info.Source)},
	}
	if info.CacheLineBytes > 0 {
		rows = append(rows, [2]string{"Cache line", fmt.Sprintf("%d bytes", info.CacheLineBytes)})
	}
	if len(info.Features) > 0 {
		rows = append(rows, [2]string{"Features", util.TruncateWidth(strings.Join(info.Features, " "), GetTerminalWidth()-24)})
	}

	plotRows := [][2]string{
		{"L1 line (SIZE)", util.FormatNumber(r.L1Values)},
		{"L2 line (SIZE)", util.FormatNumber(r.ValuesPerL2)},
		{"Small/large cutoff", HighlightStyle.Render(util.FormatNumber(r.Cutoff))},
	}

	labels := make([]string, 0, len(rows)+len(plotRows))
	for _, row := range append(rows, plotRows...) {
		labels = append(labels, row[0])
	}
	width := LabelWidth(labels...)

	fmt.Fprintln(a.Stdout, TitleStyle.Render("CPU"))
	fmt.Fprintln(a.Stdout, RenderSeparator(width+30))
	for _, row := range rows {
		fmt.Fprintln(a.Stdout, RenderKeyValue(row[0], row[1], width))
	}
	fmt.Fprintln(a.Stdout, SectionStyle.Render("Plot reference"))
	for _, row := range plotRows {
		fmt.Fprintln(a.Stdout, RenderKeyValue(row[0], row[1], width))
	}
}
