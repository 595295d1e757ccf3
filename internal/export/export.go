// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/jeranaias/sortbench/internal/regime"
	"github.com/jeranaias/sortbench/internal/util"
)

// =============================================================================
// FORMATS
// =============================================================================

// Format is a plot document format.
type Format string

const (
	FormatPDF Format = "pdf"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat returns the format named s. The empty string means PDF.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "pdf":
		return FormatPDF, nil
	case "svg":
		return FormatSVG, nil
	case "png":
		return FormatPNG, nil
	}
	return "", fmt.Errorf("unsupported plot format %q (valid: pdf, svg, png)", s)
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// FileName returns the document name for a brand and regime, e.g.
// "IntelRCoreTMi7-8700CPU3_20GHz__plot_small.pdf".
func FileName(brand string, r regime.Regime, f Format) string {
	return regime.SanitizeBrand(brand) + "__plot_" + r.String() + f.Extension()
}

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for report exporters.
type Exporter interface {
	// Export converts a report to the target format and returns the content.
	Export(report *Report) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g., ".md", ".json").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// =============================================================================
// REPORT
// =============================================================================

// Report summarizes one plot run.
type Report struct {
	Brand          string        `json:"brand"`
	SanitizedBrand string        `json:"sanitized_brand"`
	L2KB           int           `json:"l2_kb"`
	ValuesPerL2    float64       `json:"values_per_l2"`
	Cutoff         float64       `json:"cutoff"`
	ResultsPath    string        `json:"results_path"`
	Rows           int           `json:"rows"`
	Format         Format        `json:"format"`
	Plots          []PlotSummary `json:"plots"`
	CreatedAt      time.Time     `json:"created_at"`
	Duration       time.Duration `json:"duration_ns"`
}

// PlotSummary describes one rendered regime.
type PlotSummary struct {
	Regime        string  `json:"regime"`
	File          string  `json:"file"`
	MeasuredRows  int     `json:"measured_rows"`
	ReferenceRows int     `json:"reference_rows"`
	ThreadCounts  []int   `json:"thread_counts"`
	MaxRuntime    float64 `json:"max_runtime_mus"`
}

// NewPlotSummary describes frame f rendered to path.
func NewPlotSummary(f *regime.Frame, path string) PlotSummary {
	return PlotSummary{
		Regime:        f.Regime.String(),
		File:          path,
		MeasuredRows:  f.Measured,
		ReferenceRows: f.Table.Len() - f.Measured,
		ThreadCounts:  f.ThreadCounts,
		MaxRuntime:    f.MaxRuntime,
	}
}

// Files returns the paths of every plot in the report.
func (r *Report) Files() []string {
	files := make([]string, 0, len(r.Plots))
	for _, p := range r.Plots {
		files = append(files, p.File)
	}
	return files
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile writes report to dir using exporter and returns the path.
// The file is named after the sanitized brand.
func ExportToFile(report *Report, exporter Exporter, dir string) (string, error) {
	if report == nil {
		return "", fmt.Errorf("report is nil")
	}
	content, err := exporter.Export(report)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	name := report.SanitizedBrand
	if name == "" {
		name = "sortbench"
	}
	path := filepath.Join(dir, name+"__summary"+exporter.FileExtension())
	if err := util.AtomicWriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// Open opens a file in the default application for the OS.
func Open(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", `""`, path)
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux", "freebsd", "openbsd", "netbsd":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	seconds := float64(ms) / 1000.0
	if seconds < 60 {
		return fmt.Sprintf("%.2fs", seconds)
	}
	minutes := int(seconds / 60)
	remainingSeconds := int(seconds) % 60
	return fmt.Sprintf("%dm %ds", minutes, remainingSeconds)
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
