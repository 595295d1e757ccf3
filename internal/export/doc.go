// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders regime frames to plot documents and writes run
// summaries.
//
// # Key Types
//
//   - Format: Plot document format (PDF, SVG, PNG)
//   - PlotOptions: Output directory, format and facet size
//   - Report: Summary of one plot run
//   - Exporter: Report serializer interface (Markdown, JSON)
//
// # Plots
//
// Each frame becomes one document named
//
//	{sanitized brand}__plot_{regime}.{ext}
//
// holding a row of line plots, one facet per thread count. Measured series
// are drawn solid, the L1 and L2 boundary lines dashed.
//
// # Usage
//
//	opts := export.DefaultPlotOptions()
//	opts.OutputDir = "plots"
//	path, err := export.SaveFrame(frame, brand, opts)
//
// Summarize a run:
//
//	md, err := export.NewMarkdownExporter().Export(report)
//	fmt.Print(export.RenderMarkdown(string(md)))
package export
