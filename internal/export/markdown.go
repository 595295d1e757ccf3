// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/sortbench/internal/util"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports reports to Markdown format.
type MarkdownExporter struct{}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{}
}

// Export converts a report to Markdown format.
func (e *MarkdownExporter) Export(report *Report) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("report is nil")
	}
	if len(report.Plots) == 0 {
		return nil, fmt.Errorf("report has no plots")
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdown(report.Brand)))

	sb.WriteString("## Run Information\n\n")
	sb.WriteString(fmt.Sprintf("- **Results**: `%s` (%d rows)\n", report.ResultsPath, report.Rows))
	sb.WriteString(fmt.Sprintf("- **L2 cache**: %d KB\n", report.L2KB))
	sb.WriteString(fmt.Sprintf("- **Values per L2**: %s\n", util.FormatNumber(report.ValuesPerL2)))
	sb.WriteString(fmt.Sprintf("- **Cutoff**: %s\n", util.FormatNumber(report.Cutoff)))
	if !report.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("- **Created**: %s\n", formatTimestamp(report.CreatedAt)))
	}
	if report.Duration > 0 {
		sb.WriteString(fmt.Sprintf("- **Duration**: %s\n", formatDuration(report.Duration)))
	}
	sb.WriteString("\n")

	sb.WriteString("## Plots\n\n")
	sb.WriteString("| Regime | Rows | Reference rows | Thread counts | Max runtime [µs] | File |\n")
	sb.WriteString("|---|---:|---:|---|---:|---|\n")
	for _, p := range report.Plots {
		tcs := make([]string, len(p.ThreadCounts))
		for i, tc := range p.ThreadCounts {
			tcs[i] = fmt.Sprint(tc)
		}
		sb.WriteString(fmt.Sprintf("| %s | %d | %d | %s | %s | `%s` |\n",
			p.Regime,
			p.MeasuredRows,
			p.ReferenceRows,
			strings.Join(tcs, ", "),
			util.FormatNumber(p.MaxRuntime),
			escapeTableCell(p.File),
		))
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// TERMINAL RENDERING
// =============================================================================

var (
	rendererOnce     sync.Once
	markdownRenderer *glamour.TermRenderer
)

// RenderMarkdown renders markdown content for terminal display.
// Returns the original content if the renderer is unavailable.
func RenderMarkdown(content string) string {
	rendererOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err == nil {
			markdownRenderer = r
		}
	})
	if markdownRenderer == nil {
		return content
	}

	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes special Markdown characters in plain text.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeTableCell keeps a value from splitting a table row.
func escapeTableCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
