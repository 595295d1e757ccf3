// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// bench_progress.go - Live progress bar for the benchmark sweep.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/sortbench/internal/benchmark"
	"github.com/jeranaias/sortbench/internal/util"
)

const maxBarWidth = 50

// benchProgressMsg is sent after every completed case.
type benchProgressMsg benchmark.Progress

// benchDoneMsg is sent once the sweep returns.
type benchDoneMsg struct {
	table *benchmark.Table
	err   error
}

// benchModel is the bubbletea model of a running sweep.
type benchModel struct {
	bar   progress.Model
	total int
	last  benchmark.Progress
	done  bool

	table *benchmark.Table
	err   error
}

func newBenchModel(total int) benchModel {
	return benchModel{
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		total: total,
	}
}

func (m benchModel) Init() tea.Cmd {
	return nil
}

func (m benchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case benchProgressMsg:
		m.last = benchmark.Progress(msg)
		return m, nil

	case benchDoneMsg:
		m.done = true
		m.table = msg.table
		m.err = msg.err
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-30, maxBarWidth)
		if m.bar.Width < 10 {
			m.bar.Width = 10
		}
		return m, nil
	}
	return m, nil
}

func (m benchModel) View() string {
	pct := 0.0
	if m.total > 0 {
		pct = float64(m.last.Done) / float64(m.total)
	}

	var b strings.Builder
	b.WriteString(m.bar.ViewAs(pct))
	fmt.Fprintf(&b, " %d/%d", m.last.Done, m.total)

	if m.last.Done > 0 {
		row := m.last.Row
		b.WriteString(DimStyle.Render(fmt.Sprintf("  %s workers=%d size=%s  %s",
			row.Implementation, row.ThreadCount, util.FormatNumber(row.Size),
			m.last.Elapsed.Round(time.Second))))
	}
	b.WriteString("\n")
	return b.String()
}

// runWithProgressBar runs the sweep while drawing a progress bar on out.
// The sweep keeps running on its own goroutine; the program only renders.
func runWithProgressBar(ctx context.Context, cfg benchmark.Config, out io.Writer) (*benchmark.Table, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var p *tea.Program
	runner, err := benchmark.NewRunner(cfg, benchmark.WithProgress(func(pr benchmark.Progress) {
		p.Send(benchProgressMsg(pr))
	}))
	if err != nil {
		return nil, err
	}

	p = tea.NewProgram(newBenchModel(runner.Cases()),
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithContext(ctx),
		tea.WithoutSignalHandler(),
	)

	result := make(chan benchDoneMsg, 1)
	go func() {
		table, err := runner.Run(ctx)
		msg := benchDoneMsg{table: table, err: err}
		result <- msg
		p.Send(msg)
	}()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		// The display failed; the sweep is still worth finishing.
		fmt.Fprintf(out, "progress display stopped: %v\n", err)
	}

	// The program can exit first when ctx is cancelled
	msg := <-result
	return msg.table, msg.err
}
