// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/sortbench/internal/benchmark"
)

func TestBenchModel(t *testing.T) {
	m := newBenchModel(8)
	assert.Contains(t, m.View(), "0/8")

	updated, cmd := m.Update(benchProgressMsg(benchmark.Progress{
		Done:    3,
		Total:   8,
		Row:     benchmark.Row{Implementation: "slices", ThreadCount: 4, Size: 16000},
		Elapsed: 2 * time.Second,
	}))
	assert.Nil(t, cmd)
	m = updated.(benchModel)
	view := m.View()
	assert.Contains(t, view, "3/8")
	assert.Contains(t, view, "slices workers=4 size=16000")

	updated, _ = m.Update(tea.WindowSizeMsg{Width: 40})
	assert.Equal(t, 10, updated.(benchModel).bar.Width)

	table := benchmark.NewTable()
	updated, cmd = m.Update(benchDoneMsg{table: table, err: errors.New("stopped")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	m = updated.(benchModel)
	assert.True(t, m.done)
	assert.Same(t, table, m.table)
	assert.EqualError(t, m.err, "stopped")
}
