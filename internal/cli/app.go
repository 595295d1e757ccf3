// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jeranaias/sortbench/internal/config"
	"github.com/jeranaias/sortbench/internal/detect"
	"github.com/jeranaias/sortbench/internal/history"
)

// errInterrupted marks runs stopped by SIGINT or SIGTERM.
var errInterrupted = errors.New("interrupted")

// =============================================================================
// APP
// =============================================================================

// App carries the dependencies shared by every command. Tests replace the
// writers, the configuration and the CPU detector.
type App struct {
	Stdout io.Writer
	Stderr io.Writer
	Args   Args

	// Config is loaded on first use when nil
	Config *config.Config

	// DetectCPU describes the host CPU
	DetectCPU func(ctx context.Context) (*detect.CPUInfo, error)

	Now func() time.Time

	log *logger
}

// NewApp creates an App writing to the process's stdout and stderr.
func NewApp(args Args) *App {
	return &App{
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Args:      args,
		DetectCPU: detect.DetectCPUCached,
		Now:       time.Now,
	}
}

// Run executes cmd with the process's stdout and stderr.
func Run(ctx context.Context, cmd Command, args Args) error {
	return NewApp(args).Run(ctx, cmd)
}

// Run executes cmd.
func (a *App) Run(ctx context.Context, cmd Command) error {
	a.log = newLogger(a.Stderr, a.Args.Quiet, a.Args.Verbose)
	if a.Now == nil {
		a.Now = time.Now
	}
	if a.DetectCPU == nil {
		a.DetectCPU = detect.DetectCPUCached
	}

	var err error
	switch cmd {
	case CmdHelp:
		PrintUsage(a.Stdout)
	case CmdVersion:
		err = a.runVersion(a.Args.Raw)
	case CmdPlot:
		err = a.runPlot(ctx, a.Args.Raw)
	case CmdBench:
		err = a.runBench(ctx, a.Args.Raw)
	case CmdCPU:
		err = a.runCPU(ctx, a.Args.Raw)
	case CmdHistory:
		err = a.runHistory(ctx, a.Args.Raw)
	case CmdConfig:
		err = a.runConfig(a.Args.Raw)
	default:
		example := "sortbench help"
		if s := SuggestCommand(a.Args.Name); s != "" {
			example = "did you mean sortbench " + s + "?"
		}
		err = NewValidationErrorWithExample("command", a.Args.Name, "unknown command", example)
	}

	if err != nil && ctx.Err() != nil && errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", errInterrupted, err)
	}
	return err
}

func (a *App) runVersion(raw []string) error {
	args := NewArgParser(raw, "json")
	if err := args.Unknown("json"); err != nil {
		return err
	}
	if args.BoolFlag("json") {
		return NewJSONResponse("version", versionData()).Print(a.Stdout)
	}
	PrintVersion(a.Stdout)
	return nil
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// config returns the configuration, loading it on first use.
func (a *App) config() (*config.Config, error) {
	if a.Config != nil {
		return a.Config, nil
	}

	if a.Args.ConfigPath != "" {
		cfg, err := config.LoadFromPath(a.Args.ConfigPath)
		if err != nil {
			return nil, &configError{err: err}
		}
		a.Config = cfg
		a.log.Debugf("CONFIG_LOADED | path=%s", a.Args.ConfigPath)
		return cfg, nil
	}

	cfg, err := config.Load()
	if cfg == nil {
		return nil, &configError{err: err}
	}
	if err != nil {
		a.log.Warnf("CONFIG_LOAD_FAILED | err=%q using=defaults", err)
	}
	a.Config = cfg
	return cfg, nil
}

// =============================================================================
// HISTORY
// =============================================================================

func (a *App) historyEnabled(cfg *config.Config) bool {
	return cfg.History.Enabled && !a.Args.NoHistory
}

func (a *App) openHistory(cfg *config.Config) (*history.Store, error) {
	path, err := cfg.HistoryPath()
	if err != nil {
		return nil, &configError{err: err}
	}
	return history.Open(path)
}

// recordRun stores run in the history database. Failures are logged and
// never fail the command.
func (a *App) recordRun(ctx context.Context, cfg *config.Config, run history.Run) {
	if !a.historyEnabled(cfg) {
		return
	}

	store, err := a.openHistory(cfg)
	if err != nil {
		a.log.Warnf("HISTORY_OPEN_FAILED | err=%q", err)
		return
	}
	defer store.Close()

	rec, err := store.Record(ctx, run)
	if err != nil {
		a.log.Warnf("HISTORY_RECORD_FAILED | kind=%s err=%q", run.Kind, err)
		return
	}
	a.log.Debugf("HISTORY_RECORDED | id=%s kind=%s", rec.ShortID(), rec.Kind)
}
