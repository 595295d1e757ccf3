// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// watch.go - Re-render plots when the results file changes.
package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/jeranaias/sortbench/internal/config"
)

const (
	// watchTick bounds how late a debounced change is noticed.
	watchTick = 100 * time.Millisecond

	// At most one re-render per renderInterval, with a burst of renderBurst.
	renderInterval = time.Second
	renderBurst    = 2
)

// =============================================================================
// RESULTS WATCHER
// =============================================================================

// resultsWatcher reports debounced changes to one file. The parent directory
// is watched so atomic replacements (write temp, rename) are seen.
type resultsWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	limiter  *rate.Limiter
	log      *logger

	// pending is the time of the last unhandled change, zero if none
	pending time.Time
}

func newResultsWatcher(path string, debounce time.Duration, lg *logger) (*resultsWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &resultsWatcher{
		path:     abs,
		watcher:  watcher,
		debounce: debounce,
		limiter:  rate.NewLimiter(rate.Every(renderInterval), renderBurst),
		log:      lg,
	}, nil
}

// matches reports whether ev changes the watched file's content.
func (rw *resultsWatcher) matches(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != rw.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}

// due reports whether a pending change has been quiet for the debounce
// interval, and clears it if so.
func (rw *resultsWatcher) due(now time.Time) bool {
	if rw.pending.IsZero() || now.Sub(rw.pending) < rw.debounce {
		return false
	}
	rw.pending = time.Time{}
	return true
}

// Run calls onChange for every debounced change until ctx is done.
// onChange errors are logged and watching continues.
func (rw *resultsWatcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	ticker := time.NewTicker(watchTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-rw.watcher.Events:
			if !ok {
				return nil
			}
			if rw.matches(ev) {
				rw.log.Debugf("WATCH_EVENT | file=%s op=%s", ev.Name, ev.Op)
				rw.pending = time.Now()
			}

		case err, ok := <-rw.watcher.Errors:
			if !ok {
				return nil
			}
			rw.log.Warnf("WATCH_ERROR | err=%q", err)

		case now := <-ticker.C:
			if !rw.due(now) {
				continue
			}
			if err := rw.limiter.Wait(ctx); err != nil {
				return nil
			}
			if err := onChange(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				rw.log.Warnf("PLOT_FAILED | file=%s err=%q", rw.path, err)
			}
		}
	}
}

// Close stops watching.
func (rw *resultsWatcher) Close() error {
	return rw.watcher.Close()
}

// =============================================================================
// PLOT --WATCH
// =============================================================================

// watchPlot renders once, then again after every change to the results
// file. A failed render is logged and watching continues.
func (a *App) watchPlot(ctx context.Context, cfg *config.Config, req *plotRequest) error {
	render := func(ctx context.Context) error {
		report, err := a.plot(ctx, cfg, req)
		if err != nil {
			return err
		}
		err = a.printPlotReport(report, req)
		// Files are opened once; later renders replace them in place
		req.Open = false
		return err
	}

	if err := render(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		DisplayError(a.Stderr, err, false)
	}

	debounce := time.Duration(cfg.Watch.DebounceMS) * time.Millisecond
	rw, err := newResultsWatcher(req.ResultsPath, debounce, a.log)
	if err != nil {
		return NewCommandError("plot", "watch", req.ResultsPath, err)
	}
	defer rw.Close()

	a.log.Infof("WATCH_STARTED | file=%s debounce=%s", rw.path, debounce)
	err = rw.Run(ctx, render)
	a.log.Infof("WATCH_STOPPED | file=%s", rw.path)
	return err
}
