// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history_cmd.go - The history command: list, show and prune recorded runs.
//
// Usage:
//
//	sortbench history [list] [--kind plot|bench] [--limit N] [--json]
//	sortbench history show ID [--json]
//	sortbench history prune --keep N
package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/sortbench/internal/history"
	"github.com/jeranaias/sortbench/internal/util"
)

func (a *App) runHistory(ctx context.Context, raw []string) error {
	args := NewArgParser(raw, "json")
	if err := args.Unknown("json", "limit", "kind", "keep"); err != nil {
		return err
	}

	cfg, err := a.config()
	if err != nil {
		return err
	}
	store, err := a.openHistory(cfg)
	if err != nil {
		return NewCommandError("history", "open", "could not open history database", err)
	}
	defer store.Close()

	switch sub := args.Subcommand(); sub {
	case "", "list", "ls":
		return a.historyList(ctx, store, args)
	case "show":
		id := args.Positional(1)
		if id == "" {
			return ErrMissingArgument("id", "sortbench history show 3f2a")
		}
		return a.historyShow(ctx, store, id, args.BoolFlag("json"))
	case "prune":
		return a.historyPrune(ctx, store, args)
	default:
		return NewValidationErrorWithExample("subcommand", sub, "unknown history subcommand", "sortbench history show ID")
	}
}

func (a *App) historyList(ctx context.Context, store *history.Store, args *ArgParser) error {
	limit := history.DefaultListLimit
	if v := args.Flag("limit"); v != "" {
		n, err := ParseIntWithValidation(v, "limit")
		if err != nil {
			return NewValidationErrorWithExample("limit", v, "must be a positive integer", "--limit 50")
		}
		limit = n
	}

	kind := args.Flag("kind")
	if kind != "" && kind != history.KindPlot && kind != history.KindBench {
		return NewValidationErrorWithExample("kind", kind, "unknown run kind", "--kind plot")
	}

	runs, err := store.List(ctx, kind, limit)
	if err != nil {
		return NewCommandError("history", "list", "query failed", err)
	}

	if args.BoolFlag("json") {
		return NewJSONResponse("history", runs).Print(a.Stdout)
	}

	if len(runs) == 0 {
		fmt.Fprintln(a.Stdout, DimStyle.Render("No runs recorded yet."))
		return nil
	}

	fmt.Fprintf(a.Stdout, "%s  %s  %s  %s  %s  %s\n",
		util.PadRight("ID", 8), util.PadRight("KIND", 5), util.PadRight("STARTED", 19),
		util.PadRight("TOOK", 8), util.PadRight("ROWS", 6), "CPU")
	for _, r := range runs {
		fmt.Fprintf(a.Stdout, "%s  %s  %s  %s  %s  %s\n",
			HighlightStyle.Render(util.PadRight(r.ShortID(), 8)),
			util.PadRight(r.Kind, 5),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			util.PadRight(formatElapsed(r.Duration), 8),
			util.PadRight(strconv.Itoa(r.Rows), 6),
			util.TruncateWidth(r.Brand, 40))
	}
	return nil
}

func (a *App) historyShow(ctx context.Context, store *history.Store, id string, jsonMode bool) error {
	run, err := store.Get(ctx, id)
	switch {
	case errors.Is(err, history.ErrNotFound):
		return NewNotFoundError("run", id)
	case errors.Is(err, history.ErrAmbiguousID):
		return NewValidationErrorWithExample("id", id, "matches more than one run", "use more characters of the ID")
	case err != nil:
		return NewCommandError("history", "show", "query failed", err)
	}

	if jsonMode {
		return NewJSONResponse("history", run).Print(a.Stdout)
	}

	labels := []string{"ID", "Kind", "Started", "Duration", "CPU", "L2 cache", "Source", "Rows", "Files"}
	width := LabelWidth(labels...)
	l2 := "-"
	if run.L2KB > 0 {
		l2 = strconv.Itoa(run.L2KB) + " KB"
	}
	values := []string{
		run.ID,
		run.Kind,
		run.StartedAt.Local().Format(time.RFC3339),
		formatElapsed(run.Duration),
		orDash(run.Brand),
		l2,
		orDash(run.Source),
		strconv.Itoa(run.Rows),
		orDash(strings.Join(run.Files, "\n"+strings.Repeat(" ", width+3))),
	}

	fmt.Fprintln(a.Stdout, TitleStyle.Render("Run "+run.ShortID()))
	for i, label := range labels {
		fmt.Fprintln(a.Stdout, RenderKeyValue(label, values[i], width))
	}
	return nil
}

func (a *App) historyPrune(ctx context.Context, store *history.Store, args *ArgParser) error {
	v := args.Flag("keep")
	if v == "" {
		return ErrMissingArgument("keep", "sortbench history prune --keep 100")
	}
	keep, err := strconv.Atoi(v)
	if err != nil || keep < 0 {
		return NewValidationErrorWithExample("keep", v, "must be a non-negative integer", "--keep 100")
	}

	removed, err := store.Prune(ctx, keep)
	if err != nil {
		return NewCommandError("history", "prune", "delete failed", err)
	}
	a.log.Infof("HISTORY_PRUNED | removed=%d keep=%d", removed, keep)
	fmt.Fprintf(a.Stdout, "removed %d run(s)\n", removed)
	return nil
}

func formatElapsed(d time.Duration) string {
	switch {
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return d.Round(10 * time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
