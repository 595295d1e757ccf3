// sortbench - plots sorting benchmark results against the CPU cache regimes.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/jeranaias/sortbench/internal/cli"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, args := cli.Parse()

	err := cli.Run(ctx, cmd, args)
	if err == nil {
		return cli.ExitSuccess
	}

	jsonMode := slices.Contains(args.Raw, "--json")
	if jsonMode {
		cli.DisplayError(os.Stdout, err, true)
	} else {
		cli.DisplayError(os.Stderr, err, false)
	}
	return cli.ExitCodeFor(err)
}
