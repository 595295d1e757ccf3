// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and execution for sortbench.
//
// # Key Types
//
//   - Command: Enumeration of the available commands
//   - Args: Parsed global flags plus the command's own arguments
//   - App: Writers, configuration and CPU detector shared by every command
//   - ArgParser: Per-command flag parsing
//   - CommandError, ValidationError, NotFoundError: Structured errors
//
// # Usage
//
// Parse and execute commands:
//
//	cmd, args := cli.Parse()
//	if err := cli.Run(ctx, cmd, args); err != nil {
//	    cli.DisplayError(os.Stderr, err, false)
//	    os.Exit(cli.ExitCodeFor(err))
//	}
//
// # Commands Overview
//
//   - plot: Render the small, large and all regime plots (the default)
//   - bench: Run the sort sweep and write a results CSV
//   - cpu: Show the detected CPU and the derived cutoffs
//   - history: List, show and prune recorded runs
//   - config: Show, initialize and edit the configuration
//
// # Output
//
// Command results go to stdout, log lines ("EVENT | key=value") to stderr.
// Commands that accept --json wrap their result in JSONResponse.
package cli
