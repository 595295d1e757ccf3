// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command line parsing for sortbench.
package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdPlot Command = iota
	CmdBench
	CmdCPU
	CmdHistory
	CmdConfig
	CmdVersion
	CmdHelp
	CmdUnknown
)

var commandNames = map[Command]string{
	CmdPlot:    "plot",
	CmdBench:   "bench",
	CmdCPU:     "cpu",
	CmdHistory: "history",
	CmdConfig:  "config",
	CmdVersion: "version",
	CmdHelp:    "help",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet      bool
	Verbose    bool
	ConfigPath string
	NoHistory  bool

	// Name is the command word as typed, kept for unknown-command errors
	Name string

	// Raw holds the command's own arguments (subcommand and flags)
	Raw []string
}

const usageText = `sortbench - cache-regime sort benchmark plots

Plots sorting benchmark results against the host CPU's L1 and L2 cache
capacity, one figure per regime (small, large, all).

Usage:
  sortbench                  Same as "sortbench plot"
  sortbench plot             Render the regime plots from a results CSV
  sortbench bench            Run the benchmark sweep and write a results CSV
  sortbench cpu              Show the detected CPU and its cache cutoffs
  sortbench history          List recorded runs
  sortbench config           Show or edit the configuration
  sortbench version          Show version information
  sortbench help             Show this help

Plot options:
  --results PATH             Results CSV (default: rel/results.csv)
  --out DIR                  Output directory (default: .)
  --format pdf|svg|png       Output format (default: pdf)
  --regime LIST              Regimes to render, e.g. small,large (default: all three)
  --l2-kb N                  L2 cache size in KB, skips detection with --brand
  --brand NAME               CPU brand string used in file names
  --summary                  Print a Markdown summary of the run
  --json                     Print a JSON manifest of the run
  --watch                    Re-render whenever the results file changes
  --open                     Open the rendered files

Bench options:
  --out PATH                 Results CSV to write (default: rel/results.csv)
  --sizes a,b,...            Input sizes (accepts 4k, 1m)
  --workers a,b,...          Concurrent worker counts
  --measurements N           Timed sorts per worker
  --impl a,b,...             Implementations (sort, slices, stable)
  --seed N                   Shuffle seed
  --plot                     Render the plots when the sweep finishes

History:
  sortbench history [list] [--limit N] [--json]
  sortbench history show ID [--json]
  sortbench history prune --keep N

Config:
  sortbench config show | path | init [--force] | get KEY | set KEY VALUE

Global options:
  -q, --quiet                Only print results and errors
  -v, --verbose              Print debug logging
  --config PATH              Load configuration from PATH
  --no-history               Do not record this run in the history database

Exit codes:
  0 success, 1 error, 2 usage, 3 config, 7 not found, 8 interrupted,
  9 unusable results, 10 CPU detection

Examples:
  sortbench
  sortbench plot --l2-kb 256 --brand "Intel(R) Core(TM) i7-8700" --format svg
  sortbench bench --sizes 2k,8k,64k --workers 1,4 --plot
  sortbench history show 3f2a
`

// PrintUsage writes the usage text to w.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// VersionData is the JSON form of "sortbench version --json".
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}

func versionData() VersionData {
	return VersionData{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
}

// PrintVersion writes version information to w.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "sortbench version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go:         %s\n", runtime.Version())
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses argv (without the program name). Global flags may
// appear anywhere. With no command word the plot command runs.
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdPlot, parsedArgs
	}

	// Leading flags belong to the default plot command
	if strings.HasPrefix(remaining[0], "-") {
		switch remaining[0] {
		case "-h", "--help":
			return CmdHelp, parsedArgs
		case "--version":
			return CmdVersion, parsedArgs
		}
		parsedArgs.Raw = remaining
		return CmdPlot, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	parsedArgs.Name = cmd
	parsedArgs.Raw = remaining[1:]

	switch cmd {
	case "plot", "p":
		return CmdPlot, parsedArgs
	case "bench", "b":
		return CmdBench, parsedArgs
	case "cpu":
		return CmdCPU, parsedArgs
	case "history", "hist":
		return CmdHistory, parsedArgs
	case "config":
		return CmdConfig, parsedArgs
	case "version":
		return CmdVersion, parsedArgs
	case "help":
		return CmdHelp, parsedArgs
	default:
		return CmdUnknown, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == "--" {
			remaining = append(remaining, args[i:]...)
			break
		}

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--no-history":
			parsedArgs.NoHistory = true
		case "--config":
			if i+1 < len(args) {
				i++
				parsedArgs.ConfigPath = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--config=") {
				parsedArgs.ConfigPath = strings.TrimPrefix(arg, "--config=")
			} else {
				remaining = append(remaining, arg)
			}
		}
	}

	return remaining, parsedArgs
}
