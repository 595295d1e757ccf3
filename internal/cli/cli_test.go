// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"reflect"
	"testing"
)

// =============================================================================
// ARG PARSER TESTS (args.go)
// =============================================================================

func TestArgParser_BasicParsing(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		bools    []string
		wantSub  string
		validate func(*testing.T, *ArgParser)
	}{
		{
			name:    "simple subcommand",
			args:    []string{"show"},
			wantSub: "show",
		},
		{
			name:    "subcommand with flag",
			args:    []string{"list", "--limit", "50"},
			wantSub: "list",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("limit") != "50" {
					t.Errorf("Flag(limit) = %q, want %q", p.Flag("limit"), "50")
				}
			},
		},
		{
			name:    "flag with equals",
			args:    []string{"--results=rel/other.csv"},
			wantSub: "",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("results") != "rel/other.csv" {
					t.Errorf("Flag(results) = %q", p.Flag("results"))
				}
			},
		},
		{
			name:    "trailing boolean flag",
			args:    []string{"show", "--json"},
			wantSub: "show",
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("json") {
					t.Error("BoolFlag(json) should be true")
				}
			},
		},
		{
			name:    "known boolean does not swallow subcommand",
			args:    []string{"--json", "show", "abc"},
			bools:   []string{"json"},
			wantSub: "show",
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("json") {
					t.Error("BoolFlag(json) should be true")
				}
				if p.Positional(1) != "abc" {
					t.Errorf("Positional(1) = %q, want abc", p.Positional(1))
				}
			},
		},
		{
			name:    "double dash ends flags",
			args:    []string{"set", "--", "--odd"},
			wantSub: "set",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Positional(1) != "--odd" {
					t.Errorf("Positional(1) = %q, want --odd", p.Positional(1))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewArgParser(tt.args, tt.bools...)
			if got := p.Subcommand(); got != tt.wantSub {
				t.Errorf("Subcommand() = %q, want %q", got, tt.wantSub)
			}
			if tt.validate != nil {
				tt.validate(t, p)
			}
		})
	}
}

func TestArgParser_FlagIntList(t *testing.T) {
	p := NewArgParser([]string{"--sizes", "2k,8000, 1m", "--workers", "1,x"})

	sizes, ok, err := p.FlagIntList("sizes")
	if err != nil || !ok {
		t.Fatalf("FlagIntList(sizes) = %v, %v, %v", sizes, ok, err)
	}
	if want := []int{2000, 8000, 1000000}; !reflect.DeepEqual(sizes, want) {
		t.Errorf("sizes = %v, want %v", sizes, want)
	}

	if _, ok, err := p.FlagIntList("workers"); err == nil || !ok {
		t.Errorf("FlagIntList(workers) should fail on x, got ok=%v err=%v", ok, err)
	}

	if _, ok, err := p.FlagIntList("missing"); ok || err != nil {
		t.Errorf("FlagIntList(missing) = ok %v err %v, want not given", ok, err)
	}
}

func TestArgParser_Unknown(t *testing.T) {
	p := NewArgParser([]string{"--json", "--bogus", "1"}, "json")
	if err := p.Unknown("json"); err == nil {
		t.Error("Unknown should reject --bogus")
	} else if ExitCodeFor(err) != ExitUsageError {
		t.Errorf("exit code = %d, want %d", ExitCodeFor(err), ExitUsageError)
	}
	if err := p.Unknown("json", "bogus"); err != nil {
		t.Errorf("Unknown with every flag allowed: %v", err)
	}
}

func TestParseCount(t *testing.T) {
	tests := map[string]int{"1": 1, "4k": 4000, "4K": 4000, "1_000": 1000, "2m": 2000000}
	for in, want := range tests {
		got, err := parseCount(in)
		if err != nil || got != want {
			t.Errorf("parseCount(%q) = %d, %v, want %d", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "0", "-5", "k", "1.5k"} {
		if _, err := parseCount(bad); err == nil {
			t.Errorf("parseCount(%q) should fail", bad)
		}
	}
}

// =============================================================================
// COMMAND PARSING TESTS (cli.go)
// =============================================================================

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		argv    []string
		wantCmd Command
		wantRaw []string
		check   func(*testing.T, Args)
	}{
		{
			name:    "no arguments plots",
			argv:    nil,
			wantCmd: CmdPlot,
		},
		{
			name:    "leading flags plot",
			argv:    []string{"--l2-kb", "256"},
			wantCmd: CmdPlot,
			wantRaw: []string{"--l2-kb", "256"},
		},
		{
			name:    "bench with flags",
			argv:    []string{"bench", "--sizes", "2k"},
			wantCmd: CmdBench,
			wantRaw: []string{"--sizes", "2k"},
		},
		{
			name:    "global flags anywhere",
			argv:    []string{"-q", "history", "show", "ab", "--no-history", "--config=/tmp/c.toml"},
			wantCmd: CmdHistory,
			wantRaw: []string{"show", "ab"},
			check: func(t *testing.T, a Args) {
				if !a.Quiet || !a.NoHistory || a.ConfigPath != "/tmp/c.toml" {
					t.Errorf("globals = %+v", a)
				}
			},
		},
		{
			name:    "verbose short flag",
			argv:    []string{"cpu", "-v"},
			wantCmd: CmdCPU,
			check: func(t *testing.T, a Args) {
				if !a.Verbose {
					t.Error("Verbose should be set")
				}
			},
		},
		{
			name:    "help flag",
			argv:    []string{"--help"},
			wantCmd: CmdHelp,
		},
		{
			name:    "version flag",
			argv:    []string{"--version"},
			wantCmd: CmdVersion,
		},
		{
			name:    "unknown command",
			argv:    []string{"frobnicate"},
			wantCmd: CmdUnknown,
			check: func(t *testing.T, a Args) {
				if a.Name != "frobnicate" {
					t.Errorf("Name = %q", a.Name)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := ParseArgs(tt.argv)
			if cmd != tt.wantCmd {
				t.Errorf("command = %v, want %v", cmd, tt.wantCmd)
			}
			if len(tt.wantRaw) > 0 && !reflect.DeepEqual(args.Raw, tt.wantRaw) {
				t.Errorf("Raw = %q, want %q", args.Raw, tt.wantRaw)
			}
			if tt.check != nil {
				tt.check(t, args)
			}
		})
	}
}

func TestCommand_String(t *testing.T) {
	if CmdHistory.String() != "history" || CmdUnknown.String() != "unknown" {
		t.Errorf("unexpected names %q %q", CmdHistory, CmdUnknown)
	}
}

// =============================================================================
// SUGGESTION TESTS (suggest.go)
// =============================================================================

func TestSuggestCommand(t *testing.T) {
	tests := map[string]string{
		"plto":    "plot",
		"bnech":   "bench",
		"histroy": "history",
		"hepl":    "help",
		"plot":    "",
		"x":       "",
		"zzzzzz":  "",
	}
	for in, want := range tests {
		if got := SuggestCommand(in); got != want {
			t.Errorf("SuggestCommand(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDidYouMean_Flags(t *testing.T) {
	err := NewArgParser([]string{"--resluts", "x.csv"}).Unknown(plotFlags...)
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("Unknown() = %v, want *ValidationError", err)
	}
	if ve.Example != "did you mean --results?" {
		t.Errorf("Example = %q", ve.Example)
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"plot", "plot", 0},
		{"plot", "plto", 2},
		{"bench", "bnch", 1},
		{"kitten", "sitting", 3},
	}
	for _, tt := range tests {
		if got := levenshteinDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
