// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"
	"log"
)

// logger writes "EVENT | key=value" lines to stderr. Quiet drops Infof,
// Debugf is only written in verbose mode. Warnings are always written.
type logger struct {
	l       *log.Logger
	quiet   bool
	verbose bool
}

func newLogger(w io.Writer, quiet, verbose bool) *logger {
	return &logger{
		l:       log.New(w, "", log.LstdFlags),
		quiet:   quiet,
		verbose: verbose && !quiet,
	}
}

func (lg *logger) Infof(format string, args ...interface{}) {
	if lg.quiet {
		return
	}
	lg.l.Printf(format, args...)
}

func (lg *logger) Debugf(format string, args ...interface{}) {
	if !lg.verbose {
		return
	}
	lg.l.Printf(format, args...)
}

func (lg *logger) Warnf(format string, args ...interface{}) {
	lg.l.Printf("WARN "+format, args...)
}
