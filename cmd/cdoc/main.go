// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main implements the cdoc CLI, which extracts parameter lists from
// C and C++ function declarations and generates Doxygen-style comment
// blocks for them.
//
// Usage:
//
//	cdoc params <declaration>       Print the parameter names of a declaration
//	cdoc doc <declaration>          Print the comment block for a declaration
//	cdoc scan [path]                Find and document every declaration in a tree
//	cdoc init                       Create .cdoc.yaml configuration
//	cdoc serve                      Serve the HTTP API
//	cdoc cache [--clear]            Show or clear the scan result cache
//	cdoc completion <shell>         Generate a shell completion script
package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/cdoc/internal/errors"
	"github.com/kraklabs/cdoc/internal/ui"
)

// Version information (set via ldflags during build)
var (
	version = "dev"     // Version string
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// GlobalFlags are the options accepted before the command name.
type GlobalFlags struct {
	ConfigPath string
	JSON       bool
	NoColor    bool
	Quiet      bool
	Verbose    int
}

// streams are the standard streams a command reads and writes.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

type command struct {
	name    string
	summary string
	run     func(args []string, g GlobalFlags, s streams) error
}

var commands []command

// Set in init: runCompletion ranges over commands.
func init() {
	commands = []command{
		{"params", "Print the parameter names of a declaration", runParams},
		{"doc", "Print the comment block for a declaration", runDoc},
		{"scan", "Find and document every declaration in a tree", runScan},
		{"init", "Create .cdoc.yaml configuration", runInit},
		{"serve", "Serve the HTTP API", runServe},
		{"cache", "Show or clear the scan result cache", runCache},
		{"completion", "Generate shell completion script (bash|zsh|fish)", runCompletion},
	}
}

func main() {
	os.Exit(run(os.Args[1:], streams{in: os.Stdin, out: os.Stdout, err: os.Stderr}))
}

// run parses the global flags, dispatches to a command and returns the
// process exit code.
func run(args []string, s streams) int {
	var g GlobalFlags
	fs := flag.NewFlagSet("cdoc", flag.ContinueOnError)
	fs.SetOutput(s.err)
	fs.SetInterspersed(false)
	showVersion := fs.Bool("version", false, "Show version and exit")
	fs.StringVar(&g.ConfigPath, "config", "", "Path to .cdoc.yaml (default: ./.cdoc.yaml or $CDOC_CONFIG)")
	fs.BoolVar(&g.JSON, "json", false, "Machine-readable JSON output")
	fs.BoolVar(&g.NoColor, "no-color", false, "Disable colored output")
	fs.BoolVarP(&g.Quiet, "quiet", "q", false, "Suppress progress and informational output")
	fs.CountVarP(&g.Verbose, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	fs.Usage = func() { usage(s.err, fs) }

	if err := fs.Parse(args); err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			return errors.ExitSuccess
		}
		return errors.Report(s.err, errors.NewInputError("Invalid flags", err.Error(), "Run 'cdoc --help' for usage"), false, true)
	}

	if *showVersion {
		fmt.Fprintf(s.out, "cdoc version %s\n", version)
		fmt.Fprintf(s.out, "commit: %s\n", commit)
		fmt.Fprintf(s.out, "built: %s\n", date)
		return errors.ExitSuccess
	}

	// JSON output implies quiet so progress never interleaves with it.
	if g.JSON {
		g.Quiet = true
	}
	ui.InitColors(g.NoColor || os.Getenv("NO_COLOR") != "")
	ui.Out = s.out
	slog.SetDefault(newLogger(s.err, g))

	rest := fs.Args()
	if len(rest) == 0 {
		usage(s.err, fs)
		return errors.ExitInput
	}

	name, cmdArgs := rest[0], rest[1:]
	for _, c := range commands {
		if c.name == name {
			return errors.Report(s.err, c.run(cmdArgs, g, s), g.JSON, g.NoColor)
		}
	}
	return errors.Report(s.err, errors.NewInputError(
		"Unknown command: "+name,
		"",
		"Run 'cdoc --help' to list commands",
	), g.JSON, g.NoColor)
}

// newLogger returns a text logger on w. Warnings are always shown, -v adds
// info and -vv debug.
func newLogger(w io.Writer, g GlobalFlags) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case g.Verbose >= 2:
		level = slog.LevelDebug
	case g.Verbose == 1:
		level = slog.LevelInfo
	case g.Quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func usage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprint(w, `cdoc - C/C++ declaration documenter

cdoc reads C and C++ function declarations, extracts their parameter
names and generates Doxygen comment blocks for them. It works on a single
declaration or on a whole source tree.

Usage:
  cdoc [global options] <command> [options]

Commands:
`)
	for _, c := range commands {
		fmt.Fprintf(w, "  %-12s %s\n", c.name, c.summary)
	}
	fmt.Fprint(w, "\nGlobal Options:\n")
	fmt.Fprint(w, fs.FlagUsages())
	fmt.Fprint(w, `
Examples:
  cdoc params 'int add(int a, int b = 2);'
  cdoc doc '    void resize(int width, int height);'
  cdoc scan src/ --mode treesitter
  cdoc --json scan . --since main
  cdoc serve --addr 127.0.0.1:7411

For detailed command help: cdoc <command> --help
`)
}

// parseFlags parses command flags. done is true when --help was requested
// and the command should return without doing anything.
func parseFlags(fs *flag.FlagSet, args []string, s streams) (done bool, err error) {
	fs.SetOutput(s.err)
	if err := fs.Parse(args); err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			return true, nil
		}
		return true, errors.NewInputError("Invalid flags for cdoc "+fs.Name(), err.Error(),
			"Run 'cdoc "+fs.Name()+" --help' for usage")
	}
	return false, nil
}
