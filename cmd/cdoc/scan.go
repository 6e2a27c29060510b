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

package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"github.com/kraklabs/cdoc/internal/bootstrap"
	"github.com/kraklabs/cdoc/internal/errors"
	"github.com/kraklabs/cdoc/internal/output"
	"github.com/kraklabs/cdoc/internal/ui"
	"github.com/kraklabs/cdoc/pkg/ingestion"
)

// scanFlags holds parsed flags for the scan command.
type scanFlags struct {
	jsonOut, jsonl, comments, failedOnly, strict, noCache bool
	mode, since, metricsAddr, cacheDir                    string
	workers, maxJoinLines                                 int
	exclude                                               []string
}

// runScan executes the 'scan' CLI command: it walks a file or directory,
// finds every function declaration and extracts its parameters and
// comment block.
//
// Examples:
//
//	cdoc scan                         Scan the current directory
//	cdoc scan src/ --mode treesitter  Use the tree-sitter finder only
//	cdoc scan --since origin/main     Only files changed since a ref
//	cdoc scan --jsonl > decls.jsonl   One JSON record per declaration
//	cdoc scan --metrics-addr :9464    Expose Prometheus metrics while scanning
func runScan(args []string, g GlobalFlags, s streams) error {
	f, fset := parseScanFlags()
	fset.Usage = func() {
		fmt.Fprint(s.err, `Usage: cdoc scan [options] [path]

Finds every function declaration under path (default: .) and extracts its
parameter names and comment block. Settings default to the scan section
of .cdoc.yaml.

Options:
`)
		fmt.Fprint(s.err, fset.FlagUsages())
	}
	if done, err := parseFlags(fset, args, s); done {
		return err
	}
	if fset.NArg() > 1 {
		return errors.NewInputError("Too many arguments", "cdoc scan takes at most one path", "")
	}
	root := "."
	if fset.NArg() == 1 {
		root = fset.Arg(0)
	}

	cfg, err := LoadConfig(g.ConfigPath)
	if err != nil {
		return errors.NewConfigError("Cannot load cdoc configuration", err.Error(),
			"Fix the file or recreate it with: cdoc init --force", err)
	}
	ic := cfg.ingestionConfig(root)
	if err := applyScanFlags(&ic, f, fset); err != nil {
		return err
	}

	logger := slog.Default()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if f.metricsAddr != "" {
		shutdown := serveMetrics(f.metricsAddr, logger)
		defer shutdown()
	}

	if !f.noCache && (cfg.Cache.Enabled || f.cacheDir != "") {
		dir := f.cacheDir
		if dir == "" {
			dir = cfg.Cache.Dir
		}
		store, err := bootstrap.OpenCache(bootstrap.ProjectConfig{Root: ".", CacheDir: dir, TTL: cfg.Cache.TTL}, logger)
		if err != nil {
			return errors.NewCacheError("Cannot open the result cache", err.Error(),
				"Pass --no-cache, or run 'cdoc cache --clear' if the cache is corrupted", err)
		}
		defer func() { _ = store.Close() }()
		ic.Cache = store
	}

	progress := newScanProgress(NewProgressConfig(g))
	if progress != nil {
		ic.Progress = progress.report
	}

	pipeline, err := ingestion.NewLocalPipeline(ic, logger)
	if err != nil {
		return errors.NewInputError("Invalid scan settings", err.Error(), "Check the flags and the scan section of .cdoc.yaml")
	}
	res, err := pipeline.Run(ctx)
	progress.finish(res)
	if err != nil {
		return scanError(err, root)
	}

	switch {
	case f.jsonl:
		for _, file := range res.Files {
			for _, rec := range file.Declarations {
				if f.failedOnly && !rec.Failed() {
					continue
				}
				if err := output.JSONCompactTo(s.out, rec); err != nil {
					return err
				}
			}
		}
	case f.jsonOut || g.JSON:
		if err := output.JSONTo(s.out, res); err != nil {
			return err
		}
	default:
		printScan(res, f.comments, f.failedOnly)
		if !g.Quiet {
			printScanSummary(res)
		}
	}

	if f.strict && res.Declarations > res.Documented {
		return &errors.UserError{
			Message:  fmt.Sprintf("%d declaration(s) could not be parsed", res.Declarations-res.Documented),
			Fix:      "Run 'cdoc scan --failed' to list them",
			ExitCode: errors.ExitExtraction,
		}
	}
	return nil
}

func parseScanFlags() (*scanFlags, *flag.FlagSet) {
	f := &scanFlags{}
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	fs.BoolVar(&f.jsonOut, "json", false, "Output the full result as JSON")
	fs.BoolVar(&f.jsonl, "jsonl", false, "Output one JSON record per declaration")
	fs.BoolVar(&f.comments, "comments", false, "Print the generated comment blocks")
	fs.BoolVar(&f.failedOnly, "failed", false, "Only list declarations that could not be parsed")
	fs.BoolVar(&f.strict, "strict", false, "Exit with code 7 when any declaration could not be parsed")
	fs.StringVar(&f.mode, "mode", "", "Declaration finder: auto, treesitter or simplified")
	fs.IntVar(&f.workers, "workers", 0, "Number of parallel parse workers")
	fs.IntVar(&f.maxJoinLines, "max-join-lines", 0, "Longest declaration, in lines, the simplified finder joins")
	fs.StringSliceVar(&f.exclude, "exclude", nil, "Additional exclude globs (repeatable)")
	fs.StringVar(&f.since, "since", "", "Only scan files changed relative to this git ref")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")
	fs.StringVar(&f.cacheDir, "cache-dir", "", "Result cache directory (enables the cache)")
	fs.BoolVar(&f.noCache, "no-cache", false, "Disable the result cache")
	return f, fs
}

func applyScanFlags(ic *ingestion.Config, f *scanFlags, fset *flag.FlagSet) error {
	if fset.Changed("mode") {
		mode, err := ingestion.ParseParserMode(f.mode)
		if err != nil {
			return errors.NewInputError("Invalid --mode", err.Error(), "Use auto, treesitter or simplified")
		}
		ic.ParserMode = mode
	}
	if f.workers < 0 || f.maxJoinLines < 0 {
		return errors.NewInputError("Invalid flags", "--workers and --max-join-lines must not be negative", "")
	}
	if f.workers > 0 {
		ic.ParseWorkers = f.workers
	}
	if f.maxJoinLines > 0 {
		ic.MaxJoinLines = f.maxJoinLines
	}
	ic.ExcludeGlobs = append(ic.ExcludeGlobs, f.exclude...)
	ic.Since = f.since
	return nil
}

func scanError(err error, root string) error {
	switch {
	case stderrors.Is(err, context.Canceled):
		return &errors.UserError{Message: "Scan interrupted", ExitCode: errors.ExitInternal, Err: err}
	case stderrors.Is(err, fs.ErrNotExist):
		return errors.NewNotFoundError("Path not found: "+root, err.Error(), "Check the path and try again")
	case stderrors.Is(err, fs.ErrPermission):
		return errors.NewPermissionError("Cannot read "+root, err.Error(), "Check file permissions", err)
	case strings.Contains(err.Error(), "detect changes since"):
		return errors.NewNotFoundError("Cannot compute changed files", err.Error(),
			"Run inside a git work tree and pass a ref that exists, e.g. --since HEAD")
	default:
		return errors.NewInternalError("Scan failed", err.Error(), "", err)
	}
}

// serveMetrics exposes /metrics on addr until the returned function is
// called.
func serveMetrics(addr string, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Info("metrics.http.start", "addr", addr, "path", "/metrics")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics.http.error", "err", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// printScan lists the declarations of every file.
func printScan(res *ingestion.ScanResult, comments, failedOnly bool) {
	for _, file := range res.Files {
		for _, rec := range file.Declarations {
			if failedOnly && !rec.Failed() {
				continue
			}
			loc := ui.Location(rec.File, rec.Line, rec.Column)
			if rec.Failed() {
				fmt.Fprintf(ui.Out, "%s  %s  %s\n", loc, ui.KindText(rec.ErrorKind), firstLine(rec.Text))
				continue
			}
			params := make([]string, len(rec.Params))
			for i, p := range rec.Params {
				params[i] = ui.ParamText(p)
			}
			fmt.Fprintf(ui.Out, "%s  %s(%s)\n", loc, ui.Label(displayName(rec.Name)), strings.Join(params, ", "))
			if comments {
				fmt.Fprintln(ui.Out, rec.Comment)
			}
		}
	}
}

func printScanSummary(res *ingestion.ScanResult) {
	fmt.Fprintln(ui.Out)
	ui.Header("Scan Summary")
	rows := [][2]string{
		{"Files:", ui.CountText(res.FilesScanned)},
		{"Declarations:", ui.CountText(res.Declarations)},
		{"Documented:", ui.CountText(res.Documented)},
		{"Parameters:", ui.CountText(res.Parameters)},
		{"Anonymous:", ui.CountText(res.AnonymousParams)},
	}
	if res.CacheHits+res.CacheMisses > 0 {
		rows = append(rows, [2]string{"Cache hits:", fmt.Sprintf("%d/%d", res.CacheHits, res.CacheHits+res.CacheMisses)})
	}
	rows = append(rows, [2]string{"Duration:", res.Duration.Round(time.Millisecond).String()})
	ui.Rows(rows)

	if len(res.ErrorsByKind) > 0 {
		fmt.Fprintln(ui.Out)
		ui.SubHeader("Errors:")
		for _, k := range sortedKeys(res.ErrorsByKind) {
			fmt.Fprintf(ui.Out, "  %s: %d\n", ui.KindText(k), res.ErrorsByKind[k])
		}
	}
	if len(res.SkipReasons) > 0 {
		fmt.Fprintln(ui.Out)
		ui.SubHeader("Skipped Files:")
		for _, k := range sortedKeys(res.SkipReasons) {
			fmt.Fprintf(ui.Out, "  %s: %d\n", k, res.SkipReasons[k])
		}
	}
	if res.FileErrors > 0 {
		ui.Warningf("%d file(s) could not be read", res.FileErrors)
	}
}

func displayName(name string) string {
	if name == "" {
		return "<unnamed>"
	}
	return name
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return strings.TrimSpace(line)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
