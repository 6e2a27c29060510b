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
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/kraklabs/cdoc/pkg/ingestion"
)

// ProgressConfig decides whether cdoc scan draws a progress bar.
type ProgressConfig struct {
	// Enabled is false with --json, -q, or when stderr is not a TTY.
	Enabled bool

	Writer  io.Writer
	NoColor bool
}

// NewProgressConfig reads the global flags and checks whether stderr is a
// terminal.
func NewProgressConfig(globals GlobalFlags) ProgressConfig {
	fd := os.Stderr.Fd()
	return newProgressConfig(globals, os.Stderr, isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
}

func newProgressConfig(globals GlobalFlags, w io.Writer, tty bool) ProgressConfig {
	return ProgressConfig{
		Enabled: tty && !globals.Quiet && !globals.JSON,
		Writer:  w,
		NoColor: globals.NoColor,
	}
}

// scanProgress shows how many source files a scan has parsed. The bar is
// created on the first report, once the number of files is known. All
// methods are no-ops on a nil *scanProgress.
type scanProgress struct {
	cfg   ProgressConfig
	bar   *progressbar.ProgressBar
	start time.Time
}

// newScanProgress returns nil when progress is disabled.
func newScanProgress(cfg ProgressConfig) *scanProgress {
	if !cfg.Enabled {
		return nil
	}
	return &scanProgress{cfg: cfg, start: time.Now()}
}

// report has the signature of ingestion.ProgressFunc.
func (p *scanProgress) report(done, total int) {
	if p == nil {
		return
	}
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription(fmt.Sprintf("Parsing %d C/C++ files", total)),
			progressbar.OptionSetWriter(p.cfg.Writer),
			progressbar.OptionSetItsString("files"),
			progressbar.OptionShowIts(),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionEnableColorCodes(!p.cfg.NoColor),
			progressbar.OptionThrottle(100*time.Millisecond),
		)
	}
	_ = p.bar.Set(done)
}

// finish clears the bar and leaves a one-line tally in its place.
func (p *scanProgress) finish(res *ingestion.ScanResult) {
	if p == nil || p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	if res == nil {
		return
	}
	fmt.Fprintln(p.cfg.Writer, scanTally(res, time.Since(p.start)))
}

func scanTally(res *ingestion.ScanResult, elapsed time.Duration) string {
	return fmt.Sprintf("Parsed %d files: %d declarations, %d failed (%s)",
		res.FilesScanned, res.Declarations, res.Declarations-res.Documented, elapsed.Round(time.Millisecond))
}
