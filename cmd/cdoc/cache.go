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
	"log/slog"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/cdoc/internal/bootstrap"
	"github.com/kraklabs/cdoc/internal/errors"
	"github.com/kraklabs/cdoc/internal/output"
	"github.com/kraklabs/cdoc/internal/ui"
)

// runCache executes the 'cache' CLI command, reporting or clearing the
// scan result cache.
func runCache(args []string, g GlobalFlags, s streams) error {
	fs := flag.NewFlagSet("cache", flag.ContinueOnError)
	clearAll := fs.Bool("clear", false, "Remove every cached result")
	dir := fs.String("cache-dir", "", "Result cache directory (default: cache.dir from .cdoc.yaml)")
	fs.Usage = func() {
		fmt.Fprint(s.err, "Usage: cdoc cache [--clear] [--cache-dir DIR]\n\nOptions:\n")
		fmt.Fprint(s.err, fs.FlagUsages())
	}
	if done, err := parseFlags(fs, args, s); done {
		return err
	}

	cfg, err := LoadConfig(g.ConfigPath)
	if err != nil {
		return errors.NewConfigError("Cannot load cdoc configuration", err.Error(),
			"Fix the file or recreate it with: cdoc init --force", err)
	}
	pc := bootstrap.ProjectConfig{Root: ".", CacheDir: cfg.Cache.Dir, TTL: cfg.Cache.TTL}
	if *dir != "" {
		pc.CacheDir = *dir
	}

	if *clearAll {
		n, err := bootstrap.ClearCache(pc, slog.Default())
		if err != nil {
			return errors.NewCacheError("Cannot clear the result cache", err.Error(),
				"Make sure no scan is running and try again", err)
		}
		if g.JSON {
			return output.JSONTo(s.out, map[string]int{"cleared": n})
		}
		ui.Successf("Removed %d cached result(s)", n)
		return nil
	}

	info, err := bootstrap.CacheStatus(pc, slog.Default())
	if err != nil {
		return errors.NewCacheError("Cannot open the result cache", err.Error(),
			"Run 'cdoc cache --clear' if the cache is corrupted", err)
	}
	if g.JSON {
		return output.JSONTo(s.out, info)
	}
	ui.Rows([][2]string{
		{"Cache:", ui.DimText(info.CacheDir)},
		{"Entries:", ui.CountText(info.Entries)},
		{"Enabled:", fmt.Sprint(cfg.Cache.Enabled)},
	})
	return nil
}
