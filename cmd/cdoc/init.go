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
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/cdoc/internal/bootstrap"
	"github.com/kraklabs/cdoc/internal/errors"
	"github.com/kraklabs/cdoc/internal/output"
	"github.com/kraklabs/cdoc/internal/ui"
	"github.com/kraklabs/cdoc/pkg/docgen"
	"github.com/kraklabs/cdoc/pkg/ingestion"
)

// initFlags holds parsed flags for the init command.
type initFlags struct {
	force, withCache bool
	mode, anonymous  string
	dir              string
}

// runInit executes the 'init' CLI command, writing .cdoc.yaml with the
// default settings.
//
// Examples:
//
//	cdoc init                          Write ./.cdoc.yaml
//	cdoc init --cache                  Also enable and create the result cache
//	cdoc init --mode simplified --force
func runInit(args []string, g GlobalFlags, s streams) error {
	var f initFlags
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.BoolVar(&f.force, "force", false, "Overwrite existing configuration")
	fs.BoolVar(&f.withCache, "cache", false, "Enable the scan result cache and create it")
	fs.StringVar(&f.mode, "mode", "", "Default declaration finder: auto, treesitter or simplified")
	fs.StringVar(&f.anonymous, "anonymous", "", "Anonymous parameter policy: skip or placeholder")
	fs.StringVar(&f.dir, "dir", ".", "Project directory")
	fs.Usage = func() {
		fmt.Fprint(s.err, `Usage: cdoc init [options]

Creates .cdoc.yaml with the default scan and comment settings.

Options:
`)
		fmt.Fprint(s.err, fs.FlagUsages())
	}
	if done, err := parseFlags(fs, args, s); done {
		return err
	}

	dir, err := filepath.Abs(f.dir)
	if err != nil {
		return errors.NewInputError("Invalid --dir", err.Error(), "")
	}
	configPath := ConfigPath(dir)
	if g.ConfigPath != "" {
		configPath = g.ConfigPath
	}
	if _, err := os.Stat(configPath); err == nil && !f.force {
		return errors.NewConfigError(
			configPath+" already exists",
			"",
			"Use --force to overwrite",
			nil,
		)
	}

	cfg, err := createInitConfig(f)
	if err != nil {
		return err
	}

	var info *bootstrap.ProjectInfo
	if f.withCache {
		info, err = bootstrap.InitProject(bootstrap.ProjectConfig{Root: dir, TTL: cfg.Cache.TTL}, slog.Default())
		if err != nil {
			return errors.NewCacheError("Cannot create the result cache", err.Error(),
				"Check permissions of "+bootstrap.DefaultCacheDir(dir), err)
		}
	}

	if err := SaveConfig(configPath, cfg); err != nil {
		return errors.NewPermissionError("Cannot write configuration", err.Error(),
			"Check permissions of "+filepath.Dir(configPath), err)
	}

	if g.JSON {
		return output.JSONTo(s.out, struct {
			Config string                 `json:"config"`
			Cache  *bootstrap.ProjectInfo `json:"cache,omitempty"`
		}{configPath, info})
	}
	ui.Successf("Created %s", configPath)
	if info != nil {
		ui.Successf("Result cache at %s", info.CacheDir)
	}
	if !g.Quiet {
		fmt.Fprintln(s.out)
		fmt.Fprintln(s.out, "Next steps:")
		fmt.Fprintln(s.out, "  cdoc scan          Document every declaration in the tree")
		fmt.Fprintln(s.out, "  cdoc doc '<decl>'  Generate one comment block")
	}
	return nil
}

func createInitConfig(f initFlags) (*Config, error) {
	cfg := DefaultConfig()
	if f.mode != "" {
		mode, err := ingestion.ParseParserMode(f.mode)
		if err != nil {
			return nil, errors.NewInputError("Invalid --mode", err.Error(), "Use auto, treesitter or simplified")
		}
		cfg.Scan.ParserMode = string(mode)
	}
	if f.anonymous != "" {
		cfg.Docgen.Anonymous = f.anonymous
	}
	cfg.Cache.Enabled = f.withCache
	if err := cfg.Validate(); err != nil {
		return nil, errors.NewInputError("Invalid settings", err.Error(),
			fmt.Sprintf("Use --anonymous %s or --anonymous %s", docgen.AnonymousSkip, docgen.AnonymousPlaceholder))
	}
	return cfg, nil
}
