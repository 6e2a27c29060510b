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
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/cdoc/internal/errors"
	"github.com/kraklabs/cdoc/internal/ui"
	"github.com/kraklabs/cdoc/pkg/server"
)

// runServe executes the 'serve' CLI command, serving the HTTP API until
// SIGINT or SIGTERM.
//
// Examples:
//
//	cdoc serve
//	cdoc serve --addr 0.0.0.0:7411 --debug
func runServe(args []string, g GlobalFlags, s streams) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", "", "Listen address (default: serve.addr from .cdoc.yaml)")
	debug := fs.Bool("debug", false, "Enable gin debug mode and request logging")
	fs.Usage = func() {
		fmt.Fprint(s.err, `Usage: cdoc serve [options]

Serves the extraction API:
  POST /v1/params   {"declaration": "..."}
  POST /v1/doc      {"declaration": "...", "indent": "    "}
  GET  /healthz
  GET  /metrics

Options:
`)
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

	sc := server.DefaultConfig()
	sc.Addr = cfg.Serve.Addr
	if *addr != "" {
		sc.Addr = *addr
	}
	sc.Debug = *debug
	sc.Doc = cfg.Docgen

	srv, err := server.New(sc, slog.Default())
	if err != nil {
		return errors.NewConfigError("Invalid comment layout", err.Error(), "Check the docgen section of .cdoc.yaml", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !g.Quiet {
		ui.Infof("Serving on http://%s (Ctrl+C to stop)", sc.Addr)
	}
	if err := srv.Run(ctx); err != nil {
		return errors.NewNetworkError("Cannot serve on "+sc.Addr, err.Error(),
			"Pick a free address with --addr", err)
	}
	return nil
}
