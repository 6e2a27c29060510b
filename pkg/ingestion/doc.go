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

// Package ingestion scans C and C++ source trees for function declarations
// and runs each one through the extraction core in pkg/sigparse.
//
// # Pipeline Overview
//
// A scan processes code in three stages:
//
//  1. Discovery: select .c, .cc, .cpp, .h, .hpp and related files under
//     the root, honoring exclude globs, .gitignore and a size limit
//  2. Finding: cut every function declaration out of each file as a
//     Candidate, joining declarations that span several lines
//  3. Extraction: reduce each candidate to its name, return type and
//     parameter names, and render a comment block with pkg/docgen
//
// Files are scanned by a worker pool. Per-file results can be kept in a
// ResultCache keyed by content, so unchanged files are not parsed again.
//
// # Finders
//
// Two DeclarationFinder implementations exist:
//   - TreeSitterFinder walks the Tree-sitter C or C++ syntax tree
//   - SimplifiedFinder joins lines into statements and tests each one
//
// ParserModeAuto uses Tree-sitter and falls back to the simplified finder
// for files the grammar reports syntax errors in, which is common in code
// that leans on macros.
//
// # Quick Start
//
//	cfg := ingestion.DefaultConfig("./src")
//	cfg.ParseWorkers = 8
//
//	pipeline, err := ingestion.NewLocalPipeline(cfg, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := pipeline.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Scanned %d files, %d declarations\n",
//	    result.FilesScanned, result.Declarations)
//
// A declaration that cannot be extracted does not fail the run. Its
// DeclarationRecord carries the error and its kind, and the kinds are
// tallied in ScanResult.ErrorsByKind.
//
// # Metrics
//
// Prometheus metrics named cdoc_scan_* are registered with the default
// registry on first use.
package ingestion
