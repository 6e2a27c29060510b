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

package ingestion

import (
	"context"
	"fmt"
	"log/slog"
)

// DeclarationFinder locates function declarations in a source file and
// hands them out as candidates for extraction. Finders decide which lines
// make up one declaration; the extraction core never sees whole files.
type DeclarationFinder interface {
	// FindDeclarations returns the candidates in content, ordered by offset.
	FindDeclarations(ctx context.Context, file FileInfo, content []byte) ([]Candidate, error)

	// Mode names the strategy, for logs and cache keys.
	Mode() ParserMode
}

// Ensure implementations satisfy the interface
var _ DeclarationFinder = (*TreeSitterFinder)(nil)
var _ DeclarationFinder = (*SimplifiedFinder)(nil)
var _ DeclarationFinder = (*autoFinder)(nil)

// ParserMode determines which finder implementation to use.
type ParserMode string

const (
	// ParserModeTreeSitter uses the Tree-sitter C++ grammar.
	// Requires CGO.
	ParserModeTreeSitter ParserMode = "treesitter"

	// ParserModeSimplified joins lines into statements and tests each one
	// with a pattern. Works on code Tree-sitter cannot parse, such as
	// declarations wrapped in unknown macros, at the cost of precision.
	ParserModeSimplified ParserMode = "simplified"

	// ParserModeAuto uses Tree-sitter and falls back to the simplified
	// finder for files with syntax errors.
	ParserModeAuto ParserMode = "auto"
)

// DefaultParserMode is the default parser mode.
const DefaultParserMode = ParserModeAuto

// DefaultMaxJoinLines caps how many source lines one declaration may span.
const DefaultMaxJoinLines = 16

// ParseParserMode validates a mode name from flags or config.
func ParseParserMode(s string) (ParserMode, error) {
	switch m := ParserMode(s); m {
	case ParserModeTreeSitter, ParserModeSimplified, ParserModeAuto:
		return m, nil
	case "":
		return DefaultParserMode, nil
	default:
		return "", fmt.Errorf("unknown parser mode %q (want treesitter, simplified or auto)", s)
	}
}

// NewDeclarationFinder builds the finder for mode.
func NewDeclarationFinder(mode ParserMode, maxJoinLines int, logger *slog.Logger) (DeclarationFinder, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch mode {
	case ParserModeTreeSitter:
		logger.Info("finder.mode", "mode", "treesitter")
		return NewTreeSitterFinder(logger), nil
	case ParserModeSimplified:
		logger.Info("finder.mode", "mode", "simplified")
		return NewSimplifiedFinder(maxJoinLines, logger)
	case ParserModeAuto, "":
		simple, err := NewSimplifiedFinder(maxJoinLines, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("finder.mode", "mode", "treesitter", "selected_by", "auto", "fallback", "simplified")
		return &autoFinder{ts: NewTreeSitterFinder(logger), simple: simple, logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown parser mode %q", mode)
	}
}

// autoFinder prefers Tree-sitter and retries a file with the simplified
// finder when the grammar reports syntax errors in it.
type autoFinder struct {
	ts     *TreeSitterFinder
	simple *SimplifiedFinder
	logger *slog.Logger
}

func (a *autoFinder) Mode() ParserMode { return ParserModeAuto }

func (a *autoFinder) FindDeclarations(ctx context.Context, file FileInfo, content []byte) ([]Candidate, error) {
	cands, syntaxErrors, err := a.ts.find(ctx, file, content)
	if err != nil {
		return nil, err
	}
	if syntaxErrors == 0 {
		return cands, nil
	}

	a.logger.Debug("finder.auto.fallback",
		"path", file.Path,
		"syntax_errors", syntaxErrors,
		"treesitter_candidates", len(cands),
	)
	return a.simple.FindDeclarations(ctx, file, content)
}
