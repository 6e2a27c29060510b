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
	"fmt"

	"github.com/kraklabs/cdoc/pkg/docgen"
)

// ResultCache stores encoded per-file results between runs. Get reports
// ok=false for a missing key. Implementations must be safe for concurrent
// use by the parse workers.
type ResultCache interface {
	Get(key string) (value []byte, ok bool, err error)
	Put(key string, value []byte) error
}

// ProgressFunc is called after each file with the number of files done
// and the total. Calls may come from several goroutines, but never
// concurrently.
type ProgressFunc func(done, total int)

// Config holds the settings of a scan run.
type Config struct {
	// Root is a directory to walk or a single source file.
	Root string

	ExcludeGlobs     []string
	MaxFileSizeBytes int64
	RespectGitignore bool

	// Since limits the scan to files changed in the git working tree
	// relative to this ref. Empty scans everything.
	Since string

	ParserMode   ParserMode
	ParseWorkers int
	MaxJoinLines int

	// Doc shapes the generated comment blocks.
	Doc docgen.Config

	// Cache is optional.
	Cache ResultCache

	// Progress is optional.
	Progress ProgressFunc
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig(root string) Config {
	return Config{
		Root:             root,
		ExcludeGlobs:     append([]string(nil), DefaultExcludeGlobs...),
		MaxFileSizeBytes: 2 << 20,
		RespectGitignore: true,
		ParserMode:       DefaultParserMode,
		ParseWorkers:     4,
		MaxJoinLines:     DefaultMaxJoinLines,
		Doc:              docgen.DefaultConfig(),
	}
}

// Validate checks the settings that would otherwise fail mid-run.
func (c Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("scan root is empty")
	}
	if _, err := ParseParserMode(string(c.ParserMode)); err != nil {
		return err
	}
	if c.MaxFileSizeBytes < 0 {
		return fmt.Errorf("max file size must not be negative, got %d", c.MaxFileSizeBytes)
	}
	if err := c.Doc.Validate(); err != nil {
		return fmt.Errorf("doc: %w", err)
	}
	return nil
}
