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

package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kraklabs/cdoc/pkg/cache"
)

// ProjectDirName is the per-project directory holding cdoc state.
const ProjectDirName = ".cdoc"

// scanPrefix is the key prefix of cached scan results.
const scanPrefix = "scan:"

// ProjectConfig holds configuration for setting up a project.
type ProjectConfig struct {
	// Root is the directory that gets scanned.
	Root string

	// CacheDir is where the result cache lives.
	// Defaults to <Root>/.cdoc/cache
	CacheDir string

	// TTL is the lifetime of cache entries. Zero uses cache.DefaultTTL.
	TTL time.Duration
}

// ProjectInfo holds information about an initialized project.
type ProjectInfo struct {
	Root     string `json:"root"`
	CacheDir string `json:"cache_dir"`
	Entries  int    `json:"entries"`
}

// DefaultCacheDir returns the cache location for a project rooted at root.
func DefaultCacheDir(root string) string {
	return filepath.Join(root, ProjectDirName, "cache")
}

func (c *ProjectConfig) applyDefaults() error {
	if c.Root == "" {
		return errors.New("root is required")
	}
	if c.CacheDir == "" {
		c.CacheDir = DefaultCacheDir(c.Root)
	}
	return nil
}

// InitProject creates the cache directory and database for a project.
// This function is idempotent: calling it again keeps existing entries.
func InitProject(config ProjectConfig, logger *slog.Logger) (*ProjectInfo, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := config.applyDefaults(); err != nil {
		return nil, err
	}

	logger.Info("bootstrap.project.init.start",
		"root", config.Root,
		"cache_dir", config.CacheDir,
	)

	store, err := OpenCache(config, logger)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	n, err := store.Count(scanPrefix)
	if err != nil {
		return nil, fmt.Errorf("count cache entries: %w", err)
	}

	logger.Info("bootstrap.project.init.success",
		"cache_dir", config.CacheDir,
		"entries", n,
	)
	return &ProjectInfo{Root: config.Root, CacheDir: config.CacheDir, Entries: n}, nil
}

// OpenCache opens the result cache of a project, creating it if needed.
// The caller closes the returned store.
func OpenCache(config ProjectConfig, logger *slog.Logger) (*cache.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := config.applyDefaults(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(config.CacheDir, 0750); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	logger.Debug("bootstrap.cache.open", "cache_dir", config.CacheDir)
	return cache.Open(cache.Options{Dir: config.CacheDir, TTL: config.TTL}, logger)
}

// CacheStatus reports the cache of a project without creating it.
// Entries is zero when the cache does not exist yet.
func CacheStatus(config ProjectConfig, logger *slog.Logger) (*ProjectInfo, error) {
	if err := config.applyDefaults(); err != nil {
		return nil, err
	}
	info := &ProjectInfo{Root: config.Root, CacheDir: config.CacheDir}
	if _, err := os.Stat(config.CacheDir); os.IsNotExist(err) {
		return info, nil
	}

	store, err := OpenCache(config, logger)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	if info.Entries, err = store.Count(scanPrefix); err != nil {
		return nil, fmt.Errorf("count cache entries: %w", err)
	}
	return info, nil
}

// ClearCache drops every cached scan result and returns how many there were.
func ClearCache(config ProjectConfig, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	store, err := OpenCache(config, logger)
	if err != nil {
		return 0, err
	}
	defer func() { _ = store.Close() }()

	n, err := store.Count(scanPrefix)
	if err != nil {
		return 0, fmt.Errorf("count cache entries: %w", err)
	}
	if err := store.Clear(); err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	logger.Info("bootstrap.cache.cleared", "cache_dir", config.CacheDir, "entries", n)
	return n, nil
}
