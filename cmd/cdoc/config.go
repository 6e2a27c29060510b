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
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/cdoc/pkg/docgen"
	"github.com/kraklabs/cdoc/pkg/ingestion"
	"github.com/kraklabs/cdoc/pkg/server"
)

// ConfigFileName is the name of the project configuration file.
const ConfigFileName = ".cdoc.yaml"

// configVersion is written by SaveConfig.
const configVersion = "1"

// Config is the content of .cdoc.yaml.
type Config struct {
	Version string        `yaml:"version"`
	Scan    ScanConfig    `yaml:"scan"`
	Cache   CacheConfig   `yaml:"cache"`
	Docgen  docgen.Config `yaml:"docgen"`
	Serve   ServeConfig   `yaml:"serve"`
}

// ScanConfig holds the settings of cdoc scan.
type ScanConfig struct {
	ParserMode       string   `yaml:"parser_mode"`
	Workers          int      `yaml:"workers"`
	MaxFileSize      int64    `yaml:"max_file_size"`
	MaxJoinLines     int      `yaml:"max_join_lines"`
	Exclude          []string `yaml:"exclude,omitempty"`
	RespectGitignore bool     `yaml:"respect_gitignore"`
}

// CacheConfig holds the settings of the scan result cache.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`

	// Dir defaults to .cdoc/cache next to the config file.
	Dir string        `yaml:"dir,omitempty"`
	TTL time.Duration `yaml:"ttl"`
}

// ServeConfig holds the settings of cdoc serve.
type ServeConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	ic := ingestion.DefaultConfig(".")
	return &Config{
		Version: configVersion,
		Scan: ScanConfig{
			ParserMode:       string(ic.ParserMode),
			Workers:          ic.ParseWorkers,
			MaxFileSize:      ic.MaxFileSizeBytes,
			MaxJoinLines:     ic.MaxJoinLines,
			RespectGitignore: ic.RespectGitignore,
		},
		Cache: CacheConfig{
			Enabled: false,
			TTL:     30 * 24 * time.Hour,
		},
		Docgen: docgen.DefaultConfig(),
		Serve:  ServeConfig{Addr: server.DefaultAddr},
	}
}

// ConfigPath returns the config file location for a project directory.
func ConfigPath(dir string) string {
	return filepath.Join(dir, ConfigFileName)
}

// resolveConfigPath picks the config file: the explicit path, then
// $CDOC_CONFIG, then ./.cdoc.yaml. explicit is true when the user named
// the file and it must therefore exist.
func resolveConfigPath(path string) (resolved string, explicit bool) {
	if path != "" {
		return path, true
	}
	if env := os.Getenv("CDOC_CONFIG"); env != "" {
		return env, true
	}
	return ConfigPath("."), false
}

// LoadConfig reads the configuration. Fields absent from the file keep
// their defaults; a missing ./.cdoc.yaml yields the defaults.
func LoadConfig(path string) (*Config, error) {
	path, explicit := resolveConfigPath(path)
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is the user's own config file
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if cfg.Cache.Dir != "" && !filepath.IsAbs(cfg.Cache.Dir) {
		cfg.Cache.Dir = filepath.Join(filepath.Dir(path), cfg.Cache.Dir)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path.
func SaveConfig(path string, cfg *Config) error {
	if cfg.Version == "" {
		cfg.Version = configVersion
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := "# cdoc configuration. See 'cdoc init --help'.\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Validate checks values that yaml decoding alone cannot.
func (c *Config) Validate() error {
	if _, err := ingestion.ParseParserMode(c.Scan.ParserMode); err != nil {
		return err
	}
	if c.Scan.Workers < 0 {
		return fmt.Errorf("scan.workers must not be negative, got %d", c.Scan.Workers)
	}
	if c.Scan.MaxFileSize < 0 {
		return fmt.Errorf("scan.max_file_size must not be negative, got %d", c.Scan.MaxFileSize)
	}
	if err := c.Docgen.Validate(); err != nil {
		return fmt.Errorf("docgen: %w", err)
	}
	return nil
}

// ingestionConfig builds the pipeline settings for a scan of root.
func (c *Config) ingestionConfig(root string) ingestion.Config {
	ic := ingestion.DefaultConfig(root)
	ic.ParserMode = ingestion.ParserMode(c.Scan.ParserMode)
	if c.Scan.Workers > 0 {
		ic.ParseWorkers = c.Scan.Workers
	}
	ic.MaxFileSizeBytes = c.Scan.MaxFileSize
	if c.Scan.MaxJoinLines > 0 {
		ic.MaxJoinLines = c.Scan.MaxJoinLines
	}
	ic.ExcludeGlobs = append(ic.ExcludeGlobs, c.Scan.Exclude...)
	ic.RespectGitignore = c.Scan.RespectGitignore
	ic.Doc = c.Docgen
	return ic
}
