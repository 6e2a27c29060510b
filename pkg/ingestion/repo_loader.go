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
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// Skip reasons reported in LoadResult.SkipReasons.
const (
	SkipExcludedDir = "excluded_dir"
	SkipExcluded    = "excluded"
	SkipGitignored  = "gitignored"
	SkipTooLarge    = "too_large"
	SkipUnsupported = "unsupported_language"
	SkipUnchanged   = "unchanged"
)

// DefaultExcludeGlobs are skipped unless the caller passes its own list.
var DefaultExcludeGlobs = []string{
	".git/**",
	"build/**",
	"cmake-build-*/**",
	"third_party/**",
	"node_modules/**",
}

// RepoLoader selects the C and C++ files under a scan root.
type RepoLoader struct {
	logger *slog.Logger
}

// NewRepoLoader creates a new loader.
func NewRepoLoader(logger *slog.Logger) *RepoLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &RepoLoader{logger: logger}
}

// LoadOptions control file selection.
type LoadOptions struct {
	ExcludeGlobs     []string
	MaxFileSizeBytes int64 // zero means unlimited
	RespectGitignore bool  // honor the root's .gitignore
}

// LoadResult contains the files selected for scanning.
type LoadResult struct {
	RootPath    string // Absolute path of the scan root
	Files       []FileInfo
	TotalSize   int64
	Languages   map[string]int // Language -> file count
	SkipReasons map[string]int // Reason -> count
}

// Load selects the files to scan under root. root may name a single file,
// which is then scanned regardless of its extension, or a directory.
// Files are returned sorted by relative path.
func (rl *RepoLoader) Load(root string, opts LoadOptions) (*LoadResult, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve scan root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat scan root: %w", err)
	}

	result := &LoadResult{
		RootPath:    abs,
		Languages:   make(map[string]int),
		SkipReasons: make(map[string]int),
	}

	if !info.IsDir() {
		lang := detectLanguageFromPath(abs)
		if lang == "" {
			lang = "cpp"
		}
		result.RootPath = filepath.Dir(abs)
		result.Files = []FileInfo{{Path: filepath.Base(abs), FullPath: abs, Size: info.Size(), Language: lang}}
	} else {
		rl.logger.Info("repo.load.start", "root", abs)
		ignore := rl.loadGitignore(abs, opts.RespectGitignore)
		files, err := rl.walk(abs, opts, ignore, result.SkipReasons)
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", abs, err)
		}
		result.Files = files
	}

	for _, f := range result.Files {
		result.TotalSize += f.Size
		result.Languages[f.Language]++
	}

	rl.logger.Info("repo.load.complete",
		"root", result.RootPath,
		"files", len(result.Files),
		"total_size", result.TotalSize,
		"languages", result.Languages,
		"skipped", result.SkipReasons,
	)
	return result, nil
}

// loadGitignore compiles root/.gitignore, or returns nil when there is none
// or it is not wanted.
func (rl *RepoLoader) loadGitignore(root string, enabled bool) *gitignore.GitIgnore {
	if !enabled {
		return nil
	}
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	ignore, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		rl.logger.Warn("repo.gitignore.error", "path", path, "err", err)
		return nil
	}
	return ignore
}

func (rl *RepoLoader) walk(root string, opts LoadOptions, ignore *gitignore.GitIgnore, skips map[string]int) ([]FileInfo, error) {
	var files []FileInfo

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are logged and skipped.
			rl.logger.Warn("repo.walk.error", "path", path, "err", err)
			return nil
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			switch {
			case shouldExclude(rel, opts.ExcludeGlobs):
				skips[SkipExcludedDir]++
				return filepath.SkipDir
			case ignore != nil && ignore.MatchesPath(rel+"/"):
				skips[SkipGitignored]++
				return filepath.SkipDir
			}
			return nil
		}

		lang := detectLanguageFromPath(rel)
		switch {
		case shouldExclude(rel, opts.ExcludeGlobs):
			skips[SkipExcluded]++
			return nil
		case lang == "":
			skips[SkipUnsupported]++
			return nil
		case ignore != nil && ignore.MatchesPath(rel):
			skips[SkipGitignored]++
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if opts.MaxFileSizeBytes > 0 && info.Size() > opts.MaxFileSizeBytes {
			skips[SkipTooLarge]++
			rl.logger.Warn("repo.walk.skip_large_file",
				"path", rel,
				"size", info.Size(),
				"limit", opts.MaxFileSizeBytes,
			)
			return nil
		}

		files = append(files, FileInfo{Path: rel, FullPath: path, Size: info.Size(), Language: lang})
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

// shouldExclude checks a slash-separated path against the exclude globs.
func shouldExclude(path string, excludeGlobs []string) bool {
	for _, pattern := range excludeGlobs {
		if matchesGlob(path, pattern) {
			return true
		}
	}
	return false
}

// sourceLanguages maps file extensions to the grammar used for them.
// Headers default to C++, which parses C headers as well.
var sourceLanguages = map[string]string{
	".c":   "c",
	".h":   "cpp",
	".cc":  "cpp",
	".cp":  "cpp",
	".cpp": "cpp",
	".cxx": "cpp",
	".c++": "cpp",
	".hh":  "cpp",
	".hpp": "cpp",
	".hxx": "cpp",
	".h++": "cpp",
	".ipp": "cpp",
	".inl": "cpp",
	".tpp": "cpp",
	".cu":  "cpp",
	".cuh": "cpp",
}

// detectLanguageFromPath returns "c", "cpp" or "" for other files.
func detectLanguageFromPath(path string) string {
	return sourceLanguages[strings.ToLower(filepath.Ext(path))]
}
