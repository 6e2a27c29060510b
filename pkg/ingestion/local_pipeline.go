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
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kraklabs/cdoc/pkg/docgen"
)

// LocalPipeline scans a source tree and extracts every function
// declaration in it, with its parameters and generated comment.
type LocalPipeline struct {
	config    Config
	logger    *slog.Logger
	loader    *RepoLoader
	finder    DeclarationFinder
	generator *docgen.Generator
}

// ScanResult summarizes a scan run.
type ScanResult struct {
	// RunID is the unique identifier for this run (UUID).
	RunID string `json:"run_id"`

	// Root is the absolute directory file paths are relative to.
	Root string `json:"root"`

	// Mode is the finder strategy that was used.
	Mode ParserMode `json:"mode"`

	// Files holds one entry per scanned file, sorted by path. Files that
	// could not be read are left out and counted in FileErrors.
	Files []FileResult `json:"files"`

	FilesScanned int `json:"files_scanned"`
	FileErrors   int `json:"file_errors"`

	// Declarations counts every candidate, Documented only those that
	// were extracted.
	Declarations int `json:"declarations"`
	Documented   int `json:"documented"`

	Parameters      int `json:"parameters"`
	AnonymousParams int `json:"anonymous_params"`

	// ErrorsByKind maps extraction error kinds to counts.
	ErrorsByKind map[string]int `json:"errors_by_kind,omitempty"`

	// SkipReasons maps skip reasons to counts (e.g., "too_large": 5).
	SkipReasons map[string]int `json:"skip_reasons,omitempty"`

	CacheHits   int `json:"cache_hits"`
	CacheMisses int `json:"cache_misses"`

	Duration time.Duration `json:"duration_ns"`
}

// NewLocalPipeline creates a scan pipeline for cfg.
func NewLocalPipeline(cfg Config, logger *slog.Logger) (*LocalPipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ParserMode == "" {
		cfg.ParserMode = DefaultParserMode
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scan config: %w", err)
	}

	finder, err := NewDeclarationFinder(cfg.ParserMode, cfg.MaxJoinLines, logger)
	if err != nil {
		return nil, fmt.Errorf("create finder: %w", err)
	}
	gen, err := docgen.NewGenerator(cfg.Doc, logger)
	if err != nil {
		return nil, err
	}

	return &LocalPipeline{
		config:    cfg,
		logger:    logger,
		loader:    NewRepoLoader(logger),
		finder:    finder,
		generator: gen,
	}, nil
}

// Run executes the scan.
func (p *LocalPipeline) Run(ctx context.Context) (*ScanResult, error) {
	startTime := time.Now()
	runID := uuid.New().String()
	p.logger.Info("scan.start", "root", p.config.Root, "run_id", runID, "mode", p.finder.Mode())

	// Step 1: Select files
	p.logger.Info("scan.step.load_files", "run_id", runID)
	loadResult, err := p.loader.Load(p.config.Root, LoadOptions{
		ExcludeGlobs:     p.config.ExcludeGlobs,
		MaxFileSizeBytes: p.config.MaxFileSizeBytes,
		RespectGitignore: p.config.RespectGitignore,
	})
	if err != nil {
		return nil, fmt.Errorf("load files: %w", err)
	}

	if p.config.Since != "" {
		p.logger.Info("scan.step.delta", "run_id", runID, "since", p.config.Since)
		delta, err := NewDeltaDetector(loadResult.RootPath, p.logger).DetectDelta(ctx, p.config.Since)
		if err != nil {
			return nil, fmt.Errorf("detect changes since %s: %w", p.config.Since, err)
		}
		before := len(loadResult.Files)
		loadResult.Files = keepChanged(loadResult.Files, delta.Present())
		if n := before - len(loadResult.Files); n > 0 {
			loadResult.SkipReasons[SkipUnchanged] += n
		}
	}

	// Step 2: Find and extract declarations
	p.logger.Info("scan.step.scan_files", "run_id", runID, "file_count", len(loadResult.Files))

	workers := p.config.ParseWorkers
	if workers <= 0 {
		workers = 4
	}
	files, fileErrors := p.scanFilesParallel(ctx, loadResult.Files, workers)
	if err := ctx.Err(); err != nil {
		p.logger.Warn("scan.cancelled", "run_id", runID, "err", err)
		return nil, err
	}

	result := &ScanResult{
		RunID:        runID,
		Root:         loadResult.RootPath,
		Mode:         p.finder.Mode(),
		FileErrors:   fileErrors,
		ErrorsByKind: make(map[string]int),
		SkipReasons:  loadResult.SkipReasons,
	}
	for _, fr := range files {
		if fr == nil {
			continue
		}
		result.Files = append(result.Files, *fr)
		result.add(fr)
	}
	result.Duration = time.Since(startTime)
	recordRun(result.Duration.Seconds())

	p.logger.Info("scan.complete",
		"run_id", runID,
		"files", result.FilesScanned,
		"declarations", result.Declarations,
		"documented", result.Documented,
		"parameters", result.Parameters,
		"errors_by_kind", result.ErrorsByKind,
		"file_errors", result.FileErrors,
		"cache_hits", result.CacheHits,
		"cache_misses", result.CacheMisses,
		"total_duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// add folds one file into the totals.
func (r *ScanResult) add(fr *FileResult) {
	r.FilesScanned++
	if fr.CacheHit {
		r.CacheHits++
	} else {
		r.CacheMisses++
	}
	for _, d := range fr.Declarations {
		r.Declarations++
		if d.Failed() {
			r.ErrorsByKind[d.ErrorKind]++
			continue
		}
		r.Documented++
		r.Parameters += len(d.Params)
		r.AnonymousParams += d.Anonymous
	}
}

// scanFilesParallel scans files with a worker pool. Results keep the
// order of files; a nil entry marks a file that failed.
func (p *LocalPipeline) scanFilesParallel(ctx context.Context, files []FileInfo, numWorkers int) ([]*FileResult, int) {
	if len(files) == 0 {
		return nil, 0
	}

	// For small file sets, scan sequentially
	if len(files) < 10 || numWorkers <= 1 {
		return p.scanFilesSequential(ctx, files)
	}

	jobs := make(chan int, len(files))

	type fileResult struct {
		index  int
		result *FileResult
	}
	resultsChan := make(chan fileResult, len(files))

	var errorCount int32

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				fr, err := p.scanFile(ctx, files[i])
				if err != nil {
					atomic.AddInt32(&errorCount, 1)
					p.logger.Warn("scan.file.error", "path", files[i].Path, "err", err)
				}
				resultsChan <- fileResult{index: i, result: fr}
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	results := make([]*FileResult, len(files))
	done := 0
	for fr := range resultsChan {
		results[fr.index] = fr.result
		done++
		p.progress(done, len(files))
	}
	return results, int(errorCount)
}

// scanFilesSequential scans files one after another.
func (p *LocalPipeline) scanFilesSequential(ctx context.Context, files []FileInfo) ([]*FileResult, int) {
	results := make([]*FileResult, len(files))
	errorCount := 0

	for i, fileInfo := range files {
		select {
		case <-ctx.Done():
			return results, errorCount
		default:
		}

		fr, err := p.scanFile(ctx, fileInfo)
		if err != nil {
			errorCount++
			p.logger.Warn("scan.file.error", "path", fileInfo.Path, "err", err)
		}
		results[i] = fr
		p.progress(i+1, len(files))
	}
	return results, errorCount
}

func (p *LocalPipeline) progress(done, total int) {
	if p.config.Progress != nil {
		p.config.Progress(done, total)
	}
}

// scanFile reads one file and extracts its declarations, going through
// the result cache when one is configured. It returns nil and an error
// for files that cannot be read or parsed.
func (p *LocalPipeline) scanFile(ctx context.Context, fi FileInfo) (*FileResult, error) {
	start := time.Now()
	content, err := os.ReadFile(fi.FullPath)
	if err != nil {
		recordFileError()
		return nil, fmt.Errorf("read file: %w", err)
	}

	var key string
	if p.config.Cache != nil {
		key = ResultCacheKey(fi.Path, content, p.finder.Mode(), p.generator.Config())
		if fr, ok := p.cached(key, fi); ok {
			recordFile(fr, time.Since(start).Seconds())
			return fr, nil
		}
		recordCacheMiss()
	}

	cands, err := p.finder.FindDeclarations(ctx, fi, content)
	if err != nil {
		recordFileError()
		return nil, fmt.Errorf("find declarations: %w", err)
	}

	fr := &FileResult{
		Path:         fi.Path,
		Language:     fi.Language,
		Declarations: make([]DeclarationRecord, 0, len(cands)),
	}
	for _, c := range cands {
		fr.Declarations = append(fr.Declarations, ExtractRecord(p.generator, c))
	}

	if p.config.Cache != nil {
		p.store(key, fr)
	}
	recordFile(fr, time.Since(start).Seconds())
	return fr, nil
}

// cached looks key up. Lookup and decode failures count as misses.
func (p *LocalPipeline) cached(key string, fi FileInfo) (*FileResult, bool) {
	data, ok, err := p.config.Cache.Get(key)
	if err != nil {
		p.logger.Warn("scan.cache.get.error", "path", fi.Path, "err", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var fr FileResult
	if err := json.Unmarshal(data, &fr); err != nil {
		p.logger.Warn("scan.cache.decode.error", "path", fi.Path, "err", err)
		return nil, false
	}
	fr.CacheHit = true
	return &fr, true
}

func (p *LocalPipeline) store(key string, fr *FileResult) {
	data, err := json.Marshal(fr)
	if err != nil {
		p.logger.Warn("scan.cache.encode.error", "path", fr.Path, "err", err)
		return
	}
	if err := p.config.Cache.Put(key, data); err != nil {
		p.logger.Warn("scan.cache.put.error", "path", fr.Path, "err", err)
	}
}
