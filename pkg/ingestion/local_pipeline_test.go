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
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/cdoc/pkg/docgen"
)

// memCache is a ResultCache backed by a map.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	puts int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Put(key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.puts++
	return nil
}

func fixtureConfig() Config {
	cfg := DefaultConfig(filepath.Join("testdata", "cpp"))
	cfg.ParserMode = ParserModeSimplified
	return cfg
}

func TestLocalPipeline_Run(t *testing.T) {
	p, err := NewLocalPipeline(fixtureConfig(), nil)
	require.NoError(t, err)

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, ParserModeSimplified, res.Mode)
	assert.Equal(t, 3, res.FilesScanned)
	assert.Zero(t, res.FileErrors)
	assert.Equal(t, 13, res.Declarations)
	assert.Equal(t, 13, res.Documented)
	assert.Equal(t, 18, res.Parameters)
	assert.Equal(t, 1, res.AnonymousParams)
	assert.Empty(t, res.ErrorsByKind)
	assert.Equal(t, 3, res.CacheMisses)
	assert.Equal(t, 2, res.SkipReasons[SkipGitignored])

	require.Len(t, res.Files, 3)
	assert.Equal(t, "include/widget.hpp", res.Files[0].Path)
	assert.Equal(t, "src/legacy.c", res.Files[1].Path)
	assert.Equal(t, "c", res.Files[1].Language)

	resize := res.Files[0].Declarations[2]
	assert.Equal(t, "resize", resize.Name)
	assert.Equal(t, []string{"width", "height"}, resize.Params)
	assert.Equal(t, 14, resize.Line)
	assert.False(t, resize.HasReturn)
	assert.Equal(t, "/**\n     * @brief \n     * \n     * @param width \n     * @param height \n     */", resize.Comment)
	assert.Equal(t, GenerateDeclarationID("include/widget.hpp", "resize", 14, 5), resize.ID)

	clamp := res.Files[0].Declarations[5]
	assert.Equal(t, "clamp", clamp.Name)
	assert.Equal(t, "int", clamp.ReturnType)
	assert.True(t, clamp.HasReturn)
	assert.Contains(t, clamp.Comment, "\n * @return \n */")

	main := res.Files[1].Declarations[1]
	assert.Equal(t, "main", main.Name)
	assert.Equal(t, []string{"argc", "argv"}, main.Params)

	// Anonymous parameters keep their position and are left out of the comment.
	fileResize := res.Files[2].Declarations[2]
	assert.Equal(t, []string{"width", ""}, fileResize.Params)
	assert.Equal(t, 1, fileResize.Anonymous)
	assert.NotContains(t, fileResize.Comment, "@param  ")
}

func TestExtractRecord_Error(t *testing.T) {
	gen, err := docgen.NewGenerator(docgen.DefaultConfig(), nil)
	require.NoError(t, err)

	rec := ExtractRecord(gen, Candidate{File: "bad.cpp", Line: 2, Column: 1, Text: `void bad(const char *s = "oops)`})
	assert.True(t, rec.Failed())
	assert.Equal(t, "malformed_literal", rec.ErrorKind)
	assert.Empty(t, rec.Comment)
	assert.Empty(t, rec.Name)
	assert.Equal(t, []string{}, rec.Params)
	assert.Equal(t, GenerateDeclarationID("bad.cpp", "", 2, 1), rec.ID)
}

func TestScanResult_Add(t *testing.T) {
	res := &ScanResult{ErrorsByKind: make(map[string]int)}
	res.add(&FileResult{Declarations: []DeclarationRecord{
		{Params: []string{"a", ""}, Anonymous: 1},
		{Error: "unbalanced input at offset 3", ErrorKind: "unbalanced_input"},
	}})
	res.add(&FileResult{CacheHit: true, Declarations: []DeclarationRecord{
		{Params: []string{}},
	}})

	assert.Equal(t, 2, res.FilesScanned)
	assert.Equal(t, 3, res.Declarations)
	assert.Equal(t, 2, res.Documented)
	assert.Equal(t, 2, res.Parameters)
	assert.Equal(t, 1, res.AnonymousParams)
	assert.Equal(t, map[string]int{"unbalanced_input": 1}, res.ErrorsByKind)
	assert.Equal(t, 1, res.CacheHits)
	assert.Equal(t, 1, res.CacheMisses)
}

func TestLocalPipeline_Cache(t *testing.T) {
	cache := newMemCache()
	cfg := fixtureConfig()
	cfg.Cache = cache

	p, err := NewLocalPipeline(cfg, nil)
	require.NoError(t, err)

	first, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, first.CacheMisses)
	assert.Zero(t, first.CacheHits)
	assert.Equal(t, 3, cache.puts)

	second, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, second.CacheHits)
	assert.Zero(t, second.CacheMisses)
	assert.NotEqual(t, first.RunID, second.RunID)

	require.Len(t, second.Files, len(first.Files))
	for i := range first.Files {
		assert.True(t, second.Files[i].CacheHit)
		assert.Equal(t, first.Files[i].Declarations, second.Files[i].Declarations)
	}

	// A different comment layout must not reuse cached comments.
	cfg.Doc.CommentStart = "/*!"
	p, err = NewLocalPipeline(cfg, nil)
	require.NoError(t, err)
	third, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, third.CacheMisses)
}

func TestLocalPipeline_ParallelMatchesSequential(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 25; i++ {
		src := fmt.Sprintf("int fn%d(int a%d, char b);\nvoid other%d();\n", i, i, i)
		require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("f%02d.cpp", i)), []byte(src), 0o644))
	}

	run := func(workers int) *ScanResult {
		cfg := DefaultConfig(dir)
		cfg.ParserMode = ParserModeSimplified
		cfg.ParseWorkers = workers
		var calls []int
		cfg.Progress = func(done, total int) {
			assert.Equal(t, 25, total)
			calls = append(calls, done)
		}
		p, err := NewLocalPipeline(cfg, nil)
		require.NoError(t, err)
		res, err := p.Run(context.Background())
		require.NoError(t, err)
		assert.Len(t, calls, 25)
		assert.Equal(t, 25, calls[len(calls)-1])
		return res
	}

	seq, par := run(1), run(8)
	assert.Equal(t, 50, par.Declarations)
	assert.Equal(t, 50, par.Parameters)
	require.Len(t, par.Files, 25)
	for i := range seq.Files {
		assert.Equal(t, seq.Files[i].Path, par.Files[i].Path)
		assert.Equal(t, seq.Files[i].Declarations, par.Files[i].Declarations)
	}
}

func TestLocalPipeline_Cancelled(t *testing.T) {
	p, err := NewLocalPipeline(fixtureConfig(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewLocalPipeline_InvalidConfig(t *testing.T) {
	cfg := fixtureConfig()
	cfg.ParserMode = "regex"
	_, err := NewLocalPipeline(cfg, nil)
	assert.Error(t, err)

	cfg = fixtureConfig()
	cfg.Doc.ParamTemplate = "@param"
	_, err = NewLocalPipeline(cfg, nil)
	assert.Error(t, err)

	_, err = NewLocalPipeline(Config{}, nil)
	assert.Error(t, err)
}
