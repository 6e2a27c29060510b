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

package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/cdoc/pkg/ingestion"
)

func openMem(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	s, err := Open(Options{InMemory: true, TTL: ttl}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_GetPut(t *testing.T) {
	s := openMem(t, 0)

	_, ok, err := s.Get("scan:v1:missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put("scan:v1:a", []byte(`{"path":"a.cpp"}`)))
	v, ok, err := s.Get("scan:v1:a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"path":"a.cpp"}`, string(v))

	require.NoError(t, s.Put("scan:v1:a", []byte("new")))
	v, _, err = s.Get("scan:v1:a")
	require.NoError(t, err)
	assert.Equal(t, "new", string(v))
}

func TestStore_CountAndClear(t *testing.T) {
	s := openMem(t, -1)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Put(fmt.Sprintf("scan:v1:%d", i), []byte("x")))
	}
	require.NoError(t, s.Put("other:1", []byte("y")))

	n, err := s.Count("scan:")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = s.Count("")
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	require.NoError(t, s.Clear())
	n, err = s.Count("")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_Concurrent(t *testing.T) {
	s := openMem(t, 0)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				key := fmt.Sprintf("k:%d:%d", w, i)
				assert.NoError(t, s.Put(key, []byte(key)))
				v, ok, err := s.Get(key)
				assert.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, key, string(v))
			}
		}(w)
	}
	wg.Wait()

	n, err := s.Count("k:")
	require.NoError(t, err)
	assert.Equal(t, 160, n)
}

func TestStore_OnDisk(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(Options{Dir: dir}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Put("scan:v1:persisted", []byte("yes")))
	require.NoError(t, s.Close())

	s, err = Open(Options{Dir: dir}, nil)
	require.NoError(t, err)
	defer s.Close()
	v, ok, err := s.Get("scan:v1:persisted")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "yes", string(v))
}

func TestOpen_RequiresDir(t *testing.T) {
	_, err := Open(Options{}, nil)
	assert.Error(t, err)
}

var _ ingestion.ResultCache = (*Store)(nil)

func TestStore_BacksScanPipeline(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "api.h"), []byte("int open_file(const char *path, int flags);\n"), 0o644))

	s := openMem(t, 0)
	cfg := ingestion.DefaultConfig(dir)
	cfg.ParserMode = ingestion.ParserModeSimplified
	cfg.Cache = s

	p, err := ingestion.NewLocalPipeline(cfg, nil)
	require.NoError(t, err)

	first, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.CacheMisses)

	second, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, second.CacheHits)
	require.Len(t, second.Files, 1)
	assert.Equal(t, []string{"path", "flags"}, second.Files[0].Declarations[0].Params)

	n, err := s.Count("scan:")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
