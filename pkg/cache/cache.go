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

// Package cache keeps per-file scan results in BadgerDB so that unchanged
// files are not parsed again on the next run.
//
// Keys are opaque strings built by the caller; ingestion.ResultCacheKey
// covers the file content and every setting that shapes the output, so
// entries never need explicit invalidation. Entries expire after the
// configured TTL to bound the size of long-lived caches.
package cache

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// DefaultTTL is how long an entry lives when Options.TTL is zero.
const DefaultTTL = 30 * 24 * time.Hour

// Options configure a Store.
type Options struct {
	// Dir holds the database files. Ignored when InMemory is set.
	Dir string

	// InMemory keeps everything in memory; used by tests and one-shot runs.
	InMemory bool

	// TTL is the lifetime of an entry. Zero means DefaultTTL, a negative
	// value disables expiry.
	TTL time.Duration
}

// Store is a BadgerDB-backed byte cache. It is safe for concurrent use.
type Store struct {
	db     *badger.DB
	ttl    time.Duration
	logger *slog.Logger
}

// Open opens or creates the cache described by opts.
func Open(opts Options, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !opts.InMemory && strings.TrimSpace(opts.Dir) == "" {
		return nil, errors.New("cache directory is empty")
	}

	bopts := badger.DefaultOptions(opts.Dir).WithLogger(nil)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", opts.Dir, err)
	}

	ttl := opts.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	logger.Debug("cache.open", "dir", opts.Dir, "in_memory", opts.InMemory, "ttl", ttl)
	return &Store{db: db, ttl: ttl, logger: logger}, nil
}

// Get returns the value stored under key. ok is false when there is none.
func (s *Store) Get(key string) (value []byte, ok bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		ok = err == nil
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	return value, ok, nil
}

// Put stores value under key, replacing any previous value.
func (s *Store) Put(key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value)
		if s.ttl > 0 {
			entry = entry.WithTTL(s.ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Count returns the number of live entries whose key starts with prefix.
func (s *Store) Count(prefix string) (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("cache count: %w", err)
	}
	return n, nil
}

// Clear removes every entry.
func (s *Store) Clear() error {
	if err := s.db.DropAll(); err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	s.logger.Info("cache.cleared")
	return nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
