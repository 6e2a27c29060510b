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

// Package bootstrap handles cdoc project setup.
//
// A project is a source tree plus a .cdoc directory holding the BadgerDB
// result cache used by incremental scans.
//
// # Initialization Workflow
//
//	info, err := bootstrap.InitProject(bootstrap.ProjectConfig{
//	    Root: "/path/to/repo",
//	}, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Cache at: %s (%d entries)\n", info.CacheDir, info.Entries)
//
//	// Later, open the cache for a scan
//	store, err := bootstrap.OpenCache(bootstrap.ProjectConfig{Root: root}, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//	cfg.Cache = store
//
// # Idempotency
//
// InitProject and OpenCache may be called any number of times; existing
// entries are kept. ClearCache is the only destructive operation.
package bootstrap
