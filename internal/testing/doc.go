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

// Package testing provides test helpers shared by cdoc packages.
//
// # Fixture Trees
//
// WriteTree materializes a map of relative paths to contents under
// t.TempDir():
//
//	root := testing.WriteTree(t, map[string]string{
//	    "include/widget.hpp": "void resize(int w, int h);\n",
//	})
//
// # Git Repositories
//
// Incremental scans diff against a git ref. InitGitRepo commits a fixture
// tree and Commit records later edits; both skip the test when git is not
// installed:
//
//	base := testing.InitGitRepo(t, root)
//	testing.WriteFile(t, root, "src/new.cpp", "void n(int a);\n")
//	testing.Git(t, root, "add", "src/new.cpp")
//
// Import it under an alias to avoid clashing with the standard library:
//
//	import cdoctest "github.com/kraklabs/cdoc/internal/testing"
package testing
