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
	"testing"
)

func TestMatchesGlob_BasicPatterns(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		pattern string
		want    bool
	}{
		{"exact match", "widget.cpp", "widget.cpp", true},
		{"exact no match", "widget.cpp", "gadget.cpp", false},

		{"star prefix", "widget.cpp", "*.cpp", true},
		{"star suffix", "test_widget", "test_*", true},
		{"star middle", "test_widget_main", "test_*_main", true},
		{"star no match ext", "widget.h", "*.cpp", false},

		{"doublestar prefix any depth", "src/gui/widgets/button.cpp", "**/*.cpp", true},
		{"doublestar prefix root", "main.cpp", "**/*.cpp", true},
		{"doublestar suffix", "third_party/fmt/format.h", "third_party/**", true},
		{"doublestar suffix nested", "third_party/abseil/base/internal/log.h", "third_party/**", true},

		{"question single", "a.cc", "?.cc", true},
		{"question no match", "ab.cc", "?.cc", false},

		{"char class match", "io.hpp", "io.[hc]pp", true},
		{"char class no match", "io.hpp", "io.[ab]pp", false},
		{"char range match", "gen1.cpp", "gen[0-9].cpp", true},
		{"char range no match", "gena.cpp", "gen[0-9].cpp", false},
		{"negated class match", "io.hpp", "io.[!c]pp", true},
		{"negated class no match", "io.cpp", "io.[!c]pp", false},

		{".git dir exact", ".git", ".git/**", true},
		{".git subdir", ".git/objects/pack", ".git/**", true},
		{"build match", "build/CMakeFiles/main.cpp.o", "build/**", true},
		{"cmake build dir", "cmake-build-debug/gen/moc.cpp", "cmake-build-*/**", true},

		{"implicit prefix", "src/config.h", "config.h", true},
		{"implicit prefix nested", "a/b/c/config.h", "config.h", true},

		{"dir pattern exact", "tests", "tests/**", true},
		{"nested dir", "libs/net/build", "build/**", true},
		{"nested file", "libs/net/build/gen.cpp", "build/**", true},
		{"prefix of name no match", "libs/builder/gen.cpp", "build/**", false},

		{"complex nested", "src/core/parser.test.cpp", "**/*.test.cpp", true},
		{"complex no match", "src/core/parser.cpp", "**/*.test.cpp", false},

		{"empty path", "", "**", true},
		{"empty pattern", "main.cpp", "", false},
		{"path with dots", "a.b.c.cpp", "*.cpp", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchesGlob(tt.path, tt.pattern)
			if got != tt.want {
				t.Errorf("matchesGlob(%q, %q) = %v, want %v", tt.path, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestShouldExclude_DefaultGlobs(t *testing.T) {
	excluded := []string{
		".git/HEAD",
		".git/objects/pack/file",
		"build/main.o",
		"build/gen/version.h",
		"cmake-build-release/moc_widget.cpp",
		"third_party/zlib/zlib.h",
		"tools/node_modules/x/binding.cc",
	}
	included := []string{
		"src/main.cpp",
		"include/widget.h",
		"libs/builder/builder.cpp",
		".gitignore",
		"git/hooks.cpp",
		"party/host.cpp",
	}

	for _, path := range excluded {
		if !shouldExclude(path, DefaultExcludeGlobs) {
			t.Errorf("shouldExclude(%q) = false, want true", path)
		}
	}
	for _, path := range included {
		if shouldExclude(path, DefaultExcludeGlobs) {
			t.Errorf("shouldExclude(%q) = true, want false", path)
		}
	}
}

func TestMatchCharClass(t *testing.T) {
	tests := []struct {
		name  string
		c     byte
		class string
		want  bool
	}{
		{"simple match", 'a', "abc", true},
		{"simple no match", 'd', "abc", false},
		{"range match", 'e', "a-z", true},
		{"range no match", 'E', "a-z", false},
		{"digit range", '5', "0-9", true},
		{"negated match", 'd', "!abc", true},
		{"negated no match", 'a', "!abc", false},
		{"caret negation", 'd', "^abc", true},
		{"mixed", 'f', "a-z0-9", true},
		{"empty", 'a', "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchCharClass(tt.c, tt.class)
			if got != tt.want {
				t.Errorf("matchCharClass(%c, %q) = %v, want %v", tt.c, tt.class, got, tt.want)
			}
		})
	}
}

func TestMatchGlobPattern_Complex(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		pattern string
		want    bool
	}{
		{"multi star", "src/net/socket.cpp", "src/*/*.cpp", true},
		{"multi star deep", "a/b/c/d.cpp", "a/*/c/*.cpp", true},
		{"doublestar middle", "src/net/tls/context.cpp", "src/**/context.cpp", true},
		{"doublestar middle deep", "a/b/c/d/e/f.h", "a/**/f.h", true},
		{"mixed wildcards", "test_data/fixture_1.cpp", "test_*/*_?.cpp", true},
		{"file in dir", "src/main.cpp", "src/*", true},
		{"trailing star stops at slash", "src/net/main.cpp", "src/*", false},
		{"nested file", "src/net/main.cpp", "src/*/*", true},
		{"unterminated class is literal", "a[b", "a[b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchGlobPattern(tt.path, tt.pattern)
			if got != tt.want {
				t.Errorf("matchGlobPattern(%q, %q) = %v, want %v", tt.path, tt.pattern, got, tt.want)
			}
		})
	}
}
