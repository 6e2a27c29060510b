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
	"strings"
	"testing"

	"github.com/kraklabs/cdoc/pkg/docgen"
)

func TestGenerateFileID_Deterministic(t *testing.T) {
	id1 := GenerateFileID("src/net/socket.cpp")
	id2 := GenerateFileID("src/net/socket.cpp")

	if id1 != id2 {
		t.Errorf("GenerateFileID should be deterministic: got %q and %q", id1, id2)
	}
	if id1 != "file:src/net/socket.cpp" {
		t.Errorf("GenerateFileID = %q, want file:src/net/socket.cpp", id1)
	}
}

func TestGenerateFileID_NormalizesPath(t *testing.T) {
	for _, path := range []string{"./src/a.cpp", "src//a.cpp", "/src/a.cpp", "src/x/../a.cpp"} {
		if got := GenerateFileID(path); got != "file:src/a.cpp" {
			t.Errorf("GenerateFileID(%q) = %q, want file:src/a.cpp", path, got)
		}
	}
}

func TestGenerateFileID_LongPathHashed(t *testing.T) {
	long := strings.Repeat("dir/", 80) + "a.cpp"
	id := GenerateFileID(long)

	if !hasPrefix(id, "file:") {
		t.Errorf("GenerateFileID should start with 'file:': got %q", id)
	}
	if len(id) != len("file:")+32 {
		t.Errorf("long path should hash to 16 bytes of hex, got %q", id)
	}
}

func TestGenerateDeclarationID(t *testing.T) {
	id := GenerateDeclarationID("src/widget.cpp", "Widget::resize", 12, 1)

	if !hasPrefix(id, "decl:") {
		t.Errorf("GenerateDeclarationID should start with 'decl:': got %q", id)
	}
	if id != GenerateDeclarationID("./src/widget.cpp", "Widget::resize", 12, 1) {
		t.Error("GenerateDeclarationID should normalize the path")
	}

	// Overloads on the same line differ by column.
	if id == GenerateDeclarationID("src/widget.cpp", "Widget::resize", 12, 30) {
		t.Error("different columns should produce different IDs")
	}
	if id == GenerateDeclarationID("src/widget.cpp", "Widget::move", 12, 1) {
		t.Error("different names should produce different IDs")
	}
}

func TestResultCacheKey(t *testing.T) {
	cfg := docgen.DefaultConfig()
	content := []byte("int add(int a, int b);\n")
	key := ResultCacheKey("a.cpp", content, ParserModeAuto, cfg)

	if !hasPrefix(key, "scan:v1:") {
		t.Errorf("unexpected key prefix: %q", key)
	}
	if key != ResultCacheKey("a.cpp", content, ParserModeAuto, cfg) {
		t.Error("ResultCacheKey should be deterministic")
	}

	other := cfg
	other.ParamTemplate = "\\param {param} "
	changes := map[string]string{
		"content": ResultCacheKey("a.cpp", []byte("int add(int a);\n"), ParserModeAuto, cfg),
		"path":    ResultCacheKey("b.cpp", content, ParserModeAuto, cfg),
		"mode":    ResultCacheKey("a.cpp", content, ParserModeSimplified, cfg),
		"config":  ResultCacheKey("a.cpp", content, ParserModeAuto, other),
	}
	for what, k := range changes {
		if k == key {
			t.Errorf("changing the %s should change the key", what)
		}
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
