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

	"github.com/stretchr/testify/assert"
)

func TestBlankNonCode(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "line comment",
			src:  "int f(int a); // note\n",
			want: "int f(int a);        \n",
		},
		{
			name: "block comment keeps newlines",
			src:  "int /* a\nb */ f();",
			want: "int     \n     f();",
		},
		{
			name: "directive with continuation",
			src:  "#define X \\\n  1\nint y;",
			want: "           \n   \nint y;",
		},
		{
			name: "indented directive",
			src:  "  #include <a>\nint y;",
			want: "              \nint y;",
		},
		{
			name: "comment markers inside strings survive",
			src:  `const char *u = "http://x"; // c`,
			want: `const char *u = "http://x";     `,
		},
		{
			name: "hash inside a line is not a directive",
			src:  "f('#'); g(\"#\");",
			want: "f('#'); g(\"#\");",
		},
		{
			name: "unterminated block comment",
			src:  "int a; /* open",
			want: "int a;        ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(blankNonCode([]byte(tt.src)))
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, len(tt.src))
		})
	}
}

func TestLineHelpers(t *testing.T) {
	src := []byte("a\n\t  b c\nd")

	line, col := lineCol(src, 6)
	assert.Equal(t, 2, line)
	assert.Equal(t, 5, col)
	assert.Equal(t, "\t  ", lineIndent(src, 6))

	line, col = lineCol(src, 0)
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)
	assert.Equal(t, "", lineIndent(src, 10))
}
