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
	"bytes"

	"github.com/kraklabs/cdoc/pkg/sigparse"
)

// blankNonCode returns a copy of src with comments and preprocessor
// directives replaced by spaces. Newlines are kept, so offsets, lines and
// columns in the copy match the original.
func blankNonCode(src []byte) []byte {
	out := bytes.Clone(src)
	text := string(src)
	lineStart := true

	blank := func(from, to int) {
		for k := from; k < to; k++ {
			if out[k] != '\n' {
				out[k] = ' '
			}
		}
	}

	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == '\n':
			lineStart = true
			i++

		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			i++

		case c == '#' && lineStart:
			end := directiveEnd(src, i)
			blank(i, end)
			i = end

		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			end := bytes.IndexByte(src[i:], '\n')
			if end < 0 {
				end = len(src)
			} else {
				end += i
			}
			blank(i, end)
			i = end

		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := bytes.Index(src[i+2:], []byte("*/"))
			if end < 0 {
				end = len(src)
			} else {
				end += i + 4
			}
			blank(i, end)
			i = end

		case c == '"' || c == '\'' || isIdentByte(c):
			lineStart = false
			lit, err := sigparse.RecognizeLiteral(text, i)
			switch {
			case err != nil:
				i++
			case lit.Kind != sigparse.LiteralNone:
				i = lit.Span.End
			default:
				for i < len(src) && isIdentByte(src[i]) {
					i++
				}
			}

		default:
			lineStart = false
			i++
		}
	}
	return out
}

// directiveEnd returns the offset of the newline ending the directive at
// i, following backslash continuations.
func directiveEnd(src []byte, i int) int {
	for i < len(src) {
		if src[i] == '\n' {
			if i > 0 && src[i-1] == '\\' {
				i++
				continue
			}
			if i > 1 && src[i-1] == '\r' && src[i-2] == '\\' {
				i++
				continue
			}
			return i
		}
		i++
	}
	return i
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// lineIndent returns the run of spaces and tabs starting the line that
// holds offset.
func lineIndent(src []byte, offset int) string {
	start := bytes.LastIndexByte(src[:offset], '\n') + 1
	end := start
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return string(src[start:end])
}

// lineCol converts a byte offset to a 1-based line and column.
func lineCol(src []byte, offset int) (int, int) {
	line := bytes.Count(src[:offset], []byte{'\n'}) + 1
	col := offset - (bytes.LastIndexByte(src[:offset], '\n') + 1) + 1
	return line, col
}
