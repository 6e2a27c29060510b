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
	"path/filepath"
	"strings"
)

// matchesGlob reports whether a slash-separated relative path matches an
// exclude pattern. Supported syntax:
//   - *      any run of characters except /
//   - **     any run of characters, / included
//   - ?      one character other than /
//   - [abc], [a-z], [!abc], [^abc]  character classes
//
// A pattern that does not start with ** may match at any directory level,
// as if it were prefixed with **/.
func matchesGlob(path, pattern string) bool {
	pattern = filepath.ToSlash(pattern)

	// dir/** excludes the directory itself and everything below it.
	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
		if anySuffix(path, func(sub string) bool {
			return sub == prefix || strings.HasPrefix(sub, prefix+"/")
		}) {
			return true
		}
	}

	// *.ext only looks at the extension.
	if strings.HasPrefix(pattern, "*.") && !strings.Contains(pattern, "/") {
		return strings.HasSuffix(path, pattern[1:])
	}

	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		if path == rest || strings.HasSuffix(path, "/"+rest) {
			return true
		}
		return anySuffix(path, func(sub string) bool { return matchGlobPattern(sub, rest) })
	}

	if !strings.ContainsAny(pattern, "*?[") {
		return path == pattern || strings.HasSuffix(path, "/"+pattern) || strings.HasPrefix(path, pattern+"/")
	}

	return anySuffix(path, func(sub string) bool { return matchGlobPattern(sub, pattern) })
}

// anySuffix calls match on path and on every suffix of it that starts at a
// path component.
func anySuffix(path string, match func(string) bool) bool {
	parts := strings.Split(path, "/")
	for i := range parts {
		if match(strings.Join(parts[i:], "/")) {
			return true
		}
	}
	return false
}

// matchGlobPattern matches a whole path against a pattern.
func matchGlobPattern(path, pattern string) bool {
	return matchGlobRecursive(path, pattern, 0, 0)
}

// matchGlobRecursive matches path[pi:] against pattern[pti:].
func matchGlobRecursive(path, pattern string, pi, pti int) bool {
	for pi < len(path) || pti < len(pattern) {
		if pti >= len(pattern) {
			return false
		}

		switch {
		case strings.HasPrefix(pattern[pti:], "**"):
			next := pti + 2
			if next < len(pattern) && pattern[next] == '/' {
				next++
			}
			if next >= len(pattern) {
				return true
			}
			for i := pi; i <= len(path); i++ {
				if matchGlobRecursive(path, pattern, i, next) {
					return true
				}
			}
			return false

		case pattern[pti] == '*':
			return matchStar(path, pattern, pi, pti+1)

		case pattern[pti] == '?':
			if pi >= len(path) || path[pi] == '/' {
				return false
			}
			pi++
			pti++

		case pattern[pti] == '[':
			if pi >= len(path) {
				return false
			}
			closeIdx := classEnd(pattern, pti)
			if closeIdx < 0 {
				// Unterminated class: the [ is literal.
				if path[pi] != '[' {
					return false
				}
				pi++
				pti++
				continue
			}
			if !matchCharClass(path[pi], pattern[pti+1:closeIdx]) {
				return false
			}
			pi++
			pti = closeIdx + 1

		default:
			if pi >= len(path) || path[pi] != pattern[pti] {
				return false
			}
			pi++
			pti++
		}
	}
	return true
}

// matchStar matches a single * (already consumed, next is the pattern
// offset after it) against zero or more characters of one path component.
func matchStar(path, pattern string, pi, next int) bool {
	if next >= len(pattern) {
		// Trailing *: the rest of the path must be a single component.
		return !strings.Contains(path[pi:], "/")
	}
	for i := pi; i <= len(path); i++ {
		if i > pi && path[i-1] == '/' {
			break
		}
		if matchGlobRecursive(path, pattern, i, next) {
			return true
		}
	}
	return false
}

// classEnd returns the offset of the ] closing the class opened at open,
// or -1. A ] right after [ or [! is a member, not the end.
func classEnd(pattern string, open int) int {
	i := open + 1
	if i < len(pattern) && (pattern[i] == '!' || pattern[i] == '^') {
		i++
	}
	if i < len(pattern) && pattern[i] == ']' {
		i++
	}
	for i < len(pattern) && pattern[i] != ']' {
		i++
	}
	if i >= len(pattern) {
		return -1
	}
	return i
}

// matchCharClass checks c against the inside of a character class:
// single characters, a-z ranges, and a leading ! or ^ for negation.
func matchCharClass(c byte, class string) bool {
	if class == "" {
		return false
	}
	negated := class[0] == '!' || class[0] == '^'
	if negated {
		class = class[1:]
	}

	matched := false
	for i := 0; i < len(class); {
		if i+2 < len(class) && class[i+1] == '-' {
			if c >= class[i] && c <= class[i+2] {
				matched = true
			}
			i += 3
			continue
		}
		if c == class[i] {
			matched = true
		}
		i++
	}
	return matched != negated
}
