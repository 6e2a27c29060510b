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

package sigparse

import "strings"

// LiteralKind classifies a lexeme recognized by RecognizeLiteral.
type LiteralKind int

const (
	// LiteralNone means the lexeme at the position is not a literal.
	LiteralNone LiteralKind = iota
	LiteralChar
	LiteralString
	LiteralRawString
	LiteralNumeric
)

func (k LiteralKind) String() string {
	switch k {
	case LiteralChar:
		return "char"
	case LiteralString:
		return "string"
	case LiteralRawString:
		return "raw_string"
	case LiteralNumeric:
		return "numeric"
	default:
		return "none"
	}
}

// Literal is a recognized literal and the exact bytes it occupies,
// including any encoding prefix and user-defined suffix.
type Literal struct {
	Kind LiteralKind
	Span Span
}

// maxRawDelimiter is the longest d-char-sequence a raw string may use.
const maxRawDelimiter = 16

// RecognizeLiteral classifies the lexeme starting at pos.
//
// pos must sit on a lexeme boundary: a digit in the middle of an identifier
// such as "a1" is not a numeric literal, and it is the caller's job not to
// ask. Recognized forms:
//
//   - 'c' and "s" with an optional u8, u, U or L prefix
//   - R"delim(...)delim" with the same optional prefixes
//   - numeric literals in any base, with ' separators, fraction, e/E or
//     p/P exponent and an arbitrary alphanumeric suffix
//
// Character and string literals may carry a user-defined suffix ("x"_s).
// When a literal opens but never closes a *ParseError of kind
// MalformedLiteral is returned. A lexeme that is not a literal yields
// Literal{Kind: LiteralNone} and a nil error.
func RecognizeLiteral(text string, pos int) (Literal, error) {
	if pos < 0 || pos >= len(text) {
		return Literal{}, nil
	}

	c := text[pos]
	switch {
	case c == '\'' || c == '"':
		return quotedLiteral(text, pos, pos)
	case isDigit(c), c == '.' && pos+1 < len(text) && isDigit(text[pos+1]):
		return numericLiteral(text, pos), nil
	case isIdentStart(c):
		end := wordEnd(text, pos)
		if end >= len(text) {
			return Literal{}, nil
		}
		prefix := text[pos:end]
		switch text[end] {
		case '"':
			if isRawPrefix(prefix) {
				return rawLiteral(text, pos, end)
			}
			if isEncodingPrefix(prefix) {
				return quotedLiteral(text, pos, end)
			}
		case '\'':
			if isEncodingPrefix(prefix) {
				return quotedLiteral(text, pos, end)
			}
		}
	}
	return Literal{}, nil
}

func isEncodingPrefix(p string) bool {
	switch p {
	case "u8", "u", "U", "L":
		return true
	}
	return false
}

func isRawPrefix(p string) bool {
	switch p {
	case "R", "u8R", "uR", "UR", "LR":
		return true
	}
	return false
}

// quotedLiteral scans a '...' or "..." literal whose opening quote is at q.
// start is where the literal begins (the prefix, if any).
func quotedLiteral(text string, start, q int) (Literal, error) {
	quote := text[q]
	kind := LiteralString
	if quote == '\'' {
		kind = LiteralChar
	}

	i := q + 1
	for i < len(text) {
		switch text[i] {
		case '\\':
			i += 2
			continue
		case quote:
			return Literal{Kind: kind, Span: Span{Start: start, End: udlSuffixEnd(text, i+1)}}, nil
		}
		i++
	}
	return Literal{}, malformed(start, "unterminated %s literal", kind)
}

// rawLiteral scans R"delim(...)delim". q is the offset of the opening quote.
func rawLiteral(text string, start, q int) (Literal, error) {
	open := q + 1
	for open < len(text) && text[open] != '(' {
		switch text[open] {
		case ' ', ')', '\\', '"', '\t', '\n', '\r', '\v', '\f':
			return Literal{}, malformed(start, "invalid raw string delimiter character %q", text[open])
		}
		open++
	}
	if open >= len(text) {
		return Literal{}, malformed(start, "raw string has no opening parenthesis")
	}
	delim := text[q+1 : open]
	if len(delim) > maxRawDelimiter {
		return Literal{}, malformed(start, "raw string delimiter longer than %d characters", maxRawDelimiter)
	}

	closing := ")" + delim + `"`
	idx := strings.Index(text[open+1:], closing)
	if idx < 0 {
		return Literal{}, malformed(start, "unterminated raw string literal")
	}
	end := open + 1 + idx + len(closing)
	return Literal{Kind: LiteralRawString, Span: Span{Start: start, End: udlSuffixEnd(text, end)}}, nil
}

// numericLiteral never fails: anything that starts like a number is
// consumed up to the end of its suffix.
func numericLiteral(text string, pos int) Literal {
	i := pos
	hex := false
	if text[i] == '0' && i+1 < len(text) {
		switch text[i+1] {
		case 'x', 'X':
			hex = true
			i += 2
		case 'b', 'B':
			i += 2
		}
	}

	digit := isDigit
	if hex {
		digit = isHexDigit
	}

	i = digitRun(text, i, digit)
	if i < len(text) && text[i] == '.' {
		i = digitRun(text, i+1, digit)
	}

	if i < len(text) {
		e := text[i]
		if (hex && (e == 'p' || e == 'P')) || (!hex && (e == 'e' || e == 'E')) {
			j := i + 1
			if j < len(text) && (text[j] == '+' || text[j] == '-') {
				j++
			}
			if j < len(text) && isDigit(text[j]) {
				i = digitRun(text, j, isDigit)
			}
		}
	}

	// Built-in (u, l, ll, f, lf, ...) and user-defined suffixes alike.
	i = wordEnd(text, i)
	return Literal{Kind: LiteralNumeric, Span: Span{Start: pos, End: i}}
}

// digitRun consumes digits and ' separators. A separator only counts when
// it sits between two digits, so 1'000 is one literal and 1,'a' is not.
func digitRun(text string, i int, digit func(byte) bool) int {
	for i < len(text) {
		c := text[i]
		if digit(c) {
			i++
			continue
		}
		if c == '\'' && i > 0 && digit(text[i-1]) && i+1 < len(text) && digit(text[i+1]) {
			i += 2
			continue
		}
		break
	}
	return i
}

func udlSuffixEnd(text string, i int) int {
	if i < len(text) && isIdentStart(text[i]) {
		return wordEnd(text, i)
	}
	return i
}
