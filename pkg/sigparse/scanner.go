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

// BracketFrame is one entry on the scanner's nesting stack.
type BracketFrame struct {
	Kind   byte // one of ( [ { <
	Offset int  // where the bracket opened
}

func closerFor(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	case '{':
		return '}'
	case '<':
		return '>'
	}
	return 0
}

// MatchBracket returns the offset of the bracket that closes the one at
// open. Literals are skipped as opaque units, so brackets inside strings
// and character literals never count.
//
// trackAngles makes < and > nest like the other bracket families; it is
// meant for type positions, where < opens a template argument list. Even
// then a < that cannot be closed is treated as a comparison and ignored,
// see the package documentation.
func MatchBracket(text string, open int, trackAngles bool) (int, error) {
	return matchBracket(text, open, len(text), trackAngles)
}

func matchBracket(text string, open, limit int, trackAngles bool) (int, error) {
	if open < 0 || open >= limit || limit > len(text) {
		return 0, unbalanced(open, "offset out of range")
	}
	c := text[open]
	if closerFor(c) == 0 || (c == '<' && !trackAngles) {
		return 0, unbalanced(open, "%q is not an opening bracket", c)
	}

	sc := newTopLevelScan(text, Span{Start: open, End: limit}, trackAngles)
	if c == '<' && !sc.isAngleOpener(open) {
		return 0, unbalanced(open, "%q at offset %d is an operator", text[open:open+2], open)
	}
	hits, err := sc.find(string(closerFor(c)), 1)
	if err != nil {
		return 0, err
	}
	if sc.demoted[open] || len(hits) == 0 {
		return 0, unbalanced(open, "%q is never closed", c)
	}
	return hits[0], nil
}

// TopLevelIndexes returns the offsets of every byte in span that belongs to
// targets and sits at nesting depth zero relative to the span: outside all
// brackets opened inside the span and outside all literals. An opening
// bracket is at depth zero when it opens from depth zero, a closing one
// when it brings the depth back to zero.
func TopLevelIndexes(text string, span Span, trackAngles bool, targets string) ([]int, error) {
	if !span.valid(text) {
		return nil, unbalanced(span.Start, "span %s outside text of length %d", span, len(text))
	}
	return newTopLevelScan(text, span, trackAngles).find(targets, 0)
}

// topLevelScan walks a span tracking bracket depth. demoted holds the
// offsets of < characters that turned out to be operators.
type topLevelScan struct {
	text    string
	span    Span
	angles  bool
	demoted map[int]bool

	// typeOnly scans never enter default-value mode.
	typeOnly bool
}

func newTopLevelScan(text string, span Span, angles bool) *topLevelScan {
	return &topLevelScan{text: text, span: span, angles: angles}
}

// find runs passes over the span until no angle bracket needs demoting.
// Every pass either finishes or demotes one more <, so the loop ends.
func (s *topLevelScan) find(targets string, limit int) ([]int, error) {
	for {
		hits, angle, err := s.pass(targets, limit)
		if err != nil {
			return nil, err
		}
		if angle < 0 {
			return hits, nil
		}
		if s.demoted == nil {
			s.demoted = make(map[int]bool)
		}
		s.demoted[angle] = true
	}
}

// pass is a single left-to-right walk. It returns the offset of a < that
// must be demoted (or -1) so that find can rescan.
func (s *topLevelScan) pass(targets string, limit int) ([]int, int, error) {
	text := s.text
	var (
		stack []BracketFrame
		hits  []int

		// inDefault is set from a top-level = until the next top-level
		// comma. Inside a default value < is an operator unless it opens
		// the argument list of a template call.
		inDefault bool
	)
	hit := func(i int) {
		if strings.IndexByte(targets, text[i]) >= 0 {
			hits = append(hits, i)
		}
	}

	i := s.span.Start
	for i < s.span.End {
		if limit > 0 && len(hits) >= limit {
			return hits, -1, nil
		}

		c := text[i]
		if c == '\'' || c == '"' || isIdentStart(c) || isDigit(c) || (c == '.' && i+1 < len(text) && isDigit(text[i+1])) {
			lit, err := RecognizeLiteral(text, i)
			if err != nil {
				return nil, -1, err
			}
			switch {
			case lit.Kind != LiteralNone:
				if lit.Span.End > s.span.End {
					return nil, -1, unbalanced(i, "literal runs past the end of the scanned range")
				}
				i = lit.Span.End
			case isIdentStart(c):
				i = wordEnd(text, i)
			default:
				i++
			}
			continue
		}

		depth := len(stack)
		switch c {
		case '(', '[', '{':
			if depth == 0 {
				hit(i)
			}
			stack = append(stack, BracketFrame{Kind: c, Offset: i})

		case '<':
			if s.isAngleOpener(i) && (!inDefault || s.isTemplateCall(i)) {
				if depth == 0 {
					hit(i)
				}
				stack = append(stack, BracketFrame{Kind: c, Offset: i})
			} else {
				if depth == 0 {
					hit(i)
				}
				// << and <= are operators, never two openers.
				if i+1 < s.span.End && (text[i+1] == '<' || text[i+1] == '=') {
					i++
				}
			}

		case ')', ']', '}':
			if depth == 0 {
				return nil, -1, unbalanced(i, "unexpected %q", c)
			}
			top := stack[depth-1]
			if top.Kind == '<' {
				return nil, top.Offset, nil
			}
			if closerFor(top.Kind) != c {
				return nil, -1, unbalanced(i, "%q does not close %q opened at offset %d", c, top.Kind, top.Offset)
			}
			stack = stack[:depth-1]
			if len(stack) == 0 {
				hit(i)
			}

		case '>':
			arrow := i > s.span.Start && text[i-1] == '-'
			if s.angles && !arrow && depth > 0 && stack[depth-1].Kind == '<' {
				stack = stack[:depth-1]
				if len(stack) == 0 {
					hit(i)
				}
			} else if depth == 0 {
				hit(i)
			}

		default:
			if depth == 0 {
				switch {
				case c == ',':
					inDefault = false
				case c == '=' && !s.typeOnly && !isComparison(text, s.span, i):
					inDefault = true
				}
				hit(i)
			}
		}
		i++
	}

	if limit > 0 && len(hits) >= limit {
		return hits, -1, nil
	}
	if len(stack) > 0 {
		for j := len(stack) - 1; j >= 0; j-- {
			if stack[j].Kind == '<' {
				return nil, stack[j].Offset, nil
			}
		}
		top := stack[len(stack)-1]
		return nil, -1, unbalanced(top.Offset, "%q is never closed", top.Kind)
	}
	return hits, -1, nil
}

func (s *topLevelScan) isAngleOpener(i int) bool {
	if !s.angles || s.demoted[i] {
		return false
	}
	if i+1 < s.span.End {
		if n := s.text[i+1]; n == '<' || n == '=' {
			return false
		}
	}
	return true
}

// isTemplateCall reports whether the < at i follows a name and closes
// into a call, a braced initializer or a further :: qualification, as in
// ns::f<A, B>(x), std::array<int, 2>{} or Traits<T, U>::value.
func (s *topLevelScan) isTemplateCall(i int) bool {
	j := i
	for j > s.span.Start && isSpace(s.text[j-1]) {
		j--
	}
	if j == s.span.Start || !isIdentChar(s.text[j-1]) {
		return false
	}
	sub := newTopLevelScan(s.text, Span{Start: i, End: s.span.End}, true)
	sub.typeOnly = true
	hits, err := sub.find(">", 1)
	if err != nil || sub.demoted[i] || len(hits) == 0 {
		return false
	}
	next := skipSpace(s.text, hits[0]+1)
	if next >= s.span.End {
		return false
	}
	switch s.text[next] {
	case '(', '{':
		return true
	case ':':
		return next+1 < s.span.End && s.text[next+1] == ':'
	}
	return false
}
