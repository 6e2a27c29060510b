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

import (
	"iter"
	"strings"
)

// groupKeywords introduce a parenthesized group in a declaration head that
// is never the parameter list.
var groupKeywords = map[string]bool{
	"decltype":      true,
	"alignas":       true,
	"__attribute__": true,
	"__declspec":    true,
}

// LocateParameterList finds the outer parentheses of the function
// declaration in text and returns the span between them (exclusive of
// the parentheses themselves).
//
// The first top-level ( that is not part of a literal opens the list,
// except for groups that belong to decltype, alignas, __attribute__,
// __declspec, or to the name of operator(). Angle brackets are not tracked
// here: the list itself is parenthesis-delimited.
func LocateParameterList(text string) (Span, error) {
	from := 0
	for from < len(text) {
		opens, err := newTopLevelScan(text, Span{Start: from, End: len(text)}, false).find("(", 1)
		if err != nil {
			return Span{}, err
		}
		if len(opens) == 0 {
			break
		}
		open := opens[0]
		closing, err := MatchBracket(text, open, false)
		if err != nil {
			return Span{}, err
		}

		word := precedingWord(text, open)
		switch {
		case groupKeywords[word]:
			from = closing + 1
			continue
		case word == "operator" && strings.TrimSpace(text[open+1:closing]) == "":
			from = closing + 1
			continue
		}
		return Span{Start: open + 1, End: closing}, nil
	}
	return Span{}, &ParseError{Kind: NotAFunctionDeclaration, Offset: 0, Msg: "no parameter list found"}
}

// precedingWord returns the identifier that ends right before pos,
// ignoring whitespace in between.
func precedingWord(text string, pos int) string {
	end := pos
	for end > 0 && isSpace(text[end-1]) {
		end--
	}
	start := end
	for start > 0 && isIdentChar(text[start-1]) {
		start--
	}
	return text[start:end]
}

// SplitTopLevel splits a parameter list into one span per parameter.
//
// Commas split only at depth zero relative to the list; (), [], {} and
// template argument lists nest, and literals are skipped whole. The
// returned spans are trimmed of surrounding whitespace and ordered as in
// the source. A list holding only whitespace has no parameters.
func SplitTopLevel(list Span, text string) ([]Span, error) {
	if !list.valid(text) {
		return nil, unbalanced(list.Start, "list span %s outside text of length %d", list, len(text))
	}
	if list.Trim(text).Empty() {
		return nil, nil
	}

	commas, err := TopLevelIndexes(text, list, true, ",")
	if err != nil {
		return nil, err
	}

	spans := make([]Span, 0, len(commas)+1)
	start := list.Start
	for _, c := range commas {
		spans = append(spans, Span{Start: start, End: c}.Trim(text))
		start = c + 1
	}
	spans = append(spans, Span{Start: start, End: list.End}.Trim(text))
	return spans, nil
}

// TopLevelParams is the iterator form of SplitTopLevel. Each call to the
// returned sequence re-derives the spans from text; on failure it yields a
// single zero Span with the error.
func TopLevelParams(list Span, text string) iter.Seq2[Span, error] {
	return func(yield func(Span, error) bool) {
		spans, err := SplitTopLevel(list, text)
		if err != nil {
			yield(Span{}, err)
			return
		}
		for _, sp := range spans {
			if !yield(sp, nil) {
				return
			}
		}
	}
}
