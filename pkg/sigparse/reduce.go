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

// Parameter is one reduced parameter. An empty Name means the parameter
// is anonymous, e.g. the int in foo(int).
type Parameter struct {
	Name string
	Span Span
}

// Anonymous reports whether no name could be identified.
func (p Parameter) Anonymous() bool { return p.Name == "" }

// StripDefault removes a top-level default-value clause from param.
//
// The clause starts at the first = at depth zero that is not part of
// ==, <=, >= or !=, and runs to the end of the span. What follows the =
// is never inspected beyond skipping it as balanced, literal-aware text.
func StripDefault(param Span, text string) (Span, error) {
	if !param.valid(text) {
		return Span{}, unbalanced(param.Start, "parameter span %s outside text of length %d", param, len(text))
	}
	eqs, err := TopLevelIndexes(text, param, true, "=")
	if err != nil {
		return Span{}, err
	}
	for _, p := range eqs {
		if isComparison(text, param, p) {
			continue
		}
		return Span{Start: param.Start, End: p}.Trim(text), nil
	}
	return param.Trim(text), nil
}

// isComparison reports whether the = at p belongs to ==, <=, >= or !=.
// Only the neighboring bytes are looked at, so the = of vector<int>=x
// counts as part of >= and no default is stripped.
func isComparison(text string, span Span, p int) bool {
	if p+1 < span.End && text[p+1] == '=' {
		return true
	}
	if p > span.Start {
		switch text[p-1] {
		case '=', '<', '>', '!':
			return true
		}
	}
	return false
}

// ExtractName reduces a parameter declaration to its bare name.
//
// The default value is stripped first. Of the remaining tokens, type
// keywords, qualifiers, pointer and reference marks, array suffixes,
// namespace qualification and template argument lists are discarded, and
// the rightmost plain identifier is the name. For function pointers and
// references to arrays, int (*cb)(int), the name is read from the nested
// declarator group. ok is false when the parameter is anonymous.
func ExtractName(param Span, text string) (name string, ok bool, err error) {
	decl, err := StripDefault(param, text)
	if err != nil {
		return "", false, err
	}
	return reduceDeclarator(text, decl)
}

func reduceDeclarator(text string, decl Span) (string, bool, error) {
	toks, err := tokenize(text, decl)
	if err != nil {
		return "", false, err
	}

	name := ""
	for _, t := range toks {
		if t.Kind == Punctuation && !t.Group.Empty() {
			if !isNestedDeclarator(t.Group.Text(text)) {
				continue
			}
			inner, ok, err := reduceDeclarator(text, t.Group.Trim(text))
			if err != nil {
				return "", false, err
			}
			if ok {
				return inner, true, nil
			}
			continue
		}
		if t.plain() {
			name = t.Text
		}
	}
	return name, name != "", nil
}

// isNestedDeclarator reports whether a parenthesized group inside a
// declarator wraps the name, as in (*cb), (&arr) or (Class::*member).
func isNestedDeclarator(group string) bool {
	g := strings.TrimSpace(group)
	if g == "" {
		return false
	}
	switch g[0] {
	case '*', '&', '^':
		return true
	}
	return strings.Contains(g, "::*")
}
