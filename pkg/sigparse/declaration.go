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
	"fmt"
	"strings"
)

// Declaration is the documentable shape of one function declaration.
type Declaration struct {
	// Text is the declaration text the shape was extracted from.
	Text string

	// List is the inside of the parameter-list parentheses.
	List Span

	// Name is the function name including its qualification, e.g.
	// Widget::resize, ~Widget or operator==. Empty when it cannot be told.
	Name string

	// ReturnType is the declared return type with specifiers removed.
	// Empty for constructors and destructors.
	ReturnType string

	// HasReturn is false when the return type is empty or exactly void.
	HasReturn bool

	// Params are in declaration order.
	Params []Parameter
}

// ParamNames returns the parameter names in order; anonymous parameters
// are returned as empty strings so positions are preserved.
func (d *Declaration) ParamNames() []string {
	names := make([]string, len(d.Params))
	for i, p := range d.Params {
		names[i] = p.Name
	}
	return names
}

// ParseDeclaration runs the whole extraction on one candidate declaration:
// it locates the parameter list, splits it, reduces every parameter and
// reads the return type from the text before the list.
//
// Extraction is all-or-nothing. If any parameter fails to reduce, no
// parameters are reported, because a partial list would shift every
// following @param entry.
func ParseDeclaration(text string) (*Declaration, error) {
	list, err := LocateParameterList(text)
	if err != nil {
		return nil, err
	}
	spans, err := SplitTopLevel(list, text)
	if err != nil {
		return nil, fmt.Errorf("split parameters: %w", err)
	}

	params := make([]Parameter, 0, len(spans))
	for i, sp := range spans {
		name, _, err := ExtractName(sp, text)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i+1, err)
		}
		params = append(params, Parameter{Name: name, Span: sp})
	}
	// f(void) is the C spelling of an empty list.
	if len(params) == 1 && params[0].Span.Text(text) == "void" {
		params = params[:0]
	}

	head, err := analyzeHead(text, Span{Start: 0, End: list.Start - 1})
	if err != nil {
		return nil, fmt.Errorf("declaration head: %w", err)
	}
	if head.returnType == "auto" {
		if trailing := trailingReturnType(text, list.End+1); trailing != "" {
			head.returnType = trailing
		}
	}

	return &Declaration{
		Text:       text,
		List:       list,
		Name:       head.name,
		ReturnType: head.returnType,
		HasReturn:  head.returnType != "" && head.returnType != "void",
		Params:     params,
	}, nil
}

// ParamNames extracts the ordered parameter names of the declaration in
// text. Anonymous parameters appear as empty strings.
func ParamNames(text string) ([]string, error) {
	d, err := ParseDeclaration(text)
	if err != nil {
		return nil, err
	}
	return d.ParamNames(), nil
}

type declHead struct {
	name       string
	returnType string
}

// analyzeHead splits the text before the parameter list into the function
// name and its return type.
func analyzeHead(text string, head Span) (declHead, error) {
	toks, err := tokenize(text, head)
	if err != nil {
		return declHead{}, err
	}

	// Attributes and template headers carry no return type information.
	kept := toks[:0:0]
	for i, t := range toks {
		switch {
		case t.Kind == Qualifier && t.Text != "const" && t.Text != "volatile":
			continue
		case t.Kind == ArrayBracket && strings.HasPrefix(t.Text, "[["):
			continue
		case t.Kind == Punctuation && strings.HasPrefix(t.Text, "<") && i > 0 && toks[i-1].Text == "template":
			continue
		case t.Kind == Punctuation && !t.Group.Empty() && i > 0 && isAttributeKeyword(toks[i-1].Text):
			continue
		case t.Kind == Identifier && isAttributeKeyword(t.Text):
			continue
		}
		kept = append(kept, t)
	}
	if len(kept) == 0 {
		return declHead{}, nil
	}

	nameAt := nameStart(kept)
	name := ""
	if nameAt < len(kept) {
		name = strings.TrimSpace(text[kept[nameAt].Span.Start:head.End])
	}

	var rt []string
	for _, t := range kept[:nameAt] {
		rt = append(rt, t.Span.Text(text))
	}
	return declHead{name: name, returnType: joinTypeTokens(rt)}, nil
}

// nameStart returns the index of the first token of the function name:
// the last identifier together with the :: chain and ~ in front of it,
// or everything from the operator keyword on.
func nameStart(toks []Token) int {
	for i, t := range toks {
		if t.Kind == Identifier && t.Text == "operator" {
			return qualifierChainStart(toks, i)
		}
	}

	last := -1
	for i, t := range toks {
		if t.Kind == Identifier && !t.Scoped {
			last = i
		}
	}
	if last < 0 {
		return len(toks)
	}
	start := qualifierChainStart(toks, last)
	if start > 0 && toks[start-1].Text == "~" {
		start = qualifierChainStart(toks, start-1)
	}
	return start
}

// isAttributeKeyword reports whether w opens a group that decorates the
// declaration rather than spelling its type. decltype is part of the type.
func isAttributeKeyword(w string) bool {
	return groupKeywords[w] && w != "decltype"
}

// qualifierChainStart walks back over Name:: pairs that qualify toks[i].
func qualifierChainStart(toks []Token, i int) int {
	for i >= 2 && toks[i-1].Kind == ScopeOperator && toks[i-2].Scoped {
		i -= 2
	}
	// A leading :: for the global namespace.
	if i >= 1 && toks[i-1].Kind == ScopeOperator && (i == 1 || !toks[i-2].Scoped) {
		i--
	}
	return i
}

// joinTypeTokens renders type tokens with C++ spacing: words are separated
// by one space, :: and pointer marks attach to their neighbors.
func joinTypeTokens(parts []string) string {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			prev := parts[i-1]
			if p != "::" && prev != "::" && !isDecoration(p) && !strings.HasPrefix(p, "(") {
				b.WriteByte(' ')
			}
		}
		b.WriteString(p)
	}
	return b.String()
}

func isDecoration(p string) bool {
	return p == "*" || p == "&" || p == "&&" || p == "^" || strings.HasPrefix(p, "[")
}

// trailingReturnType reads the T of "auto f(...) -> T" from the text after
// the parameter list.
func trailingReturnType(text string, from int) string {
	if from >= len(text) {
		return ""
	}
	arrows, err := TopLevelIndexes(text, Span{Start: from, End: len(text)}, false, "-")
	if err != nil {
		return ""
	}
	for _, a := range arrows {
		if a+1 >= len(text) || text[a+1] != '>' {
			continue
		}
		rest := text[a+2:]
		if cut := strings.IndexAny(rest, "{;="); cut >= 0 {
			rest = rest[:cut]
		}
		for _, suffix := range []string{"override", "final"} {
			rest = strings.TrimSpace(rest)
			rest = strings.TrimSuffix(rest, suffix)
		}
		return strings.Join(strings.Fields(rest), " ")
	}
	return ""
}
