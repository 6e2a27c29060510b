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

// TokenKind classifies one lexeme of a declarator.
type TokenKind int

const (
	Identifier TokenKind = iota
	TypeKeyword
	Qualifier
	PointerOrRef
	ScopeOperator
	ArrayBracket
	Punctuation
)

func (k TokenKind) String() string {
	switch k {
	case Identifier:
		return "identifier"
	case TypeKeyword:
		return "type_keyword"
	case Qualifier:
		return "qualifier"
	case PointerOrRef:
		return "pointer_or_ref"
	case ScopeOperator:
		return "scope_operator"
	case ArrayBracket:
		return "array_bracket"
	default:
		return "punctuation"
	}
}

// typeKeywords are fundamental types and elaborated-type keywords.
// A run of them, in any order, is type information.
var typeKeywords = map[string]bool{
	"void": true, "bool": true, "char": true, "short": true, "int": true,
	"long": true, "float": true, "double": true, "signed": true, "unsigned": true,
	"wchar_t": true, "char8_t": true, "char16_t": true, "char32_t": true,
	"struct": true, "class": true, "enum": true, "union": true,
	"typename": true, "auto": true,
}

// qualifiers decorate a type without naming it.
var qualifiers = map[string]bool{
	"const": true, "volatile": true, "mutable": true, "register": true,
	"restrict": true, "__restrict": true, "__restrict__": true,
	// Only meaningful in a declaration head, never the name of anything.
	"static": true, "inline": true, "virtual": true, "explicit": true,
	"constexpr": true, "consteval": true, "constinit": true, "extern": true,
	"friend": true, "thread_local": true, "template": true, "noexcept": true,
	"override": true, "final": true,
}

// Token is one classified lexeme. Span is absolute in the text that was
// tokenized and, for templated words, includes the argument list.
type Token struct {
	Kind TokenKind
	Text string
	Span Span

	// Scoped is set when the word is immediately followed by ::.
	Scoped bool

	// Templated is set when the word is followed by a <...> argument list.
	Templated bool

	// Group is the inside of a parenthesized group, for Punctuation
	// tokens that stand for one.
	Group Span
}

// plain reports whether the token can be a declarator name.
func (t Token) plain() bool {
	return t.Kind == Identifier && !t.Scoped && !t.Templated
}

func classifyWord(w string) TokenKind {
	switch {
	case typeKeywords[w]:
		return TypeKeyword
	case qualifiers[w]:
		return Qualifier
	default:
		return Identifier
	}
}

// Tokenize splits a declarator into classified tokens.
func Tokenize(declarator string) ([]Token, error) {
	return tokenize(declarator, Span{Start: 0, End: len(declarator)})
}

func tokenize(text string, span Span) ([]Token, error) {
	var toks []Token
	i := span.Start
	for i < span.End {
		c := text[i]
		switch {
		case isSpace(c):
			i++

		case c == '\'' || c == '"' || isDigit(c):
			lit, err := RecognizeLiteral(text, i)
			if err != nil {
				return nil, err
			}
			end := min(lit.Span.End, span.End)
			toks = append(toks, Token{Kind: Punctuation, Text: text[i:end], Span: Span{Start: i, End: end}})
			i = end

		case isIdentStart(c):
			if lit, err := RecognizeLiteral(text, i); err != nil {
				return nil, err
			} else if lit.Kind != LiteralNone {
				end := min(lit.Span.End, span.End)
				toks = append(toks, Token{Kind: Punctuation, Text: text[i:end], Span: Span{Start: i, End: end}})
				i = end
				continue
			}
			tok, next, err := wordToken(text, span, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i = next

		case c == ':' && i+1 < span.End && text[i+1] == ':':
			toks = append(toks, Token{Kind: ScopeOperator, Text: "::", Span: Span{Start: i, End: i + 2}})
			i += 2

		case c == '*' || c == '&' || c == '^':
			end := i + 1
			if c == '&' && end < span.End && text[end] == '&' {
				end++
			}
			toks = append(toks, Token{Kind: PointerOrRef, Text: text[i:end], Span: Span{Start: i, End: end}})
			i = end

		case c == '[':
			closing, err := matchBracket(text, i, span.End, false)
			if err != nil {
				return nil, err
			}
			toks = append(toks, Token{Kind: ArrayBracket, Text: text[i : closing+1], Span: Span{Start: i, End: closing + 1}})
			i = closing + 1

		case c == '(' || c == '{':
			closing, err := matchBracket(text, i, span.End, false)
			if err != nil {
				return nil, err
			}
			toks = append(toks, Token{
				Kind:  Punctuation,
				Text:  text[i : closing+1],
				Span:  Span{Start: i, End: closing + 1},
				Group: Span{Start: i + 1, End: closing},
			})
			i = closing + 1

		case c == '<':
			end := i + 1
			if closing, err := matchBracket(text, i, span.End, true); err == nil {
				end = closing + 1
			}
			toks = append(toks, Token{Kind: Punctuation, Text: text[i:end], Span: Span{Start: i, End: end}})
			i = end

		case c == '.' && strings.HasPrefix(text[i:span.End], "..."):
			toks = append(toks, Token{Kind: Punctuation, Text: "...", Span: Span{Start: i, End: i + 3}})
			i += 3

		default:
			toks = append(toks, Token{Kind: Punctuation, Text: text[i : i+1], Span: Span{Start: i, End: i + 1}})
			i++
		}
	}
	return toks, nil
}

// wordToken reads the identifier at i together with a following template
// argument list, and notes whether a :: comes right after.
func wordToken(text string, span Span, i int) (Token, int, error) {
	end := wordEnd(text, i)
	if end > span.End {
		end = span.End
	}
	word := text[i:end]
	tok := Token{Kind: classifyWord(word), Text: word, Span: Span{Start: i, End: end}}

	j := skipSpace(text, end)
	// A < that never closes is an operator, as in operator< or a < b.
	if tok.Kind == Identifier && j < span.End && text[j] == '<' {
		if closing, err := matchBracket(text, j, span.End, true); err == nil {
			tok.Templated = true
			end = closing + 1
			tok.Span.End = end
			j = skipSpace(text, end)
		} else if KindOf(err) == MalformedLiteral {
			return Token{}, 0, err
		}
	}
	if j+1 < span.End && text[j] == ':' && text[j+1] == ':' {
		tok.Scoped = true
	}
	return tok, end, nil
}
