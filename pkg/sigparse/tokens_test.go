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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tok struct {
	kind TokenKind
	text string
}

func kinds(toks []Token) []tok {
	out := make([]tok, len(toks))
	for i, t := range toks {
		out[i] = tok{t.Kind, t.Text}
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		decl string
		want []tok
	}{
		{"unsigned long x[3]", []tok{
			{TypeKeyword, "unsigned"}, {TypeKeyword, "long"}, {Identifier, "x"}, {ArrayBracket, "[3]"},
		}},
		{"const std::vector<int>& v", []tok{
			{Qualifier, "const"}, {Identifier, "std"}, {ScopeOperator, "::"}, {Identifier, "vector"},
			{PointerOrRef, "&"}, {Identifier, "v"},
		}},
		{"int (*cb)(int)", []tok{
			{TypeKeyword, "int"}, {Punctuation, "(*cb)"}, {Punctuation, "(int)"},
		}},
		{"Args&&... args", []tok{
			{Identifier, "Args"}, {PointerOrRef, "&&"}, {Punctuation, "..."}, {Identifier, "args"},
		}},
		{"a < b", []tok{
			{Identifier, "a"}, {Punctuation, "<"}, {Identifier, "b"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.decl, func(t *testing.T) {
			toks, err := Tokenize(tt.decl)
			require.NoError(t, err)
			assert.Equal(t, tt.want, kinds(toks))
		})
	}
}

func TestTokenize_Flags(t *testing.T) {
	decl := "std::map<int, char> m"
	toks, err := Tokenize(decl)
	require.NoError(t, err)
	require.Len(t, toks, 4)

	assert.True(t, toks[0].Scoped)
	assert.False(t, toks[0].plain())

	assert.True(t, toks[2].Templated)
	assert.Equal(t, "map<int, char>", toks[2].Span.Text(decl))
	assert.False(t, toks[2].plain())

	assert.True(t, toks[3].plain())
}

func TestTokenize_ArraySuffix(t *testing.T) {
	decl := "const std::vector<int>& v[3]"
	toks, err := Tokenize(decl)
	require.NoError(t, err)

	assert.Equal(t, []tok{
		{Qualifier, "const"}, {Identifier, "std"}, {ScopeOperator, "::"}, {Identifier, "vector"},
		{PointerOrRef, "&"}, {Identifier, "v"}, {ArrayBracket, "[3]"},
	}, kinds(toks))
	assert.True(t, toks[1].Scoped)
	assert.True(t, toks[3].Templated)
	assert.Equal(t, "vector<int>", toks[3].Span.Text(decl))
}

func TestTokenize_Group(t *testing.T) {
	decl := "int (&arr)[3]"
	toks, err := Tokenize(decl)
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, "&arr", toks[1].Group.Text(decl))
}

func TestTokenize_Errors(t *testing.T) {
	_, err := Tokenize("char c = 'x")
	assert.ErrorIs(t, err, ErrMalformedLiteral)

	_, err = Tokenize("int a[3")
	assert.ErrorIs(t, err, ErrUnbalancedInput)
}

func TestTokenKind_String(t *testing.T) {
	assert.Equal(t, "pointer_or_ref", PointerOrRef.String())
	assert.Equal(t, "scope_operator", ScopeOperator.String())
	assert.Equal(t, "punctuation", TokenKind(99).String())
}
