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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchBracket(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		open   int
		angles bool
		want   int
	}{
		{"nested parens", "f(a, (b), c)", 1, false, 11},
		{"literals are opaque", `f(')', ")")`, 1, false, 10},
		{"raw string is opaque", `(R"x()")x")`, 0, false, 10},
		{"braces", "{2, {3}}", 0, false, 7},
		{"nested angles", "Matrix<Vector<int>>", 6, true, 18},
		{"inner angle", "Matrix<Vector<int>>", 13, true, 17},
		{"comparison inside parens", "(a < b)", 0, true, 6},
		{"arrow is not a closer", "<decltype(p->x)>", 0, true, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MatchBracket(tt.text, tt.open, tt.angles)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchBracket_Errors(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		open   int
		angles bool
		kind   ErrorKind
	}{
		{"never closed", "(a", 0, false, UnbalancedInput},
		{"wrong closer", "(a]", 0, false, UnbalancedInput},
		{"not a bracket", "x", 0, false, UnbalancedInput},
		{"angles not tracked", "<T>", 0, false, UnbalancedInput},
		{"shift operator", "a << b", 2, true, UnbalancedInput},
		{"dangling angle", "a < b", 2, true, UnbalancedInput},
		{"out of range", "()", 5, false, UnbalancedInput},
		{"unterminated literal", `("abc)`, 0, false, MalformedLiteral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MatchBracket(tt.text, tt.open, tt.angles)
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestTopLevelIndexes(t *testing.T) {
	text := "a, b<c, d>, e"
	span := Span{Start: 0, End: len(text)}

	got, err := TopLevelIndexes(text, span, true, ",")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 10}, got)

	got, err = TopLevelIndexes(text, span, false, ",")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 6, 10}, got)
}

func TestTopLevelIndexes_DemotesComparison(t *testing.T) {
	// The < never closes, so both commas are top level.
	text := "int a = x < y, int b"
	got, err := TopLevelIndexes(text, Span{Start: 0, End: len(text)}, true, ",")
	require.NoError(t, err)
	assert.Equal(t, []int{13}, got)
}

func TestTopLevelIndexes_StrayCloser(t *testing.T) {
	text := "a), b"
	_, err := TopLevelIndexes(text, Span{Start: 0, End: len(text)}, true, ",")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnbalancedInput))
}

func TestTopLevelIndexes_BadSpan(t *testing.T) {
	_, err := TopLevelIndexes("abc", Span{Start: 2, End: 9}, false, ",")
	assert.Equal(t, UnbalancedInput, KindOf(err))
}
