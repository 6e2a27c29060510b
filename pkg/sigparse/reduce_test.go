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

func whole(text string) Span { return Span{Start: 0, End: len(text)} }

func TestStripDefault(t *testing.T) {
	tests := []struct {
		param string
		want  string
	}{
		{"int a", "int a"},
		{"int a = 3", "int a"},
		{"  int a=3  ", "int a"},
		{"char a1 = l','", "char a1"},
		{"std::string a1 = \"x = y\"", "std::string a1"},
		{"struct Bar a1 = test::baz<3, 2, 5>(23)", "struct Bar a1"},
		{"bool b = x == y", "bool b"},
		{"Flags f = Flags(a | b)", "Flags f"},
		{"x == y", "x == y"},
		{"int a[n == 2]", "int a[n == 2]"},
		{"T t = T{}", "T t"},
	}

	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			got, err := StripDefault(whole(tt.param), tt.param)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Text(tt.param))
		})
	}
}

func TestExtractName(t *testing.T) {
	tests := []struct {
		param string
		want  string
	}{
		{"a", "a"},
		{"int a", "a"},
		{"int& a", "a"},
		{"int* a", "a"},
		{"int&& a", "a"},
		{"const int a1", "a1"},
		{"int const a1", "a1"},
		{"const int * const * const a1", "a1"},
		{"unsigned long long int a", "a"},
		{"long long unsigned int a", "a"},
		{"long unsigned unsigned_a", "unsigned_a"},
		{"MyNamespace::Foo a1", "a1"},
		{"Matrix<T, N, M> mat", "mat"},
		{"Matrix<A, B, C>::Matrix<A, B, C> mat", "mat"},
		{"Math::LA::Matrix<A, B, C> mat", "mat"},
		{"::std::size_t n", "n"},
		{"std::map<int, std::vector<int>> m", "m"},
		{"int a[10]", "a"},
		{"int a[10][20]", "a"},
		{"int (*cb)(int, int)", "cb"},
		{"int (&arr)[10]", "arr"},
		{"void (Widget::*method)(int)", "method"},
		{"std::function<void(int)> callback", "callback"},
		{"Args&&... args", "args"},
		{"const std::vector<std::string>& names = {}", "names"},
		{"double a1 = 0xa.bp10l_deg_test", "a1"},
		{"volatile register int counter", "counter"},
		{"enum Color c", "c"},
	}

	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			got, ok, err := ExtractName(whole(tt.param), tt.param)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractName_Anonymous(t *testing.T) {
	for _, param := range []string{"int", "unsigned long long int", "const char*", "int = 5", "...", "int[]", "void (*)(int)"} {
		t.Run(param, func(t *testing.T) {
			got, ok, err := ExtractName(whole(param), param)
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Empty(t, got)
		})
	}
}

// A > right before = reads as >=, so the default is kept and its value
// taken for the name. Writing a space, vector<int> = x, avoids it.
func TestExtractName_GreaterEqualAfterTemplate(t *testing.T) {
	param := "std::vector<int>=x"
	got, ok, err := ExtractName(whole(param), param)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", got)

	param = "std::vector<int> = x"
	got, ok, err = ExtractName(whole(param), param)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestExtractName_Idempotent(t *testing.T) {
	for _, param := range []string{"int * const * a", "Matrix<T, N> m", "ns::T&& value = {}"} {
		name, ok, err := ExtractName(whole(param), param)
		require.NoError(t, err)
		require.True(t, ok)

		again, ok, err := ExtractName(whole(name), name)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, name, again)
	}
}

func TestParameter_Anonymous(t *testing.T) {
	assert.True(t, Parameter{}.Anonymous())
	assert.False(t, Parameter{Name: "a"}.Anonymous())
}
