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

// Package sigparse extracts the parameter names of a C++ function
// declaration from its source text.
//
// The package works on plain strings and never builds a syntax tree. It
// knows enough of the lexical grammar to skip literals and to balance
// brackets, and enough of declarator syntax to tell a parameter's name
// from its type decorations. Every operation is a pure function of its
// input and is safe to call from many goroutines at once.
//
// # Extraction Steps
//
//  1. LocateParameterList finds the outer parentheses of the declaration.
//  2. SplitTopLevel cuts the list at commas that sit at nesting depth zero.
//  3. StripDefault drops a "= value" clause from each parameter.
//  4. ExtractName reads the rightmost plain identifier of what is left.
//
// ParseDeclaration runs all four and also reports the function name and
// whether the declared return type is something other than void.
//
// # Literals
//
// RecognizeLiteral is used by every scan to step over character, string,
// raw string and numeric literals as one unit, so that a comma or bracket
// inside '(' or "a, b" never counts.
//
// # Angle Brackets
//
// Whether < opens a template argument list or is a less-than operator
// cannot be decided without knowing which names are templates. Scans that
// track angle brackets treat every < in a type as an opener, except << and
// <=, and fall back when that turns out to be wrong: a < still open when a
// ), ] or } arrives, or when the range ends, is demoted to an operator and
// the range is scanned again. This gets Matrix<T, N, M> and f(a < b, c)
// right.
//
// Within a default value, from a top-level = to the next top-level comma,
// < and > are operators, so a = b < c, d = e > f splits into two
// parameters. The one exception is a template name whose argument list is
// followed by (, { or ::, as in test::baz<3, 2, 5>(23).
//
// # Errors
//
// Failures are returned as *ParseError with one of three kinds. Use
// errors.Is with ErrUnbalancedInput, ErrNotAFunctionDeclaration or
// ErrMalformedLiteral, or KindOf, to branch on them.
package sigparse
