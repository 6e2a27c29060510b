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
	"fmt"
)

// ErrorKind classifies why a declaration could not be reduced.
type ErrorKind int

const (
	// UnbalancedInput means a bracket or quote never found its match
	// before the end of the input, or a closer did not match its opener.
	UnbalancedInput ErrorKind = iota + 1

	// NotAFunctionDeclaration means no top-level parenthesis pair was found.
	NotAFunctionDeclaration

	// MalformedLiteral means a literal-opening sequence has no valid
	// closing form (unterminated string, bad raw-string delimiter).
	MalformedLiteral
)

// String returns the stable, snake_case name of the kind. The names are
// used as metric labels and in JSON output.
func (k ErrorKind) String() string {
	switch k {
	case UnbalancedInput:
		return "unbalanced_input"
	case NotAFunctionDeclaration:
		return "not_a_function_declaration"
	case MalformedLiteral:
		return "malformed_literal"
	default:
		return "unknown"
	}
}

// Sentinel errors for errors.Is matching against a *ParseError.
var (
	ErrUnbalancedInput         = errors.New("unbalanced input")
	ErrNotAFunctionDeclaration = errors.New("not a function declaration")
	ErrMalformedLiteral        = errors.New("malformed literal")
)

// ParseError is returned by every operation in this package.
// Offset is a byte offset into the text handed to the failing call.
type ParseError struct {
	Kind   ErrorKind
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s at offset %d", e.sentinel(), e.Offset)
	}
	return fmt.Sprintf("%s at offset %d: %s", e.sentinel(), e.Offset, e.Msg)
}

// Is makes errors.Is(err, ErrUnbalancedInput) and friends work.
func (e *ParseError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *ParseError) sentinel() error {
	switch e.Kind {
	case UnbalancedInput:
		return ErrUnbalancedInput
	case NotAFunctionDeclaration:
		return ErrNotAFunctionDeclaration
	case MalformedLiteral:
		return ErrMalformedLiteral
	default:
		return errors.New(e.Kind.String())
	}
}

// KindOf extracts the ErrorKind from an error chain.
// It returns 0 when err does not wrap a *ParseError.
func KindOf(err error) ErrorKind {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

func unbalanced(offset int, format string, args ...any) *ParseError {
	return &ParseError{Kind: UnbalancedInput, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

func malformed(offset int, format string, args ...any) *ParseError {
	return &ParseError{Kind: MalformedLiteral, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}
