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

// Package ui provides user interface utilities for the cdoc CLI.
//
// This package offers color output helpers that respect the --no-color flag
// and NO_COLOR environment variable. Colors are automatically disabled when
// the output is not a TTY (e.g., when piped).
//
// Color usage guidelines:
//   - Red: Errors, failed declarations
//   - Yellow: Warnings, anonymous parameters
//   - Green: Success, completions
//   - Cyan: Info, counts
//   - Bold: Headers, labels
//   - Dim: Paths and source locations
package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// Pre-configured color instances for consistent CLI output.
var (
	Red    = color.New(color.FgRed)
	Yellow = color.New(color.FgYellow)
	Green  = color.New(color.FgGreen)
	Cyan   = color.New(color.FgCyan)
	Bold   = color.New(color.Bold)
	Dim    = color.New(color.Faint)
)

// Out is where the message helpers write. Tests swap it for a buffer.
var Out io.Writer = color.Output

// InitColors configures global color output based on the noColor flag.
//
// This should be called early in main() after parsing flags.
func InitColors(noColor bool) {
	color.NoColor = noColor
}

// Success prints a green success message with a checkmark prefix.
func Success(msg string) {
	_, _ = Green.Fprintln(Out, "✓ "+msg)
}

// Successf prints a formatted green success message with a checkmark prefix.
func Successf(format string, args ...any) {
	_, _ = Green.Fprintf(Out, "✓ "+format+"\n", args...)
}

// Warning prints a yellow warning message with a warning symbol prefix.
func Warning(msg string) {
	_, _ = Yellow.Fprintln(Out, "⚠ "+msg)
}

// Warningf prints a formatted yellow warning message.
func Warningf(format string, args ...any) {
	_, _ = Yellow.Fprintf(Out, "⚠ "+format+"\n", args...)
}

// Error prints a red error message with an X prefix.
func Error(msg string) {
	_, _ = Red.Fprintln(Out, "✗ "+msg)
}

// Info prints a cyan informational message with an info symbol prefix.
func Info(msg string) {
	_, _ = Cyan.Fprintln(Out, "ℹ "+msg)
}

// Infof prints a formatted cyan informational message.
func Infof(format string, args ...any) {
	_, _ = Cyan.Fprintf(Out, "ℹ "+format+"\n", args...)
}

// Header prints a bold header with an underline separator.
//
//	Scan Summary
//	============
func Header(text string) {
	_, _ = Bold.Fprintln(Out, text)
	_, _ = fmt.Fprintln(Out, strings.Repeat("=", utf8.RuneCountInString(text)))
}

// SubHeader prints a bold sub-header without an underline.
func SubHeader(text string) {
	_, _ = Bold.Fprintln(Out, text)
}

// Label returns a bold-formatted label string for inline use.
func Label(text string) string {
	return Bold.Sprint(text)
}

// DimText returns a dim-formatted string for less important text.
func DimText(text string) string {
	return Dim.Sprint(text)
}

// CountText returns a cyan-formatted count value for statistics display.
func CountText(count int) string {
	return Cyan.Sprint(count)
}

// Location formats a source position as path:line:col, dimmed.
func Location(path string, line, col int) string {
	return Dim.Sprintf("%s:%d:%d", path, line, col)
}

// KindText formats an extraction error kind, in red.
func KindText(kind string) string {
	return Red.Sprint(kind)
}

// ParamText formats a parameter name; anonymous parameters are shown as
// a yellow placeholder.
func ParamText(name string) string {
	if name == "" {
		return Yellow.Sprint("<anonymous>")
	}
	return name
}

// Rows prints label/value pairs with the values aligned:
//
//	Files:         3
//	Declarations:  13
func Rows(rows [][2]string) {
	width := 0
	for _, r := range rows {
		width = max(width, utf8.RuneCountInString(r[0]))
	}
	for _, r := range rows {
		pad := strings.Repeat(" ", width-utf8.RuneCountInString(r[0])+2)
		_, _ = fmt.Fprintf(Out, "%s%s%s\n", Label(r[0]), pad, r[1])
	}
}
