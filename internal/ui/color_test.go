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

package ui

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
)

// plain disables colors and captures Out for the duration of a test.
func plain(t *testing.T) *bytes.Buffer {
	t.Helper()
	origColor, origOut := color.NoColor, Out
	t.Cleanup(func() { color.NoColor, Out = origColor, origOut })

	color.NoColor = true
	var buf bytes.Buffer
	Out = &buf
	return &buf
}

func TestInitColors(t *testing.T) {
	original := color.NoColor
	defer func() { color.NoColor = original }()

	for _, noColor := range []bool{false, true} {
		InitColors(noColor)
		if color.NoColor != noColor {
			t.Errorf("InitColors(%v): color.NoColor = %v", noColor, color.NoColor)
		}
	}
}

func TestInlineFormatters(t *testing.T) {
	plain(t)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"label", Label("Files:"), "Files:"},
		{"dim", DimText("/path/to/repo"), "/path/to/repo"},
		{"count", CountText(42), "42"},
		{"zero count", CountText(0), "0"},
		{"location", Location("src/widget.cpp", 14, 5), "src/widget.cpp:14:5"},
		{"kind", KindText("malformed_literal"), "malformed_literal"},
		{"param", ParamText("width"), "width"},
		{"anonymous param", ParamText(""), "<anonymous>"},
		{"empty label", Label(""), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestMessageFunctions(t *testing.T) {
	buf := plain(t)

	Success("scan complete")
	Successf("%d files", 3)
	Warning("2 declarations failed")
	Warningf("%s skipped", "build/")
	Error("cannot read file")
	Info("using cache")
	Infof("mode %s", "auto")

	want := "✓ scan complete\n" +
		"✓ 3 files\n" +
		"⚠ 2 declarations failed\n" +
		"⚠ build/ skipped\n" +
		"✗ cannot read file\n" +
		"ℹ using cache\n" +
		"ℹ mode auto\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestHeader(t *testing.T) {
	buf := plain(t)

	Header("Scan Summary")
	SubHeader("Errors:")
	if got, want := buf.String(), "Scan Summary\n============\nErrors:\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRows(t *testing.T) {
	buf := plain(t)

	Rows([][2]string{
		{"Files:", "3"},
		{"Declarations:", "13"},
	})
	want := "Files:         3\nDeclarations:  13\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}
