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

package ingestion

// FileInfo represents a source file selected for scanning.
type FileInfo struct {
	Path     string // Relative path from the scan root
	FullPath string // Absolute path
	Size     int64
	Language string // "c" or "cpp", detected from the extension
}

// Candidate is a stretch of source text that a finder believes holds one
// function declaration. Text runs from the first token of the declaration
// to the end of its declarator and never includes a function body.
type Candidate struct {
	File    string
	Line    int // 1-based line of the first character of Text
	Column  int // 1-based byte column of the first character of Text
	EndLine int // 1-based line of the last character of Text

	// Indent is the whitespace that starts the line Text begins on.
	Indent string

	Text string
}

// DeclarationRecord is the outcome of extracting one candidate.
// Either Error is set, or the shape fields and Comment are.
type DeclarationRecord struct {
	ID         string   `json:"id"`
	File       string   `json:"file"`
	Line       int      `json:"line"`
	Column     int      `json:"column"`
	Text       string   `json:"text"`
	Name       string   `json:"name,omitempty"`
	ReturnType string   `json:"return_type,omitempty"`
	HasReturn  bool     `json:"has_return"`
	Params     []string `json:"params"`
	Anonymous  int      `json:"anonymous_params,omitempty"`
	Comment    string   `json:"comment,omitempty"`
	Error      string   `json:"error,omitempty"`
	ErrorKind  string   `json:"error_kind,omitempty"`
}

// Failed reports whether the declaration could not be extracted.
func (r DeclarationRecord) Failed() bool { return r.Error != "" }

// FileResult groups the declarations found in one file, in source order.
type FileResult struct {
	Path         string              `json:"path"`
	Language     string              `json:"language"`
	Declarations []DeclarationRecord `json:"declarations"`
	CacheHit     bool                `json:"cache_hit,omitempty"`
}
