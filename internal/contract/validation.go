// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package contract

import (
	"os"
	"strconv"
	"strings"
)

const (
	// DefaultMaxDeclarationBytes is the baseline limit for one declaration
	// handed to the extractor from the CLI or the HTTP API.
	DefaultMaxDeclarationBytes = 64 << 10 // 64 KiB

	// MaxIndentBytes bounds the indentation string of a comment block.
	MaxIndentBytes = 256
)

// MaxDeclarationBytes returns the effective declaration size limit.
// Controlled via env CDOC_MAX_DECL_BYTES; falls back to DefaultMaxDeclarationBytes.
func MaxDeclarationBytes() int {
	if v := os.Getenv("CDOC_MAX_DECL_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultMaxDeclarationBytes
}

// Reasons a declaration is rejected.
const (
	ReasonEmpty    = "empty"
	ReasonTooLarge = "too_large"
	ReasonNULByte  = "nul_byte"
)

// ValidationResult represents the result of a validation check.
type ValidationResult struct {
	OK      bool
	Message string

	// Reason is one of the Reason constants when OK is false.
	Reason string
}

// ValidateDeclaration checks a declaration before extraction against
// MaxDeclarationBytes. It does not look at the C++ at all, only at limits
// the extractor should not be asked to handle.
func ValidateDeclaration(text string) *ValidationResult {
	return CheckDeclaration(text, MaxDeclarationBytes())
}

// CheckDeclaration is ValidateDeclaration with an explicit size limit.
// maxBytes <= 0 disables the size check.
func CheckDeclaration(text string, maxBytes int) *ValidationResult {
	switch {
	case strings.TrimSpace(text) == "":
		return &ValidationResult{Message: "declaration is empty", Reason: ReasonEmpty}
	case maxBytes > 0 && len(text) > maxBytes:
		return &ValidationResult{Message: "declaration exceeds size limit", Reason: ReasonTooLarge}
	case strings.IndexByte(text, 0) >= 0:
		return &ValidationResult{Message: "declaration contains a NUL byte", Reason: ReasonNULByte}
	}
	return &ValidationResult{OK: true}
}

// ValidateIndent checks an indentation string for a comment block.
func ValidateIndent(indent string) *ValidationResult {
	if len(indent) > MaxIndentBytes {
		return &ValidationResult{OK: false, Message: "indent exceeds size limit"}
	}
	if strings.Trim(indent, " \t") != "" {
		return &ValidationResult{OK: false, Message: "indent must contain only spaces and tabs"}
	}
	return &ValidationResult{OK: true}
}
