// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package errors provides structured error handling for the cdoc CLI.
//
// This package defines UserError, a type that carries structured error information
// including what went wrong, why it happened, and how to fix it. It also defines
// consistent exit codes for different error categories.
//
// # Usage Example
//
//	err := errors.NewCacheError(
//	    "Cannot open the result cache",
//	    "The cache directory is locked by another cdoc process",
//	    "Wait for the other scan to finish or pass --cache-dir",
//	    underlyingErr,
//	)
//	errors.FatalError(err, false)
//
// Extraction failures from the core map onto user errors by kind:
//
//	if _, err := sigparse.ParseDeclaration(text); err != nil {
//	    errors.FatalError(errors.FromExtraction(err), jsonMode)
//	}
//
// # Formatted Output
//
// The Format() method provides colored terminal output:
//
//	Error: Declaration could not be parsed
//	Cause: unbalanced input at offset 8: ( at offset 8 is never closed
//	Fix:   Check that every bracket and quote in the declaration is closed
//
// For JSON output:
//
//	{
//	  "error": "Declaration could not be parsed",
//	  "cause": "unbalanced input at offset 8: ( at offset 8 is never closed",
//	  "fix": "Check that every bracket and quote in the declaration is closed",
//	  "code": "unbalanced_input",
//	  "exit_code": 7
//	}
//
// # Exit Codes
//
// The package defines semantic exit codes following Unix conventions:
//   - ExitSuccess (0): Successful execution
//   - ExitConfig (1): Configuration errors (missing/invalid config)
//   - ExitCache (2): Result cache errors (locked, corrupted, etc.)
//   - ExitNetwork (3): Listen or bind failures for serve and --metrics-addr
//   - ExitInput (4): Invalid user input (bad arguments, validation errors)
//   - ExitPermission (5): Permission denied (file access, etc.)
//   - ExitNotFound (6): Resource not found (path, git ref, etc.)
//   - ExitExtraction (7): A declaration could not be reduced
//   - ExitInternal (10): Internal errors (bugs, panics)
package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/kraklabs/cdoc/pkg/sigparse"
)

// Exit codes for different error categories.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitConfig indicates configuration errors (missing/invalid config files).
	ExitConfig = 1

	// ExitCache indicates result cache errors (locked, corrupted, etc.).
	ExitCache = 2

	// ExitNetwork indicates listen or bind failures.
	ExitNetwork = 3

	// ExitInput indicates invalid user input (bad arguments, validation errors).
	ExitInput = 4

	// ExitPermission indicates permission denied errors (file access, etc.).
	ExitPermission = 5

	// ExitNotFound indicates resource not found errors (path, git ref, etc.).
	ExitNotFound = 6

	// ExitExtraction indicates that a declaration could not be reduced.
	ExitExtraction = 7

	// ExitInternal indicates internal errors (bugs, unexpected panics).
	// Exit code 10 signals "this is a bug that should be reported".
	ExitInternal = 10
)

// UserError represents an error with structured context for end users.
//
// It provides three levels of information:
//   - Message: What went wrong (user-facing error description)
//   - Cause: Why it happened (diagnostic information)
//   - Fix: How to fix it (actionable suggestion)
//
// UserError also carries an exit code for consistent CLI exit behavior
// and optionally wraps an underlying error for error chain compatibility.
type UserError struct {
	// Message describes what went wrong in user-friendly language.
	Message string

	// Cause explains why the error occurred (diagnostic information).
	Cause string

	// Fix provides an actionable suggestion on how to resolve the error.
	Fix string

	// Code is a stable machine-readable identifier, set for extraction
	// errors to the error kind (e.g. "malformed_literal").
	Code string

	// ExitCode is the exit code that should be used when exiting due to this error.
	ExitCode int

	// Err is the underlying error that caused this error (optional).
	// This enables error wrapping and compatibility with errors.Is/As.
	Err error
}

// Error implements the error interface.
func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements error unwrapping for compatibility with errors.Is and errors.As.
func (e *UserError) Unwrap() error {
	return e.Err
}

func newUserError(code int, msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: code, Err: err}
}

// NewConfigError creates a configuration error with exit code ExitConfig.
//
// Example:
//
//	return NewConfigError(
//	    "Cannot load cdoc configuration",
//	    "The file .cdoc.yaml is not valid YAML",
//	    "Fix the file or recreate it with: cdoc init --force",
//	    err,
//	)
func NewConfigError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitConfig, msg, cause, fix, err)
}

// NewCacheError creates a result cache error with exit code ExitCache.
func NewCacheError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitCache, msg, cause, fix, err)
}

// NewNetworkError creates a network error with exit code ExitNetwork.
//
// Use this when an HTTP listener cannot be started.
func NewNetworkError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitNetwork, msg, cause, fix, err)
}

// NewInputError creates an input validation error with exit code ExitInput.
// Input errors typically do not wrap an underlying error.
//
// Example:
//
//	return NewInputError(
//	    "Missing declaration",
//	    "cdoc params expects exactly one declaration argument",
//	    "Quote the declaration: cdoc params 'void f(int a);'",
//	)
func NewInputError(msg, cause, fix string) *UserError {
	return newUserError(ExitInput, msg, cause, fix, nil)
}

// NewPermissionError creates a permission denied error with exit code ExitPermission.
func NewPermissionError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitPermission, msg, cause, fix, err)
}

// NewNotFoundError creates a resource not found error with exit code ExitNotFound.
func NewNotFoundError(msg, cause, fix string) *UserError {
	return newUserError(ExitNotFound, msg, cause, fix, nil)
}

// NewInternalError creates an internal error with exit code ExitInternal.
//
// Use this for unexpected errors that indicate bugs in the program.
func NewInternalError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitInternal, msg, cause, fix, err)
}

// extractionFixes are the suggestions shown for each extraction error kind.
var extractionFixes = map[sigparse.ErrorKind]string{
	sigparse.UnbalancedInput:         "Check that every bracket and quote in the declaration is closed",
	sigparse.NotAFunctionDeclaration: "Pass a function declaration such as: void f(int a);",
	sigparse.MalformedLiteral:        "Check string, character and raw-string literals in default arguments",
}

// FromExtraction converts an error returned by the extractor into a
// UserError with exit code ExitExtraction. Errors that carry no extraction
// kind become internal errors.
func FromExtraction(err error) *UserError {
	if err == nil {
		return nil
	}
	kind := sigparse.KindOf(err)
	fix, ok := extractionFixes[kind]
	if !ok {
		return NewInternalError("Extraction failed unexpectedly", err.Error(),
			"This is a bug. Please report it with the declaration that triggered it", err)
	}
	ue := newUserError(ExitExtraction, "Declaration could not be parsed", err.Error(), fix, err)
	ue.Code = kind.String()
	return ue
}

// Color definitions for error formatting.
var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format returns a formatted error message for terminal display.
//
// The output includes colored sections for Error (red/bold), Cause (yellow),
// and Fix (green). Color output respects the NO_COLOR environment variable
// and can be explicitly disabled with the noColor parameter. Empty Cause or
// Fix fields are omitted.
//
// Note: This method temporarily modifies the global color.NoColor state
// and restores it after formatting.
func (e *UserError) Format(noColor bool) string {
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	out.WriteString("\n")

	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}

	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}

	return out.String()
}

// ErrorJSON represents error information in JSON format.
type ErrorJSON struct {
	Error    string `json:"error"`
	Cause    string `json:"cause,omitempty"`
	Fix      string `json:"fix,omitempty"`
	Code     string `json:"code,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// ToJSON converts the UserError to a JSON-serializable structure.
func (e *UserError) ToJSON() ErrorJSON {
	return ErrorJSON{
		Error:    e.Message,
		Cause:    e.Cause,
		Fix:      e.Fix,
		Code:     e.Code,
		ExitCode: e.ExitCode,
	}
}

// Report writes err to w, colored or as JSON, and returns the exit code
// the process should terminate with. A nil err reports nothing and returns
// ExitSuccess.
func Report(w io.Writer, err error, jsonOutput, noColor bool) int {
	if err == nil {
		return ExitSuccess
	}

	ue, ok := err.(*UserError)
	if !ok {
		ue = NewInternalError(err.Error(), "", "", err)
	}
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		// We are about to exit; the exit code is what matters.
		_ = enc.Encode(ue.ToJSON())
	} else {
		fmt.Fprint(w, ue.Format(noColor))
	}
	return ue.ExitCode
}

// FatalError prints the error to stderr and exits with the appropriate code.
// It does nothing when err is nil.
//
// Usage:
//
//	if err := doSomething(); err != nil {
//	    errors.FatalError(err, jsonMode)
//	}
func FatalError(err error, jsonOutput bool) {
	if err == nil {
		return
	}
	os.Exit(Report(os.Stderr, err, jsonOutput, false))
}
