// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package output provides utilities for consistent CLI output formatting.
//
// This package handles the machine-readable side of cdoc output: pretty JSON
// for --json, one compact object per line for streamed scan records, and the
// plain one-name-per-line form of cdoc params. It complements the ui package
// (for human-readable output) and errors package (for error handling).
//
// # Usage
//
//	if err := output.JSON(result); err != nil {
//	    errors.FatalError(err, true)
//	}
//
// For streaming (one declaration record per line):
//
//	for _, rec := range records {
//	    if err := output.JSONCompactTo(w, rec); err != nil {
//	        return err
//	    }
//	}
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/kraklabs/cdoc/pkg/sigparse"
)

// AnonymousPlaceholder is printed in place of an anonymous parameter name.
const AnonymousPlaceholder = "<anonymous>"

// JSON writes data as pretty-printed JSON to stdout.
func JSON(data any) error {
	return JSONTo(os.Stdout, data)
}

// JSONTo writes data as pretty-printed JSON with 2-space indentation.
func JSONTo(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("JSON encoding failed: %w", err)
	}
	return nil
}

// JSONCompactTo writes data as one line of compact JSON.
func JSONCompactTo(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("JSON encoding failed: %w", err)
	}
	return nil
}

// ErrorJSON represents an error in JSON format for machine consumption.
type ErrorJSON struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// JSONErrorTo writes err as JSON. Extraction errors carry their kind in
// the code field.
func JSONErrorTo(w io.Writer, err error) error {
	errObj := ErrorJSON{Error: err.Error()}
	if kind := sigparse.KindOf(err); kind != 0 {
		errObj.Code = kind.String()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(errObj); encErr != nil {
		return fmt.Errorf("JSON error encoding failed: %w", encErr)
	}
	return nil
}

// ParamLines writes one parameter name per line. Anonymous parameters are
// written as AnonymousPlaceholder so that positions stay visible.
func ParamLines(w io.Writer, names []string) error {
	for _, n := range names {
		if n == "" {
			n = AnonymousPlaceholder
		}
		if _, err := fmt.Fprintln(w, n); err != nil {
			return err
		}
	}
	return nil
}
