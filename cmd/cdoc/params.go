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

package main

import (
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/cdoc/internal/contract"
	"github.com/kraklabs/cdoc/internal/errors"
	"github.com/kraklabs/cdoc/internal/output"
	"github.com/kraklabs/cdoc/internal/ui"
	"github.com/kraklabs/cdoc/pkg/docgen"
	"github.com/kraklabs/cdoc/pkg/sigparse"
)

// paramsJSON is the --json form of cdoc params.
type paramsJSON struct {
	Name       string   `json:"name"`
	ReturnType string   `json:"return"`
	HasReturn  bool     `json:"has_return"`
	Params     []string `json:"params"`
}

// runParams executes the 'params' CLI command, printing the parameter
// names of one declaration, one per line. Anonymous parameters are printed
// as <anonymous> so that positions stay visible.
//
// Examples:
//
//	cdoc params 'void foo(int a, char* b = nullptr);'
//	echo 'int f(int);' | cdoc params -
//	cdoc --json params 'std::string join(const std::vector<std::string>& parts, char sep);'
func runParams(args []string, g GlobalFlags, s streams) error {
	fs := flag.NewFlagSet("params", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "Output as JSON")
	fs.Usage = func() {
		fmt.Fprint(s.err, `Usage: cdoc params [options] <declaration | ->

Prints the parameter names of a C/C++ function declaration, one per line.
Anonymous parameters are printed as <anonymous>. Pass - to read the
declaration from stdin.

Options:
`)
		fmt.Fprint(s.err, fs.FlagUsages())
	}
	if done, err := parseFlags(fs, args, s); done {
		return err
	}

	decl, err := readDeclaration(fs.Args(), s.in, "params")
	if err != nil {
		return err
	}
	d, err := sigparse.ParseDeclaration(decl)
	if err != nil {
		return errors.FromExtraction(err)
	}

	if *jsonOut || g.JSON {
		return output.JSONTo(s.out, paramsJSON{
			Name:       d.Name,
			ReturnType: d.ReturnType,
			HasReturn:  d.HasReturn,
			Params:     d.ParamNames(),
		})
	}
	return output.ParamLines(s.out, d.ParamNames())
}

// docJSON is the --json form of cdoc doc.
type docJSON struct {
	Name    string   `json:"name"`
	Params  []string `json:"params"`
	Comment string   `json:"comment"`
	Skipped int      `json:"skipped"`
}

// runDoc executes the 'doc' CLI command, printing the comment block for
// one declaration. The layout comes from the docgen section of .cdoc.yaml.
//
// Examples:
//
//	cdoc doc '    void resize(int width, int height);'
//	cdoc doc --indent '\t' 'int area() const;'
//	cdoc doc --anonymous placeholder 'void f(int, int b);'
func runDoc(args []string, g GlobalFlags, s streams) error {
	fs := flag.NewFlagSet("doc", flag.ContinueOnError)
	indent := fs.String("indent", "", "Indentation for comment lines after the first (default: that of the declaration)")
	anonymous := fs.String("anonymous", "", "Anonymous parameter policy: skip or placeholder")
	withDecl := fs.Bool("with-declaration", false, "Print the declaration after the comment")
	fs.Usage = func() {
		fmt.Fprint(s.err, `Usage: cdoc doc [options] <declaration | ->

Prints a Doxygen comment block for a C/C++ function declaration. The
comment layout is read from the docgen section of .cdoc.yaml.

Options:
`)
		fmt.Fprint(s.err, fs.FlagUsages())
	}
	if done, err := parseFlags(fs, args, s); done {
		return err
	}

	cfg, err := LoadConfig(g.ConfigPath)
	if err != nil {
		return errors.NewConfigError("Cannot load cdoc configuration", err.Error(),
			"Fix the file or recreate it with: cdoc init --force", err)
	}
	if *anonymous != "" {
		cfg.Docgen.Anonymous = *anonymous
	}
	gen, err := docgen.NewGenerator(cfg.Docgen, nil)
	if err != nil {
		return errors.NewInputError("Invalid comment layout", err.Error(),
			"Use --anonymous skip or --anonymous placeholder")
	}

	decl, err := readDeclaration(fs.Args(), s.in, "doc")
	if err != nil {
		return err
	}

	var block docgen.Block
	if fs.Changed("indent") {
		ind := unescapeIndent(*indent)
		if r := contract.ValidateIndent(ind); !r.OK {
			return errors.NewInputError("Invalid indent", r.Message, "Use spaces and \\t only")
		}
		d, err := sigparse.ParseDeclaration(decl)
		if err != nil {
			return errors.FromExtraction(err)
		}
		block = gen.Render(d, ind)
	} else if block, err = gen.Generate(decl); err != nil {
		return errors.FromExtraction(err)
	}

	if g.JSON {
		return output.JSONTo(s.out, docJSON{
			Name:    block.Decl.Name,
			Params:  block.Decl.ParamNames(),
			Comment: block.Text,
			Skipped: block.Skipped,
		})
	}
	fmt.Fprintln(s.out, block.Text)
	if *withDecl {
		fmt.Fprintln(s.out, decl)
	}
	if block.Skipped > 0 && !g.Quiet {
		fmt.Fprintln(s.err, ui.DimText(fmt.Sprintf("%d anonymous parameter(s) not documented", block.Skipped)))
	}
	return nil
}

// readDeclaration returns the single declaration argument, reading stdin
// when it is "-".
func readDeclaration(args []string, in io.Reader, cmd string) (string, error) {
	if len(args) != 1 {
		return "", errors.NewInputError(
			"Expected exactly one declaration",
			fmt.Sprintf("cdoc %s got %d arguments", cmd, len(args)),
			fmt.Sprintf("Quote the declaration: cdoc %s 'void f(int a);'", cmd),
		)
	}
	decl := args[0]
	if decl == "-" {
		data, err := io.ReadAll(io.LimitReader(in, int64(contract.MaxDeclarationBytes())+1))
		if err != nil {
			return "", errors.NewInputError("Cannot read stdin", err.Error(), "")
		}
		decl = strings.TrimRight(string(data), "\r\n")
	}
	if r := contract.ValidateDeclaration(decl); !r.OK {
		return "", errors.NewInputError("Invalid declaration", r.Message, "")
	}
	return decl, nil
}

// unescapeIndent turns the two-character sequence \t into a tab, so that
// --indent '\t' works without shell quoting tricks.
func unescapeIndent(s string) string {
	return strings.ReplaceAll(s, `\t`, "\t")
}
