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

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
)

// TreeSitterFinder finds declarations with the Tree-sitter C and C++
// grammars. It is safe for concurrent use: every call gets its own parser.
type TreeSitterFinder struct {
	logger *slog.Logger
}

// NewTreeSitterFinder creates a Tree-sitter based finder.
func NewTreeSitterFinder(logger *slog.Logger) *TreeSitterFinder {
	if logger == nil {
		logger = slog.Default()
	}
	return &TreeSitterFinder{logger: logger}
}

// Mode implements DeclarationFinder.
func (f *TreeSitterFinder) Mode() ParserMode { return ParserModeTreeSitter }

// FindDeclarations implements DeclarationFinder. Syntax errors are logged
// and the candidates found in the well-formed parts are still returned.
func (f *TreeSitterFinder) FindDeclarations(ctx context.Context, file FileInfo, content []byte) ([]Candidate, error) {
	cands, syntaxErrors, err := f.find(ctx, file, content)
	if err != nil {
		return nil, err
	}
	if syntaxErrors > 0 {
		f.logger.Warn("finder.treesitter.syntax_errors",
			"path", file.Path,
			"error_count", syntaxErrors,
		)
	}
	return cands, nil
}

// find parses content and returns the candidates and the number of
// ERROR or MISSING nodes in the tree.
func (f *TreeSitterFinder) find(ctx context.Context, file FileInfo, content []byte) ([]Candidate, int, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	if file.Language == "c" {
		parser.SetLanguage(c.GetLanguage())
	} else {
		parser.SetLanguage(cpp.GetLanguage())
	}

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, 0, fmt.Errorf("tree-sitter parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	syntaxErrors := 0
	if root.HasError() {
		syntaxErrors = countErrors(root)
	}

	w := &declWalker{file: file, content: content, code: blankNonCode(content)}
	w.walk(root, nil)
	return w.out, syntaxErrors, nil
}

// declWalker collects candidates from a syntax tree.
type declWalker struct {
	file    FileInfo
	content []byte
	code    []byte // content with comments blanked
	out     []Candidate
}

// walk visits node. outer is the template_declaration that owns node, if
// any; the candidate then starts at the template header.
func (w *declWalker) walk(node, outer *sitter.Node) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "compound_statement", "parameter_list", "initializer_list", "enumerator_list":
		// Function bodies and lists hold no declarations worth documenting.
		return

	case "template_declaration":
		if outer == nil {
			outer = node
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			w.walk(node.NamedChild(i), outer)
		}
		return

	case "function_definition", "declaration", "field_declaration":
		if fd := functionDeclarator(node); fd != nil {
			start := node
			if outer != nil {
				start = outer
			}
			w.add(start, fd)
			return
		}
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		w.walk(node.NamedChild(i), nil)
	}
}

func (w *declWalker) add(start, fd *sitter.Node) {
	from, to := int(start.StartByte()), int(fd.EndByte())
	text := strings.TrimSpace(string(w.code[from:to]))
	if text == "" {
		return
	}
	sp, ep := start.StartPoint(), fd.EndPoint()
	w.out = append(w.out, Candidate{
		File:    w.file.Path,
		Line:    int(sp.Row) + 1,
		Column:  int(sp.Column) + 1,
		EndLine: int(ep.Row) + 1,
		Indent:  lineIndent(w.content, from),
		Text:    text,
	})
}

// functionDeclarator follows the declarator chain of a declaration node
// down to the function_declarator that names a function, or returns nil.
// int *f(int) nests it under a pointer_declarator; int (*fp)(int) has a
// parenthesized declarator and is a function pointer variable, not a
// function.
func functionDeclarator(node *sitter.Node) *sitter.Node {
	d := node.ChildByFieldName("declarator")
	for d != nil {
		switch d.Type() {
		case "function_declarator":
			if inner := d.ChildByFieldName("declarator"); inner != nil && inner.Type() == "parenthesized_declarator" {
				return nil
			}
			return d
		case "pointer_declarator", "reference_declarator", "attributed_declarator":
			d = declaratorChild(d)
		default:
			// init_declarator, identifiers and arrays are variables.
			return nil
		}
	}
	return nil
}

// declaratorChild returns the nested declarator of a pointer or reference
// declarator. reference_declarator has no field names in the grammar.
func declaratorChild(d *sitter.Node) *sitter.Node {
	if inner := d.ChildByFieldName("declarator"); inner != nil {
		return inner
	}
	for i := int(d.NamedChildCount()) - 1; i >= 0; i-- {
		child := d.NamedChild(i)
		if strings.HasSuffix(child.Type(), "declarator") {
			return child
		}
	}
	return nil
}

func countErrors(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	n := 0
	if node.IsError() || node.IsMissing() {
		n++
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		n += countErrors(node.Child(i))
	}
	return n
}
