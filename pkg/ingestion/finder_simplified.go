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
	"time"

	"github.com/dlclark/regexp2"

	"github.com/kraklabs/cdoc/pkg/sigparse"
)

// declarationStart accepts statements that can open a function
// declaration. Control flow and other statement keywords are rejected
// before the statement is handed to sigparse.
const declarationStart = `^(?!(?:if|for|while|switch|return|else|do|case|catch|sizeof|throw|delete|new|using|typedef|static_assert|goto|namespace|co_return|co_yield|co_await)\b)[\w~:\[]`

// linkagePrefix matches an extern "C" prefix, which carries no type.
const linkagePrefix = `^extern\s+"C(?:\+\+)?"\s*`

// patternTimeout bounds a single regexp2 match.
const patternTimeout = 5 * time.Second

// SimplifiedFinder joins source lines into statements and keeps those that
// look like function declarations. It needs no grammar and copes with
// macro-heavy code, but can mistake a variable initialized with
// parentheses, int x(5), for a declaration.
type SimplifiedFinder struct {
	maxJoinLines int
	start        *regexp2.Regexp
	linkage      *regexp2.Regexp
	logger       *slog.Logger
}

// NewSimplifiedFinder creates a simplified finder. Statements spanning more
// than maxJoinLines lines are ignored; zero or less means DefaultMaxJoinLines.
func NewSimplifiedFinder(maxJoinLines int, logger *slog.Logger) (*SimplifiedFinder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if maxJoinLines <= 0 {
		maxJoinLines = DefaultMaxJoinLines
	}

	start, err := regexp2.Compile(declarationStart, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("compile declaration pattern: %w", err)
	}
	start.MatchTimeout = patternTimeout
	linkage, err := regexp2.Compile(linkagePrefix, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("compile linkage pattern: %w", err)
	}
	linkage.MatchTimeout = patternTimeout

	return &SimplifiedFinder{maxJoinLines: maxJoinLines, start: start, linkage: linkage, logger: logger}, nil
}

// Mode implements DeclarationFinder.
func (f *SimplifiedFinder) Mode() ParserMode { return ParserModeSimplified }

type scopeKind int

const (
	scopeOther scopeKind = iota // namespace, extern "C": transparent
	scopeClass                  // class, struct or union body
	scopeBody                   // function body or initializer: skipped
)

type scope struct {
	kind scopeKind
	name string // class name, for constructors
}

// FindDeclarations implements DeclarationFinder.
func (f *SimplifiedFinder) FindDeclarations(ctx context.Context, file FileInfo, content []byte) ([]Candidate, error) {
	code := blankNonCode(content)
	text := string(code)

	var (
		out    []Candidate
		scopes []scope
		nest   int // open ( [ and nested { inside the current statement
		stmt   = -1
		steps  int
	)
	inBody := func() bool { return len(scopes) > 0 && scopes[len(scopes)-1].kind == scopeBody }
	className := func() string {
		if len(scopes) > 0 && scopes[len(scopes)-1].kind == scopeClass {
			return scopes[len(scopes)-1].name
		}
		return ""
	}

	i := 0
	for i < len(text) {
		if steps++; steps%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		ch := text[i]

		if ch == '"' || ch == '\'' || isIdentByte(ch) {
			if stmt < 0 && !inBody() {
				stmt = i
			}
			i = skipLexeme(text, i)
			continue
		}

		if inBody() {
			switch ch {
			case '{':
				scopes = append(scopes, scope{kind: scopeBody})
			case '}':
				scopes = scopes[:len(scopes)-1]
			}
			i++
			continue
		}

		switch {
		case isSpaceByte(ch):

		case nest > 0:
			switch ch {
			case '(', '[', '{':
				nest++
			case ')', ']', '}':
				nest--
			}

		case ch == '(' || ch == '[':
			if stmt < 0 {
				stmt = i
			}
			nest++

		case ch == ';':
			if stmt >= 0 {
				if cand, ok := f.candidate(file, content, text, stmt, i, className()); ok {
					out = append(out, cand)
				}
			}
			stmt = -1

		case ch == '{':
			kind, name := scopeBody, ""
			if stmt >= 0 {
				if cand, ok := f.candidate(file, content, text, stmt, i, className()); ok {
					out = append(out, cand)
				} else {
					kind, name = classifyBlock(text[stmt:i])
				}
			}
			scopes = append(scopes, scope{kind: kind, name: name})
			stmt = -1

		case ch == '}':
			if len(scopes) > 0 {
				scopes = scopes[:len(scopes)-1]
			}
			stmt = -1

		case ch == ':' && stmt >= 0 && isAccessSpecifier(text, stmt, i):
			stmt = -1

		default:
			if stmt < 0 {
				stmt = i
			}
		}
		i++
	}
	return out, nil
}

// candidate turns the statement text[from:to] into a candidate if it
// passes the declaration checks.
func (f *SimplifiedFinder) candidate(file FileInfo, content []byte, text string, from, to int, class string) (Candidate, bool) {
	raw := strings.TrimSpace(text[from:to])
	line, col := lineCol(content, from)
	endLine := line + strings.Count(raw, "\n")
	if endLine-line+1 > f.maxJoinLines {
		f.logger.Debug("finder.simplified.statement_too_long",
			"path", file.Path,
			"line", line,
			"lines", endLine-line+1,
		)
		return Candidate{}, false
	}

	decl := f.stripLinkage(raw)
	if !f.isDeclaration(decl, class) {
		return Candidate{}, false
	}
	return Candidate{
		File:    file.Path,
		Line:    line,
		Column:  col,
		EndLine: endLine,
		Indent:  lineIndent(content, from),
		Text:    cutInitializers(decl),
	}, true
}

func (f *SimplifiedFinder) stripLinkage(s string) string {
	m, err := f.linkage.FindStringMatch(s)
	if err != nil || m == nil {
		return s
	}
	return s[m.Length:]
}

// isDeclaration decides whether a joined statement declares a function.
func (f *SimplifiedFinder) isDeclaration(stmt, class string) bool {
	ok, err := f.start.MatchString(stmt)
	if err != nil || !ok {
		return false
	}
	list, err := sigparse.LocateParameterList(stmt)
	if err != nil {
		return false
	}
	head := strings.TrimSpace(stmt[:list.Start-1])
	if head == "" || (strings.Contains(head, "=") && !strings.Contains(head, "operator")) {
		return false
	}

	toks, err := sigparse.Tokenize(head)
	if err != nil {
		return false
	}
	words, last := 0, ""
	for _, t := range toks {
		switch {
		case t.Kind == sigparse.Identifier && t.Text == "operator":
			return true
		case t.Kind == sigparse.Identifier || t.Kind == sigparse.TypeKeyword:
			words++
			last = t.Text
		case t.Kind == sigparse.ScopeOperator || t.Text == "~":
			return true
		}
	}
	// A constructor inside its class has a bare name.
	return words >= 2 || (class != "" && words == 1 && last == class)
}

// cutInitializers drops a constructor's member initializer list, which
// follows the parameter list after a single colon.
func cutInitializers(decl string) string {
	list, err := sigparse.LocateParameterList(decl)
	if err != nil {
		return decl
	}
	rest := sigparse.Span{Start: list.End + 1, End: len(decl)}
	colons, err := sigparse.TopLevelIndexes(decl, rest, false, ":")
	if err != nil {
		return decl
	}
	for _, c := range colons {
		if c+1 < len(decl) && decl[c+1] == ':' || c > 0 && decl[c-1] == ':' {
			continue
		}
		return strings.TrimSpace(decl[:c])
	}
	return decl
}

// classifyBlock decides what kind of scope a { opens from the statement
// that precedes it.
func classifyBlock(head string) (scopeKind, string) {
	toks, err := sigparse.Tokenize(head)
	if err != nil {
		return scopeBody, ""
	}
	for i, t := range toks {
		switch t.Text {
		case "namespace", "extern":
			return scopeOther, ""
		case "class", "struct", "union":
			for _, n := range toks[i+1:] {
				if n.Kind == sigparse.Identifier && !isAttributeWord(n.Text) {
					return scopeClass, n.Text
				}
			}
			return scopeClass, ""
		case "enum", "=":
			return scopeBody, ""
		}
	}
	return scopeBody, ""
}

func isAttributeWord(w string) bool {
	return w == "alignas" || w == "__attribute__" || w == "__declspec" || w == "final"
}

// isAccessSpecifier reports whether the statement at stmt, ended by the
// colon at i, is public:, protected: or private:.
func isAccessSpecifier(text string, stmt, i int) bool {
	if i+1 < len(text) && text[i+1] == ':' || i > 0 && text[i-1] == ':' {
		return false
	}
	switch strings.TrimSpace(text[stmt:i]) {
	case "public", "protected", "private", "signals", "slots", "public slots", "protected slots", "private slots":
		return true
	}
	return false
}

// skipLexeme returns the end of the literal or identifier at i.
func skipLexeme(text string, i int) int {
	lit, err := sigparse.RecognizeLiteral(text, i)
	switch {
	case err != nil:
		return i + 1
	case lit.Kind != sigparse.LiteralNone:
		return lit.Span.End
	}
	j := i
	for j < len(text) && isIdentByte(text[j]) {
		j++
	}
	if j == i {
		return i + 1
	}
	return j
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}
