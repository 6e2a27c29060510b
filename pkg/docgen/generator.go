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

package docgen

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/kraklabs/cdoc/pkg/sigparse"
)

// Block is one rendered comment together with the declaration it documents.
type Block struct {
	Decl *sigparse.Declaration
	Text string

	// Skipped counts anonymous parameters left out of the block.
	Skipped int
}

// Generator renders comment blocks with a fixed Config.
// It is safe for concurrent use.
type Generator struct {
	cfg    Config
	logger *slog.Logger
}

// NewGenerator validates cfg and returns a Generator using it.
func NewGenerator(cfg Config, logger *slog.Logger) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid docgen config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{cfg: cfg, logger: logger}, nil
}

// Config returns the configuration the generator renders with.
func (g *Generator) Config() Config { return g.cfg }

// Generate extracts the declaration shape from text and renders its
// comment. The indentation of the first line of text is applied to every
// line of the block after the first.
func (g *Generator) Generate(text string) (Block, error) {
	d, err := sigparse.ParseDeclaration(text)
	if err != nil {
		g.logger.Debug("docgen.generate.parse_error",
			"kind", sigparse.KindOf(err).String(),
			"err", err,
		)
		return Block{}, err
	}
	return g.Render(d, leadingIndent(text)), nil
}

// Render formats the comment block for d.
func (g *Generator) Render(d *sigparse.Declaration, indent string) Block {
	c := g.cfg
	lines := []string{
		c.CommentStart,
		c.CommentPrefix + expand(c.BriefTemplate, "{name}", d.Name),
		c.CommentPrefix,
	}

	skipped := 0
	for i, p := range d.Params {
		name := p.Name
		if p.Anonymous() {
			if c.Anonymous != AnonymousPlaceholder {
				skipped++
				continue
			}
			name = expand(c.Placeholder, "{index}", strconv.Itoa(i+1))
		}
		line := expand(c.ParamTemplate,
			"{param}", name,
			"{index}", strconv.Itoa(i+1),
			"{type}", ParamType(d, p),
		)
		lines = append(lines, c.CommentPrefix+line)
	}

	if c.IncludeReturn && d.HasReturn {
		lines = append(lines, c.CommentPrefix+expand(c.ReturnTemplate,
			"{name}", d.Name,
			"{return}", d.ReturnType,
		))
	}
	lines = append(lines, c.CommentEnd)

	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteString(c.Newline)
			b.WriteString(indent)
		}
		b.WriteString(l)
	}

	if skipped > 0 {
		g.logger.Debug("docgen.render.anonymous_skipped",
			"function", d.Name,
			"count", skipped,
		)
	}
	return Block{Decl: d, Text: b.String(), Skipped: skipped}
}

// ParamType returns the declarator of p without its name and default
// value, with whitespace runs collapsed: "const int * a = 0" gives
// "const int *".
func ParamType(d *sigparse.Declaration, p sigparse.Parameter) string {
	span, err := sigparse.StripDefault(p.Span, d.Text)
	if err != nil {
		span = p.Span
	}
	text := span.Text(d.Text)
	if p.Name != "" {
		if at := lastWordIndex(text, p.Name); at >= 0 {
			text = text[:at] + text[at+len(p.Name):]
		}
	}
	return strings.Join(strings.Fields(text), " ")
}

// lastWordIndex finds the last occurrence of word in s that is not part
// of a longer identifier.
func lastWordIndex(s, word string) int {
	for end := len(s); end > 0; {
		at := strings.LastIndex(s[:end], word)
		if at < 0 {
			return -1
		}
		after := at + len(word)
		if (at == 0 || !isIdentByte(s[at-1])) && (after == len(s) || !isIdentByte(s[after])) {
			return at
		}
		end = at
	}
	return -1
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 0x80 || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func expand(tmpl string, oldnew ...string) string {
	return strings.NewReplacer(oldnew...).Replace(tmpl)
}

func leadingIndent(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
