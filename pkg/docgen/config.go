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
	"strings"

	"gopkg.in/yaml.v3"
)

// Anonymous parameter policies.
const (
	AnonymousSkip        = "skip"
	AnonymousPlaceholder = "placeholder"
)

// Config controls the text of a rendered comment block.
type Config struct {
	CommentStart   string `yaml:"comment_start"`
	CommentPrefix  string `yaml:"comment_prefix"`
	CommentEnd     string `yaml:"comment_end"`
	BriefTemplate  string `yaml:"brief_template"`
	ParamTemplate  string `yaml:"param_template"`
	ReturnTemplate string `yaml:"return_template"`
	IncludeReturn  bool   `yaml:"include_return"`

	// Anonymous decides what happens to parameters without a name:
	// "skip" leaves them out, "placeholder" documents them under
	// Placeholder with {index} substituted.
	Anonymous   string `yaml:"anonymous"`
	Placeholder string `yaml:"placeholder"`

	Newline string `yaml:"newline"`
}

// MarshalYAML writes newline as a double-quoted scalar. In block style a
// lone line break would not survive a round trip.
func (c Config) MarshalYAML() (any, error) {
	type plain Config
	var node yaml.Node
	if err := node.Encode(plain(c)); err != nil {
		return nil, err
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "newline" {
			node.Content[i+1].Style = yaml.DoubleQuotedStyle
		}
	}
	return &node, nil
}

// DefaultConfig returns the Doxygen layout used when no config file exists.
func DefaultConfig() Config {
	return Config{
		CommentStart:   "/**",
		CommentPrefix:  " * ",
		CommentEnd:     " */",
		BriefTemplate:  "@brief ",
		ParamTemplate:  "@param {param} ",
		ReturnTemplate: "@return ",
		IncludeReturn:  true,
		Anonymous:      AnonymousSkip,
		Placeholder:    "unnamed{index}",
		Newline:        "\n",
	}
}

// Validate checks that the config can render a well-formed block.
func (c Config) Validate() error {
	if c.CommentStart == "" {
		return fmt.Errorf("comment_start must not be empty")
	}
	if c.Newline == "" {
		return fmt.Errorf("newline must not be empty")
	}
	if strings.Trim(c.Newline, "\r\n") != "" {
		return fmt.Errorf("newline must be \\n or \\r\\n, got %q", c.Newline)
	}
	if !strings.Contains(c.ParamTemplate, "{param}") {
		return fmt.Errorf("param_template %q does not contain {param}", c.ParamTemplate)
	}
	switch c.Anonymous {
	case AnonymousSkip:
	case AnonymousPlaceholder:
		if c.Placeholder == "" {
			return fmt.Errorf("placeholder must not be empty when anonymous is %q", AnonymousPlaceholder)
		}
	default:
		return fmt.Errorf("anonymous must be %q or %q, got %q", AnonymousSkip, AnonymousPlaceholder, c.Anonymous)
	}
	return nil
}
