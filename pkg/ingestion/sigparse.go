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
	"github.com/kraklabs/cdoc/pkg/docgen"
	"github.com/kraklabs/cdoc/pkg/sigparse"
)

// ExtractRecord runs the extraction core on one candidate and renders its
// comment block with gen, indented like the declaration. A candidate that
// fails extraction yields a record carrying the error and its kind.
func ExtractRecord(gen *docgen.Generator, cand Candidate) DeclarationRecord {
	rec := DeclarationRecord{
		File:   cand.File,
		Line:   cand.Line,
		Column: cand.Column,
		Text:   cand.Text,
		Params: []string{},
	}

	d, err := sigparse.ParseDeclaration(cand.Text)
	if err != nil {
		rec.ID = GenerateDeclarationID(cand.File, "", cand.Line, cand.Column)
		rec.Error = err.Error()
		rec.ErrorKind = sigparse.KindOf(err).String()
		return rec
	}

	rec.ID = GenerateDeclarationID(cand.File, d.Name, cand.Line, cand.Column)
	rec.Name = d.Name
	rec.ReturnType = d.ReturnType
	rec.HasReturn = d.HasReturn
	rec.Params = d.ParamNames()
	for _, p := range d.Params {
		if p.Anonymous() {
			rec.Anonymous++
		}
	}
	rec.Comment = gen.Render(d, cand.Indent).Text
	return rec
}
