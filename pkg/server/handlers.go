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

package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kraklabs/cdoc/internal/contract"
	"github.com/kraklabs/cdoc/pkg/docgen"
	"github.com/kraklabs/cdoc/pkg/sigparse"
)

// Error codes for failures that are not extraction errors.
const (
	CodeInvalidRequest   = "invalid_request"
	CodeMissingParameter = "missing_parameter"
	CodeTooLarge         = "declaration_too_large"
)

// DeclarationRequest is the body of POST /v1/params and POST /v1/doc.
type DeclarationRequest struct {
	Declaration string `json:"declaration"`

	// Indent is prefixed to every comment line after the first. When
	// empty, the indentation of the declaration's first line is used.
	Indent *string `json:"indent,omitempty"`
}

// ParamsResponse is the body of a successful POST /v1/params.
type ParamsResponse struct {
	Name       string   `json:"name"`
	ReturnType string   `json:"return"`
	HasReturn  bool     `json:"has_return"`
	Params     []string `json:"params"`
	Anonymous  int      `json:"anonymous"`
}

// DocResponse is the body of a successful POST /v1/doc.
type DocResponse struct {
	Name    string   `json:"name"`
	Params  []string `json:"params"`
	Comment string   `json:"comment"`
	Skipped int      `json:"skipped"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Handlers holds the HTTP handlers.
type Handlers struct {
	gen      *docgen.Generator
	maxBytes int
	logger   *slog.Logger
}

// NewHandlers returns handlers rendering with gen. maxBytes <= 0 means no
// size limit.
func NewHandlers(gen *docgen.Generator, maxBytes int, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{gen: gen, maxBytes: maxBytes, logger: logger}
}

// HandleHealth handles GET /healthz.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleParams handles POST /v1/params.
func (h *Handlers) HandleParams(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	d, err := sigparse.ParseDeclaration(req.Declaration)
	if err != nil {
		h.extractionFailed(c, err)
		return
	}

	names := d.ParamNames()
	anon := 0
	for _, n := range names {
		if n == "" {
			anon++
		}
	}
	c.JSON(http.StatusOK, ParamsResponse{
		Name:       d.Name,
		ReturnType: d.ReturnType,
		HasReturn:  d.HasReturn,
		Params:     names,
		Anonymous:  anon,
	})
}

// HandleDoc handles POST /v1/doc.
func (h *Handlers) HandleDoc(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	var block docgen.Block
	if req.Indent != nil {
		d, err := sigparse.ParseDeclaration(req.Declaration)
		if err != nil {
			h.extractionFailed(c, err)
			return
		}
		block = h.gen.Render(d, *req.Indent)
	} else {
		var err error
		if block, err = h.gen.Generate(req.Declaration); err != nil {
			h.extractionFailed(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, DocResponse{
		Name:    block.Decl.Name,
		Params:  block.Decl.ParamNames(),
		Comment: block.Text,
		Skipped: block.Skipped,
	})
}

func (h *Handlers) bind(c *gin.Context) (DeclarationRequest, bool) {
	var req DeclarationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body: " + err.Error(),
			Code:  CodeInvalidRequest,
		})
		return req, false
	}
	if r := contract.CheckDeclaration(req.Declaration, h.maxBytes); !r.OK {
		switch r.Reason {
		case contract.ReasonEmpty:
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "declaration is required", Code: CodeMissingParameter})
		case contract.ReasonTooLarge:
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: r.Message, Code: CodeTooLarge})
		default:
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: r.Message, Code: CodeInvalidRequest})
		}
		return req, false
	}
	if req.Indent != nil {
		if r := contract.ValidateIndent(*req.Indent); !r.OK {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: r.Message, Code: CodeInvalidRequest})
			return req, false
		}
	}
	return req, true
}

func (h *Handlers) extractionFailed(c *gin.Context, err error) {
	kind := sigparse.KindOf(err)
	h.logger.Debug("server.extract.error",
		"path", c.FullPath(),
		"kind", kind.String(),
		"err", err,
	)
	recordExtractionError(kind)
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error: err.Error(),
		Code:  kind.String(),
	})
}
