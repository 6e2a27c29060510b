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

// Package server exposes declaration extraction and comment generation
// over HTTP.
//
// Routes:
//
//	POST /v1/params - parameter names and return type of one declaration
//	POST /v1/doc    - rendered comment block for one declaration
//	GET  /healthz   - liveness
//	GET  /metrics   - Prometheus metrics
//
// Extraction failures are answered with 422 and a body of the form
// {"error": "...", "code": "<error kind>"}.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kraklabs/cdoc/internal/contract"
	"github.com/kraklabs/cdoc/pkg/docgen"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = "127.0.0.1:7411"

// DefaultShutdownTimeout bounds how long in-flight requests may run after
// the serve context is cancelled.
const DefaultShutdownTimeout = 10 * time.Second

// Config configures a Server.
type Config struct {
	Addr string

	// MaxDeclarationBytes rejects larger declarations with 413.
	MaxDeclarationBytes int

	ShutdownTimeout time.Duration

	// Debug enables gin debug mode and request logging.
	Debug bool

	Doc docgen.Config
}

// DefaultConfig returns a Config listening on DefaultAddr.
func DefaultConfig() Config {
	return Config{
		Addr:                DefaultAddr,
		MaxDeclarationBytes: contract.MaxDeclarationBytes(),
		ShutdownTimeout:     DefaultShutdownTimeout,
		Doc:                 docgen.DefaultConfig(),
	}
}

// Server serves the HTTP API.
type Server struct {
	cfg    Config
	logger *slog.Logger
	router *gin.Engine
	h      *Handlers
}

// New builds the router. It does not start listening.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	gen, err := docgen.NewGenerator(cfg.Doc, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestMetrics())
	if cfg.Debug {
		router.Use(gin.Logger())
	}

	h := NewHandlers(gen, cfg.MaxDeclarationBytes, logger)
	router.GET("/healthz", h.HandleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	RegisterRoutes(router.Group("/v1"), h)

	return &Server{cfg: cfg, logger: logger, router: router, h: h}, nil
}

// RegisterRoutes registers the /v1 endpoints on rg.
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.POST("/params", h.HandleParams)
	rg.POST("/doc", h.HandleDoc)
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run listens on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server.start", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("server.shutdown", "timeout", s.cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
