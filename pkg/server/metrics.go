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
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kraklabs/cdoc/pkg/sigparse"
)

var (
	serverMetricsOnce sync.Once

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	extractionErrors *prometheus.CounterVec
)

func ensureMetrics() {
	serverMetricsOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cdoc_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "code"})
		httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cdoc_http_request_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"route"})
		extractionErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cdoc_http_extraction_errors_total",
			Help: "Declarations rejected by the extractor, by error kind",
		}, []string{"kind"})
		prometheus.MustRegister(httpRequests, httpDuration, extractionErrors)
	})
}

func requestMetrics() gin.HandlerFunc {
	ensureMetrics()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func recordExtractionError(kind sigparse.ErrorKind) {
	ensureMetrics()
	extractionErrors.WithLabelValues(kind.String()).Inc()
}
