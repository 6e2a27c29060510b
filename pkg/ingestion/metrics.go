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
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsScan holds Prometheus metrics for scan runs.
type metricsScan struct {
	once sync.Once

	files        prometheus.Counter
	fileErrors   prometheus.Counter
	declarations prometheus.Counter
	parameters   prometheus.Counter
	anonymous    prometheus.Counter
	extractErrs  *prometheus.CounterVec
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter

	fileDuration prometheus.Histogram
	runDuration  prometheus.Histogram
}

var scanMetrics metricsScan

func (m *metricsScan) init() {
	m.once.Do(func() {
		m.files = prometheus.NewCounter(prometheus.CounterOpts{Name: "cdoc_scan_files_total", Help: "Files scanned"})
		m.fileErrors = prometheus.NewCounter(prometheus.CounterOpts{Name: "cdoc_scan_file_errors_total", Help: "Files that could not be read or parsed"})
		m.declarations = prometheus.NewCounter(prometheus.CounterOpts{Name: "cdoc_scan_declarations_total", Help: "Function declarations found"})
		m.parameters = prometheus.NewCounter(prometheus.CounterOpts{Name: "cdoc_scan_parameters_total", Help: "Parameters extracted"})
		m.anonymous = prometheus.NewCounter(prometheus.CounterOpts{Name: "cdoc_scan_anonymous_parameters_total", Help: "Parameters without a name"})
		m.extractErrs = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "cdoc_scan_errors_total", Help: "Declarations that failed extraction, by error kind"}, []string{"kind"})
		m.cacheHits = prometheus.NewCounter(prometheus.CounterOpts{Name: "cdoc_scan_cache_hits_total", Help: "Files served from the result cache"})
		m.cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{Name: "cdoc_scan_cache_misses_total", Help: "Files scanned because the result cache had no entry"})

		buckets := []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
		m.fileDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "cdoc_scan_file_seconds", Help: "Time to scan one file", Buckets: buckets})
		m.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "cdoc_scan_run_seconds", Help: "Time for a whole scan run", Buckets: buckets})

		prometheus.MustRegister(
			m.files, m.fileErrors,
			m.declarations, m.parameters, m.anonymous, m.extractErrs,
			m.cacheHits, m.cacheMisses,
			m.fileDuration, m.runDuration,
		)
	})
}

// recordFile updates the per-file counters once a file has been scanned.
func recordFile(fr *FileResult, seconds float64) {
	scanMetrics.init()
	scanMetrics.files.Inc()
	scanMetrics.fileDuration.Observe(seconds)
	if fr.CacheHit {
		scanMetrics.cacheHits.Inc()
	}
	for _, d := range fr.Declarations {
		scanMetrics.declarations.Inc()
		if d.Failed() {
			scanMetrics.extractErrs.WithLabelValues(d.ErrorKind).Inc()
			continue
		}
		scanMetrics.parameters.Add(float64(len(d.Params)))
		scanMetrics.anonymous.Add(float64(d.Anonymous))
	}
}

func recordFileError() { scanMetrics.init(); scanMetrics.fileErrors.Inc() }
func recordCacheMiss() { scanMetrics.init(); scanMetrics.cacheMisses.Inc() }
func recordRun(s float64) { scanMetrics.init(); scanMetrics.runDuration.Observe(s) }
