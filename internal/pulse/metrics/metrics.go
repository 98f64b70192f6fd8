// Copyright © 2025 jackelyj <dreamerlyj@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
//

// Package metrics exposes prometheus collectors for health check outcomes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/optiflow/pulse/internal/pulse/types"
)

// Recorder feeds health check activity into prometheus collectors. It
// implements the manager's MetricsRecorder interface. Exposition is the
// deployment's concern; the recorder only registers collectors.
type Recorder struct {
	checksTotal   *prometheus.CounterVec
	probeDuration *prometheus.HistogramVec
	cacheHits     *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec
	overallStatus prometheus.Gauge
}

// NewRecorder registers the pulse health collectors on the given registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		checksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pulse_health_checks_total",
			Help: "Probe executions by service and resulting status.",
		}, []string{"service", "status"}),
		probeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pulse_probe_duration_seconds",
			Help:    "Probe wall-clock duration by service.",
			Buckets: prometheus.DefBuckets,
		}, []string{"service"}),
		cacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pulse_health_cache_hits_total",
			Help: "Health cache hits by service.",
		}, []string{"service"}),
		cacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pulse_health_cache_misses_total",
			Help: "Health cache misses by service.",
		}, []string{"service"}),
		overallStatus: factory.NewGauge(prometheus.GaugeOpts{
			Name: "pulse_overall_status",
			Help: "Overall system status: 0 healthy, 1 degraded, 2 failed, 3 unknown.",
		}),
	}
}

// ObserveProbe records one probe execution.
func (r *Recorder) ObserveProbe(service string, status types.Status, elapsed time.Duration) {
	r.checksTotal.WithLabelValues(service, string(status)).Inc()
	r.probeDuration.WithLabelValues(service).Observe(elapsed.Seconds())
}

// CacheHit records a cache hit for a service.
func (r *Recorder) CacheHit(service string) {
	r.cacheHits.WithLabelValues(service).Inc()
}

// CacheMiss records a cache miss for a service.
func (r *Recorder) CacheMiss(service string) {
	r.cacheMisses.WithLabelValues(service).Inc()
}

// SetOverall maps the overall status onto the gauge.
func (r *Recorder) SetOverall(status types.Status) {
	r.overallStatus.Set(statusValue(status))
}

func statusValue(status types.Status) float64 {
	switch status {
	case types.StatusHealthy:
		return 0
	case types.StatusDegraded:
		return 1
	case types.StatusFailed:
		return 2
	default:
		return 3
	}
}
