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

package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/optiflow/pulse/internal/pulse/config"
	"github.com/optiflow/pulse/internal/pulse/types"
	"github.com/optiflow/pulse/pkg/logger"
)

var (
	// ErrUnknownService is returned when a check names a service no probe is
	// registered for. This is a programming error, not a dependency failure.
	ErrUnknownService = errors.New("unknown service")

	// ErrNilProbe is returned when a manager is constructed without one of
	// its three probes.
	ErrNilProbe = errors.New("nil probe")
)

// MetricsRecorder receives probe outcomes and cache activity. Implemented by
// the metrics package; a no-op recorder is used when none is injected.
type MetricsRecorder interface {
	ObserveProbe(service string, status types.Status, elapsed time.Duration)
	CacheHit(service string)
	CacheMiss(service string)
	SetOverall(status types.Status)
}

type nopMetrics struct{}

func (nopMetrics) ObserveProbe(string, types.Status, time.Duration) {}
func (nopMetrics) CacheHit(string)                                  {}
func (nopMetrics) CacheMiss(string)                                 {}
func (nopMetrics) SetOverall(types.Status)                          {}

// ManagerConfig tunes the health check manager.
type ManagerConfig struct {
	// Environment tags every snapshot (e.g. "production").
	Environment string
	// CacheTTL is how long a probe result stays valid; defaults to
	// config.DefaultCacheTTL when zero.
	CacheTTL time.Duration
	// RedisRequired marks the cache store critical for this deployment.
	RedisRequired bool
	// ClickHouseRequired marks the analytics store critical.
	ClickHouseRequired bool
}

// ManagerOption configures optional manager collaborators.
type ManagerOption func(*Manager)

// WithMetrics injects a metrics recorder.
func WithMetrics(rec MetricsRecorder) ManagerOption {
	return func(m *Manager) {
		if rec != nil {
			m.metrics = rec
		}
	}
}

// Manager orchestrates the probes: it applies the TTL cache, fans the three
// checks out concurrently, feeds the response-time tracker, and derives the
// overall status through the aggregation rule table. One Manager is
// constructed at process start with injected dependencies; its cache and
// windows live for the process lifetime.
type Manager struct {
	cfg     ManagerConfig
	probes  map[string]Prober
	order   []string
	cache   *HealthCache
	tracker *ResponseTimeTracker
	metrics MetricsRecorder
}

// NewManager creates a manager over the three dependency probes.
func NewManager(cfg ManagerConfig, database, redis, clickhouse Prober, opts ...ManagerOption) (*Manager, error) {
	if database == nil || redis == nil || clickhouse == nil {
		return nil, ErrNilProbe
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = config.DefaultCacheTTL
	}

	m := &Manager{
		cfg: cfg,
		probes: map[string]Prober{
			database.Name():   database,
			redis.Name():      redis,
			clickhouse.Name(): clickhouse,
		},
		order:   []string{database.Name(), redis.Name(), clickhouse.Name()},
		cache:   NewHealthCache(cfg.CacheTTL),
		tracker: NewResponseTimeTracker(),
		metrics: nopMetrics{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Check returns the health record for one service. Unless forced, a valid
// cache entry is returned without probing or touching the response-time
// window; otherwise the probe runs, its latency feeds the tracker, and the
// fresh record is cached. The returned error is non-nil only for programming
// errors or caller cancellation, never for dependency failures.
func (m *Manager) Check(ctx context.Context, service string, force bool) (types.ServiceHealthRecord, error) {
	probe, ok := m.probes[service]
	if !ok {
		return types.ServiceHealthRecord{}, fmt.Errorf("%w: %q", ErrUnknownService, service)
	}

	if !force {
		if rec, hit := m.cache.Get(service); hit {
			m.metrics.CacheHit(service)
			logger.GetLogger().Debug("health check cache hit",
				zap.String("service", service),
				zap.String("status", string(rec.Status)))
			return rec, nil
		}
		m.metrics.CacheMiss(service)
	}

	start := time.Now()
	rec := probe.Probe(ctx)
	if err := ctx.Err(); err != nil {
		// Caller cancelled mid-probe; the record is not trustworthy data.
		return types.ServiceHealthRecord{}, err
	}

	if rec.ResponseTimeMS != nil {
		m.tracker.Record(service, *rec.ResponseTimeMS)
		rec = rec.WithDetail(types.DetailAvgResponseTime, m.tracker.Average(service))
	}

	m.cache.Put(service, rec)
	m.metrics.ObserveProbe(service, rec.Status, time.Since(start))
	logger.GetLogger().Debug("health probe completed",
		zap.String("service", service),
		zap.String("status", string(rec.Status)),
		zap.Bool("forced", force))
	return rec, nil
}

// CheckOverall fans the three service checks out concurrently, joins on all
// of them, and aggregates the statuses with the configured criticality flags.
// Total latency is bounded by the slowest single probe. If the caller's
// context is cancelled, in-flight probes are cancelled and no partial
// snapshot is returned.
func (m *Manager) CheckOverall(ctx context.Context, force bool) (*types.SystemHealthSnapshot, error) {
	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	services := make(map[string]types.ServiceHealthRecord, len(m.order))

	for _, name := range m.order {
		g.Go(func() error {
			rec, err := m.Check(gctx, name, force)
			if err != nil {
				return err
			}
			mu.Lock()
			services[name] = rec
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	overall := Aggregate(AggregationInput{
		Database:           services[ServiceDatabase].Status,
		Redis:              services[ServiceRedis].Status,
		ClickHouse:         services[ServiceClickHouse].Status,
		RedisRequired:      m.cfg.RedisRequired,
		ClickHouseRequired: m.cfg.ClickHouseRequired,
	})
	m.metrics.SetOverall(overall)

	snapshot := &types.SystemHealthSnapshot{
		OverallStatus: overall,
		Services:      services,
		CheckedAt:     time.Now().UTC(),
		Environment:   m.cfg.Environment,
	}

	logger.GetLogger().Info("system health checked",
		zap.String("overall_status", string(overall)),
		zap.String("environment", m.cfg.Environment),
		zap.Bool("forced", force))
	return snapshot, nil
}

// ClearCache wipes all cached probe results and their timestamps. Idempotent
// and administrative; it has no effect on in-flight checks and leaves the
// response-time windows untouched.
func (m *Manager) ClearCache() {
	m.cache.Clear()
	logger.GetLogger().Info("health cache cleared")
}

// Services returns the probe names in fan-out order.
func (m *Manager) Services() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// AverageResponseTime exposes the rolling average latency for a service.
func (m *Manager) AverageResponseTime(service string) float64 {
	return m.tracker.Average(service)
}
