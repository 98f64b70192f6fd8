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
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/optiflow/pulse/internal/pulse/types"
)

const (
	// RedisTimeout bounds the cache-store ping and info round trips.
	RedisTimeout = 5 * time.Second
	// RedisMemoryDegradedRatio is the used/max memory ratio above which the
	// cache store is reported degraded.
	RedisMemoryDegradedRatio = 0.8
)

// RedisClient is the narrow surface of the cache store the probe consumes.
// *redis.Client satisfies it. The client is an optional capability: whether
// it is present is decided at construction, never discovered at probe time.
type RedisClient interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Info(ctx context.Context, section ...string) *redis.StringCmd
}

// RedisProbe checks the cache store with PING and classifies memory pressure
// from INFO.
type RedisProbe struct {
	client     RedisClient
	configured bool

	timeout     time.Duration
	memoryRatio float64
}

// NewRedisProbe creates a probe. configured reports whether the deployment
// has a cache-store URL at all; a configured deployment with a nil client
// means the client library is unavailable.
func NewRedisProbe(client RedisClient, configured bool) *RedisProbe {
	return &RedisProbe{
		client:      client,
		configured:  configured,
		timeout:     RedisTimeout,
		memoryRatio: RedisMemoryDegradedRatio,
	}
}

// Name implements Prober.
func (p *RedisProbe) Name() string {
	return ServiceRedis
}

// Probe implements Prober.
func (p *RedisProbe) Probe(ctx context.Context) types.ServiceHealthRecord {
	if !p.configured {
		return types.NewServiceHealthRecord(ServiceRedis, types.StatusNotConfigured)
	}
	if p.client == nil {
		return types.NewFailedRecord(ServiceRedis, "redis client unavailable").
			WithDetail(types.DetailDependencyMissing, true).
			WithDetail(types.DetailExceptionType, "dependency_missing")
	}

	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		if err := p.client.Ping(probeCtx).Err(); err != nil {
			done <- err
			return
		}
		done <- nil
	}()

	select {
	case err := <-done:
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return types.NewFailedRecord(ServiceRedis, timeoutMessage(p.timeout)).
					WithDetail(types.DetailExceptionType, "timeout")
			}
			return types.NewFailedRecord(ServiceRedis, sanitizeError(err)).
				WithDetail(types.DetailExceptionType, errorKind(err))
		}
	case <-probeCtx.Done():
		return types.NewFailedRecord(ServiceRedis, timeoutMessage(p.timeout)).
			WithDetail(types.DetailExceptionType, "timeout")
	}
	elapsed := elapsedMS(time.Since(start))

	rec := types.NewServiceHealthRecord(ServiceRedis, types.StatusHealthy)
	rec.Connected = true
	rec = rec.WithResponseTime(elapsed)

	info, err := p.client.Info(probeCtx, "server", "memory").Result()
	if err != nil {
		return types.NewFailedRecord(ServiceRedis, sanitizeError(err)).
			WithDetail(types.DetailExceptionType, errorKind(err))
	}

	fields := parseRedisInfo(info)
	if version, ok := fields["redis_version"]; ok {
		rec = rec.WithDetail("version", version)
	}

	usedMemory, usedOK := parseInt64(fields["used_memory"])
	maxMemory, maxOK := parseInt64(fields["maxmemory"])
	if usedOK {
		rec = rec.WithDetail("used_memory", usedMemory)
	}
	if maxOK && maxMemory > 0 {
		rec = rec.WithDetail("max_memory", maxMemory)
		if usedOK {
			ratio := float64(usedMemory) / float64(maxMemory)
			rec = rec.WithDetail("memory_usage", ratio)
			if ratio > p.memoryRatio {
				rec.Status = types.StatusDegraded
				rec = rec.WithDetail(types.DetailWarning,
					fmt.Sprintf("memory usage above %.0f%% of maxmemory", p.memoryRatio*100))
			}
		}
	}

	return rec
}

// parseRedisInfo splits an INFO response into key/value pairs, skipping
// section headers and blank lines.
func parseRedisInfo(info string) map[string]string {
	fields := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(info))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		fields[key] = value
	}
	return fields
}

func parseInt64(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
