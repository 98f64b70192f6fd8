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
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/optiflow/pulse/internal/pulse/config"
	"github.com/optiflow/pulse/internal/pulse/types"
)

const (
	// ClickHouseTimeout bounds the analytics-store HTTP round trip.
	ClickHouseTimeout = 10 * time.Second
	// ClickHouseDegradedThresholdMS is the latency above which a reachable
	// analytics store is reported degraded.
	ClickHouseDegradedThresholdMS = 5000.0

	// clickHouseBodyLimit truncates error response bodies in failed records.
	clickHouseBodyLimit = 200
)

// ClickHouseProbe checks the analytics store through its HTTP interface with
// a version query. Credentials travel in headers only; they never appear in
// the probe URL or in any record.
type ClickHouseProbe struct {
	cfg    config.ClickHouseConfig
	client *http.Client

	timeout     time.Duration
	thresholdMS float64
}

// NewClickHouseProbe creates a probe from the analytics-store configuration.
func NewClickHouseProbe(cfg config.ClickHouseConfig) *ClickHouseProbe {
	return &ClickHouseProbe{
		cfg:         cfg,
		client:      &http.Client{Timeout: ClickHouseTimeout},
		timeout:     ClickHouseTimeout,
		thresholdMS: ClickHouseDegradedThresholdMS,
	}
}

// Name implements Prober.
func (p *ClickHouseProbe) Name() string {
	return ServiceClickHouse
}

// Probe implements Prober. An unconfigured optional store is not_configured;
// an unconfigured required store is failed with an explicit reason.
func (p *ClickHouseProbe) Probe(ctx context.Context) types.ServiceHealthRecord {
	if p.cfg.Host == "" {
		if p.cfg.Required {
			return types.NewFailedRecord(ServiceClickHouse, "ClickHouse required but not configured").
				WithDetail(types.DetailExceptionType, "configuration_missing")
		}
		return types.NewServiceHealthRecord(ServiceClickHouse, types.StatusNotConfigured)
	}

	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, p.versionURL(), nil)
	if err != nil {
		return types.NewFailedRecord(ServiceClickHouse, sanitizeError(err)).
			WithDetail(types.DetailExceptionType, errorKind(err))
	}
	if p.cfg.User != "" {
		req.Header.Set("X-ClickHouse-User", p.cfg.User)
		req.Header.Set("X-ClickHouse-Key", p.cfg.Password)
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	elapsed := elapsedMS(time.Since(start))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || probeCtx.Err() == context.DeadlineExceeded {
			return types.NewFailedRecord(ServiceClickHouse, timeoutMessage(p.timeout)).
				WithDetail(types.DetailExceptionType, "timeout")
		}
		return types.NewFailedRecord(ServiceClickHouse, sanitizeError(err)).
			WithDetail(types.DetailExceptionType, errorKind(err))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK {
		return types.NewFailedRecord(ServiceClickHouse,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, truncate(string(body), clickHouseBodyLimit))).
			WithDetail(types.DetailExceptionType, "http_error").
			WithDetail("status_code", resp.StatusCode)
	}

	rec := types.NewServiceHealthRecord(ServiceClickHouse, types.StatusHealthy)
	rec.Connected = true
	rec = rec.WithResponseTime(elapsed).
		WithDetail("version", strings.TrimSpace(string(body)))
	if elapsed > p.thresholdMS {
		rec.Status = types.StatusDegraded
		rec = rec.WithDetail(types.DetailWarning,
			fmt.Sprintf("slow response: %.1fms exceeds %.0fms threshold", elapsed, p.thresholdMS))
	}
	return rec
}

// versionURL assembles the version endpoint from host/port/secure settings.
func (p *ClickHouseProbe) versionURL() string {
	scheme := "http"
	if p.cfg.Secure {
		scheme = "https"
	}
	u := url.URL{
		Scheme:   scheme,
		Host:     p.cfg.Host + ":" + p.cfg.Port,
		Path:     "/",
		RawQuery: url.Values{"query": {"SELECT version()"}}.Encode(),
	}
	return u.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
