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
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/optiflow/pulse/internal/pulse/types"
)

const (
	// DatabaseTimeout bounds the relational-store round trip.
	DatabaseTimeout = 5 * time.Second
	// DatabaseDegradedThresholdMS is the latency above which a connected
	// relational store is reported degraded rather than healthy.
	DatabaseDegradedThresholdMS = 1000.0
)

// DatabaseProbe checks the relational store with a lightweight round-trip
// query and classifies the outcome by wall-clock latency.
type DatabaseProbe struct {
	db *gorm.DB

	timeout     time.Duration
	thresholdMS float64
}

// NewDatabaseProbe creates a probe around an injected gorm connection.
func NewDatabaseProbe(db *gorm.DB) *DatabaseProbe {
	return &DatabaseProbe{
		db:          db,
		timeout:     DatabaseTimeout,
		thresholdMS: DatabaseDegradedThresholdMS,
	}
}

// Name implements Prober.
func (p *DatabaseProbe) Name() string {
	return ServiceDatabase
}

// Probe implements Prober. Connected within the threshold is healthy, above
// it degraded with a warning detail; any query or connection error is a
// failed record with a sanitized message.
func (p *DatabaseProbe) Probe(ctx context.Context) types.ServiceHealthRecord {
	if p.db == nil {
		return types.NewFailedRecord(ServiceDatabase, "database connection not initialized").
			WithDetail(types.DetailExceptionType, "nil_connection")
	}

	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		var one int
		done <- p.db.WithContext(probeCtx).Raw("SELECT 1").Scan(&one).Error
	}()

	select {
	case err := <-done:
		elapsed := elapsedMS(time.Since(start))
		if err != nil {
			return types.NewFailedRecord(ServiceDatabase, sanitizeError(err)).
				WithDetail(types.DetailExceptionType, errorKind(err))
		}

		rec := types.NewServiceHealthRecord(ServiceDatabase, types.StatusHealthy)
		rec.Connected = true
		rec = rec.WithResponseTime(elapsed).WithDetail("engine", "mysql")
		if elapsed > p.thresholdMS {
			rec.Status = types.StatusDegraded
			rec = rec.WithDetail(types.DetailWarning,
				fmt.Sprintf("slow response: %.1fms exceeds %.0fms threshold", elapsed, p.thresholdMS))
		}
		return rec

	case <-probeCtx.Done():
		return types.NewFailedRecord(ServiceDatabase, timeoutMessage(p.timeout)).
			WithDetail(types.DetailExceptionType, "timeout")
	}
}
