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

// Package health implements the service health aggregation engine: bounded
// connectivity probes for the relational, cache, and analytics stores, a
// TTL cache of probe results, rolling response-time statistics, and an
// ordered criticality rule table that derives one system-wide status.
package health

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"time"

	"github.com/optiflow/pulse/internal/pulse/types"
)

// Service names probed by the engine. The names are part of the snapshot's
// external contract.
const (
	ServiceDatabase   = "database"
	ServiceRedis      = "redis"
	ServiceClickHouse = "clickhouse"
)

// Prober runs one bounded-time connectivity check against one dependency.
// Implementations classify every outcome into a record and never return
// errors or panic past this boundary; dependency failures are data.
type Prober interface {
	// Name returns the service name the probe reports under.
	Name() string
	// Probe performs the check. It must honor ctx cancellation and convert
	// its own timeout into a failed record naming the bound.
	Probe(ctx context.Context) types.ServiceHealthRecord
}

// credentialPattern matches user:password@ fragments that drivers embed in
// connection errors.
var credentialPattern = regexp.MustCompile(`[^\s/@]+:[^\s/@]+@`)

const maxErrorLength = 200

// sanitizeError reduces a probe error to a message safe for external
// consumers: credentials masked, length bounded, no stack traces.
func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := credentialPattern.ReplaceAllString(err.Error(), "***@")
	if len(msg) > maxErrorLength {
		msg = msg[:maxErrorLength]
	}
	return msg
}

// errorKind classifies a probe error for the exception_type detail tag.
func errorKind(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return "network_error"
	}
	return fmt.Sprintf("%T", err)
}

// timeoutMessage names the bound a probe exceeded, e.g. "Connection timeout (5s)".
func timeoutMessage(bound time.Duration) string {
	return fmt.Sprintf("Connection timeout (%s)", bound)
}

// elapsedMS converts a duration to fractional milliseconds.
func elapsedMS(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
