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

package types

import (
	"time"
)

// Status is the health status of a single service or of the system as a whole.
// The literal values are a stable external contract consumed by dashboards and
// monitoring tooling; they must never change.
type Status string

// Per-service and overall status values.
const (
	// StatusHealthy means the dependency responded within its latency budget.
	StatusHealthy Status = "healthy"
	// StatusDegraded means the dependency responded but outside its latency
	// or resource budget.
	StatusDegraded Status = "degraded"
	// StatusFailed means the dependency did not respond or returned an error.
	StatusFailed Status = "failed"
	// StatusNotConfigured means an optional dependency has no configuration;
	// this is not an error condition.
	StatusNotConfigured Status = "not_configured"
	// StatusUnknown is only valid as an overall status and only appears if
	// aggregation receives a status outside the closed set above.
	StatusUnknown Status = "unknown"
)

// ServiceStatuses lists every status a single service record may carry.
func ServiceStatuses() []Status {
	return []Status{StatusHealthy, StatusDegraded, StatusFailed, StatusNotConfigured}
}

// Detail keys used across probes.
const (
	// DetailExceptionType tags the kind of failure on a failed record.
	DetailExceptionType = "exception_type"
	// DetailDependencyMissing marks a failure caused by an absent optional
	// client rather than a connectivity problem.
	DetailDependencyMissing = "dependency_missing"
	// DetailWarning carries a human-readable warning on degraded records.
	DetailWarning = "warning"
	// DetailAvgResponseTime carries the rolling average latency in ms.
	DetailAvgResponseTime = "avg_response_time"
)

// ServiceHealthRecord is the result of one probe of one dependency.
type ServiceHealthRecord struct {
	Service        string         `json:"service"`
	Status         Status         `json:"status"`
	Connected      bool           `json:"connected"`
	ResponseTimeMS *float64       `json:"response_time_ms,omitempty"`
	Error          string         `json:"error,omitempty"`
	Details        map[string]any `json:"details,omitempty"`
	CheckedAt      time.Time      `json:"checked_at"`
}

// SystemHealthSnapshot is the aggregated, point-in-time health of the system.
type SystemHealthSnapshot struct {
	OverallStatus Status                         `json:"overall_status"`
	Services      map[string]ServiceHealthRecord `json:"services"`
	CheckedAt     time.Time                      `json:"checked_at"`
	Environment   string                         `json:"environment"`
}

// NewServiceHealthRecord creates a record with the given status and an empty
// details map, stamped with the current time.
func NewServiceHealthRecord(service string, status Status) ServiceHealthRecord {
	return ServiceHealthRecord{
		Service:   service,
		Status:    status,
		Details:   make(map[string]any),
		CheckedAt: time.Now().UTC(),
	}
}

// NewFailedRecord creates a failed record carrying a sanitized error message.
func NewFailedRecord(service, errMsg string) ServiceHealthRecord {
	rec := NewServiceHealthRecord(service, StatusFailed)
	rec.Error = errMsg
	return rec
}

// WithResponseTime sets the measured response time in milliseconds.
func (r ServiceHealthRecord) WithResponseTime(ms float64) ServiceHealthRecord {
	r.ResponseTimeMS = &ms
	return r
}

// WithDetail adds one detail entry and returns the record.
func (r ServiceHealthRecord) WithDetail(key string, value any) ServiceHealthRecord {
	if r.Details == nil {
		r.Details = make(map[string]any)
	}
	r.Details[key] = value
	return r
}

// IsHealthy reports whether the record carries a healthy status.
func (r ServiceHealthRecord) IsHealthy() bool {
	return r.Status == StatusHealthy
}
