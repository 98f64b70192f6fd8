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
	"sync"
)

// MaxSamples is the bound on each service's response-time window.
const MaxSamples = 100

// ResponseTimeTracker keeps a bounded sliding window of recent latencies per
// service and computes the rolling average. Safe for concurrent use.
type ResponseTimeTracker struct {
	mu         sync.Mutex
	windows    map[string][]float64
	maxSamples int
}

// NewResponseTimeTracker creates a tracker with the default window bound.
func NewResponseTimeTracker() *ResponseTimeTracker {
	return &ResponseTimeTracker{
		windows:    make(map[string][]float64),
		maxSamples: MaxSamples,
	}
}

// Record appends a latency sample in milliseconds. When the window overflows,
// the oldest samples are evicted so exactly the most recent maxSamples remain.
func (t *ResponseTimeTracker) Record(service string, ms float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	window := append(t.windows[service], ms)
	if overflow := len(window) - t.maxSamples; overflow > 0 {
		window = window[overflow:]
	}
	t.windows[service] = window
}

// Average returns the arithmetic mean of the current window, or 0.0 when no
// samples have been recorded.
func (t *ResponseTimeTracker) Average(service string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	window := t.windows[service]
	if len(window) == 0 {
		return 0.0
	}
	var sum float64
	for _, ms := range window {
		sum += ms
	}
	return sum / float64(len(window))
}

// Len returns the number of samples currently held for a service.
func (t *ResponseTimeTracker) Len(service string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.windows[service])
}
