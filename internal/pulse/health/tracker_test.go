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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_AverageEmptyWindow(t *testing.T) {
	tracker := NewResponseTimeTracker()
	assert.Equal(t, 0.0, tracker.Average("database"))
}

func TestTracker_Average(t *testing.T) {
	tracker := NewResponseTimeTracker()
	tracker.Record("database", 10)
	tracker.Record("database", 20)
	tracker.Record("database", 30)

	assert.InDelta(t, 20.0, tracker.Average("database"), 1e-9)
}

// After 150 samples exactly the most recent 100 remain and the average is
// the mean of exactly those 100 values.
func TestTracker_WindowBound(t *testing.T) {
	tracker := NewResponseTimeTracker()
	for i := 1; i <= 150; i++ {
		tracker.Record("database", float64(i))
	}

	assert.Equal(t, MaxSamples, tracker.Len("database"))

	// Samples 51..150 remain; their mean is (51+150)/2.
	assert.InDelta(t, 100.5, tracker.Average("database"), 1e-9)
}

func TestTracker_WindowsAreIndependent(t *testing.T) {
	tracker := NewResponseTimeTracker()
	tracker.Record("database", 100)
	tracker.Record("redis", 2)

	assert.InDelta(t, 100.0, tracker.Average("database"), 1e-9)
	assert.InDelta(t, 2.0, tracker.Average("redis"), 1e-9)
	assert.Equal(t, 0, tracker.Len("clickhouse"))
}

func TestTracker_ConcurrentRecord(t *testing.T) {
	tracker := NewResponseTimeTracker()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				tracker.Record("database", float64(i))
				tracker.Average("database")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, MaxSamples, tracker.Len("database"))
}
