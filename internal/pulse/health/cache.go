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
	"time"

	"github.com/optiflow/pulse/internal/pulse/types"
)

type cacheEntry struct {
	record   types.ServiceHealthRecord
	storedAt time.Time
}

// HealthCache memoizes the latest probe result per service with a TTL.
// Safe for concurrent use.
type HealthCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry

	// now is replaced in tests to control entry age.
	now func() time.Time
}

// NewHealthCache creates a cache whose entries stay valid for ttl.
func NewHealthCache(ttl time.Duration) *HealthCache {
	return &HealthCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached record for a service when a valid entry exists.
func (c *HealthCache) Get(service string) (types.ServiceHealthRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[service]
	if !ok || c.now().Sub(entry.storedAt) >= c.ttl {
		return types.ServiceHealthRecord{}, false
	}
	return entry.record, true
}

// Put stores a fresh record for a service.
func (c *HealthCache) Put(service string, record types.ServiceHealthRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[service] = cacheEntry{record: record, storedAt: c.now()}
}

// IsValid reports whether the service has an unexpired cache entry.
func (c *HealthCache) IsValid(service string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[service]
	return ok && c.now().Sub(entry.storedAt) < c.ttl
}

// Clear wipes all entries and their timestamps atomically. Idempotent; it
// does not touch response-time windows.
func (c *HealthCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
