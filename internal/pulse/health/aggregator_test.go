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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/optiflow/pulse/internal/pulse/types"
)

// referenceAggregate is an independent statement of the criticality rules,
// written as plain conditionals, used to cross-check the rule table.
func referenceAggregate(in AggregationInput) types.Status {
	if in.Database == types.StatusFailed {
		return types.StatusFailed
	}
	if in.Redis == types.StatusFailed && in.RedisRequired {
		return types.StatusFailed
	}
	if in.ClickHouse == types.StatusFailed && in.ClickHouseRequired {
		return types.StatusFailed
	}
	if in.Redis == types.StatusFailed || in.ClickHouse == types.StatusFailed {
		return types.StatusDegraded
	}
	if in.Database == types.StatusDegraded || in.Redis == types.StatusDegraded || in.ClickHouse == types.StatusDegraded {
		return types.StatusDegraded
	}
	return types.StatusHealthy
}

// Every combination of the 4 per-service statuses across 3 services and the
// 2 criticality flags (4*4*4*2*2 = 256 cases) must match the rule table and
// must never reach the unknown fallback.
func TestAggregate_Exhaustive(t *testing.T) {
	statuses := types.ServiceStatuses()
	flags := []bool{false, true}

	cases := 0
	for _, dbStatus := range statuses {
		for _, redisStatus := range statuses {
			for _, chStatus := range statuses {
				for _, redisRequired := range flags {
					for _, chRequired := range flags {
						in := AggregationInput{
							Database:           dbStatus,
							Redis:              redisStatus,
							ClickHouse:         chStatus,
							RedisRequired:      redisRequired,
							ClickHouseRequired: chRequired,
						}
						name := fmt.Sprintf("db=%s redis=%s(req=%t) ch=%s(req=%t)",
							dbStatus, redisStatus, redisRequired, chStatus, chRequired)

						got := Aggregate(in)
						assert.Equal(t, referenceAggregate(in), got, name)
						assert.NotEqual(t, types.StatusUnknown, got,
							"unknown fallback must be unreachable: %s", name)
						cases++
					}
				}
			}
		}
	}
	assert.Equal(t, 256, cases)
}

// The rule table itself must be exhaustive over the closed status set:
// for every valid input some rule matches.
func TestAggregationRules_Exhaustive(t *testing.T) {
	statuses := types.ServiceStatuses()
	flags := []bool{false, true}
	rules := AggregationRules()

	for _, dbStatus := range statuses {
		for _, redisStatus := range statuses {
			for _, chStatus := range statuses {
				for _, redisRequired := range flags {
					for _, chRequired := range flags {
						in := AggregationInput{
							Database:           dbStatus,
							Redis:              redisStatus,
							ClickHouse:         chStatus,
							RedisRequired:      redisRequired,
							ClickHouseRequired: chRequired,
						}
						matched := false
						for _, rule := range rules {
							if rule.Matches(in) {
								matched = true
								break
							}
						}
						assert.True(t, matched, "no rule matched %+v", in)
					}
				}
			}
		}
	}
}

func TestAggregationRules_Order(t *testing.T) {
	names := make([]string, 0)
	for _, rule := range AggregationRules() {
		names = append(names, rule.Name)
	}
	assert.Equal(t, []string{
		"database-failed",
		"redis-required-failed",
		"clickhouse-required-failed",
		"optional-failed",
		"any-degraded",
		"all-operational",
	}, names)
}

func TestAggregate_DatabaseAlwaysCritical(t *testing.T) {
	got := Aggregate(AggregationInput{
		Database:   types.StatusFailed,
		Redis:      types.StatusHealthy,
		ClickHouse: types.StatusHealthy,
	})
	assert.Equal(t, types.StatusFailed, got)
}

func TestAggregate_OptionalFailureDegrades(t *testing.T) {
	got := Aggregate(AggregationInput{
		Database:      types.StatusHealthy,
		Redis:         types.StatusFailed,
		ClickHouse:    types.StatusHealthy,
		RedisRequired: false,
	})
	assert.Equal(t, types.StatusDegraded, got)
}

func TestAggregate_RequiredFailureFails(t *testing.T) {
	got := Aggregate(AggregationInput{
		Database:      types.StatusHealthy,
		Redis:         types.StatusFailed,
		ClickHouse:    types.StatusHealthy,
		RedisRequired: true,
	})
	assert.Equal(t, types.StatusFailed, got)
}

func TestAggregate_NotConfiguredIsHealthy(t *testing.T) {
	got := Aggregate(AggregationInput{
		Database:   types.StatusHealthy,
		Redis:      types.StatusHealthy,
		ClickHouse: types.StatusNotConfigured,
	})
	assert.Equal(t, types.StatusHealthy, got)
}

func TestAggregate_Deterministic(t *testing.T) {
	in := AggregationInput{
		Database:           types.StatusDegraded,
		Redis:              types.StatusFailed,
		ClickHouse:         types.StatusNotConfigured,
		ClickHouseRequired: true,
	}
	first := Aggregate(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Aggregate(in))
	}
}
