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
	"github.com/optiflow/pulse/internal/pulse/types"
)

// AggregationInput carries the three per-service statuses plus the
// criticality flags of the two non-critical dependencies. The relational
// store is always critical.
type AggregationInput struct {
	Database   types.Status
	Redis      types.Status
	ClickHouse types.Status

	RedisRequired      bool
	ClickHouseRequired bool
}

func (in AggregationInput) statuses() [3]types.Status {
	return [3]types.Status{in.Database, in.Redis, in.ClickHouse}
}

func (in AggregationInput) any(status types.Status) bool {
	for _, s := range in.statuses() {
		if s == status {
			return true
		}
	}
	return false
}

// AggregationRule is one (predicate, outcome) entry of the rule table.
type AggregationRule struct {
	Name    string
	Matches func(AggregationInput) bool
	Outcome types.Status
}

// aggregationRules is the ordered criticality table. The order is fixed:
// first match wins, and reordering changes the semantics.
var aggregationRules = []AggregationRule{
	{
		Name:    "database-failed",
		Matches: func(in AggregationInput) bool { return in.Database == types.StatusFailed },
		Outcome: types.StatusFailed,
	},
	{
		Name:    "redis-required-failed",
		Matches: func(in AggregationInput) bool { return in.Redis == types.StatusFailed && in.RedisRequired },
		Outcome: types.StatusFailed,
	},
	{
		Name: "clickhouse-required-failed",
		Matches: func(in AggregationInput) bool {
			return in.ClickHouse == types.StatusFailed && in.ClickHouseRequired
		},
		Outcome: types.StatusFailed,
	},
	{
		Name:    "optional-failed",
		Matches: func(in AggregationInput) bool { return in.any(types.StatusFailed) },
		Outcome: types.StatusDegraded,
	},
	{
		Name:    "any-degraded",
		Matches: func(in AggregationInput) bool { return in.any(types.StatusDegraded) },
		Outcome: types.StatusDegraded,
	},
	{
		Name: "all-operational",
		Matches: func(in AggregationInput) bool {
			for _, s := range in.statuses() {
				if s != types.StatusHealthy && s != types.StatusNotConfigured {
					return false
				}
			}
			return true
		},
		Outcome: types.StatusHealthy,
	},
}

// AggregationRules returns a copy of the ordered rule table for inspection
// and exhaustiveness testing.
func AggregationRules() []AggregationRule {
	rules := make([]AggregationRule, len(aggregationRules))
	copy(rules, aggregationRules)
	return rules
}

// Aggregate derives the overall status from per-service statuses and
// criticality flags. Pure and deterministic: the same input always yields
// the same output. For inputs drawn from the closed status set the rule
// table is exhaustive and the unknown fallback is unreachable.
func Aggregate(in AggregationInput) types.Status {
	for _, rule := range aggregationRules {
		if rule.Matches(in) {
			return rule.Outcome
		}
	}
	return types.StatusUnknown
}
