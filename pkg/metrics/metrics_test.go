// Copyright 2025 The Zen Watcher Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveRequest("events.list", "GET", 200, 20*time.Millisecond)
	m.ObserveFetch(OutcomeStale)
	m.ObserveStatusChange("resolved", nil)
	m.ObserveStatusChange("resolved", errors.New("boom"))
	m.ObserveFeedMessage("new_event", "dispatched")
	m.ObserveDashboardLoad("summary", nil)

	if got := testutil.ToFloat64(m.APIRequests.WithLabelValues("events.list", "GET", "200")); got != 1 {
		t.Errorf("api requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.StoreFetches.WithLabelValues(OutcomeStale)); got != 1 {
		t.Errorf("stale fetches = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.StatusChanges.WithLabelValues("resolved", "error")); got != 1 {
		t.Errorf("failed status changes = %v, want 1", got)
	}
	if n, err := testutil.GatherAndCount(reg); err != nil || n == 0 {
		t.Errorf("GatherAndCount() = %d, %v", n, err)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("x", "GET", 0, time.Second)
	m.ObserveFetch(OutcomeApplied)
	m.ObserveStatusChange("pending", nil)
	m.ObserveFeedMessage("stats_update", "dispatched")
	m.ObserveDashboardLoad("health", errors.New("x"))
}

func TestCurrentAttacksWindow(t *testing.T) {
	sm := NewSystemMetrics(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	sm.now = func() time.Time { return now }

	sm.RecordAttack()
	sm.RecordAttack()
	now = now.Add(30 * time.Second)
	sm.RecordAttack()
	if got := sm.CurrentAttacks(); got != 3 {
		t.Errorf("CurrentAttacks() = %d, want 3", got)
	}

	now = now.Add(45 * time.Second)
	if got := sm.CurrentAttacks(); got != 1 {
		t.Errorf("CurrentAttacks() after window = %d, want 1", got)
	}
}

func TestMemoryPercentBounded(t *testing.T) {
	sm := NewSystemMetrics(0)
	if p := sm.GetMemoryUsagePercent(); p < 0 || p > 100 {
		t.Errorf("memory percent out of range: %v", p)
	}
}
