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
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Fetch outcomes recorded by the event store
const (
	OutcomeApplied = "applied"
	OutcomeStale   = "stale"
	OutcomeFailed  = "failed"
)

// Metrics holds all Prometheus metrics for zen-triage.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	APIRequests        *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	StoreFetches       *prometheus.CounterVec
	StatusChanges      *prometheus.CounterVec
	FeedMessages       *prometheus.CounterVec
	DashboardLoads     *prometheus.CounterVec
}

// NewMetrics creates all metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	apiRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zen_triage_api_requests_total",
			Help: "Total number of console API requests by endpoint, method and HTTP status",
		},
		[]string{"endpoint", "method", "status"},
	)

	apiRequestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zen_triage_api_request_duration_seconds",
			Help:    "Duration of console API requests",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint", "method"},
	)

	storeFetches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zen_triage_store_fetches_total",
			Help: "Event list fetches by outcome (applied, stale, failed)",
		},
		[]string{"outcome"},
	)

	statusChanges := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zen_triage_status_changes_total",
			Help: "Requested event status changes by target status and outcome",
		},
		[]string{"status", "outcome"},
	)

	feedMessages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zen_triage_feed_messages_total",
			Help: "Live feed messages by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	dashboardLoads := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zen_triage_dashboard_loads_total",
			Help: "Dashboard view loads by view and outcome",
		},
		[]string{"view", "outcome"},
	)

	if reg != nil {
		reg.MustRegister(apiRequests, apiRequestDuration, storeFetches,
			statusChanges, feedMessages, dashboardLoads)
	}

	return &Metrics{
		APIRequests:        apiRequests,
		APIRequestDuration: apiRequestDuration,
		StoreFetches:       storeFetches,
		StatusChanges:      statusChanges,
		FeedMessages:       feedMessages,
		DashboardLoads:     dashboardLoads,
	}
}

// ObserveRequest records one API round trip. status 0 means no response.
func (m *Metrics) ObserveRequest(endpoint, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.APIRequests.WithLabelValues(endpoint, method, strconv.Itoa(status)).Inc()
	m.APIRequestDuration.WithLabelValues(endpoint, method).Observe(elapsed.Seconds())
}

// ObserveFetch records an event list fetch outcome
func (m *Metrics) ObserveFetch(outcome string) {
	if m == nil {
		return
	}
	m.StoreFetches.WithLabelValues(outcome).Inc()
}

// ObserveStatusChange records a status change attempt
func (m *Metrics) ObserveStatusChange(status string, err error) {
	if m == nil {
		return
	}
	m.StatusChanges.WithLabelValues(status, outcome(err)).Inc()
}

// ObserveFeedMessage records a live feed message
func (m *Metrics) ObserveFeedMessage(msgType, result string) {
	if m == nil {
		return
	}
	m.FeedMessages.WithLabelValues(msgType, result).Inc()
}

// ObserveDashboardLoad records a dashboard view load
func (m *Metrics) ObserveDashboardLoad(view string, err error) {
	if m == nil {
		return
	}
	m.DashboardLoads.WithLabelValues(view, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
