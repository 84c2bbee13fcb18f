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

// Package dashboard shapes server-computed statistics for display. It never
// re-derives what the server already computed: trend gaps, percentages and
// IP ranking order are passed through.
package dashboard

import (
	"context"
	"sync"

	zerrors "github.com/kube-zen/zen-triage/pkg/errors"
	"github.com/kube-zen/zen-triage/pkg/logger"
	"github.com/kube-zen/zen-triage/pkg/metrics"
	"github.com/kube-zen/zen-triage/pkg/models"
)

// DefaultRecentEvents bounds the recent events list
const DefaultRecentEvents = 10

// StatisticsService provides server-side rollups and monitoring snapshots
type StatisticsService interface {
	Dashboard(ctx context.Context) (*models.DashboardSummary, error)
	Trends(ctx context.Context, start, end string, granularity models.Granularity) ([]models.TrendData, error)
	ThreatTypes(ctx context.Context, start, end string) ([]models.ThreatStatistic, error)
	TopIPs(ctx context.Context, start, end string, limit int) ([]models.TopAttackIP, error)
	Realtime(ctx context.Context) (*models.RealtimeStats, error)
	Health(ctx context.Context) (*models.SystemHealth, error)
	GenerateReport(ctx context.Context, req models.ReportRequest) (*models.Report, error)
}

// ViewModel derives display-ready dashboard data
type ViewModel struct {
	svc         StatisticsService
	metrics     *metrics.Metrics
	recentLimit int

	mu      sync.Mutex
	summary *models.DashboardSummary
	recent  []models.EventRecord
}

// Option configures a ViewModel
type Option func(*ViewModel)

// WithRecentLimit bounds the recent events list
func WithRecentLimit(n int) Option {
	return func(vm *ViewModel) {
		if n > 0 {
			vm.recentLimit = n
		}
	}
}

// WithMetrics records load outcomes
func WithMetrics(m *metrics.Metrics) Option {
	return func(vm *ViewModel) { vm.metrics = m }
}

// NewViewModel creates a view model backed by svc
func NewViewModel(svc StatisticsService, opts ...Option) *ViewModel {
	vm := &ViewModel{svc: svc, recentLimit: DefaultRecentEvents}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// LoadSummary fetches the dashboard summary and seeds the recent events list
func (vm *ViewModel) LoadSummary(ctx context.Context) (*models.DashboardSummary, error) {
	summary, err := vm.svc.Dashboard(ctx)
	vm.observe("summary", err)
	if err != nil {
		return nil, err
	}

	out := *summary
	out.RecentEvents = TopN(summary.RecentEvents, vm.recentLimit)

	vm.mu.Lock()
	stored := out
	vm.summary = &stored
	vm.recent = append([]models.EventRecord{}, out.RecentEvents...)
	vm.mu.Unlock()
	return &out, nil
}

// Summary returns the last loaded summary with the live recent events list
func (vm *ViewModel) Summary() (models.DashboardSummary, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.summary == nil {
		return models.DashboardSummary{}, false
	}
	s := *vm.summary
	s.RecentEvents = append([]models.EventRecord{}, vm.recent...)
	return s, true
}

// RecentEvents returns the recent events, newest first
func (vm *ViewModel) RecentEvents() []models.EventRecord {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return append([]models.EventRecord{}, vm.recent...)
}

// PushEvent prepends a live event to the recent list, dropping the oldest
// beyond the bound. An id already listed is ignored; it reports whether e was added.
func (vm *ViewModel) PushEvent(e models.EventRecord) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	for _, existing := range vm.recent {
		if existing.ID == e.ID {
			return false
		}
	}
	vm.recent = append([]models.EventRecord{e}, vm.recent...)
	if len(vm.recent) > vm.recentLimit {
		vm.recent = vm.recent[:vm.recentLimit]
	}
	return true
}

// LoadTrends fetches the trend series. Missing buckets are not interpolated.
func (vm *ViewModel) LoadTrends(ctx context.Context, start, end string, granularity models.Granularity) ([]models.TrendData, error) {
	if granularity != "" && !granularity.IsValid() {
		return nil, zerrors.NewValidationError("dashboard.trends", "invalid granularity "+string(granularity), nil)
	}
	trends, err := vm.svc.Trends(ctx, start, end, granularity)
	vm.observe("trends", err)
	if err != nil {
		return nil, err
	}
	if trends == nil {
		trends = []models.TrendData{}
	}
	return trends, nil
}

// LoadThreatDistribution fetches the threat type distribution as reported
func (vm *ViewModel) LoadThreatDistribution(ctx context.Context, start, end string) ([]models.ThreatStatistic, error) {
	stats, err := vm.svc.ThreatTypes(ctx, start, end)
	vm.observe("threat_types", err)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []models.ThreatStatistic{}
	}
	return stats, nil
}

// LoadTopAttackIPs fetches the IP ranking in server order, at most limit
// entries when limit is positive.
func (vm *ViewModel) LoadTopAttackIPs(ctx context.Context, start, end string, limit int) ([]models.TopAttackIP, error) {
	ips, err := vm.svc.TopIPs(ctx, start, end, limit)
	vm.observe("top_ips", err)
	if err != nil {
		return nil, err
	}
	if limit > 0 {
		ips = TopN(ips, limit)
	}
	if ips == nil {
		ips = []models.TopAttackIP{}
	}
	return ips, nil
}

// LoadRealtime fetches a fresh monitoring snapshot on every call
func (vm *ViewModel) LoadRealtime(ctx context.Context) (*models.RealtimeStats, error) {
	stats, err := vm.svc.Realtime(ctx)
	vm.observe("realtime", err)
	return stats, err
}

// LoadHealth fetches fresh system health on every call
func (vm *ViewModel) LoadHealth(ctx context.Context) (*models.SystemHealth, error) {
	health, err := vm.svc.Health(ctx)
	vm.observe("health", err)
	return health, err
}

// GenerateReport requests an analysis report
func (vm *ViewModel) GenerateReport(ctx context.Context, req models.ReportRequest) (*models.Report, error) {
	if !req.ReportType.IsValid() {
		return nil, zerrors.NewValidationError("dashboard.report", "invalid report type "+string(req.ReportType), nil)
	}
	report, err := vm.svc.GenerateReport(ctx, req)
	vm.observe("report", err)
	return report, err
}

func (vm *ViewModel) observe(view string, err error) {
	vm.metrics.ObserveDashboardLoad(view, err)
	if err != nil {
		logger.Warn("Dashboard load failed",
			logger.Fields{Component: "dashboard", Operation: view, Error: err})
	}
}
