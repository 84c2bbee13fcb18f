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

package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	zerrors "github.com/kube-zen/zen-triage/pkg/errors"
	"github.com/kube-zen/zen-triage/pkg/models"
)

// StatisticsClient reads server-computed rollups and monitoring snapshots
type StatisticsClient struct {
	*Client
}

// NewStatisticsClient wraps c
func NewStatisticsClient(c *Client) *StatisticsClient { return &StatisticsClient{Client: c} }

// Dashboard fetches the dashboard summary
func (c *StatisticsClient) Dashboard(ctx context.Context) (*models.DashboardSummary, error) {
	var summary models.DashboardSummary
	if err := c.do(ctx, "statistics.dashboard", http.MethodGet, "/v1/statistics/dashboard", nil, nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Trends fetches the attack trend between start and end.
// An empty granularity lets the server choose.
func (c *StatisticsClient) Trends(ctx context.Context, start, end string, granularity models.Granularity) ([]models.TrendData, error) {
	params := rangeParams(start, end)
	if granularity != "" {
		params.Set("granularity", string(granularity))
	}
	var trends []models.TrendData
	if err := c.do(ctx, "statistics.trends", http.MethodGet, "/v1/statistics/trends", params, nil, &trends); err != nil {
		return nil, err
	}
	return trends, nil
}

// ThreatTypes fetches the threat type distribution
func (c *StatisticsClient) ThreatTypes(ctx context.Context, start, end string) ([]models.ThreatStatistic, error) {
	var stats []models.ThreatStatistic
	if err := c.do(ctx, "statistics.threat_types", http.MethodGet, "/v1/statistics/threat-types", rangeParams(start, end), nil, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// TopIPs fetches the ranked offending IPs. limit <= 0 lets the server choose.
func (c *StatisticsClient) TopIPs(ctx context.Context, start, end string, limit int) ([]models.TopAttackIP, error) {
	params := rangeParams(start, end)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var ips []models.TopAttackIP
	if err := c.do(ctx, "statistics.top_ips", http.MethodGet, "/v1/statistics/top-ips", params, nil, &ips); err != nil {
		return nil, err
	}
	return ips, nil
}

// Realtime fetches the current monitoring snapshot
func (c *StatisticsClient) Realtime(ctx context.Context) (*models.RealtimeStats, error) {
	var stats models.RealtimeStats
	if err := c.do(ctx, "monitoring.realtime", http.MethodGet, "/v1/monitoring/realtime", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Health fetches the aggregated system health
func (c *StatisticsClient) Health(ctx context.Context) (*models.SystemHealth, error) {
	var health models.SystemHealth
	if err := c.do(ctx, "monitoring.health", http.MethodGet, "/v1/monitoring/health", nil, nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// GenerateReport asks the server for an analysis report
func (c *StatisticsClient) GenerateReport(ctx context.Context, req models.ReportRequest) (*models.Report, error) {
	const op = "statistics.report"
	if !req.ReportType.IsValid() {
		return nil, zerrors.NewValidationError(op, "invalid report type "+string(req.ReportType), nil)
	}
	var report models.Report
	if err := c.do(ctx, op, http.MethodPost, "/v1/statistics/report", nil, req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func rangeParams(start, end string) url.Values {
	params := url.Values{}
	if start != "" {
		params.Set("startDate", start)
	}
	if end != "" {
		params.Set("endDate", end)
	}
	return params
}
