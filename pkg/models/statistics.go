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

package models

// SystemStatus is the dashboard's overall status
type SystemStatus string

const (
	SystemNormal  SystemStatus = "normal"
	SystemWarning SystemStatus = "warning"
	SystemError   SystemStatus = "error"
)

// HealthStatus is reported per component by the health endpoint
type HealthStatus string

const (
	HealthHealthy HealthStatus = "healthy"
	HealthWarning HealthStatus = "warning"
	HealthError   HealthStatus = "error"
)

// Granularity is the bucket width of a trend series
type Granularity string

const (
	GranularityHour Granularity = "hour"
	GranularityDay  Granularity = "day"
	GranularityWeek Granularity = "week"
)

var granularities = []Granularity{GranularityHour, GranularityDay, GranularityWeek}

// IsValid reports whether g is a known granularity
func (g Granularity) IsValid() bool { return contains(granularities, g) }

// ParseGranularity parses a wire value
func ParseGranularity(s string) (Granularity, error) {
	return parseEnum("granularity", s, granularities)
}

// ReportType selects the period covered by a generated report
type ReportType string

const (
	ReportDaily   ReportType = "daily"
	ReportWeekly  ReportType = "weekly"
	ReportMonthly ReportType = "monthly"
)

var reportTypes = []ReportType{ReportDaily, ReportWeekly, ReportMonthly}

// IsValid reports whether r is a known report type
func (r ReportType) IsValid() bool { return contains(reportTypes, r) }

// ParseReportType parses a wire value
func ParseReportType(s string) (ReportType, error) { return parseEnum("reportType", s, reportTypes) }

// ThreatStatistic is the count and share of one threat type
type ThreatStatistic struct {
	ThreatType ThreatType `json:"threatType"`
	Count      int        `json:"count"`
	Percentage float64    `json:"percentage"`
}

// TrendData is one bucket of a trend series
type TrendData struct {
	Date       string     `json:"date"`
	Count      int        `json:"count"`
	ThreatType ThreatType `json:"threatType,omitempty"`
}

// DashboardSummary is the dashboard landing payload
type DashboardSummary struct {
	TodayAttacks   int               `json:"todayAttacks"`
	BlockedThreats int               `json:"blockedThreats"`
	UniqueIPs      int               `json:"uniqueIps"`
	SystemStatus   SystemStatus      `json:"systemStatus"`
	ThreatStats    []ThreatStatistic `json:"threatStats"`
	RecentEvents   []EventRecord     `json:"recentEvents"`
	TrendData      []TrendData       `json:"trendData"`
}

// TopAttackIP is one entry of the offending-IP ranking
type TopAttackIP struct {
	IP          string    `json:"ip"`
	Count       int       `json:"count"`
	ThreatTypes []string  `json:"threatTypes"`
	LastSeen    Timestamp `json:"lastSeen"`
}

// RealtimeStats is a point-in-time monitoring snapshot
type RealtimeStats struct {
	CurrentAttacks    int     `json:"currentAttacks"`
	ActiveConnections int     `json:"activeConnections"`
	SystemLoad        float64 `json:"systemLoad"`
	MemoryUsage       float64 `json:"memoryUsage"`
}

// ComponentHealth is the health of one backend component
type ComponentHealth struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message"`
}

// SystemHealth is the aggregated health reported by the server
type SystemHealth struct {
	Status     HealthStatus      `json:"status"`
	Components []ComponentHealth `json:"components"`
}

// ReportRequest asks the server to generate an analysis report
type ReportRequest struct {
	StartDate  string     `json:"startDate"`
	EndDate    string     `json:"endDate"`
	ReportType ReportType `json:"reportType"`
}

// Report is a generated analysis report
type Report struct {
	ReportID    string    `json:"reportId"`
	Content     string    `json:"content"`
	GeneratedAt Timestamp `json:"generatedAt"`
}
