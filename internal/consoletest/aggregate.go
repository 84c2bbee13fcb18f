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

package consoletest

import (
	"math"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/kube-zen/zen-triage/pkg/models"
)

type filter struct {
	threatType models.ThreatType
	severity   models.SeverityLevel
	status     models.EventStatus
	sourceIP   string
	keyword    string
	window
}

// window is a detection time range; zero bounds are open
type window struct {
	from, until time.Time
}

func (w window) contains(t time.Time) bool {
	if !w.from.IsZero() && t.Before(w.from) {
		return false
	}
	if !w.until.IsZero() && !t.Before(w.until) {
		return false
	}
	return true
}

// parseWindow treats a date-only end bound as the whole day
func parseWindow(start, end string) window {
	var w window
	if ts, err := models.ParseTimestamp(start); err == nil {
		w.from = ts.Time
	}
	if ts, err := models.ParseTimestamp(end); err == nil {
		w.until = ts.Time
		if len(end) == len("2006-01-02") {
			w.until = w.until.Add(24 * time.Hour)
		} else {
			w.until = w.until.Add(time.Nanosecond)
		}
	}
	return w
}

func parseFilter(q url.Values) (filter, error) {
	f := filter{
		sourceIP: q.Get("sourceIp"),
		keyword:  strings.ToLower(q.Get("keyword")),
		window:   parseWindow(q.Get("startTime"), q.Get("endTime")),
	}
	if v := q.Get("threatType"); v != "" {
		t, err := models.ParseThreatType(v)
		if err != nil {
			return f, err
		}
		f.threatType = t
	}
	if v := q.Get("severityLevel"); v != "" {
		s, err := models.ParseSeverityLevel(v)
		if err != nil {
			return f, err
		}
		f.severity = s
	}
	if v := q.Get("status"); v != "" {
		s, err := models.ParseEventStatus(v)
		if err != nil {
			return f, err
		}
		f.status = s
	}
	return f, nil
}

func (f filter) matches(e models.EventRecord) bool {
	if f.threatType != "" && e.ThreatType != f.threatType {
		return false
	}
	if f.severity != "" && e.SeverityLevel != f.severity {
		return false
	}
	if f.status != "" && e.Status != f.status {
		return false
	}
	if f.sourceIP != "" && !strings.Contains(e.SourceIP, f.sourceIP) {
		return false
	}
	if f.keyword != "" {
		haystack := strings.ToLower(strings.Join([]string{e.EventID, e.TargetURL, e.AttackPayload, e.RawRequest}, "\n"))
		if !strings.Contains(haystack, f.keyword) {
			return false
		}
	}
	return f.window.contains(e.DetectionTime.Time)
}

func (c *Console) inRange(start, end string) []models.EventRecord {
	w := parseWindow(start, end)
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.EventRecord
	for _, e := range c.events {
		if w.contains(e.DetectionTime.Time) {
			out = append(out, e)
		}
	}
	return out
}

func (c *Console) summary() models.DashboardSummary {
	now := c.now().UTC()
	today := now.Format("2006-01-02")

	c.mu.Lock()
	events := append([]models.EventRecord(nil), c.events...)
	healthStatus := c.health.Status
	c.mu.Unlock()

	s := models.DashboardSummary{SystemStatus: models.SystemNormal}
	ips := map[string]struct{}{}
	for _, e := range events {
		if e.DetectionTime.UTC().Format("2006-01-02") == today {
			s.TodayAttacks++
		}
		if e.Status == models.StatusConfirmed || e.Status == models.StatusResolved {
			s.BlockedThreats++
		}
		if e.Status == models.StatusPending && e.SeverityLevel == models.SeverityCritical {
			s.SystemStatus = models.SystemWarning
		}
		ips[e.SourceIP] = struct{}{}
	}
	s.UniqueIPs = len(ips)
	if healthStatus == models.HealthError {
		s.SystemStatus = models.SystemError
	}

	s.ThreatStats = threatDistribution(events)
	recent := events
	if len(recent) > 10 {
		recent = recent[:10]
	}
	s.RecentEvents = append([]models.EventRecord{}, recent...)

	weekAgo := now.AddDate(0, 0, -6).Format("2006-01-02")
	w := parseWindow(weekAgo, today)
	var lastWeek []models.EventRecord
	for _, e := range events {
		if w.contains(e.DetectionTime.Time) {
			lastWeek = append(lastWeek, e)
		}
	}
	s.TrendData = trendSeries(lastWeek, models.GranularityDay)
	return s
}

// threatDistribution reports every threat type, zero counts included
func threatDistribution(events []models.EventRecord) []models.ThreatStatistic {
	counts := map[models.ThreatType]int{}
	for _, e := range events {
		counts[e.ThreatType]++
	}
	total := len(events)
	stats := make([]models.ThreatStatistic, 0, len(models.ThreatTypes()))
	for _, t := range models.ThreatTypes() {
		pct := 0.0
		if total > 0 {
			pct = math.Round(10000*float64(counts[t])/float64(total)) / 100
		}
		stats = append(stats, models.ThreatStatistic{ThreatType: t, Count: counts[t], Percentage: pct})
	}
	return stats
}

// trendSeries buckets events ascending. Empty buckets are not emitted.
func trendSeries(events []models.EventRecord, g models.Granularity) []models.TrendData {
	counts := map[string]int{}
	for _, e := range events {
		counts[bucket(e.DetectionTime.UTC(), g)]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	series := make([]models.TrendData, 0, len(keys))
	for _, k := range keys {
		series = append(series, models.TrendData{Date: k, Count: counts[k]})
	}
	return series
}

func bucket(t time.Time, g models.Granularity) string {
	switch g {
	case models.GranularityHour:
		return t.Format("2006-01-02 15:00")
	case models.GranularityWeek:
		offset := (int(t.Weekday()) + 6) % 7
		return t.AddDate(0, 0, -offset).Format("2006-01-02")
	default:
		return t.Format("2006-01-02")
	}
}

// rankIPs orders by count descending, ties by address
func rankIPs(events []models.EventRecord, limit int) []models.TopAttackIP {
	byIP := map[string]*models.TopAttackIP{}
	seen := map[string]map[models.ThreatType]bool{}
	for _, e := range events {
		entry, ok := byIP[e.SourceIP]
		if !ok {
			entry = &models.TopAttackIP{IP: e.SourceIP, ThreatTypes: []string{}}
			byIP[e.SourceIP] = entry
			seen[e.SourceIP] = map[models.ThreatType]bool{}
		}
		entry.Count++
		if !seen[e.SourceIP][e.ThreatType] {
			seen[e.SourceIP][e.ThreatType] = true
			entry.ThreatTypes = append(entry.ThreatTypes, string(e.ThreatType))
		}
		if e.DetectionTime.After(entry.LastSeen.Time) {
			entry.LastSeen = e.DetectionTime
		}
	}

	ranked := make([]models.TopAttackIP, 0, len(byIP))
	for _, entry := range byIP {
		sort.Strings(entry.ThreatTypes)
		ranked = append(ranked, *entry)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].IP < ranked[j].IP
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
