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

package dashboard

import "github.com/kube-zen/zen-triage/pkg/models"

// Share returns 100*part/total, or 0 when total is not positive
func Share(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return 100 * float64(part) / float64(total)
}

// Percentages derives 100*count/sum for each statistic. All zero when the sum is 0.
func Percentages(stats []models.ThreatStatistic) []float64 {
	sum := 0
	for _, s := range stats {
		sum += s.Count
	}
	out := make([]float64, len(stats))
	for i, s := range stats {
		out[i] = Share(s.Count, sum)
	}
	return out
}

// ThreatShare is one display row of the threat distribution
type ThreatShare struct {
	ThreatType models.ThreatType
	Label      string
	Count      int
	Percentage float64
}

// ThreatShares builds display rows. Server percentages are used as given;
// they are derived only when the server sent none at all for a non-empty set.
func ThreatShares(stats []models.ThreatStatistic) []ThreatShare {
	derive := true
	sum := 0
	for _, s := range stats {
		sum += s.Count
		if s.Percentage != 0 {
			derive = false
		}
	}
	derived := Percentages(stats)

	rows := make([]ThreatShare, len(stats))
	for i, s := range stats {
		pct := s.Percentage
		if derive && sum > 0 {
			pct = derived[i]
		}
		rows[i] = ThreatShare{
			ThreatType: s.ThreatType,
			Label:      ThreatLabel(s.ThreatType),
			Count:      s.Count,
			Percentage: pct,
		}
	}
	return rows
}

// IPRow is one display row of the offending IP ranking
type IPRow struct {
	Rank        int
	IP          string
	Count       int
	Share       float64
	ThreatTypes []string
	LastSeen    models.Timestamp
}

// IPRows numbers the ranking in server order. Share is relative to the listed entries.
func IPRows(ips []models.TopAttackIP) []IPRow {
	total := 0
	for _, ip := range ips {
		total += ip.Count
	}
	rows := make([]IPRow, len(ips))
	for i, ip := range ips {
		rows[i] = IPRow{
			Rank:        i + 1,
			IP:          ip.IP,
			Count:       ip.Count,
			Share:       Share(ip.Count, total),
			ThreatTypes: append([]string(nil), ip.ThreatTypes...),
			LastSeen:    ip.LastSeen,
		}
	}
	return rows
}

// TopN returns at most the first n items; n <= 0 returns none
func TopN[T any](items []T, n int) []T {
	if n <= 0 {
		return []T{}
	}
	if len(items) > n {
		items = items[:n]
	}
	return append([]T{}, items...)
}
