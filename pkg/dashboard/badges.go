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

// Tone is the visual weight of a badge
type Tone string

const (
	ToneDanger  Tone = "danger"
	ToneWarning Tone = "warning"
	ToneInfo    Tone = "info"
	ToneSuccess Tone = "success"
	ToneNeutral Tone = "neutral"
)

// Badge is a label with a tone
type Badge struct {
	Label string `json:"label"`
	Tone  Tone   `json:"tone"`
}

func (b Badge) String() string { return b.Label }

var severityBadges = map[models.SeverityLevel]Badge{
	models.SeverityCritical: {"Critical", ToneDanger},
	models.SeverityHigh:     {"High", ToneWarning},
	models.SeverityMedium:   {"Medium", ToneInfo},
	models.SeverityLow:      {"Low", ToneSuccess},
}

var statusBadges = map[models.EventStatus]Badge{
	models.StatusPending:       {"Pending", ToneWarning},
	models.StatusConfirmed:     {"Confirmed", ToneDanger},
	models.StatusFalsePositive: {"False positive", ToneInfo},
	models.StatusResolved:      {"Resolved", ToneSuccess},
}

var systemBadges = map[models.SystemStatus]Badge{
	models.SystemNormal:  {"Normal", ToneSuccess},
	models.SystemWarning: {"Warning", ToneWarning},
	models.SystemError:   {"Error", ToneDanger},
}

var healthBadges = map[models.HealthStatus]Badge{
	models.HealthHealthy: {"Healthy", ToneSuccess},
	models.HealthWarning: {"Warning", ToneWarning},
	models.HealthError:   {"Error", ToneDanger},
}

var threatLabels = map[models.ThreatType]string{
	models.ThreatSQLInjection:     "SQL injection",
	models.ThreatXSS:              "XSS",
	models.ThreatCommandInjection: "Command injection",
	models.ThreatPathTraversal:    "Path traversal",
	models.ThreatBruteForce:       "Brute force",
	models.ThreatOther:            "Other",
}

// SeverityBadge returns the badge for s; unknown values show verbatim
func SeverityBadge(s models.SeverityLevel) Badge { return lookup(severityBadges, s) }

// StatusBadge returns the badge for s
func StatusBadge(s models.EventStatus) Badge { return lookup(statusBadges, s) }

// SystemStatusBadge returns the badge for s
func SystemStatusBadge(s models.SystemStatus) Badge { return lookup(systemBadges, s) }

// HealthBadge returns the badge for s
func HealthBadge(s models.HealthStatus) Badge { return lookup(healthBadges, s) }

// ThreatLabel returns the display name of t
func ThreatLabel(t models.ThreatType) string {
	if label, ok := threatLabels[t]; ok {
		return label
	}
	return string(t)
}

func lookup[K ~string](badges map[K]Badge, k K) Badge {
	if b, ok := badges[k]; ok {
		return b
	}
	return Badge{Label: string(k), Tone: ToneNeutral}
}
