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

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kube-zen/zen-triage/pkg/models"
)

func TestShare(t *testing.T) {
	tests := []struct {
		part, total int
		want        float64
	}{
		{1, 4, 25},
		{0, 0, 0},
		{3, 0, 0},
		{2, -1, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Share(tt.part, tt.total), 1e-9, "Share(%d, %d)", tt.part, tt.total)
	}
}

func TestPercentages(t *testing.T) {
	stats := []models.ThreatStatistic{
		{ThreatType: models.ThreatXSS, Count: 1},
		{ThreatType: models.ThreatOther, Count: 3},
	}
	assert.InDeltaSlice(t, []float64{25, 75}, Percentages(stats), 1e-9)

	zero := []models.ThreatStatistic{{ThreatType: models.ThreatXSS}, {ThreatType: models.ThreatOther}}
	assert.Equal(t, []float64{0, 0}, Percentages(zero))
	assert.Empty(t, Percentages(nil))
}

func TestThreatSharesPreferServerPercentages(t *testing.T) {
	stats := []models.ThreatStatistic{
		{ThreatType: models.ThreatSQLInjection, Count: 1, Percentage: 33},
		{ThreatType: models.ThreatXSS, Count: 2, Percentage: 67},
	}
	rows := ThreatShares(stats)
	assert.Equal(t, 33.0, rows[0].Percentage)
	assert.Equal(t, "SQL injection", rows[0].Label)
	assert.Equal(t, 67.0, rows[1].Percentage)

	missing := []models.ThreatStatistic{
		{ThreatType: models.ThreatSQLInjection, Count: 1},
		{ThreatType: models.ThreatXSS, Count: 3},
	}
	rows = ThreatShares(missing)
	assert.InDelta(t, 25, rows[0].Percentage, 1e-9)
	assert.InDelta(t, 75, rows[1].Percentage, 1e-9)

	empty := ThreatShares([]models.ThreatStatistic{{ThreatType: models.ThreatOther}})
	assert.Equal(t, 0.0, empty[0].Percentage)
}

func TestIPRows(t *testing.T) {
	rows := IPRows([]models.TopAttackIP{
		{IP: "10.0.0.9", Count: 3},
		{IP: "10.0.0.1", Count: 1},
	})
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, "10.0.0.9", rows[0].IP)
	assert.InDelta(t, 75, rows[0].Share, 1e-9)
	assert.Equal(t, 2, rows[1].Rank)
	assert.Empty(t, IPRows(nil))
}

func TestTopN(t *testing.T) {
	items := []int{5, 4, 3}
	assert.Equal(t, []int{5, 4}, TopN(items, 2))
	assert.Equal(t, []int{5, 4, 3}, TopN(items, 10))
	assert.Equal(t, []int{}, TopN(items, 0))

	got := TopN(items, 1)
	got[0] = 99
	assert.Equal(t, 5, items[0], "TopN copies")
}

func TestBadges(t *testing.T) {
	assert.Equal(t, Badge{"Critical", ToneDanger}, SeverityBadge(models.SeverityCritical))
	assert.Equal(t, ToneSuccess, SeverityBadge(models.SeverityLow).Tone)
	assert.Equal(t, ToneWarning, StatusBadge(models.StatusPending).Tone)
	assert.Equal(t, ToneDanger, StatusBadge(models.StatusConfirmed).Tone)
	assert.Equal(t, ToneSuccess, SystemStatusBadge(models.SystemNormal).Tone)
	assert.Equal(t, ToneDanger, HealthBadge(models.HealthError).Tone)
	assert.Equal(t, Badge{"archived", ToneNeutral}, StatusBadge("archived"))
	assert.Equal(t, "Brute force", ThreatLabel(models.ThreatBruteForce))
	assert.Equal(t, "zero_day", ThreatLabel("zero_day"))

	for _, tt := range models.ThreatTypes() {
		assert.NotEqual(t, string(tt), ThreatLabel(tt), "every threat type has a label")
	}
}
