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
	"fmt"
	"strconv"
	"time"

	"github.com/kube-zen/zen-triage/pkg/models"
)

// Epoch is the detection time of the first generated event
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

var payloads = map[models.ThreatType]struct{ url, payload string }{
	models.ThreatSQLInjection:     {"/login?user=admin'--", "admin'--"},
	models.ThreatXSS:              {"/search?q=<script>alert(1)</script>", "<script>alert(1)</script>"},
	models.ThreatCommandInjection: {"/ping?host=127.0.0.1;cat+/etc/passwd", ";cat /etc/passwd"},
	models.ThreatPathTraversal:    {"/download?file=../../etc/shadow", "../../etc/shadow"},
	models.ThreatBruteForce:       {"/login", "password=123456"},
	models.ThreatOther:            {"/admin", ""},
}

// Events generates n deterministic events, one per hour from Epoch.
// Threat types, severities and source IPs cycle; every event is pending.
func Events(n int) []models.EventRecord {
	threats := models.ThreatTypes()
	severities := models.SeverityLevels()
	out := make([]models.EventRecord, 0, n)
	for i := 0; i < n; i++ {
		detected := Epoch.Add(time.Duration(i) * time.Hour)
		threat := threats[i%len(threats)]
		p := payloads[threat]
		out = append(out, models.EventRecord{
			ID:            strconv.Itoa(i + 1),
			EventID:       fmt.Sprintf("EVT-%s-%04d", detected.Format("20060102"), i+1),
			SourceIP:      fmt.Sprintf("10.0.0.%d", i%5+1),
			TargetURL:     p.url,
			HTTPMethod:    "GET",
			UserAgent:     "sqlmap/1.7",
			ThreatType:    threat,
			SeverityLevel: severities[i%len(severities)],
			DetectionTime: models.NewTimestamp(detected),
			RawRequest:    "GET " + p.url + " HTTP/1.1",
			AttackPayload: p.payload,
			Status:        models.StatusPending,
			CreatedAt:     models.NewTimestamp(detected.Add(time.Second)),
			UpdatedAt:     models.NewTimestamp(detected.Add(time.Second)),
		})
	}
	return out
}
