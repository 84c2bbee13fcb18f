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

package filter

import (
	"testing"
	"time"

	zerrors "github.com/kube-zen/zen-triage/pkg/errors"
	"github.com/kube-zen/zen-triage/pkg/models"
)

func sampleEvent() models.EventRecord {
	return models.EventRecord{
		ID:            "42",
		SourceIP:      "10.0.0.7",
		TargetURL:     "/api/login?user=admin",
		HTTPMethod:    "POST",
		ThreatType:    models.ThreatSQLInjection,
		SeverityLevel: models.SeverityHigh,
		Status:        models.StatusPending,
		DetectionTime: models.NewTimestamp(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)),
	}
}

func TestExpressionMatch(t *testing.T) {
	e := sampleEvent()

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"equality", `threatType = "sql_injection"`, true},
		{"equality ignores case", `httpMethod = "post"`, true},
		{"inequality", `status != pending`, false},
		{"severity rank at least", `severityLevel >= medium`, true},
		{"severity rank below", `severity < "high"`, false},
		{"severity rank above critical", `severity > critical`, false},
		{"in list", `threatType IN [xss, sql_injection]`, true},
		{"not in list", `threatType NOT IN [xss, brute_force]`, true},
		{"contains", `targetUrl CONTAINS "LOGIN"`, true},
		{"starts with", `sourceIp STARTS_WITH "10."`, true},
		{"ends with", `url ENDS_WITH "root"`, false},
		{"exists", `sourceIp EXISTS`, true},
		{"not exists", `aiAnalysis NOT EXISTS`, true},
		{"and", `is_pending AND severity >= high`, true},
		{"or", `is_critical OR method = GET`, false},
		{"not", `NOT is_critical`, true},
		{"grouping", `(is_critical OR is_high) AND NOT status IN [resolved]`, true},
		{"open macro", `is_open`, true},
		{"numeric id", `id >= 40`, true},
		{"timestamp ordering", `detectionTime > "2024-01-01T00:00:00Z"`, true},
		{"literal true", `true`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, err := Compile(tt.expr)
			if err != nil {
				t.Fatalf("Compile(%q): %v", tt.expr, err)
			}
			if got := x.Match(e); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []string{
		`severity =`,
		`severity = "high`,
		`bogus = 1`,
		`is_nothing`,
		`(is_high`,
		`severity IN "high"`,
		`threatType IN [xss`,
		`severity high`,
		`status = pending extra`,
		`severity ! high`,
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			_, err := Compile(src)
			if err == nil {
				t.Fatalf("Compile(%q) should fail", src)
			}
			if !zerrors.IsValidation(err) {
				t.Errorf("expected a validation error, got %v", err)
			}
		})
	}
}

func TestEmptyExpressionMatchesAll(t *testing.T) {
	x, err := Compile("   ")
	if err != nil {
		t.Fatal(err)
	}
	if x != nil {
		t.Fatalf("expected nil expression, got %v", x)
	}
	if !x.Match(models.EventRecord{}) {
		t.Error("nil expression should match")
	}
	if x.String() != "" {
		t.Errorf("String() = %q", x.String())
	}
}

func TestResolveField(t *testing.T) {
	for _, name := range Fields() {
		got, ok := resolveField(name)
		if !ok || got != name {
			t.Errorf("resolveField(%q) = %q, %v", name, got, ok)
		}
	}
	if got, _ := resolveField("SOURCEIP"); got != "sourceIp" {
		t.Errorf("case-insensitive lookup failed: %q", got)
	}
	if got, _ := resolveField("severity"); got != "severityLevel" {
		t.Errorf("alias lookup failed: %q", got)
	}
}
