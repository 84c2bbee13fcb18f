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

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	exiterrors "github.com/kube-zen/zen-triage/cmd/triagectl/internal/errors"
	"github.com/kube-zen/zen-triage/cmd/triagectl/internal/output"
	"github.com/kube-zen/zen-triage/internal/consoletest"
	"github.com/kube-zen/zen-triage/pkg/api"
	"github.com/kube-zen/zen-triage/pkg/dashboard"
	"github.com/kube-zen/zen-triage/pkg/feed"
	"github.com/kube-zen/zen-triage/pkg/filter"
	"github.com/kube-zen/zen-triage/pkg/models"
)

func run(t *testing.T, console *consoletest.Console, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--api-url", console.URL(), "--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	return exiterrors.FromError(err).Code
}

func TestEventsListTable(t *testing.T) {
	console := consoletest.Start(t, consoletest.WithEvents(consoletest.Events(30)...))

	out, err := run(t, console, "events", "list", "--size", "10", "--page", "2")
	if err != nil {
		t.Fatalf("events list: %v", err)
	}
	if !strings.Contains(out, "Page 2 of 3, 30 event(s) total, 10 pending on this page") {
		t.Errorf("missing paging footer:\n%s", out)
	}
	if !strings.HasPrefix(out, "ID") {
		t.Errorf("expected table header first:\n%s", out)
	}
	q := console.RequestsFor("events.list")[0].Query
	if q.Get("page") != "2" || q.Get("size") != "10" {
		t.Errorf("unexpected query %v", q)
	}
}

func TestEventsListJSONWithFilters(t *testing.T) {
	console := consoletest.Start(t, consoletest.WithEvents(consoletest.Events(12)...))

	out, err := run(t, console, "-o", "json", "events", "list",
		"--threat-type", "sql_injection", "--keyword", "  ", "--start", "2024-01-01", "--end", "2024-01-31")
	if err != nil {
		t.Fatalf("events list: %v", err)
	}
	var page eventPage
	if err := json.Unmarshal([]byte(out), &page); err != nil {
		t.Fatalf("invalid json output: %v\n%s", err, out)
	}
	if page.Total != 2 || len(page.Events) != 2 {
		t.Fatalf("expected 2 sql_injection events, got total=%d len=%d", page.Total, len(page.Events))
	}
	for _, e := range page.Events {
		if e.ThreatType != models.ThreatSQLInjection {
			t.Errorf("unexpected threat type %s", e.ThreatType)
		}
	}

	q := console.RequestsFor("events.list")[0].Query
	if q.Get("startTime") != "2024-01-01" || q.Get("endTime") != "2024-01-31" {
		t.Errorf("date range not sent: %v", q)
	}
	if _, ok := q["keyword"]; ok {
		t.Error("blank keyword must not be sent")
	}
}

func TestEventsListExitCodes(t *testing.T) {
	tests := []struct {
		name    string
		failure *consoletest.Failure
		args    []string
		code    int
	}{
		{"invalid filter", nil, []string{"--severity", "urgent"}, exiterrors.ExitUsage},
		{"server error", &consoletest.Failure{HTTPStatus: 500}, nil, exiterrors.ExitTransport},
		{"rejected", &consoletest.Failure{Code: 400, Message: "bad filter"}, nil, exiterrors.ExitApplication},
		{"extra argument", nil, []string{"oops"}, exiterrors.ExitUsage},
		{"unknown flag", nil, []string{"--colour"}, exiterrors.ExitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			console := consoletest.Start(t, consoletest.WithEvents(consoletest.Events(3)...))
			if tt.failure != nil {
				console.Fail("events.list", *tt.failure)
			}
			_, err := run(t, console, append([]string{"events", "list"}, tt.args...)...)
			if got := exitCode(err); got != tt.code {
				t.Errorf("exit code = %d, want %d (err: %v)", got, tt.code, err)
			}
		})
	}
}

func TestEventsGet(t *testing.T) {
	console := consoletest.Start(t, consoletest.WithEvents(consoletest.Events(6)...))

	out, err := run(t, console, "events", "get", "2")
	if err != nil {
		t.Fatalf("events get: %v", err)
	}
	for _, want := range []string{"Source IP", "10.0.0.2", "XSS", "confirmed, false_positive"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	_, err = run(t, console, "events", "get", "999")
	if got := exitCode(err); got != exiterrors.ExitTransport {
		t.Errorf("unknown id exit code = %d, want %d", got, exiterrors.ExitTransport)
	}
}

func TestEventsStatus(t *testing.T) {
	console := consoletest.Start(t, consoletest.WithEvents(consoletest.Events(3)...))

	out, err := run(t, console, "events", "status", "3", "confirmed")
	if err != nil {
		t.Fatalf("events status: %v", err)
	}
	if !strings.Contains(out, "Event 3 marked Confirmed") {
		t.Errorf("unexpected output: %s", out)
	}
	if e, _ := console.Event("3"); e.Status != models.StatusConfirmed {
		t.Errorf("console status = %s", e.Status)
	}

	_, err = run(t, console, "events", "status", "3", "archived")
	if got := exitCode(err); got != exiterrors.ExitUsage {
		t.Errorf("invalid status exit code = %d", got)
	}
	if n := len(console.RequestsFor("events.update_status")); n != 1 {
		t.Errorf("invalid status must not reach the console, got %d requests", n)
	}
}

func TestEventsBatchAndDelete(t *testing.T) {
	console := consoletest.Start(t, consoletest.WithEvents(consoletest.Events(5)...))

	out, err := run(t, console, "events", "batch", "--action", "resolve", "1", "2")
	if err != nil {
		t.Fatalf("events batch: %v", err)
	}
	if !strings.Contains(out, "resolve: 2 event(s) processed") {
		t.Errorf("unexpected output: %s", out)
	}
	if e, _ := console.Event("1"); e.Status != models.StatusResolved {
		t.Errorf("event 1 status = %s", e.Status)
	}

	if _, err := run(t, console, "events", "delete", "5"); err != nil {
		t.Fatalf("events delete: %v", err)
	}
	if n := len(console.RequestsFor("events.list")); n != 1 {
		t.Errorf("delete should refresh the listing once, got %d list requests", n)
	}
	if _, err := run(t, console, "events", "delete", "3", "4"); err != nil {
		t.Fatalf("events delete batch: %v", err)
	}
	if console.Len() != 2 {
		t.Errorf("expected 2 remaining events, got %d", console.Len())
	}

	_, err = run(t, console, "events", "batch", "--action", "archive", "1")
	if got := exitCode(err); got != exiterrors.ExitUsage {
		t.Errorf("invalid action exit code = %d", got)
	}
}

func TestDashboardCommands(t *testing.T) {
	now := consoletest.Epoch.Add(30 * time.Hour)
	console := consoletest.Start(t,
		consoletest.WithClock(func() time.Time { return now }),
		consoletest.WithEvents(consoletest.Events(36)...))

	out, err := run(t, console, "dashboard", "summary")
	if err != nil {
		t.Fatalf("dashboard summary: %v", err)
	}
	for _, want := range []string{"TODAY ATTACKS", "Threat distribution", "Recent events", "SQL injection"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in summary:\n%s", want, out)
		}
	}

	out, err = run(t, console, "-o", "json", "dashboard", "top-ips", "--limit", "2", "--start", "2024-01-01", "--end", "2024-01-31")
	if err != nil {
		t.Fatalf("top-ips: %v", err)
	}
	var ips []models.TopAttackIP
	if err := json.Unmarshal([]byte(out), &ips); err != nil || len(ips) != 2 {
		t.Errorf("expected 2 ips, got %v (%v)", ips, err)
	}

	out, err = run(t, console, "dashboard", "trends", "--start", "2024-01-01", "--end", "2024-01-02")
	if err != nil {
		t.Fatalf("trends: %v", err)
	}
	if !strings.Contains(out, "2024-01-01") {
		t.Errorf("missing bucket in trends:\n%s", out)
	}

	tests := []struct {
		name string
		args []string
	}{
		{"bad granularity", []string{"dashboard", "trends", "--granularity", "month"}},
		{"zero limit", []string{"dashboard", "top-ips", "--limit", "0"}},
		{"bad report type", []string{"report", "--type", "yearly"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, console, tt.args...)
			if got := exitCode(err); got != exiterrors.ExitUsage {
				t.Errorf("exit code = %d, want %d", got, exiterrors.ExitUsage)
			}
		})
	}
}

func TestMonitorAndReport(t *testing.T) {
	console := consoletest.Start(t, consoletest.WithEvents(consoletest.Events(4)...))
	console.SetHealth(models.SystemHealth{
		Status:     models.HealthWarning,
		Components: []models.ComponentHealth{{Name: "detector", Status: models.HealthWarning, Message: "lagging"}},
	})

	out, err := run(t, console, "monitor", "health")
	if err != nil {
		t.Fatalf("monitor health: %v", err)
	}
	if !strings.Contains(out, "Overall: Warning") || !strings.Contains(out, "lagging") {
		t.Errorf("unexpected health output:\n%s", out)
	}

	out, err = run(t, console, "monitor", "realtime")
	if err != nil {
		t.Fatalf("monitor realtime: %v", err)
	}
	if !strings.Contains(out, "Current attacks") {
		t.Errorf("unexpected realtime output:\n%s", out)
	}

	out, err = run(t, console, "-o", "yaml", "report", "--type", "weekly", "--start", "2024-01-01", "--end", "2024-01-07")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(out, "reportid:") {
		t.Errorf("unexpected report output:\n%s", out)
	}
}

func TestWatchRequiresFeedURL(t *testing.T) {
	console := consoletest.Start(t)
	t.Setenv("TRIAGE_NATS_URL", "")
	_, err := run(t, console, "watch")
	if got := exitCode(err); got != exiterrors.ExitUsage {
		t.Errorf("exit code = %d, want %d", got, exiterrors.ExitUsage)
	}
}

func TestWatchHandlers(t *testing.T) {
	console := consoletest.Start(t, consoletest.WithEvents(consoletest.Events(3)...))
	client, err := api.NewClient(console.URL(), console.Client(), nil)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	s := &session{
		printer: output.NewPrinter(output.FormatTable, &buf),
		now:     func() time.Time { return consoletest.Epoch },
	}
	vm := dashboard.NewViewModel(api.NewStatisticsClient(client), dashboard.WithRecentLimit(3))
	p, err := feed.NewProcessor(watchHandlers(context.Background(), s, vm, nil))
	if err != nil {
		t.Fatal(err)
	}

	event := `{"type":"new_event","timestamp":"2024-01-01T00:00:00Z","data":{"id":"9","sourceIp":"10.9.9.9","threatType":"brute_force","severityLevel":"critical","status":"pending","httpMethod":"POST","targetUrl":"/login"}}`
	for i := 0; i < 2; i++ {
		if _, err := p.Process([]byte(event)); err != nil {
			t.Fatalf("process: %v", err)
		}
	}
	if _, err := p.Process([]byte(`{"type":"stats_update","timestamp":"t","data":{}}`)); err != nil {
		t.Fatalf("process stats: %v", err)
	}
	if _, err := p.Process([]byte(`{"type":"system_alert","timestamp":"t","data":{"level":"error","message":"down","component":"detector"}}`)); err != nil {
		t.Fatalf("process alert: %v", err)
	}

	out := buf.String()
	if n := strings.Count(out, "NEW"); n != 1 {
		t.Errorf("expected one NEW line, got %d:\n%s", n, out)
	}
	for _, want := range []string{"Brute force", "10.9.9.9", "STATS  today=", "ALERT  [error] detector: down"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if recent := vm.RecentEvents(); len(recent) == 0 {
		t.Error("stats update should reload the recent events")
	}
}

func TestVersion(t *testing.T) {
	console := consoletest.Start(t)
	out, err := run(t, console, "version")
	if err != nil || !strings.HasPrefix(out, "triagectl version") {
		t.Errorf("version output %q (%v)", out, err)
	}
}

func TestWatchRejectsBadFilter(t *testing.T) {
	console := consoletest.Start(t)
	_, err := run(t, console, "watch", "--nats-url", "nats://127.0.0.1:1", "--filter", "severity >=")
	if got := exitCode(err); got != exiterrors.ExitUsage {
		t.Errorf("exit code = %d, want %d", got, exiterrors.ExitUsage)
	}
}

func TestWatchHandlersFilter(t *testing.T) {
	console := consoletest.Start(t)
	client, err := api.NewClient(console.URL(), console.Client(), nil)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	s := &session{
		printer: output.NewPrinter(output.FormatTable, &buf),
		now:     func() time.Time { return consoletest.Epoch },
	}
	vm := dashboard.NewViewModel(api.NewStatisticsClient(client))
	match, err := filter.Compile("is_critical")
	if err != nil {
		t.Fatal(err)
	}
	h := watchHandlers(context.Background(), s, vm, match)

	h.NewEvent(models.EventRecord{ID: "1", SourceIP: "10.1.1.1", SeverityLevel: models.SeverityLow})
	h.NewEvent(models.EventRecord{ID: "2", SourceIP: "10.2.2.2", SeverityLevel: models.SeverityCritical})

	out := buf.String()
	if strings.Contains(out, "10.1.1.1") || !strings.Contains(out, "10.2.2.2") {
		t.Errorf("filter not applied:\n%s", out)
	}
	if n := len(vm.RecentEvents()); n != 2 {
		t.Errorf("view model should see every event, got %d", n)
	}
}
