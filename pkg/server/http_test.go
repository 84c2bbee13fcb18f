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

package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kube-zen/zen-triage/pkg/metrics"
)

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, _ := io.ReadAll(rec.Body)
	return rec.Code, string(body)
}

func TestHealthAndReadiness(t *testing.T) {
	s := NewServer(":0", prometheus.NewRegistry())
	h := s.Handler()

	tests := []struct {
		name   string
		path   string
		ready  bool
		status int
		body   string
	}{
		{"health", "/health", false, http.StatusOK, "healthy"},
		{"not ready", "/ready", false, http.StatusServiceUnavailable, "not ready"},
		{"ready", "/ready", true, http.StatusOK, "ready"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.SetReady(tt.ready)
			code, body := get(t, h, tt.path)
			if code != tt.status || body != tt.body {
				t.Errorf("GET %s = %d %q, want %d %q", tt.path, code, body, tt.status, tt.body)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	m.ObserveFetch(metrics.OutcomeStale)

	code, body := get(t, NewServer(":0", reg).Handler(), "/metrics")
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if !strings.Contains(body, `zen_triage_store_fetches_total{outcome="stale"} 1`) {
		t.Errorf("Expected store fetch counter in output, got:\n%s", body)
	}
}

func TestStartAndShutdown(t *testing.T) {
	s := NewServer("127.0.0.1:0", prometheus.NewRegistry())
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	if err := s.Start(ctx, &wg); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	cancel()
	wg.Wait()
}

func TestStartRejectsBadAddress(t *testing.T) {
	s := NewServer("256.0.0.1:bad", prometheus.NewRegistry())
	var wg sync.WaitGroup
	if err := s.Start(context.Background(), &wg); err == nil {
		t.Error("Expected listen error")
	}
}
