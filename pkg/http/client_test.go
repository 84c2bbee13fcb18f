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

package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kube-zen/zen-triage/pkg/logger"
)

func TestDefaultHTTPClientConfigFromEnv(t *testing.T) {
	t.Setenv("TRIAGE_TIMEOUT", "5s")
	t.Setenv("TRIAGE_HTTP_MAX_CONNS_PER_HOST", "not-a-number")

	cfg := DefaultHTTPClientConfig()
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.MaxConnsPerHost != 10 {
		t.Errorf("MaxConnsPerHost = %d, want default 10", cfg.MaxConnsPerHost)
	}
	if cfg.ServiceName != "zen-triage" {
		t.Errorf("ServiceName = %q", cfg.ServiceName)
	}
}

func TestDoPropagatesRequestID(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(RequestIDHeader)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewHardenedHTTPClient(&HTTPClientConfig{Timeout: time.Second, LoggingEnabled: false})
	defer c.CloseIdleConnections()

	ctx := logger.WithCorrelationID(context.Background(), "corr-7")
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	resp.Body.Close()
	if seen != "corr-7" {
		t.Errorf("request id = %q, want corr-7", seen)
	}

	req, _ = http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	resp, err = c.Do(req)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	resp.Body.Close()
	if len(seen) != 36 {
		t.Errorf("expected a generated uuid, got %q", seen)
	}
}

func TestRateLimitHonoursContext(t *testing.T) {
	c := NewHardenedHTTPClient(&HTTPClientConfig{
		Timeout:          time.Second,
		RateLimitEnabled: true,
		RateLimitRPS:     0.001,
		RateLimitBurst:   1,
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("first request should pass the burst: %v", err)
	}
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	req, _ = http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	if _, err := c.Do(req); err == nil {
		t.Error("expected the limiter to give up when the context expires")
	}
}
