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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	zerrors "github.com/kube-zen/zen-triage/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Paging.PageSize != 20 || cfg.Paging.MaxPageSize != 100 {
		t.Errorf("paging = %+v", cfg.Paging)
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("timeout = %v", cfg.API.Timeout)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "triage.yaml")
	content := `
api:
  baseURL: https://console.example.com/api
  timeout: 10s
paging:
  pageSize: 50
feed:
  natsURL: nats://127.0.0.1:4222
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvPageSize, "25")
	t.Setenv(EnvFeedSubject, "waf.events")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.BaseURL != "https://console.example.com/api" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v", cfg.API.Timeout)
	}
	if cfg.Paging.PageSize != 25 {
		t.Errorf("env should override file page size, got %d", cfg.Paging.PageSize)
	}
	if cfg.Feed.Subject != "waf.events" || cfg.Feed.NATSURL != "nats://127.0.0.1:4222" {
		t.Errorf("feed = %+v", cfg.Feed)
	}
}

func TestApplyEnvRejectsGarbage(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{EnvTimeout, "soon"},
		{EnvPageSize, "twenty"},
		{EnvMaxPageSize, "1e3"},
		{EnvRateLimitRPS, "fast"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cfg := Default()
			lookup := func(k string) (string, bool) {
				if k == tt.key {
					return tt.value, true
				}
				return "", false
			}
			err := cfg.applyEnv(lookup)
			if zerrors.CategoryOf(err) != zerrors.CONFIG_ERROR {
				t.Errorf("expected a config error, got %v", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative url", func(c *Config) { c.API.BaseURL = "/api" }},
		{"ftp url", func(c *Config) { c.API.BaseURL = "ftp://host/api" }},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }},
		{"page over max", func(c *Config) { c.Paging.PageSize = 101 }},
		{"zero page", func(c *Config) { c.Paging.PageSize = 0 }},
		{"negative rate", func(c *Config) { c.API.RateLimitRPS = -1 }},
		{"no recent events", func(c *Config) { c.Dashboard.RecentEvents = 0 }},
		{"feed without subject", func(c *Config) { c.Feed.NATSURL = "nats://x"; c.Feed.Subject = " " }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation to fail")
			}
		})
	}
}

func TestHTTPClientConfig(t *testing.T) {
	cfg := Default()
	cfg.API.RateLimitRPS = 4
	cfg.API.Timeout = 3 * time.Second

	hc := cfg.HTTPClientConfig()
	if !hc.RateLimitEnabled || hc.RateLimitRPS != 4 || hc.RateLimitBurst != 5 {
		t.Errorf("rate limit = %v/%v/%v", hc.RateLimitEnabled, hc.RateLimitRPS, hc.RateLimitBurst)
	}
	if hc.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v", hc.Timeout)
	}
}
