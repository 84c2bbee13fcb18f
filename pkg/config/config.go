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
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	zerrors "github.com/kube-zen/zen-triage/pkg/errors"
	zhttp "github.com/kube-zen/zen-triage/pkg/http"
)

// Config holds the client configuration
type Config struct {
	API       APIConfig       `yaml:"api"`
	Paging    PagingConfig    `yaml:"paging"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Feed      FeedConfig      `yaml:"feed"`
	LogLevel  string          `yaml:"logLevel"`
}

// APIConfig configures the console transport
type APIConfig struct {
	BaseURL         string        `yaml:"baseURL"`
	Timeout         time.Duration `yaml:"timeout"`
	RateLimitRPS    float64       `yaml:"rateLimitRPS"`
	InsecureTLS     bool          `yaml:"insecureTLS"`
	LogRequests     bool          `yaml:"logRequests"`
	MaxConnsPerHost int           `yaml:"maxConnsPerHost"`
}

// PagingConfig bounds event list pages
type PagingConfig struct {
	PageSize    int `yaml:"pageSize"`
	MaxPageSize int `yaml:"maxPageSize"`
}

// DashboardConfig configures the dashboard view model
type DashboardConfig struct {
	RecentEvents int `yaml:"recentEvents"`
}

// FeedConfig configures the NATS live feed. An empty URL disables it.
type FeedConfig struct {
	NATSURL   string `yaml:"natsURL"`
	Subject   string `yaml:"subject"`
	DedupSize int    `yaml:"dedupSize"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:         DefaultBaseURL,
			Timeout:         DefaultTimeout,
			LogRequests:     true,
			MaxConnsPerHost: 10,
		},
		Paging: PagingConfig{
			PageSize:    DefaultPageSize,
			MaxPageSize: DefaultMaxPageSize,
		},
		Dashboard: DashboardConfig{RecentEvents: DefaultRecentEvents},
		Feed: FeedConfig{
			Subject:   DefaultFeedSubject,
			DedupSize: DefaultFeedDedupSize,
		},
		LogLevel: "INFO",
	}
}

// Load reads the optional YAML file at path over the defaults, applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, zerrors.NewConfigError("config.load", "cannot read config file "+path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, zerrors.NewConfigError("config.load", "invalid config file "+path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	const op = "config.env"

	if v, ok := lookup(EnvAPIURL); ok && v != "" {
		c.API.BaseURL = v
	}
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return zerrors.NewConfigError(op, "invalid "+EnvTimeout, err)
		}
		c.API.Timeout = d
	}
	if v, ok := lookup(EnvPageSize); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return zerrors.NewConfigError(op, "invalid "+EnvPageSize, err)
		}
		c.Paging.PageSize = n
	}
	if v, ok := lookup(EnvMaxPageSize); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return zerrors.NewConfigError(op, "invalid "+EnvMaxPageSize, err)
		}
		c.Paging.MaxPageSize = n
	}
	if v, ok := lookup(EnvRateLimitRPS); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return zerrors.NewConfigError(op, "invalid "+EnvRateLimitRPS, err)
		}
		c.API.RateLimitRPS = f
	}
	if v, ok := lookup(EnvNATSURL); ok {
		c.Feed.NATSURL = v
	}
	if v, ok := lookup(EnvFeedSubject); ok && v != "" {
		c.Feed.Subject = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks the configuration for values the client cannot work with
func (c *Config) Validate() error {
	const op = "config.validate"

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return zerrors.NewConfigError(op, fmt.Sprintf("api base URL %q must be an absolute http(s) URL", c.API.BaseURL), err)
	}
	if c.API.Timeout <= 0 {
		return zerrors.NewConfigError(op, "api timeout must be positive", nil)
	}
	if c.API.RateLimitRPS < 0 {
		return zerrors.NewConfigError(op, "rate limit must not be negative", nil)
	}
	if c.Paging.MaxPageSize < 1 {
		return zerrors.NewConfigError(op, "max page size must be at least 1", nil)
	}
	if c.Paging.PageSize < 1 || c.Paging.PageSize > c.Paging.MaxPageSize {
		return zerrors.NewConfigError(op,
			fmt.Sprintf("page size %d must be within [1, %d]", c.Paging.PageSize, c.Paging.MaxPageSize), nil)
	}
	if c.Dashboard.RecentEvents < 1 {
		return zerrors.NewConfigError(op, "recent events bound must be at least 1", nil)
	}
	if c.Feed.NATSURL != "" && strings.TrimSpace(c.Feed.Subject) == "" {
		return zerrors.NewConfigError(op, "feed subject is required when a NATS URL is set", nil)
	}
	return nil
}

// HTTPClientConfig derives the transport configuration
func (c *Config) HTTPClientConfig() *zhttp.HTTPClientConfig {
	hc := zhttp.DefaultHTTPClientConfig()
	hc.Timeout = c.API.Timeout
	hc.TLSInsecureSkipVerify = c.API.InsecureTLS
	hc.LoggingEnabled = c.API.LogRequests
	if c.API.MaxConnsPerHost > 0 {
		hc.MaxConnsPerHost = c.API.MaxConnsPerHost
	}
	if c.API.RateLimitRPS > 0 {
		hc.RateLimitEnabled = true
		hc.RateLimitRPS = c.API.RateLimitRPS
		hc.RateLimitBurst = int(c.API.RateLimitRPS) + 1
	}
	return hc
}
