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
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/kube-zen/zen-triage/pkg/logger"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries the correlation id to the console
const RequestIDHeader = "X-Request-ID"

// HTTPClientConfig holds configuration for HTTP clients
type HTTPClientConfig struct {
	Timeout               time.Duration
	MaxIdleConns          int
	MaxConnsPerHost       int
	IdleConnTimeout       time.Duration
	DisableKeepAlives     bool
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration
	// TLS configuration
	TLSInsecureSkipVerify bool
	TLSClientConfig       *tls.Config
	// Rate limiting
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
	// Logging
	LoggingEnabled bool
	ServiceName    string
}

// DefaultHTTPClientConfig returns a default HTTP client configuration
func DefaultHTTPClientConfig() *HTTPClientConfig {
	return &HTTPClientConfig{
		Timeout:               getEnvDuration("TRIAGE_TIMEOUT", 30*time.Second),
		MaxIdleConns:          getEnvInt("TRIAGE_HTTP_MAX_IDLE_CONNS", 100),
		MaxConnsPerHost:       getEnvInt("TRIAGE_HTTP_MAX_CONNS_PER_HOST", 10),
		IdleConnTimeout:       getEnvDuration("TRIAGE_HTTP_IDLE_CONN_TIMEOUT", 90*time.Second),
		DisableKeepAlives:     false,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		TLSInsecureSkipVerify: false,
		RateLimitEnabled:      false,
		RateLimitRPS:          10.0,
		RateLimitBurst:        10,
		LoggingEnabled:        true,
		ServiceName:           "zen-triage",
	}
}

// HardenedHTTPClient wraps http.Client with connection pooling, rate limiting and request ids
type HardenedHTTPClient struct {
	client    *http.Client
	config    *HTTPClientConfig
	limiter   *rate.Limiter
	transport *http.Transport
	service   string
}

// NewHardenedHTTPClient creates a new hardened HTTP client with proper defaults
func NewHardenedHTTPClient(config *HTTPClientConfig) *HardenedHTTPClient {
	if config == nil {
		config = DefaultHTTPClientConfig()
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          config.MaxIdleConns,
		MaxConnsPerHost:       config.MaxConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		DisableKeepAlives:     config.DisableKeepAlives,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		ResponseHeaderTimeout: config.ResponseHeaderTimeout,
	}

	if config.TLSClientConfig != nil {
		transport.TLSClientConfig = config.TLSClientConfig
	} else if config.TLSInsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for lab consoles
	}

	var limiter *rate.Limiter
	if config.RateLimitEnabled && config.RateLimitRPS > 0 {
		burst := config.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RateLimitRPS), burst)
	}

	serviceName := config.ServiceName
	if serviceName == "" {
		serviceName = "zen-triage"
	}

	return &HardenedHTTPClient{
		client:    &http.Client{Transport: transport, Timeout: config.Timeout},
		config:    config,
		limiter:   limiter,
		transport: transport,
		service:   serviceName,
	}
}

// Do performs an HTTP request with rate limiting, request id propagation and logging
func (c *HardenedHTTPClient) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait failed: %w", err)
		}
	}

	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, RequestID(ctx))
	}

	if c.config.LoggingEnabled {
		logger.Debug("HTTP request",
			logger.Fields{
				Component:     "http_client",
				Operation:     "http_request",
				CorrelationID: req.Header.Get(RequestIDHeader),
				Additional: map[string]interface{}{
					"method":  req.Method,
					"url":     req.URL.String(),
					"service": c.service,
				},
			})
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(start)

	if err != nil {
		if c.config.LoggingEnabled && ctx.Err() == nil {
			logger.Warn("HTTP request failed",
				logger.Fields{
					Component:     "http_client",
					Operation:     "http_request",
					CorrelationID: req.Header.Get(RequestIDHeader),
					Error:         err,
					Duration:      duration.String(),
					Additional: map[string]interface{}{
						"method":  req.Method,
						"url":     req.URL.String(),
						"service": c.service,
					},
				})
		}
		return nil, err
	}

	if c.config.LoggingEnabled {
		logger.Debug("HTTP response",
			logger.Fields{
				Component:     "http_client",
				Operation:     "http_response",
				CorrelationID: req.Header.Get(RequestIDHeader),
				Duration:      duration.String(),
				Additional: map[string]interface{}{
					"method":      req.Method,
					"url":         req.URL.String(),
					"status_code": resp.StatusCode,
					"service":     c.service,
				},
			})
	}

	return resp, nil
}

// RequestID returns the context correlation id, or a fresh uuid
func RequestID(ctx context.Context) string {
	if id := logger.GetCorrelationID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

// CloseIdleConnections closes all idle connections
func (c *HardenedHTTPClient) CloseIdleConnections() {
	if c.transport != nil {
		c.transport.CloseIdleConnections()
	}
}

// Helper functions

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultValue
}
