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

// Package api is the HTTP client for the security console's /v1 routes.
// Every response is wrapped in an Envelope; only code 200 carries data.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	zerrors "github.com/kube-zen/zen-triage/pkg/errors"
	"github.com/kube-zen/zen-triage/pkg/logger"
	"github.com/kube-zen/zen-triage/pkg/metrics"
)

// SuccessCode is the envelope code of a successful response
const SuccessCode = 200

// maxErrorBody caps how much of a failed response is read for logging
const maxErrorBody = 4 << 10

// Envelope wraps every console response
type Envelope struct {
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
}

// Doer sends HTTP requests. *http.Client and the hardened client both satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client performs enveloped JSON requests against the console
type Client struct {
	baseURL *url.URL
	doer    Doer
	metrics *metrics.Metrics
}

// NewClient creates a client rooted at baseURL, e.g. http://host:8000/api
func NewClient(baseURL string, doer Doer, m *metrics.Metrics) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, zerrors.NewConfigError("api.new", "invalid base URL", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, zerrors.NewConfigError("api.new", fmt.Sprintf("base URL %q must be absolute", baseURL), nil)
	}
	if doer == nil {
		doer = http.DefaultClient
	}
	return &Client{baseURL: u, doer: doer, metrics: m}, nil
}

// BaseURL returns the configured API root
func (c *Client) BaseURL() string { return c.baseURL.String() }

// endpoint joins the base URL and an already escaped path
func (c *Client) endpoint(path string, params url.Values) string {
	u := *c.baseURL
	u.RawPath = c.baseURL.EscapedPath() + path
	if unescaped, err := url.PathUnescape(u.RawPath); err == nil {
		u.Path = unescaped
	}
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	return u.String()
}

// do sends one request and decodes the envelope's data into out (if non-nil).
// Failures are TRANSPORT_ERROR (no response or non-2xx status) or
// APPLICATION_ERROR (envelope code other than 200, or an undecodable body).
func (c *Client) do(ctx context.Context, op, method, path string, params url.Values, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return zerrors.NewValidationError(op, "cannot encode request body", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, params), reader)
	if err != nil {
		return zerrors.NewValidationError(op, "cannot build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(op, method, 0, time.Since(start))
		return zerrors.NewTransportError(op, 0, err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveRequest(op, method, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		logger.Debug("Console returned an HTTP error",
			logger.Fields{
				Component: "api",
				Operation: op,
				Endpoint:  path,
				Reason:    strings.TrimSpace(string(snippet)),
				Additional: map[string]interface{}{
					"status_code": resp.StatusCode,
				},
			})
		return zerrors.NewTransportError(op, resp.StatusCode, nil)
	}

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		ae := zerrors.NewApplicationError(op, 0, "malformed response")
		ae.OriginalErr = err
		return ae
	}
	if env.Code != SuccessCode {
		return zerrors.NewApplicationError(op, env.Code, env.Message)
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		ae := zerrors.NewApplicationError(op, env.Code, "malformed response data")
		ae.OriginalErr = err
		return ae
	}
	return nil
}
