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

// Package consoletest provides an in-process security console serving the
// /api/v1 routes with the response envelope, for tests and demos.
package consoletest

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kube-zen/zen-triage/pkg/metrics"
	"github.com/kube-zen/zen-triage/pkg/models"
)

// Failure is injected into a route. HTTPStatus other than 0 fails at the
// transport layer; otherwise the envelope carries Code and Message.
type Failure struct {
	HTTPStatus int
	Code       int
	Message    string
}

// Request is a recorded inbound request
type Request struct {
	Route     string
	Method    string
	Path      string
	Query     url.Values
	Body      []byte
	RequestID string
}

// Console is a fake security console. The zero value is not usable; call New.
type Console struct {
	mu         sync.Mutex
	events     []models.EventRecord
	health     models.SystemHealth
	failures   map[string]Failure
	listDelays map[int]time.Duration
	requests   []Request

	system *metrics.SystemMetrics
	now    func() time.Time
	router chi.Router
	server *httptest.Server
}

// Option configures a Console
type Option func(*Console)

// WithClock fixes the console's notion of now
func WithClock(now func() time.Time) Option {
	return func(c *Console) { c.now = now }
}

// WithEvents seeds the console with events
func WithEvents(events ...models.EventRecord) Option {
	return func(c *Console) { c.events = append(c.events, events...) }
}

// New creates a console with healthy components and no events
func New(opts ...Option) *Console {
	c := &Console{
		failures:   map[string]Failure{},
		listDelays: map[int]time.Duration{},
		system:     metrics.NewSystemMetrics(time.Minute),
		now:        time.Now,
		health: models.SystemHealth{
			Status: models.HealthHealthy,
			Components: []models.ComponentHealth{
				{Name: "database", Status: models.HealthHealthy, Message: "ok"},
				{Name: "detector", Status: models.HealthHealthy, Message: "ok"},
				{Name: "ai-analyzer", Status: models.HealthHealthy, Message: "ok"},
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.sortLocked()
	c.router = c.routes()
	return c
}

// Start serves a new console on a loopback listener until the test ends
func Start(t testing.TB, opts ...Option) *Console {
	t.Helper()
	c := New(opts...)
	c.server = httptest.NewServer(c.router)
	t.Cleanup(c.server.Close)
	return c
}

// Handler returns the console's router
func (c *Console) Handler() http.Handler { return c.router }

// URL returns the API base URL of a started console
func (c *Console) URL() string {
	if c.server == nil {
		return ""
	}
	return c.server.URL + "/api"
}

// Client returns an HTTP client for a started console
func (c *Console) Client() *http.Client {
	if c.server == nil {
		return http.DefaultClient
	}
	return c.server.Client()
}

// Add appends events as newly detected
func (c *Console) Add(events ...models.EventRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for range events {
		c.system.RecordAttack()
	}
	c.events = append(c.events, events...)
	c.sortLocked()
}

// Event returns the stored event with id
func (c *Console) Event(id string) (models.EventRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexLocked(id); i >= 0 {
		return c.events[i], true
	}
	return models.EventRecord{}, false
}

// Len returns the number of stored events
func (c *Console) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

// Fail makes every request to route fail until ClearFailures
func (c *Console) Fail(route string, f Failure) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[route] = f
}

// ClearFailures removes all injected failures
func (c *Console) ClearFailures() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = map[string]Failure{}
}

// SetListDelay delays list responses for page. The delay ends early when
// the client goes away.
func (c *Console) SetListDelay(page int, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listDelays[page] = d
}

// SetHealth replaces the reported system health
func (c *Console) SetHealth(h models.SystemHealth) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.health = h
}

// Requests returns the recorded requests in arrival order
func (c *Console) Requests() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Request(nil), c.requests...)
}

// RequestsFor returns the recorded requests for one route
func (c *Console) RequestsFor(route string) []Request {
	var out []Request
	for _, r := range c.Requests() {
		if r.Route == route {
			out = append(out, r)
		}
	}
	return out
}

// sortLocked keeps events newest first, the server's list order
func (c *Console) sortLocked() {
	sort.SliceStable(c.events, func(i, j int) bool {
		return c.events[i].DetectionTime.After(c.events[j].DetectionTime.Time)
	})
}

func (c *Console) indexLocked(id string) int {
	for i := range c.events {
		if c.events[i].ID == id {
			return i
		}
	}
	return -1
}
