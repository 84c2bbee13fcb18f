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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kube-zen/zen-triage/pkg/models"
)

// maxPageSize mirrors the console's size bound
const maxPageSize = 100

// maxPage bounds the page number so offsets cannot overflow
const maxPage = 1 << 20

type envelope struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

func (c *Console) routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/events", c.handle("events.list", c.listEvents))
		r.Post("/events/batch", c.handle("events.batch", c.batchEvents))
		r.Delete("/events/batch", c.handle("events.batch_delete", c.batchDeleteEvents))
		r.Get("/events/{id}", c.handle("events.get", c.getEvent))
		r.Put("/events/{id}/status", c.handle("events.update_status", c.updateStatus))
		r.Delete("/events/{id}", c.handle("events.delete", c.deleteEvent))

		r.Get("/statistics/dashboard", c.handle("statistics.dashboard", c.dashboard))
		r.Get("/statistics/trends", c.handle("statistics.trends", c.trends))
		r.Get("/statistics/threat-types", c.handle("statistics.threat_types", c.threatTypes))
		r.Get("/statistics/top-ips", c.handle("statistics.top_ips", c.topIPs))
		r.Post("/statistics/report", c.handle("statistics.report", c.report))

		r.Get("/monitoring/realtime", c.handle("monitoring.realtime", c.realtime))
		r.Get("/monitoring/health", c.handle("monitoring.health", c.healthCheck))
	})
	return r
}

// handle records the request and applies injected failures before fn
func (c *Console) handle(route string, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		c.mu.Lock()
		c.requests = append(c.requests, Request{
			Route:     route,
			Method:    r.Method,
			Path:      r.URL.Path,
			Query:     r.URL.Query(),
			Body:      body,
			RequestID: r.Header.Get("X-Request-ID"),
		})
		failure, failing := c.failures[route]
		c.mu.Unlock()

		if failing {
			if failure.HTTPStatus != 0 {
				http.Error(w, http.StatusText(failure.HTTPStatus), failure.HTTPStatus)
				return
			}
			c.writeFailure(w, failure.Code, failure.Message)
			return
		}
		fn(w, r)
	}
}

func (c *Console) writeData(w http.ResponseWriter, data interface{}) {
	c.writeEnvelope(w, envelope{Code: 200, Message: "success", Data: data})
}

func (c *Console) writeFailure(w http.ResponseWriter, code int, message string) {
	c.writeEnvelope(w, envelope{Code: code, Message: message})
}

func (c *Console) writeEnvelope(w http.ResponseWriter, env envelope) {
	env.Timestamp = c.now().UTC().Format(time.RFC3339)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(env)
}

func (c *Console) listEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, size, err := paging(q.Get("page"), q.Get("size"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c.mu.Lock()
	delay := c.listDelays[page]
	c.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	f, err := parseFilter(q)
	if err != nil {
		c.writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	c.mu.Lock()
	var matched []models.EventRecord
	for _, e := range c.events {
		if f.matches(e) {
			matched = append(matched, e)
		}
	}
	c.mu.Unlock()

	items := []models.EventRecord{}
	if from := (page - 1) * size; from < len(matched) {
		to := from + size
		if to > len(matched) {
			to = len(matched)
		}
		items = matched[from:to]
	}
	c.writeData(w, models.PageResult[models.EventRecord]{Items: items, Total: len(matched), Page: page, Size: size})
}

func (c *Console) getEvent(w http.ResponseWriter, r *http.Request) {
	e, ok := c.Event(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}
	c.writeData(w, e)
}

func (c *Console) updateStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		c.writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, err := models.ParseEventStatus(body.Status)
	if err != nil {
		c.writeFailure(w, http.StatusBadRequest, "invalid status "+body.Status)
		return
	}

	id := chi.URLParam(r, "id")
	c.mu.Lock()
	i := c.indexLocked(id)
	if i >= 0 {
		c.events[i].Status = status
		c.events[i].Touch(models.NewTimestamp(c.now()))
	}
	c.mu.Unlock()

	if i < 0 {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}
	c.writeData(w, nil)
}

func (c *Console) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c.mu.Lock()
	i := c.indexLocked(id)
	if i >= 0 {
		c.events = append(c.events[:i], c.events[i+1:]...)
	}
	c.mu.Unlock()

	if i < 0 {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}
	c.writeData(w, nil)
}

type batchRequest struct {
	EventIDs []string `json:"eventIds"`
	Action   string   `json:"action"`
}

var batchStatus = map[models.BatchAction]models.EventStatus{
	models.BatchConfirm:       models.StatusConfirmed,
	models.BatchFalsePositive: models.StatusFalsePositive,
	models.BatchResolve:       models.StatusResolved,
}

func (c *Console) batchEvents(w http.ResponseWriter, r *http.Request) {
	var body batchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		c.writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}
	action, err := models.ParseBatchAction(body.Action)
	if err != nil {
		c.writeFailure(w, http.StatusBadRequest, "invalid action "+body.Action)
		return
	}
	if action == models.BatchDelete {
		c.writeData(w, c.remove(body.EventIDs))
		return
	}

	result := models.BatchResult{}
	c.mu.Lock()
	for _, id := range body.EventIDs {
		i := c.indexLocked(id)
		if i < 0 {
			result.Failed = append(result.Failed, id)
			continue
		}
		c.events[i].Status = batchStatus[action]
		c.events[i].Touch(models.NewTimestamp(c.now()))
		result.Processed++
	}
	c.mu.Unlock()
	c.writeData(w, result)
}

func (c *Console) batchDeleteEvents(w http.ResponseWriter, r *http.Request) {
	var body batchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		c.writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c.writeData(w, c.remove(body.EventIDs))
}

func (c *Console) remove(ids []string) models.BatchResult {
	result := models.BatchResult{}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		i := c.indexLocked(id)
		if i < 0 {
			result.Failed = append(result.Failed, id)
			continue
		}
		c.events = append(c.events[:i], c.events[i+1:]...)
		result.Processed++
	}
	return result
}

func (c *Console) dashboard(w http.ResponseWriter, r *http.Request) {
	c.writeData(w, c.summary())
}

func (c *Console) trends(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	granularity := models.GranularityDay
	if g := q.Get("granularity"); g != "" {
		parsed, err := models.ParseGranularity(g)
		if err != nil {
			c.writeFailure(w, http.StatusBadRequest, "invalid granularity "+g)
			return
		}
		granularity = parsed
	}
	c.writeData(w, trendSeries(c.inRange(q.Get("startDate"), q.Get("endDate")), granularity))
}

func (c *Console) threatTypes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c.writeData(w, threatDistribution(c.inRange(q.Get("startDate"), q.Get("endDate"))))
}

func (c *Console) topIPs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 10
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	c.writeData(w, rankIPs(c.inRange(q.Get("startDate"), q.Get("endDate")), limit))
}

func (c *Console) report(w http.ResponseWriter, r *http.Request) {
	var req models.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.ReportType.IsValid() {
		c.writeFailure(w, http.StatusBadRequest, "invalid report request")
		return
	}
	events := c.inRange(req.StartDate, req.EndDate)
	var b strings.Builder
	fmt.Fprintf(&b, "%s security report %s to %s\n", req.ReportType, req.StartDate, req.EndDate)
	fmt.Fprintf(&b, "events: %d\n", len(events))
	for _, s := range threatDistribution(events) {
		fmt.Fprintf(&b, "  %s: %d (%.1f%%)\n", s.ThreatType, s.Count, s.Percentage)
	}
	c.writeData(w, models.Report{
		ReportID:    uuid.NewString(),
		Content:     b.String(),
		GeneratedAt: models.NewTimestamp(c.now().UTC()),
	})
}

func (c *Console) realtime(w http.ResponseWriter, r *http.Request) {
	c.writeData(w, models.RealtimeStats{
		CurrentAttacks:    c.system.CurrentAttacks(),
		ActiveConnections: c.system.GetActiveConnections(),
		SystemLoad:        c.system.GetCPUUsagePercent(),
		MemoryUsage:       c.system.GetMemoryUsagePercent(),
	})
}

func (c *Console) healthCheck(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	h := c.health
	c.mu.Unlock()
	c.writeData(w, h)
}

func paging(pageStr, sizeStr string) (int, int, error) {
	page, size := 1, 20
	if pageStr != "" {
		n, err := strconv.Atoi(pageStr)
		if err != nil || n < 1 {
			return 0, 0, fmt.Errorf("invalid page %q", pageStr)
		}
		if n > maxPage {
			n = maxPage
		}
		page = n
	}
	if sizeStr != "" {
		n, err := strconv.Atoi(sizeStr)
		if err != nil || n < 1 || n > maxPageSize {
			return 0, 0, fmt.Errorf("invalid size %q", sizeStr)
		}
		size = n
	}
	return page, size, nil
}
