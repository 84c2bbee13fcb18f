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

// Package store holds the event data currently displayed to an operator.
//
// EventStore is the only writer of its state. List fetches carry a ticket:
// a response is applied only while its ticket is the newest issued, and
// issuing a new ticket cancels the superseded request. List failures are
// reported and swallowed; detail and status change failures are returned.
package store

import (
	"context"
	"sync"
	"time"

	zerrors "github.com/kube-zen/zen-triage/pkg/errors"
	"github.com/kube-zen/zen-triage/pkg/logger"
	"github.com/kube-zen/zen-triage/pkg/metrics"
	"github.com/kube-zen/zen-triage/pkg/models"
	"github.com/kube-zen/zen-triage/pkg/query"
)

// EventQueryService lists, reads and transitions events
type EventQueryService interface {
	List(ctx context.Context, q query.Query) (*models.PageResult[models.EventRecord], error)
	Get(ctx context.Context, id string) (*models.EventRecord, error)
	UpdateStatus(ctx context.Context, id string, status models.EventStatus) error
}

// EventDeleter is implemented by services that can delete events
type EventDeleter interface {
	Delete(ctx context.Context, id string) error
	BatchDelete(ctx context.Context, ids []string) (*models.BatchResult, error)
}

// ErrorReporter receives list failures, which the store does not return
type ErrorReporter interface {
	Report(op string, err error)
}

// ReporterFunc adapts a function to ErrorReporter
type ReporterFunc func(op string, err error)

// Report calls f
func (f ReporterFunc) Report(op string, err error) { f(op, err) }

type nopReporter struct{}

func (nopReporter) Report(string, error) {}

// EventStore is the single authority for displayed event data. Safe for
// concurrent use; the lock is never held across service calls or callbacks.
type EventStore struct {
	svc        EventQueryService
	normalizer *query.Normalizer
	reporter   ErrorReporter
	metrics    *metrics.Metrics
	now        func() time.Time

	mu           sync.Mutex
	events       []models.EventRecord
	currentEvent *models.EventRecord
	total        int
	currentPage  int
	pageSize     int
	resultSize   int
	criteria     query.SearchForm
	version      uint64

	listTicket  uint64
	listPending bool
	cancelList  context.CancelFunc

	detailTicket   uint64
	detailInflight int

	subscribers map[int]func(Snapshot)
	nextSub     int
}

// Option configures an EventStore
type Option func(*EventStore)

// WithNormalizer sets the paging bounds
func WithNormalizer(n *query.Normalizer) Option {
	return func(s *EventStore) {
		if n != nil {
			s.normalizer = n
		}
	}
}

// WithReporter sets the observer of swallowed list failures
func WithReporter(r ErrorReporter) Option {
	return func(s *EventStore) {
		if r != nil {
			s.reporter = r
		}
	}
}

// WithMetrics records fetch and status change outcomes
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *EventStore) { s.metrics = m }
}

// WithClock sets the clock used to bump updatedAt
func WithClock(now func() time.Time) Option {
	return func(s *EventStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithPageSize sets the initial page size
func WithPageSize(size int) Option {
	return func(s *EventStore) { s.pageSize = size }
}

// New creates an empty store backed by svc
func New(svc EventQueryService, opts ...Option) *EventStore {
	s := &EventStore{
		svc:         svc,
		normalizer:  query.NewNormalizer(query.DefaultPageSize, query.DefaultMaxPageSize),
		reporter:    nopReporter{},
		now:         time.Now,
		currentPage: 1,
		events:      []models.EventRecord{},
		subscribers: map[int]func(Snapshot){},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.pageSize = s.normalizer.ClampSize(s.pageSize)
	return s
}

// FetchPage loads page with the current criteria. Failures are logged,
// reported and swallowed, leaving the displayed page unchanged. A result
// whose ticket was superseded is discarded.
func (s *EventStore) FetchPage(ctx context.Context, page int) {
	s.mu.Lock()
	s.listTicket++
	ticket := s.listTicket
	if s.cancelList != nil {
		s.cancelList()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.cancelList = cancel
	s.listPending = true
	criteria := s.criteria.Clone()
	size := s.pageSize
	s.commitLocked()

	q, err := s.normalizer.Normalize(criteria, page, size)
	var result *models.PageResult[models.EventRecord]
	if err == nil {
		result, err = s.svc.List(fetchCtx, q)
	}

	s.mu.Lock()
	if ticket != s.listTicket {
		s.mu.Unlock()
		s.metrics.ObserveFetch(metrics.OutcomeStale)
		logger.Debug("Discarded superseded event page",
			logger.Fields{Component: "event_store", Operation: "fetch_page", Page: page})
		return
	}
	s.listPending = false
	s.cancelList = nil
	if err == nil {
		s.events = append([]models.EventRecord{}, result.Items...)
		s.total = result.Total
		s.currentPage = q.Page()
		s.resultSize = result.Size
	}
	s.commitLocked()

	if err != nil {
		s.metrics.ObserveFetch(metrics.OutcomeFailed)
		if ctx.Err() != nil {
			return
		}
		logger.Warn("Event page fetch failed",
			logger.Fields{Component: "event_store", Operation: "fetch_page", Page: page, Error: err})
		s.reporter.Report("events.list", err)
		return
	}
	s.metrics.ObserveFetch(metrics.OutcomeApplied)
}

// FetchDetail loads one event into the current event slot and returns it.
// Failures are returned to the caller.
func (s *EventStore) FetchDetail(ctx context.Context, id string) (*models.EventRecord, error) {
	s.mu.Lock()
	s.detailTicket++
	ticket := s.detailTicket
	s.detailInflight++
	s.commitLocked()

	record, err := s.svc.Get(ctx, id)

	s.mu.Lock()
	s.detailInflight--
	if err == nil && ticket == s.detailTicket {
		rec := *record
		s.currentEvent = &rec
	}
	s.commitLocked()

	if err != nil {
		logger.Warn("Event detail fetch failed",
			logger.Fields{Component: "event_store", Operation: "fetch_detail", EventID: id, Error: err})
		return nil, err
	}
	rec := *record
	return &rec, nil
}

// RequestStatusChange asks the service to move event id to status. On
// success the list entry and the current event (when it is the same id)
// take the new status. On failure nothing changes and the error is returned.
// Concurrent requests for one id are not deduplicated.
func (s *EventStore) RequestStatusChange(ctx context.Context, id string, status models.EventStatus) error {
	if !status.IsValid() {
		return zerrors.NewValidationError("store.status_change", "invalid status "+string(status), nil)
	}

	err := s.svc.UpdateStatus(ctx, id, status)
	s.metrics.ObserveStatusChange(string(status), err)
	if err != nil {
		logger.Warn("Event status change failed",
			logger.Fields{Component: "event_store", Operation: "status_change", EventID: id, Status: string(status), Error: err})
		return err
	}

	now := models.NewTimestamp(s.now())
	s.mu.Lock()
	for i := range s.events {
		if s.events[i].ID == id {
			s.events[i].Status = status
			s.events[i].Touch(now)
		}
	}
	if s.currentEvent != nil && s.currentEvent.ID == id {
		s.currentEvent.Status = status
		s.currentEvent.Touch(now)
	}
	s.commitLocked()

	logger.Info("Event status changed",
		logger.Fields{Component: "event_store", Operation: "status_change", EventID: id, Status: string(status)})
	return nil
}

// Search resets to page 1 and fetches with the current criteria
func (s *EventStore) Search(ctx context.Context) {
	s.mu.Lock()
	s.currentPage = 1
	s.commitLocked()
	s.FetchPage(ctx, 1)
}

// ResetSearch clears every criterion, then searches
func (s *EventStore) ResetSearch(ctx context.Context) {
	s.mu.Lock()
	s.criteria = query.EmptyForm()
	s.commitLocked()
	s.Search(ctx)
}

// Refresh re-fetches the current page with unchanged criteria
func (s *EventStore) Refresh(ctx context.Context) {
	s.mu.Lock()
	page := s.currentPage
	s.mu.Unlock()
	s.FetchPage(ctx, page)
}

// SetCriteria replaces the search form without fetching
func (s *EventStore) SetCriteria(form query.SearchForm) {
	s.mu.Lock()
	s.criteria = form.Clone()
	s.commitLocked()
}

// SetPageSize changes the page size, clamped to the normalizer's bounds
func (s *EventStore) SetPageSize(size int) {
	s.mu.Lock()
	s.pageSize = s.normalizer.ClampSize(size)
	s.commitLocked()
}

// Remove drops deleted events from the current page and total. Call
// Refresh afterwards to resynchronize with the server.
func (s *EventStore) Remove(ids ...string) {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	s.mu.Lock()
	kept := s.events[:0:0]
	for _, e := range s.events {
		if !drop[e.ID] {
			kept = append(kept, e)
		}
	}
	removed := len(s.events) - len(kept)
	s.events = kept
	s.total -= removed
	if s.total < 0 {
		s.total = 0
	}
	if s.currentEvent != nil && drop[s.currentEvent.ID] {
		s.currentEvent = nil
	}
	s.commitLocked()
}

// DeleteEvents deletes ids on the server, drops the deleted ones from the
// current page and refreshes it. Failures are returned and leave the page as is.
func (s *EventStore) DeleteEvents(ctx context.Context, ids ...string) (*models.BatchResult, error) {
	d, ok := s.svc.(EventDeleter)
	if !ok {
		return nil, zerrors.NewConfigError("store.delete", "event service cannot delete events", nil)
	}
	if len(ids) == 0 {
		return nil, zerrors.NewValidationError("store.delete", "no event ids given", nil)
	}

	var result *models.BatchResult
	if len(ids) == 1 {
		if err := d.Delete(ctx, ids[0]); err != nil {
			logger.Warn("Event delete failed",
				logger.Fields{Component: "event_store", Operation: "delete", EventID: ids[0], Error: err})
			return nil, err
		}
		result = &models.BatchResult{Processed: 1}
	} else {
		r, err := d.BatchDelete(ctx, ids)
		if err != nil {
			logger.Warn("Event batch delete failed",
				logger.Fields{Component: "event_store", Operation: "delete", Count: len(ids), Error: err})
			return nil, err
		}
		result = r
	}

	failed := make(map[string]bool, len(result.Failed))
	for _, id := range result.Failed {
		failed[id] = true
	}
	deleted := make([]string, 0, len(ids))
	for _, id := range ids {
		if !failed[id] {
			deleted = append(deleted, id)
		}
	}
	s.Remove(deleted...)
	s.Refresh(ctx)

	logger.Info("Events deleted",
		logger.Fields{Component: "event_store", Operation: "delete", Count: result.Processed})
	return result, nil
}

// Discard cancels in-flight list work and returns to the initial state
func (s *EventStore) Discard() {
	s.mu.Lock()
	s.listTicket++
	s.detailTicket++
	if s.cancelList != nil {
		s.cancelList()
		s.cancelList = nil
	}
	s.listPending = false
	s.events = []models.EventRecord{}
	s.currentEvent = nil
	s.total = 0
	s.resultSize = 0
	s.currentPage = 1
	s.criteria = query.EmptyForm()
	s.commitLocked()
}

// Subscribe registers fn to receive a snapshot after every mutation.
// fn runs on the mutating goroutine; Version orders snapshots.
func (s *EventStore) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

// Snapshot returns a copy of the current state
func (s *EventStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// commitLocked bumps the version, releases the lock and notifies subscribers
func (s *EventStore) commitLocked() {
	s.version++
	snap := s.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (s *EventStore) snapshotLocked() Snapshot {
	snap := Snapshot{
		Events:      append([]models.EventRecord{}, s.events...),
		Loading:     s.listPending || s.detailInflight > 0,
		Total:       s.total,
		CurrentPage: s.currentPage,
		PageSize:    s.pageSize,
		ResultSize:  s.resultSize,
		Criteria:    s.criteria.Clone(),
		Version:     s.version,
	}
	if s.currentEvent != nil {
		rec := *s.currentEvent
		snap.CurrentEvent = &rec
	}
	return snap
}
