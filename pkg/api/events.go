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

package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	zerrors "github.com/kube-zen/zen-triage/pkg/errors"
	"github.com/kube-zen/zen-triage/pkg/models"
	"github.com/kube-zen/zen-triage/pkg/query"
)

const eventsPath = "/v1/events"

// EventsClient reads and triages security events
type EventsClient struct {
	*Client
}

// NewEventsClient wraps c
func NewEventsClient(c *Client) *EventsClient { return &EventsClient{Client: c} }

type statusBody struct {
	Status models.EventStatus `json:"status"`
}

type batchBody struct {
	EventIDs []string           `json:"eventIds"`
	Action   models.BatchAction `json:"action,omitempty"`
}

// List fetches one page of events matching q
func (c *EventsClient) List(ctx context.Context, q query.Query) (*models.PageResult[models.EventRecord], error) {
	var page models.PageResult[models.EventRecord]
	if err := c.do(ctx, "events.list", http.MethodGet, eventsPath, q.Values(), nil, &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		page.Items = []models.EventRecord{}
	}
	return &page, nil
}

// Get fetches a single event by id
func (c *EventsClient) Get(ctx context.Context, id string) (*models.EventRecord, error) {
	path, err := eventPath("events.get", id)
	if err != nil {
		return nil, err
	}
	var record models.EventRecord
	if err := c.do(ctx, "events.get", http.MethodGet, path, nil, nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateStatus requests a status transition. The server decides legality.
func (c *EventsClient) UpdateStatus(ctx context.Context, id string, status models.EventStatus) error {
	const op = "events.update_status"
	if !status.IsValid() {
		return zerrors.NewValidationError(op, "invalid status "+string(status), nil)
	}
	path, err := eventPath(op, id)
	if err != nil {
		return err
	}
	return c.do(ctx, op, http.MethodPut, path+"/status", nil, statusBody{Status: status}, nil)
}

// Batch applies action to every id
func (c *EventsClient) Batch(ctx context.Context, ids []string, action models.BatchAction) (*models.BatchResult, error) {
	const op = "events.batch"
	if !action.IsValid() {
		return nil, zerrors.NewValidationError(op, "invalid batch action "+string(action), nil)
	}
	if len(ids) == 0 {
		return nil, zerrors.NewValidationError(op, "no event ids given", nil)
	}
	result := models.BatchResult{}
	if err := c.do(ctx, op, http.MethodPost, eventsPath+"/batch", nil, batchBody{EventIDs: ids, Action: action}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete removes one event
func (c *EventsClient) Delete(ctx context.Context, id string) error {
	path, err := eventPath("events.delete", id)
	if err != nil {
		return err
	}
	return c.do(ctx, "events.delete", http.MethodDelete, path, nil, nil, nil)
}

// BatchDelete removes every id
func (c *EventsClient) BatchDelete(ctx context.Context, ids []string) (*models.BatchResult, error) {
	const op = "events.batch_delete"
	if len(ids) == 0 {
		return nil, zerrors.NewValidationError(op, "no event ids given", nil)
	}
	result := models.BatchResult{}
	if err := c.do(ctx, op, http.MethodDelete, eventsPath+"/batch", nil, batchBody{EventIDs: ids}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func eventPath(op, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", zerrors.NewValidationError(op, "event id is required", nil)
	}
	return eventsPath + "/" + url.PathEscape(id), nil
}
