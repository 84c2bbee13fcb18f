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

package feed

import (
	"encoding/json"
	"time"

	"github.com/kube-zen/zen-triage/pkg/dedup"
	zerrors "github.com/kube-zen/zen-triage/pkg/errors"
	"github.com/kube-zen/zen-triage/pkg/logger"
	"github.com/kube-zen/zen-triage/pkg/metrics"
	"github.com/kube-zen/zen-triage/pkg/models"
)

// Processing results recorded per message
const (
	ResultDelivered = "delivered"
	ResultDuplicate = "duplicate"
	ResultInvalid   = "invalid"
	ResultIgnored   = "ignored"
)

// Handlers receive decoded messages. A nil handler ignores its type.
type Handlers struct {
	NewEvent    func(models.EventRecord)
	StatsUpdate func(json.RawMessage)
	SystemAlert func(Alert)
}

// Processor validates, deduplicates and dispatches raw feed payloads
type Processor struct {
	validator *Validator
	deduper   *dedup.Deduper
	handlers  Handlers
	metrics   *metrics.Metrics
}

// Option configures a Processor
type Option func(*Processor)

// WithDeduper replaces the default deduper
func WithDeduper(d *dedup.Deduper) Option {
	return func(p *Processor) { p.deduper = d }
}

// WithMetrics records message outcomes
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Processor) { p.metrics = m }
}

// NewProcessor creates a processor dispatching to h
func NewProcessor(h Handlers, opts ...Option) (*Processor, error) {
	v, err := NewValidator()
	if err != nil {
		return nil, zerrors.NewConfigError("feed.processor", "message schema", err)
	}
	p := &Processor{validator: v, handlers: h}
	for _, opt := range opts {
		opt(p)
	}
	if p.deduper == nil {
		p.deduper = dedup.NewDeduper(dedup.DefaultWindow, dedup.DefaultMaxSize)
	}
	return p, nil
}

// Process handles one raw payload and returns its result.
// Invalid payloads return a validation error and are not dispatched.
func (p *Processor) Process(data []byte) (string, error) {
	start := time.Now()
	msg, err := p.validator.Validate(data)
	if err != nil {
		p.metrics.ObserveFeedMessage("unknown", ResultInvalid)
		logger.Warn("Dropping invalid feed message",
			logger.Fields{Component: "feed", Operation: "process", Error: err})
		return ResultInvalid, zerrors.NewValidationError("feed.process", "invalid feed message", err)
	}

	result, err := p.dispatch(msg, data)
	p.metrics.ObserveFeedMessage(string(msg.Type), result)
	logger.Debug("Feed message processed",
		logger.Fields{
			Component: "feed",
			Operation: "process",
			Status:    result,
			Reason:    string(msg.Type),
			Duration:  time.Since(start).String(),
		})
	return result, err
}

func (p *Processor) dispatch(msg Message, raw []byte) (string, error) {
	switch msg.Type {
	case MessageNewEvent:
		e, err := msg.Event()
		if err != nil {
			return ResultInvalid, zerrors.NewValidationError("feed.new_event", "undecodable event", err)
		}
		if !p.deduper.ShouldProcess(dedup.DedupKey{Type: string(msg.Type), EventID: e.ID}) {
			return ResultDuplicate, nil
		}
		if p.handlers.NewEvent == nil {
			return ResultIgnored, nil
		}
		p.handlers.NewEvent(e)

	case MessageStatsUpdate:
		if p.handlers.StatsUpdate == nil {
			return ResultIgnored, nil
		}
		p.handlers.StatsUpdate(msg.Data)

	case MessageSystemAlert:
		alert, err := msg.Alert()
		if err != nil {
			return ResultInvalid, zerrors.NewValidationError("feed.system_alert", "undecodable alert", err)
		}
		key := dedup.DedupKey{Type: string(msg.Type), MessageHash: dedup.HashMessage(raw)}
		if !p.deduper.ShouldProcess(key) {
			return ResultDuplicate, nil
		}
		if p.handlers.SystemAlert == nil {
			return ResultIgnored, nil
		}
		p.handlers.SystemAlert(alert)

	default:
		return ResultIgnored, nil
	}
	return ResultDelivered, nil
}
