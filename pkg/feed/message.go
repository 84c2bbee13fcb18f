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

// Package feed consumes the console's live event feed from NATS.
package feed

import (
	"encoding/json"

	"github.com/kube-zen/zen-triage/pkg/models"
)

// MessageType discriminates live feed messages
type MessageType string

const (
	MessageNewEvent    MessageType = "new_event"
	MessageStatsUpdate MessageType = "stats_update"
	MessageSystemAlert MessageType = "system_alert"
)

// Message is one live feed delivery
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
}

// AlertLevel is the urgency of a system alert
type AlertLevel string

const (
	AlertInfo    AlertLevel = "info"
	AlertWarning AlertLevel = "warning"
	AlertError   AlertLevel = "error"
)

// Alert is the payload of a system_alert message
type Alert struct {
	Level     AlertLevel `json:"level"`
	Message   string     `json:"message"`
	Component string     `json:"component,omitempty"`
}

// Event decodes a new_event payload
func (m Message) Event() (models.EventRecord, error) {
	var e models.EventRecord
	err := json.Unmarshal(m.Data, &e)
	return e, err
}

// Alert decodes a system_alert payload
func (m Message) Alert() (Alert, error) {
	var a Alert
	err := json.Unmarshal(m.Data, &a)
	return a, err
}
