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

package models

import (
	"fmt"
	"strings"

	zerrors "github.com/kube-zen/zen-triage/pkg/errors"
)

// ThreatType classifies a detected web attack
type ThreatType string

const (
	ThreatSQLInjection     ThreatType = "sql_injection"
	ThreatXSS              ThreatType = "xss"
	ThreatCommandInjection ThreatType = "command_injection"
	ThreatPathTraversal    ThreatType = "path_traversal"
	ThreatBruteForce       ThreatType = "brute_force"
	ThreatOther            ThreatType = "other"
)

var threatTypes = []ThreatType{
	ThreatSQLInjection, ThreatXSS, ThreatCommandInjection,
	ThreatPathTraversal, ThreatBruteForce, ThreatOther,
}

// ThreatTypes returns all known threat types in display order
func ThreatTypes() []ThreatType { return append([]ThreatType(nil), threatTypes...) }

// IsValid reports whether t is a known threat type
func (t ThreatType) IsValid() bool { return contains(threatTypes, t) }

// ParseThreatType parses a wire value
func ParseThreatType(s string) (ThreatType, error) { return parseEnum("threatType", s, threatTypes) }

// SeverityLevel is ordered: low < medium < high < critical
type SeverityLevel string

const (
	SeverityLow      SeverityLevel = "low"
	SeverityMedium   SeverityLevel = "medium"
	SeverityHigh     SeverityLevel = "high"
	SeverityCritical SeverityLevel = "critical"
)

var severityLevels = []SeverityLevel{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// SeverityLevels returns all severities, lowest first
func SeverityLevels() []SeverityLevel { return append([]SeverityLevel(nil), severityLevels...) }

// IsValid reports whether s is a known severity
func (s SeverityLevel) IsValid() bool { return contains(severityLevels, s) }

// Rank returns 1 (low) through 4 (critical), or 0 for unknown values
func (s SeverityLevel) Rank() int {
	for i, v := range severityLevels {
		if v == s {
			return i + 1
		}
	}
	return 0
}

// Less reports whether s is strictly less severe than other
func (s SeverityLevel) Less(other SeverityLevel) bool { return s.Rank() < other.Rank() }

// ParseSeverityLevel parses a wire value
func ParseSeverityLevel(s string) (SeverityLevel, error) {
	return parseEnum("severityLevel", s, severityLevels)
}

// EventStatus is the triage state of an event
type EventStatus string

const (
	StatusPending       EventStatus = "pending"
	StatusConfirmed     EventStatus = "confirmed"
	StatusFalsePositive EventStatus = "false_positive"
	StatusResolved      EventStatus = "resolved"
)

var eventStatuses = []EventStatus{StatusPending, StatusConfirmed, StatusFalsePositive, StatusResolved}

// EventStatuses returns all triage states
func EventStatuses() []EventStatus { return append([]EventStatus(nil), eventStatuses...) }

// IsValid reports whether s is a known status
func (s EventStatus) IsValid() bool { return contains(eventStatuses, s) }

// IsTerminal reports whether the client offers no further transition from s
func (s EventStatus) IsTerminal() bool {
	return s == StatusResolved || s == StatusFalsePositive
}

// NextStatuses returns the transitions offered to an operator from s.
// The server remains the authority; callers may request any status.
func (s EventStatus) NextStatuses() []EventStatus {
	switch s {
	case StatusPending:
		return []EventStatus{StatusConfirmed, StatusFalsePositive}
	case StatusConfirmed:
		return []EventStatus{StatusResolved}
	default:
		return nil
	}
}

// ParseEventStatus parses a wire value
func ParseEventStatus(s string) (EventStatus, error) { return parseEnum("status", s, eventStatuses) }

// BatchAction is applied to several events at once
type BatchAction string

const (
	BatchConfirm       BatchAction = "confirm"
	BatchFalsePositive BatchAction = "false_positive"
	BatchResolve       BatchAction = "resolve"
	BatchDelete        BatchAction = "delete"
)

var batchActions = []BatchAction{BatchConfirm, BatchFalsePositive, BatchResolve, BatchDelete}

// IsValid reports whether a is a known batch action
func (a BatchAction) IsValid() bool { return contains(batchActions, a) }

// ParseBatchAction parses a wire value
func ParseBatchAction(s string) (BatchAction, error) { return parseEnum("action", s, batchActions) }

// EventRecord is one detected security event
type EventRecord struct {
	ID            string        `json:"id"`
	EventID       string        `json:"eventId"`
	SourceIP      string        `json:"sourceIp"`
	TargetURL     string        `json:"targetUrl"`
	HTTPMethod    string        `json:"httpMethod"`
	UserAgent     string        `json:"userAgent"`
	ThreatType    ThreatType    `json:"threatType"`
	SeverityLevel SeverityLevel `json:"severityLevel"`
	DetectionTime Timestamp     `json:"detectionTime"`
	RawRequest    string        `json:"rawRequest"`
	AttackPayload string        `json:"attackPayload"`
	AIAnalysis    string        `json:"aiAnalysis"`
	Status        EventStatus   `json:"status"`
	CreatedAt     Timestamp     `json:"createdAt"`
	UpdatedAt     Timestamp     `json:"updatedAt"`
}

// Touch bumps UpdatedAt to now without moving it backwards or before CreatedAt
func (e *EventRecord) Touch(now Timestamp) {
	next := now
	if next.Before(e.UpdatedAt.Time) {
		next = e.UpdatedAt
	}
	if next.Before(e.CreatedAt.Time) {
		next = e.CreatedAt
	}
	e.UpdatedAt = next
}

// BatchResult reports the outcome of a batch operation
type BatchResult struct {
	Processed int      `json:"processed"`
	Failed    []string `json:"failed,omitempty"`
}

// PageResult is one page of a server-ordered listing
type PageResult[T any] struct {
	Items []T `json:"list"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
}

// PageCount returns ceil(Total/Size), or 0 when Size is not positive
func (p PageResult[T]) PageCount() int {
	return PageCount(p.Total, p.Size)
}

// PageCount returns ceil(total/size), or 0 when size is not positive
func PageCount(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func parseEnum[T ~string](field, s string, valid []T) (T, error) {
	v := T(strings.TrimSpace(s))
	if contains(valid, v) {
		return v, nil
	}
	names := make([]string, len(valid))
	for i, candidate := range valid {
		names[i] = string(candidate)
	}
	var zero T
	return zero, zerrors.NewValidationError("models.parse",
		fmt.Sprintf("invalid %s %q (valid: %s)", field, s, strings.Join(names, ", ")), nil)
}
