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

// Package query turns a sparse event search form into the flat query the
// console's list endpoint expects.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	zerrors "github.com/kube-zen/zen-triage/pkg/errors"
	"github.com/kube-zen/zen-triage/pkg/models"
)

const (
	// DefaultPageSize is used when no page size is requested
	DefaultPageSize = 20
	// DefaultMaxPageSize is the largest page the console serves
	DefaultMaxPageSize = 100
)

// Transmitted query keys
const (
	KeyThreatType    = "threatType"
	KeySeverityLevel = "severityLevel"
	KeyStatus        = "status"
	KeySourceIP      = "sourceIp"
	KeyKeyword       = "keyword"
	KeyStartTime     = "startTime"
	KeyEndTime       = "endTime"
	KeyPage          = "page"
	KeySize          = "size"
)

// DateRange is an inclusive [Start, End] pair
type DateRange struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// SearchForm is the operator's search input. Every field is optional.
type SearchForm struct {
	ThreatType    string     `json:"threatType,omitempty" yaml:"threatType,omitempty"`
	SeverityLevel string     `json:"severityLevel,omitempty" yaml:"severityLevel,omitempty"`
	Status        string     `json:"status,omitempty" yaml:"status,omitempty"`
	SourceIP      string     `json:"sourceIp,omitempty" yaml:"sourceIp,omitempty"`
	Keyword       string     `json:"keyword,omitempty" yaml:"keyword,omitempty"`
	DateRange     *DateRange `json:"dateRange,omitempty" yaml:"dateRange,omitempty"`
}

// EmptyForm returns the form with every criterion cleared
func EmptyForm() SearchForm { return SearchForm{} }

// Clone returns a deep copy of f
func (f SearchForm) Clone() SearchForm {
	if f.DateRange != nil {
		dr := *f.DateRange
		f.DateRange = &dr
	}
	return f
}

// Equal reports whether two forms carry the same criteria
func (f SearchForm) Equal(other SearchForm) bool {
	if (f.DateRange == nil) != (other.DateRange == nil) {
		return false
	}
	if f.DateRange != nil && *f.DateRange != *other.DateRange {
		return false
	}
	return f.ThreatType == other.ThreatType &&
		f.SeverityLevel == other.SeverityLevel &&
		f.Status == other.Status &&
		f.SourceIP == other.SourceIP &&
		f.Keyword == other.Keyword
}

// Query is the normalized, transport-ready query. No value is ever empty.
type Query map[string]string

// Values converts q to url.Values
func (q Query) Values() url.Values {
	v := make(url.Values, len(q))
	for key, value := range q {
		v.Set(key, value)
	}
	return v
}

// Encode returns the URL-encoded query with keys sorted
func (q Query) Encode() string { return q.Values().Encode() }

// Page returns the normalized page number
func (q Query) Page() int { return q.intValue(KeyPage) }

// Size returns the normalized page size
func (q Query) Size() int { return q.intValue(KeySize) }

func (q Query) intValue(key string) int {
	n, _ := strconv.Atoi(q[key])
	return n
}

// Normalizer applies paging defaults and bounds
type Normalizer struct {
	DefaultSize int
	MaxSize     int
}

// NewNormalizer returns a Normalizer, repairing non-positive or inverted bounds
func NewNormalizer(defaultSize, maxSize int) *Normalizer {
	if maxSize <= 0 {
		maxSize = DefaultMaxPageSize
	}
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	if defaultSize > maxSize {
		defaultSize = maxSize
	}
	return &Normalizer{DefaultSize: defaultSize, MaxSize: maxSize}
}

// ClampSize applies the size default and bounds
func (n *Normalizer) ClampSize(size int) int {
	if size <= 0 {
		size = n.DefaultSize
	}
	if size > n.MaxSize {
		size = n.MaxSize
	}
	if size < 1 {
		size = 1
	}
	return size
}

// Normalize builds the transport query for form at the given page.
// Empty and whitespace-only fields are omitted, never sent as "".
// Enum fields are checked against the closed value sets.
func (n *Normalizer) Normalize(form SearchForm, page, size int) (Query, error) {
	const op = "query.normalize"
	q := Query{}

	if v := strings.TrimSpace(form.ThreatType); v != "" {
		t, err := models.ParseThreatType(v)
		if err != nil {
			return nil, zerrors.NewValidationError(op, zerrors.UserMessage(err), err)
		}
		q[KeyThreatType] = string(t)
	}
	if v := strings.TrimSpace(form.SeverityLevel); v != "" {
		s, err := models.ParseSeverityLevel(v)
		if err != nil {
			return nil, zerrors.NewValidationError(op, zerrors.UserMessage(err), err)
		}
		q[KeySeverityLevel] = string(s)
	}
	if v := strings.TrimSpace(form.Status); v != "" {
		s, err := models.ParseEventStatus(v)
		if err != nil {
			return nil, zerrors.NewValidationError(op, zerrors.UserMessage(err), err)
		}
		q[KeyStatus] = string(s)
	}
	setIfPresent(q, KeySourceIP, form.SourceIP)
	setIfPresent(q, KeyKeyword, form.Keyword)

	if dr := form.DateRange; dr != nil {
		start, end := strings.TrimSpace(dr.Start), strings.TrimSpace(dr.End)
		if err := checkOrder(start, end); err != nil {
			return nil, zerrors.NewValidationError(op, err.Error(), nil)
		}
		setIfPresent(q, KeyStartTime, start)
		setIfPresent(q, KeyEndTime, end)
	}

	if page <= 0 {
		page = 1
	}
	q[KeyPage] = strconv.Itoa(page)
	q[KeySize] = strconv.Itoa(n.ClampSize(size))
	return q, nil
}

// setIfPresent sends value verbatim unless it is blank
func setIfPresent(q Query, key, value string) {
	if strings.TrimSpace(value) != "" {
		q[key] = value
	}
}

// checkOrder rejects start > end when both bounds parse as timestamps.
// Unparseable bounds are passed through for the server to judge.
func checkOrder(start, end string) error {
	if start == "" || end == "" {
		return nil
	}
	s, errStart := models.ParseTimestamp(start)
	e, errEnd := models.ParseTimestamp(end)
	if errStart != nil || errEnd != nil {
		return nil
	}
	if s.After(e.Time) {
		return fmt.Errorf("date range start %s is after end %s", start, end)
	}
	return nil
}
