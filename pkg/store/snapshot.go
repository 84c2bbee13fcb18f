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

package store

import (
	"github.com/kube-zen/zen-triage/pkg/models"
	"github.com/kube-zen/zen-triage/pkg/query"
)

// Snapshot is an immutable copy of the store's state. ResultSize is the page
// size the server reported for Events, 0 before the first load.
type Snapshot struct {
	Events       []models.EventRecord
	CurrentEvent *models.EventRecord
	Loading      bool
	Total        int
	CurrentPage  int
	PageSize     int
	ResultSize   int
	Criteria     query.SearchForm
	// Version increases with every mutation
	Version uint64
}

// HasEvents reports whether the current page has any event
func (s Snapshot) HasEvents() bool { return len(s.Events) > 0 }

// PendingCount counts pending events on the current page only.
// It is not the server-wide pending total.
func (s Snapshot) PendingCount() int {
	n := 0
	for _, e := range s.Events {
		if e.Status == models.StatusPending {
			n++
		}
	}
	return n
}

// EffectivePageSize is the server's page size when known, else the requested one
func (s Snapshot) EffectivePageSize() int {
	if s.ResultSize > 0 {
		return s.ResultSize
	}
	return s.PageSize
}

// PageCount returns ceil(Total/EffectivePageSize)
func (s Snapshot) PageCount() int { return models.PageCount(s.Total, s.EffectivePageSize()) }
