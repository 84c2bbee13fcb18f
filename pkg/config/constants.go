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

package config

import "time"

// Default configuration constants
const (
	// DefaultBaseURL is the console API root; routes are appended as /v1/...
	DefaultBaseURL = "http://localhost:8000/api"

	// DefaultTimeout bounds a single console request
	DefaultTimeout = 30 * time.Second

	// DefaultPageSize is the event list page size
	DefaultPageSize = 20

	// DefaultMaxPageSize is the largest page the console accepts
	DefaultMaxPageSize = 100

	// DefaultRecentEvents bounds the dashboard's recent events list
	DefaultRecentEvents = 10

	// DefaultFeedSubject is the NATS subject carrying live console messages
	DefaultFeedSubject = "console.events"

	// DefaultFeedDedupSize is the number of event ids remembered by the feed
	DefaultFeedDedupSize = 1024
)

// Environment variables read by Load
const (
	EnvAPIURL       = "TRIAGE_API_URL"
	EnvTimeout      = "TRIAGE_TIMEOUT"
	EnvPageSize     = "TRIAGE_PAGE_SIZE"
	EnvMaxPageSize  = "TRIAGE_MAX_PAGE_SIZE"
	EnvRateLimitRPS = "TRIAGE_RATE_LIMIT_RPS"
	EnvNATSURL      = "TRIAGE_NATS_URL"
	EnvFeedSubject  = "TRIAGE_FEED_SUBJECT"
	EnvLogLevel     = "LOG_LEVEL"
)
