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

package dedup

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultMaxSize bounds the number of remembered keys
	DefaultMaxSize = 1024
	// DefaultWindow is how long a key suppresses repeats
	DefaultWindow = 10 * time.Minute
)

// DedupKey identifies a live feed delivery
type DedupKey struct {
	Type        string
	EventID     string
	MessageHash string // short SHA256 of the payload, used when there is no event id
}

// String returns a string representation of the dedup key
func (k DedupKey) String() string {
	if k.EventID != "" {
		return fmt.Sprintf("%s/id/%s", k.Type, k.EventID)
	}
	return fmt.Sprintf("%s/hash/%s", k.Type, k.MessageHash)
}

// Deduper suppresses keys seen within a sliding window.
// Least recently seen keys are evicted once MaxSize is reached.
type Deduper struct {
	mu     sync.Mutex
	cache  *lru.Cache[string, time.Time]
	window time.Duration
	max    int
	now    func() time.Time
}

// NewDeduper creates a deduper. Non-positive arguments fall back to the defaults.
func NewDeduper(window time.Duration, maxSize int) *Deduper {
	if window <= 0 {
		window = DefaultWindow
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	cache, _ := lru.New[string, time.Time](maxSize)
	return &Deduper{cache: cache, window: window, max: maxSize, now: time.Now}
}

// HashMessage creates a short hash of the message for deduplication
func HashMessage(message []byte) string {
	if len(message) == 0 {
		return ""
	}
	hash := sha256.Sum256(message)
	return fmt.Sprintf("%x", hash[:8])
}

// ShouldProcess records key and reports whether it was not seen within the window
func (d *Deduper) ShouldProcess(key DedupKey) bool {
	keyStr := key.String()
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if seen, ok := d.cache.Get(keyStr); ok && now.Sub(seen) < d.window {
		return false
	}
	d.cache.Add(keyStr, now)
	return true
}

// Stats returns current size, max size and window
func (d *Deduper) Stats() (size int, maxSize int, window time.Duration) {
	return d.cache.Len(), d.max, d.window
}

// Clear forgets every key
func (d *Deduper) Clear() {
	d.cache.Purge()
}
