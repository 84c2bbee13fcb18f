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

package logger

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"WARNING", zapcore.WarnLevel},
		{" error ", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFieldsAreEmitted(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))

	Warn("status change failed", Fields{
		Component: "store",
		Operation: "status_change",
		EventID:   "42",
		Page:      2,
		Error:     errors.New("boom"),
	})

	entries := logs.FilterMessage("status change failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["component"] != "store" || ctx["event_id"] != "42" {
		t.Errorf("unexpected fields: %v", ctx)
	}
	if ctx["page"] != int64(2) {
		t.Errorf("page = %v, want 2", ctx["page"])
	}
	if _, ok := ctx["count"]; ok {
		t.Error("zero count should be omitted")
	}
}

func TestCorrelationID(t *testing.T) {
	if GetCorrelationID(context.Background()) != "" {
		t.Error("expected empty correlation id")
	}
	ctx := WithCorrelationID(context.Background(), "req-1")
	if got := GetCorrelationID(ctx); got != "req-1" {
		t.Errorf("GetCorrelationID() = %q, want req-1", got)
	}

	core, logs := observer.New(zapcore.InfoLevel)
	l := &Logger{Logger: zap.New(core)}
	l.WithContext(ctx).Info("hello")
	if got := logs.All()[0].ContextMap()["correlation_id"]; got != "req-1" {
		t.Errorf("correlation_id = %v", got)
	}
}
