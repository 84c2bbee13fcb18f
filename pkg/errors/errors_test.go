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

package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
)

func TestStatusMessage(t *testing.T) {
	tests := []struct {
		status   int
		expected string
	}{
		{0, NetworkErrorMessage},
		{400, "bad request"},
		{401, "unauthorized, please log in again"},
		{403, "forbidden"},
		{404, "requested resource not found"},
		{500, "internal server error"},
		{502, "request failed (502)"},
		{418, "request failed (418)"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			if got := StatusMessage(tt.status); got != tt.expected {
				t.Errorf("StatusMessage(%d) = %q, want %q", tt.status, got, tt.expected)
			}
		})
	}
}

func TestCategoryHelpers(t *testing.T) {
	transport := NewTransportError("events.list", 404, nil)
	app := NewApplicationError("events.get", 4001, "event not found")
	validation := NewValidationError("query.normalize", "invalid status", nil)

	wrapped := fmt.Errorf("fetching: %w", transport)
	if !IsTransport(wrapped) {
		t.Error("wrapped transport error should be detected")
	}
	if IsApplication(wrapped) || IsValidation(wrapped) {
		t.Error("transport error must not match other categories")
	}
	if !IsApplication(app) {
		t.Error("application error should be detected")
	}
	if !IsValidation(validation) {
		t.Error("validation error should be detected")
	}
	if CategoryOf(stderrors.New("plain")) != "" {
		t.Error("plain errors have no category")
	}
}

func TestApplicationErrorDefaultsMessage(t *testing.T) {
	err := NewApplicationError("events.get", 500, "")
	if err.Message != "request failed" {
		t.Errorf("Message = %q, want default", err.Message)
	}
	if UserMessage(err) != "request failed" {
		t.Errorf("UserMessage = %q", UserMessage(err))
	}
}

func TestTransportErrorUnwrap(t *testing.T) {
	err := NewTransportError("events.list", 0, context.Canceled)
	if !stderrors.Is(err, context.Canceled) {
		t.Error("transport error should unwrap to the original error")
	}
	if err.Message != NetworkErrorMessage {
		t.Errorf("Message = %q, want network error", err.Message)
	}
}
