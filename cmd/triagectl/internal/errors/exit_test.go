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
	stderrors "errors"
	"fmt"
	"testing"

	zerrors "github.com/kube-zen/zen-triage/pkg/errors"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"validation", zerrors.NewValidationError("op", "bad status", nil), ExitUsage},
		{"config", zerrors.NewConfigError("op", "bad url", nil), ExitUsage},
		{"transport", zerrors.NewTransportError("op", 503, nil), ExitTransport},
		{"application", zerrors.NewApplicationError("op", 400, "rejected"), ExitApplication},
		{"wrapped application", fmt.Errorf("list: %w", zerrors.NewApplicationError("op", 500, "x")), ExitApplication},
		{"plain", stderrors.New("boom"), ExitGeneric},
		{"explicit", NewUsageError(stderrors.New("missing id")), ExitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromError(tt.err)
			if got.Code != tt.code {
				t.Errorf("FromError(%v).Code = %d, want %d", tt.err, got.Code, tt.code)
			}
		})
	}
	if FromError(nil) != nil {
		t.Error("FromError(nil) should be nil")
	}
}

func TestMessage(t *testing.T) {
	err := NewExitError(ExitApplication, zerrors.NewApplicationError("op", 400, "event already resolved"))
	if got := Message(err); got != "event already resolved" {
		t.Errorf("Message() = %q", got)
	}
	if got := Message(stderrors.New("boom")); got != "boom" {
		t.Errorf("Message() = %q", got)
	}
}
