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

	zerrors "github.com/kube-zen/zen-triage/pkg/errors"
)

// Exit codes
const (
	ExitGeneric     = 1
	ExitUsage       = 2
	ExitTransport   = 3
	ExitApplication = 4
)

// ExitError represents a command error with a specific exit code
type ExitError struct {
	Code int
	Err  error
}

// Error implements the error interface
func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("exit code %d: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

// Unwrap returns the underlying error
func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given exit code and error
func NewExitError(code int, err error) *ExitError {
	return &ExitError{Code: code, Err: err}
}

// NewUsageError wraps a command line usage mistake
func NewUsageError(err error) *ExitError {
	return &ExitError{Code: ExitUsage, Err: err}
}

// FromError maps err to an exit code by its category. nil maps to nil.
func FromError(err error) *ExitError {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr
	}
	switch zerrors.CategoryOf(err) {
	case zerrors.VALIDATION_ERROR, zerrors.CONFIG_ERROR:
		return NewExitError(ExitUsage, err)
	case zerrors.TRANSPORT_ERROR:
		return NewExitError(ExitTransport, err)
	case zerrors.APPLICATION_ERROR:
		return NewExitError(ExitApplication, err)
	default:
		return NewExitError(ExitGeneric, err)
	}
}

// Message returns the operator-facing text of err
func Message(err error) string {
	var exitErr *ExitError
	if stderrors.As(err, &exitErr) && exitErr.Err != nil {
		err = exitErr.Err
	}
	return zerrors.UserMessage(err)
}
