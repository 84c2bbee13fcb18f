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
	"net/http"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	// TRANSPORT_ERROR indicates a network or HTTP-layer failure
	TRANSPORT_ERROR ErrorCategory = "TRANSPORT_ERROR"
	// APPLICATION_ERROR indicates a response envelope with a non-success code
	APPLICATION_ERROR ErrorCategory = "APPLICATION_ERROR"
	// VALIDATION_ERROR indicates input rejected before anything was sent
	VALIDATION_ERROR ErrorCategory = "VALIDATION_ERROR"
	// CONFIG_ERROR indicates a configuration error
	CONFIG_ERROR ErrorCategory = "CONFIG_ERROR"
)

// NetworkErrorMessage is reported when no HTTP response was received at all.
const NetworkErrorMessage = "network error, please retry later"

// ConsoleError represents a categorized console client error
type ConsoleError struct {
	Category ErrorCategory
	// Op names the client operation, e.g. "events.list".
	Op string
	// StatusCode is the HTTP status for transport errors and the envelope
	// code for application errors. Zero when not applicable.
	StatusCode  int
	Message     string
	OriginalErr error
}

func (e *ConsoleError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Category, e.Op, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Op, e.Message)
}

// Unwrap returns the underlying error
func (e *ConsoleError) Unwrap() error {
	return e.OriginalErr
}

// StatusMessage maps an HTTP status code to the fixed user-facing message.
// A status of 0 means the request never produced a response.
func StatusMessage(status int) string {
	switch status {
	case 0:
		return NetworkErrorMessage
	case http.StatusBadRequest:
		return "bad request"
	case http.StatusUnauthorized:
		return "unauthorized, please log in again"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "requested resource not found"
	case http.StatusInternalServerError:
		return "internal server error"
	default:
		return fmt.Sprintf("request failed (%d)", status)
	}
}

// NewTransportError creates a new TRANSPORT_ERROR with the message taken from the status table
func NewTransportError(op string, status int, err error) *ConsoleError {
	return &ConsoleError{
		Category:    TRANSPORT_ERROR,
		Op:          op,
		StatusCode:  status,
		Message:     StatusMessage(status),
		OriginalErr: err,
	}
}

// NewApplicationError creates a new APPLICATION_ERROR carrying the server message
func NewApplicationError(op string, code int, message string) *ConsoleError {
	if message == "" {
		message = "request failed"
	}
	return &ConsoleError{
		Category:   APPLICATION_ERROR,
		Op:         op,
		StatusCode: code,
		Message:    message,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(op, message string, err error) *ConsoleError {
	return &ConsoleError{
		Category:    VALIDATION_ERROR,
		Op:          op,
		Message:     message,
		OriginalErr: err,
	}
}

// NewConfigError creates a new CONFIG_ERROR
func NewConfigError(op, message string, err error) *ConsoleError {
	return &ConsoleError{
		Category:    CONFIG_ERROR,
		Op:          op,
		Message:     message,
		OriginalErr: err,
	}
}

// CategoryOf returns the category of the first ConsoleError in the chain, or "".
func CategoryOf(err error) ErrorCategory {
	var ce *ConsoleError
	if stderrors.As(err, &ce) {
		return ce.Category
	}
	return ""
}

// IsTransport reports whether err is a TRANSPORT_ERROR
func IsTransport(err error) bool { return CategoryOf(err) == TRANSPORT_ERROR }

// IsApplication reports whether err is an APPLICATION_ERROR
func IsApplication(err error) bool { return CategoryOf(err) == APPLICATION_ERROR }

// IsValidation reports whether err is a VALIDATION_ERROR
func IsValidation(err error) bool { return CategoryOf(err) == VALIDATION_ERROR }

// UserMessage returns the message suitable for an operator-facing notification.
func UserMessage(err error) string {
	var ce *ConsoleError
	if stderrors.As(err, &ce) {
		return ce.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
