// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the client for the ai-reddit backend: conversation
// CRUD, message send, and the streaming response consumer.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies a service failure. UI code branches only on Kind;
// raw network errors never leak past this package.
type Kind int

const (
	// KindUnknown is the fallback for anything unclassified.
	KindUnknown Kind = iota

	// KindAuthenticationRequired means there is no valid session. This
	// routes to a sign-in prompt, never a generic error banner.
	KindAuthenticationRequired

	// KindPermissionDenied means the session is valid but the resource
	// belongs to someone else.
	KindPermissionDenied

	// KindNotFound means the conversation or message does not exist.
	KindNotFound

	// KindValidation means the input was rejected before or by the
	// backend (empty message, bad field).
	KindValidation

	// KindTransient covers network failures, timeouts and 5xx, worth
	// retrying where the operation is idempotent.
	KindTransient
)

// String returns the kind name for logging.
func (k Kind) String() string {
	switch k {
	case KindAuthenticationRequired:
		return "authentication_required"
	case KindPermissionDenied:
		return "permission_denied"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Sentinel errors raised before any network call.
var (
	// ErrNoSession indicates no valid session token is available.
	ErrNoSession = errors.New("no valid session")

	// ErrEmptyInput indicates the trimmed user input was empty.
	ErrEmptyInput = errors.New("message content is empty")
)

// ServiceError is the classified failure every operation returns.
type ServiceError struct {
	Kind    Kind
	Op      string // operation, e.g. "list_conversations"
	Message string // user-facing text
	Status  int    // HTTP status when one was received
	Err     error  // underlying cause
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d): %s", e.Op, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is worth retrying.
func (e *ServiceError) Retryable() bool {
	return e.Kind == KindTransient
}

// KindOf extracts the classification from any error; non-service
// errors report KindUnknown.
func KindOf(err error) Kind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// apiErrorBody is the backend's error envelope.
type apiErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// classify is the single classification point at the service boundary
// (spec'd replacement for dispatching on arbitrary error shapes).
func classify(op string, err error) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}

	switch {
	case errors.Is(err, ErrNoSession):
		return &ServiceError{Kind: KindAuthenticationRequired, Op: op, Message: "Please sign in to continue.", Err: err}
	case errors.Is(err, ErrEmptyInput):
		return &ServiceError{Kind: KindValidation, Op: op, Message: "Message cannot be empty.", Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &ServiceError{Kind: KindTransient, Op: op, Message: "The server is taking too long to respond.", Err: err}
	case errors.Is(err, context.Canceled):
		return &ServiceError{Kind: KindUnknown, Op: op, Message: "Request canceled.", Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &ServiceError{Kind: KindTransient, Op: op, Message: "The server is taking too long to respond.", Err: err}
		}
		return &ServiceError{Kind: KindTransient, Op: op, Message: "Could not reach the server.", Err: err}
	}

	return &ServiceError{Kind: KindUnknown, Op: op, Message: err.Error(), Err: err}
}

// classifyStatus maps an HTTP error response to the taxonomy.
func classifyStatus(op string, status int, body []byte) *ServiceError {
	msg := ""
	var envelope apiErrorBody
	if err := json.Unmarshal(body, &envelope); err == nil {
		msg = envelope.Error.Message
	}

	se := &ServiceError{Op: op, Status: status, Message: msg, Err: fmt.Errorf("http %d", status)}

	switch {
	case status == http.StatusUnauthorized:
		se.Kind = KindAuthenticationRequired
		if se.Message == "" {
			se.Message = "Your session has expired. Please sign in again."
		}
	case status == http.StatusForbidden:
		se.Kind = KindPermissionDenied
		if se.Message == "" {
			se.Message = "You don't have access to this conversation."
		}
	case status == http.StatusNotFound:
		se.Kind = KindNotFound
		if se.Message == "" {
			se.Message = "Conversation not found."
		}
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		se.Kind = KindValidation
		if se.Message == "" {
			se.Message = "The request was invalid."
		}
	case status == http.StatusTooManyRequests || status >= 500:
		se.Kind = KindTransient
		if se.Message == "" {
			se.Message = "The server is having trouble. Please try again."
		}
	default:
		se.Kind = KindUnknown
		if se.Message == "" {
			se.Message = fmt.Sprintf("Unexpected server response (HTTP %d).", status)
		}
	}

	return se
}
