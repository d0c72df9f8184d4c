// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		kind      Kind
		retryable bool
	}{
		{"unauthorized", 401, KindAuthenticationRequired, false},
		{"forbidden", 403, KindPermissionDenied, false},
		{"not found", 404, KindNotFound, false},
		{"bad request", 400, KindValidation, false},
		{"unprocessable", 422, KindValidation, false},
		{"rate limited", 429, KindTransient, true},
		{"server error", 500, KindTransient, true},
		{"bad gateway", 502, KindTransient, true},
		{"teapot", 418, KindUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyStatus("test_op", tt.status, nil)

			var se *ServiceError
			if !errors.As(err, &se) {
				t.Fatalf("classifyStatus() = %T, want *ServiceError", err)
			}
			if se.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", se.Kind, tt.kind)
			}
			if se.Retryable() != tt.retryable {
				t.Errorf("Retryable() = %v, want %v", se.Retryable(), tt.retryable)
			}
			if se.Status != tt.status {
				t.Errorf("Status = %d, want %d", se.Status, tt.status)
			}
		})
	}
}

func TestClassifySentinels(t *testing.T) {
	if KindOf(classify("op", ErrNoSession)) != KindAuthenticationRequired {
		t.Error("ErrNoSession should classify as authentication required")
	}
	if KindOf(classify("op", ErrEmptyInput)) != KindValidation {
		t.Error("ErrEmptyInput should classify as validation")
	}
	if KindOf(classify("op", context.DeadlineExceeded)) != KindTransient {
		t.Error("deadline exceeded should classify as transient")
	}
}

func TestServiceErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	se := &ServiceError{Kind: KindUnknown, Op: "op", Err: inner}
	if !errors.Is(se, inner) {
		t.Error("errors.Is should reach the wrapped error")
	}
}

func TestKindOfPlainError(t *testing.T) {
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("plain error should report KindUnknown")
	}
	if KindOf(nil) != KindUnknown {
		t.Error("nil error should report KindUnknown")
	}
}
