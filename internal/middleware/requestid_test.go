// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/aerocite/aerocite/internal/logging"
)

func TestRequestIDGenerated(t *testing.T) {
	var gotID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if gotID == "" {
		t.Fatal("request ID missing from context")
	}
	if _, err := uuid.Parse(gotID); err != nil {
		t.Errorf("request ID %q is not a valid UUID: %v", gotID, err)
	}
	if hdr := rec.Header().Get("X-Request-ID"); hdr != gotID {
		t.Errorf("X-Request-ID header = %q, want %q", hdr, gotID)
	}
}

func TestRequestIDFromUpstream(t *testing.T) {
	const upstream = "proxy-supplied-id-123"

	var gotID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions", nil)
	req.Header.Set("X-Request-ID", upstream)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if gotID != upstream {
		t.Errorf("context request ID = %q, want %q", gotID, upstream)
	}
	if hdr := rec.Header().Get("X-Request-ID"); hdr != upstream {
		t.Errorf("X-Request-ID header = %q, want %q", hdr, upstream)
	}
}

func TestRequestIDLoggingContext(t *testing.T) {
	var loggedID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loggedID = logging.RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if loggedID == "" {
		t.Error("request ID not propagated to logging context")
	}
}

func TestGetRequestIDMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := GetRequestID(req.Context()); id != "" {
		t.Errorf("GetRequestID() = %q, want empty", id)
	}
}
