// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

// Package api exposes the Aerocite HTTP surface: session registration and
// manifest ingestion (analytics), record lookup, re-checks and manual
// reviews (catalog), rule set management, and the penalty check endpoint
// used by remote deployments.
package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-chi/chi/v5"

	"github.com/aerocite/aerocite/internal/analytics"
	"github.com/aerocite/aerocite/internal/catalog"
	"github.com/aerocite/aerocite/internal/config"
	"github.com/aerocite/aerocite/internal/models"
	"github.com/aerocite/aerocite/internal/penalty"
	"github.com/aerocite/aerocite/internal/store"
)

// Handler holds the services behind the HTTP surface.
type Handler struct {
	analytics       *analytics.Service
	catalog         *catalog.Coordinator
	penalty         *penalty.Service
	ruleSets        *store.RuleSetStore
	db              *badger.DB
	defaultPageSize int
	maxPageSize     int
}

// NewHandler creates an API handler. Page sizes come from the API
// configuration; zero or negative values fall back to the built-in
// defaults.
func NewHandler(
	analyticsSvc *analytics.Service,
	catalogCoord *catalog.Coordinator,
	penaltySvc *penalty.Service,
	ruleSets *store.RuleSetStore,
	db *badger.DB,
	apiCfg *config.APIConfig,
) *Handler {
	h := &Handler{
		analytics:       analyticsSvc,
		catalog:         catalogCoord,
		penalty:         penaltySvc,
		ruleSets:        ruleSets,
		db:              db,
		defaultPageSize: 20,
		maxPageSize:     100,
	}
	if apiCfg != nil {
		if apiCfg.DefaultPageSize > 0 {
			h.defaultPageSize = apiCfg.DefaultPageSize
		}
		if apiCfg.MaxPageSize > 0 {
			h.maxPageSize = apiCfg.MaxPageSize
		}
	}
	return h
}

// StartSession handles POST /api/v1/sessions.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req analytics.StartSessionRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidInput, err.Error(), nil)
		return
	}

	session, err := h.analytics.StartSession(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, session)
}

// GetSession handles GET /api/v1/sessions/{sessionID}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.analytics.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, session)
}

// SubmitManifest handles POST /api/v1/sessions/{sessionID}/manifest.
func (h *Handler) SubmitManifest(w http.ResponseWriter, r *http.Request) {
	var manifest models.Manifest
	if err := decodeJSONBody(r, &manifest); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidInput, err.Error(), nil)
		return
	}

	session, err := h.analytics.SubmitManifest(r.Context(), chi.URLParam(r, "sessionID"), &manifest)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, session)
}

// ListResults handles GET /api/v1/sessions/{sessionID}/results.
//
// Query parameters:
//   - limit: page size (default from config, capped at the configured max)
//   - offset: number of results to skip
func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := h.parsePagination(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidInput, err.Error(), nil)
		return
	}

	results, err := h.analytics.ListResults(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, pageOf(results, limit, offset))
}

// parsePagination reads limit/offset query parameters, applying the
// configured default and maximum page sizes.
func (h *Handler) parsePagination(r *http.Request) (limit, offset int, err error) {
	limit = h.defaultPageSize
	if s := r.URL.Query().Get("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit < 1 {
			return 0, 0, fmt.Errorf("invalid limit %q", s)
		}
	}
	if limit > h.maxPageSize {
		limit = h.maxPageSize
	}
	if s := r.URL.Query().Get("offset"); s != "" {
		offset, err = strconv.Atoi(s)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset %q", s)
		}
	}
	return limit, offset, nil
}

// pageOf returns the requested page of results. An offset past the end
// yields an empty page, not an error.
func pageOf(results []models.AnalysisResult, limit, offset int) []models.AnalysisResult {
	if offset >= len(results) {
		return []models.AnalysisResult{}
	}
	end := offset + limit
	if end > len(results) {
		end = len(results)
	}
	return results[offset:end]
}

// GetRecord handles GET /api/v1/records/{recordID}.
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := h.catalog.GetRecord(r.Context(), chi.URLParam(r, "recordID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, rec)
}

// GetRecordStatus handles GET /api/v1/records/{recordID}/status.
func (h *Handler) GetRecordStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.catalog.GetRecordStatus(r.Context(), chi.URLParam(r, "recordID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, status)
}

// RunCheck handles POST /api/v1/records/{recordID}/run-check.
func (h *Handler) RunCheck(w http.ResponseWriter, r *http.Request) {
	rec, err := h.catalog.RunCheck(r.Context(), chi.URLParam(r, "recordID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, rec)
}

// SubmitReview handles POST /api/v1/records/{recordID}/review.
func (h *Handler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var review catalog.ReviewRequest
	if err := decodeJSONBody(r, &review); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidInput, err.Error(), nil)
		return
	}

	rec, err := h.catalog.SubmitReview(r.Context(), chi.URLParam(r, "recordID"), &review)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, rec)
}

// PenaltyCheck handles POST /api/v1/penalty/check. This is the endpoint a
// remote HTTPChecker calls.
func (h *Handler) PenaltyCheck(w http.ResponseWriter, r *http.Request) {
	var req penalty.CheckRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidInput, err.Error(), nil)
		return
	}

	resp, err := h.penalty.Check(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, resp)
}

// HealthLive handles GET /api/v1/health/live.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]string{"status": "alive"})
}

// HealthReady handles GET /api/v1/health/ready. Readiness requires the
// store to be open.
func (h *Handler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	if h.db == nil || h.db.IsClosed() {
		respondError(w, http.StatusServiceUnavailable, CodeInternalError, "store not ready", nil)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.HealthReady(w, r)
}
