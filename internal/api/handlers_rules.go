// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

package api

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/aerocite/aerocite/internal/logging"
	"github.com/aerocite/aerocite/internal/rules"
)

// maxRuleSetBytes bounds rule set uploads.
const maxRuleSetBytes = 1 << 20

// GetRules handles GET /api/v1/rules, returning the active rule set with
// its checksum and timestamps.
func (h *Handler) GetRules(w http.ResponseWriter, r *http.Request) {
	stored, err := h.ruleSets.GetActive(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, stored)
}

// PutRules handles PUT /api/v1/rules. The uploaded rule set is validated
// before it replaces the active one; an invalid upload never becomes
// active.
func (h *Handler) PutRules(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRuleSetBytes+1))
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidInput, "read request body", nil)
		return
	}
	if len(body) > maxRuleSetBytes {
		respondError(w, http.StatusRequestEntityTooLarge, CodeInvalidInput, "rule set too large", nil)
		return
	}

	var rs rules.RuleSet
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rs); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidInput, "decode rule set: "+err.Error(), nil)
		return
	}

	if err := rs.Validate(); err != nil {
		// Rejected at upload time, so the failure is the caller's.
		respondError(w, http.StatusBadRequest, CodeValidationError, err.Error(), nil)
		return
	}

	sum := sha256.Sum256(body)
	stored, err := h.ruleSets.PutActive(r.Context(), rs, hex.EncodeToString(sum[:]))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("sha256", stored.SHA256).
		Int("brackets", len(rs.Brackets)).
		Msg("Active rule set replaced")
	respondSuccess(w, http.StatusOK, stored)
}
