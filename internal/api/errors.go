// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

package api

import (
	"errors"
	"net/http"

	"github.com/aerocite/aerocite/internal/models"
)

// Error codes returned in API error responses.
const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeValidationError     = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodePreconditionFailed  = "PRECONDITION_FAILED"
	CodeRuleConfigError     = "RULE_CONFIG_ERROR"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeInternalError       = "INTERNAL_ERROR"
)

// respondServiceError maps a service-layer error to the HTTP response
// dictated by the error taxonomy.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, CodeInvalidInput, err.Error(), nil)
	case errors.Is(err, models.ErrNotFound):
		respondError(w, http.StatusNotFound, CodeNotFound, err.Error(), nil)
	case errors.Is(err, models.ErrPreconditionFailed):
		respondError(w, http.StatusConflict, CodePreconditionFailed, err.Error(), nil)
	case errors.Is(err, models.ErrRuleConfig):
		respondError(w, http.StatusInternalServerError, CodeRuleConfigError, err.Error(), err)
	case errors.Is(err, models.ErrUpstreamUnavailable):
		respondError(w, http.StatusBadGateway, CodeUpstreamUnavailable, err.Error(), err)
	default:
		respondError(w, http.StatusInternalServerError, CodeInternalError, "internal error", err)
	}
}
