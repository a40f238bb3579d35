// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

// Package analytics owns flight sessions: it registers them, ingests
// manifest submissions, derives per-capture telemetry, and hands analyzed
// records to the catalog.
//
// Session lifecycle: CREATED -> MANIFEST_PARSED -> ANALYSIS_SAVED ->
// CATALOG_SENT or CATALOG_CALL_FAILED. A failed catalog hand-off can be
// retried by resubmitting the manifest.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aerocite/aerocite/internal/catalog"
	"github.com/aerocite/aerocite/internal/logging"
	"github.com/aerocite/aerocite/internal/metrics"
	"github.com/aerocite/aerocite/internal/models"
	"github.com/aerocite/aerocite/internal/store"
	"github.com/aerocite/aerocite/internal/telemetry"
	"github.com/aerocite/aerocite/internal/validation"
)

// Service manages flight sessions and manifest ingestion.
type Service struct {
	sessions *store.SessionStore
	analysis *store.AnalysisStore
	catalog  *catalog.Coordinator
}

// NewService creates an analytics service.
func NewService(sessions *store.SessionStore, analysis *store.AnalysisStore, cat *catalog.Coordinator) *Service {
	return &Service{sessions: sessions, analysis: analysis, catalog: cat}
}

// StartSessionRequest registers a new flight session.
type StartSessionRequest struct {
	DroneID         string `json:"drone_id" validate:"required"`
	OperatorID      string `json:"operator_id" validate:"required"`
	StartTime       string `json:"start_time,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	PackageChecksum string `json:"package_checksum,omitempty"`
}

// StartSession registers a new flight session in state CREATED.
func (s *Service) StartSession(ctx context.Context, req *StartSessionRequest) (*models.Session, error) {
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidInput, verr.Error())
	}

	now := time.Now().UTC()
	session := &models.Session{
		SessionID:       uuid.New().String(),
		DroneID:         req.DroneID,
		OperatorID:      req.OperatorID,
		Status:          models.SessionCreated,
		PackageChecksum: req.PackageChecksum,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.StartTime != "" {
		t, err := time.Parse(time.RFC3339, req.StartTime)
		if err != nil {
			return nil, fmt.Errorf("%w: start_time: %v", models.ErrInvalidInput, err)
		}
		session.StartTime = t.UTC()
	}

	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	logging.Ctx(ctx).Info().
		Str("session_id", session.SessionID).
		Str("drone_id", session.DroneID).
		Msg("Session registered")
	return session, nil
}

// GetSession returns a session by ID.
func (s *Service) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	return s.sessions.Get(ctx, sessionID)
}

// SubmitManifest ingests a manifest for a session: it verifies identity
// consistency, derives per-capture telemetry, persists the analysis, and
// hands the analyzed records to the catalog.
//
// Resubmitting a manifest is safe: analysis rows are overwritten under the
// same record IDs and already decided catalog records keep their decision.
func (s *Service) SubmitManifest(ctx context.Context, sessionID string, manifest *models.Manifest) (*models.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := checkManifestConsistency(session, manifest); err != nil {
		metrics.ManifestsIngested.WithLabelValues("invalid").Inc()
		return nil, err
	}

	applyManifest(session, manifest)
	session.Status = models.SessionManifestParsed
	session.UpdatedAt = time.Now().UTC()
	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	derived, err := telemetry.Derive(manifest.Captures)
	if err != nil {
		metrics.ManifestsIngested.WithLabelValues("invalid").Inc()
		return nil, err
	}
	metrics.CapturesProcessed.Add(float64(len(derived)))

	now := time.Now().UTC()
	results := make([]models.AnalysisResult, len(derived))
	for i, m := range derived {
		recordID := models.RecordID(sessionID, m.FileKey)
		existing, getErr := s.analysis.Get(ctx, recordID)
		createdAt := now
		if getErr == nil {
			createdAt = existing.CreatedAt
		}
		results[i] = models.AnalysisResult{
			RecordID:       recordID,
			SessionID:      sessionID,
			FileKey:        m.FileKey,
			DistanceMeters: m.DistanceMeters,
			SpeedKmh:       m.SpeedKmh,
			Confidence:     m.Confidence,
			CreatedAt:      createdAt,
			UpdatedAt:      now,
		}
		if err := s.analysis.Put(ctx, &results[i]); err != nil {
			return nil, fmt.Errorf("persist analysis for %s: %w", recordID, err)
		}
	}

	session.Status = models.SessionAnalysisSaved
	session.UpdatedAt = time.Now().UTC()
	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	recs := buildCatalogRecords(session, manifest.Captures, results)
	failed, err := s.catalog.Import(ctx, recs)
	if err != nil {
		return nil, fmt.Errorf("catalog import: %w", err)
	}

	if failed > 0 {
		session.Status = models.SessionCatalogCallFailed
		metrics.ManifestsIngested.WithLabelValues("catalog_failed").Inc()
	} else {
		session.Status = models.SessionCatalogSent
		metrics.ManifestsIngested.WithLabelValues("ok").Inc()
	}
	session.UpdatedAt = time.Now().UTC()
	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	logging.Ctx(ctx).Info().
		Str("session_id", sessionID).
		Int("captures", len(manifest.Captures)).
		Int("failed_decisions", failed).
		Str("status", session.Status).
		Msg("Manifest processed")
	return session, nil
}

// ListResults returns all analysis results for a session. The session must
// exist.
func (s *Service) ListResults(ctx context.Context, sessionID string) ([]models.AnalysisResult, error) {
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.analysis.ListBySession(ctx, sessionID)
}

// checkManifestConsistency rejects manifests whose identity fields
// contradict the registered session.
func checkManifestConsistency(session *models.Session, manifest *models.Manifest) error {
	if len(manifest.Captures) == 0 {
		return fmt.Errorf("%w: manifest has no captures", models.ErrInvalidInput)
	}
	if manifest.DroneID != "" && manifest.DroneID != session.DroneID {
		return fmt.Errorf("%w: manifest drone_id %q does not match session drone_id %q",
			models.ErrInvalidInput, manifest.DroneID, session.DroneID)
	}
	if manifest.OperatorID != "" && manifest.OperatorID != session.OperatorID {
		return fmt.Errorf("%w: manifest operator_id %q does not match session operator_id %q",
			models.ErrInvalidInput, manifest.OperatorID, session.OperatorID)
	}
	if manifest.PackageChecksum != "" && session.PackageChecksum != "" &&
		manifest.PackageChecksum != session.PackageChecksum {
		return fmt.Errorf("%w: manifest package_checksum does not match session", models.ErrInvalidInput)
	}
	for _, field := range []struct {
		name  string
		value string
	}{
		{"start_time", manifest.StartTime},
		{"end_time", manifest.EndTime},
	} {
		if field.value == "" {
			continue
		}
		if _, err := time.Parse(time.RFC3339, field.value); err != nil {
			return fmt.Errorf("%w: manifest %s: %v", models.ErrInvalidInput, field.name, err)
		}
	}
	return nil
}

// applyManifest fills session fields the manifest provides.
func applyManifest(session *models.Session, manifest *models.Manifest) {
	if manifest.PackageChecksum != "" {
		session.PackageChecksum = manifest.PackageChecksum
	}
	if manifest.StartTime != "" {
		if t, err := time.Parse(time.RFC3339, manifest.StartTime); err == nil {
			session.StartTime = t.UTC()
		}
	}
	if manifest.EndTime != "" {
		if t, err := time.Parse(time.RFC3339, manifest.EndTime); err == nil {
			session.EndTime = t.UTC()
		}
	}
}

// buildCatalogRecords merges session identity, raw captures, and derived
// telemetry into catalog records. Captures and results are index-aligned.
func buildCatalogRecords(session *models.Session, captures []models.Capture, results []models.AnalysisResult) []models.CatalogRecord {
	recs := make([]models.CatalogRecord, len(results))
	for i, res := range results {
		recs[i] = models.CatalogRecord{
			RecordID:       res.RecordID,
			SessionID:      res.SessionID,
			FileKey:        res.FileKey,
			DroneID:        session.DroneID,
			OperatorID:     session.OperatorID,
			TakenAt:        captures[i].TakenAt,
			Latitude:       captures[i].Latitude,
			Longitude:      captures[i].Longitude,
			Altitude:       captures[i].Altitude,
			DistanceMeters: res.DistanceMeters,
			SpeedKmh:       res.SpeedKmh,
			Confidence:     res.Confidence,
			Status:         models.RecordReceived,
		}
	}
	return recs
}
