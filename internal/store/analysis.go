// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

package store

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/aerocite/aerocite/internal/models"
)

// AnalysisStore persists derived analysis results keyed by record id.
// Because record ids embed the session id, all results of one session
// share a key prefix and can be listed without a secondary index.
type AnalysisStore struct {
	db *badger.DB
}

// NewAnalysisStore creates an analysis store backed by the shared database.
func NewAnalysisStore(db *badger.DB) *AnalysisStore {
	return &AnalysisStore{db: db}
}

// Get retrieves one analysis result by record id.
func (s *AnalysisStore) Get(ctx context.Context, recordID string) (*models.AnalysisResult, error) {
	var ar models.AnalysisResult
	err := getJSON(s.db, analysisKeyPrefix+recordID, &ar)
	if isKeyNotFound(err) {
		return nil, fmt.Errorf("%w: analysis result %s", models.ErrNotFound, recordID)
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis %s: %w", recordID, err)
	}
	return &ar, nil
}

// Put writes an analysis result, overwriting any previous version for the
// same record id (idempotent re-ingestion).
func (s *AnalysisStore) Put(ctx context.Context, ar *models.AnalysisResult) error {
	if err := putJSON(s.db, analysisKeyPrefix+ar.RecordID, ar); err != nil {
		return fmt.Errorf("put analysis %s: %w", ar.RecordID, err)
	}
	return nil
}

// ListBySession returns all analysis results of one session in key order.
func (s *AnalysisStore) ListBySession(ctx context.Context, sessionID string) ([]models.AnalysisResult, error) {
	prefix := []byte(analysisKeyPrefix + sessionID + ":")

	var out []models.AnalysisResult
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var ar models.AnalysisResult
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &ar)
			}); err != nil {
				return err
			}
			out = append(out, ar)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list analysis for session %s: %w", sessionID, err)
	}
	return out, nil
}
