// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

package store

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/aerocite/aerocite/internal/models"
)

// RecordStore persists catalog records keyed by record id.
type RecordStore struct {
	db *badger.DB
}

// NewRecordStore creates a record store backed by the shared database.
func NewRecordStore(db *badger.DB) *RecordStore {
	return &RecordStore{db: db}
}

// Get retrieves a catalog record by id.
func (s *RecordStore) Get(ctx context.Context, recordID string) (*models.CatalogRecord, error) {
	var rec models.CatalogRecord
	err := getJSON(s.db, recordKeyPrefix+recordID, &rec)
	if isKeyNotFound(err) {
		return nil, fmt.Errorf("%w: catalog record %s", models.ErrNotFound, recordID)
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", recordID, err)
	}
	return &rec, nil
}

// Put writes the record state. Each record transition is committed
// independently as it completes, which is what keeps partial batch
// progress durable when a later capture fails.
func (s *RecordStore) Put(ctx context.Context, rec *models.CatalogRecord) error {
	if err := putJSON(s.db, recordKeyPrefix+rec.RecordID, rec); err != nil {
		return fmt.Errorf("put record %s: %w", rec.RecordID, err)
	}
	return nil
}
