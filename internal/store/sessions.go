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

// SessionStore persists capture sessions keyed by session id.
type SessionStore struct {
	db *badger.DB
}

// NewSessionStore creates a session store backed by the shared database.
func NewSessionStore(db *badger.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Get retrieves a session by id.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	var session models.Session
	err := getJSON(s.db, sessionKeyPrefix+sessionID, &session)
	if isKeyNotFound(err) {
		return nil, fmt.Errorf("%w: session %s", models.ErrNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	return &session, nil
}

// Put writes the session state, overwriting any previous version.
func (s *SessionStore) Put(ctx context.Context, session *models.Session) error {
	if err := putJSON(s.db, sessionKeyPrefix+session.SessionID, session); err != nil {
		return fmt.Errorf("put session %s: %w", session.SessionID, err)
	}
	return nil
}
