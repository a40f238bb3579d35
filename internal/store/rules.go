// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/aerocite/aerocite/internal/models"
	"github.com/aerocite/aerocite/internal/rules"
)

// StoredRuleSet wraps the active rule set with upload bookkeeping.
type StoredRuleSet struct {
	RuleSet   rules.RuleSet `json:"rule_set"`
	SHA256    string        `json:"sha256"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// RuleSetStore persists rule sets under a fixed logical name. The engine
// only ever needs "fetch the currently active rule set"; versioning of
// uploads lives outside the core.
type RuleSetStore struct {
	db *badger.DB
}

// NewRuleSetStore creates a rule-set store backed by the shared database.
func NewRuleSetStore(db *badger.DB) *RuleSetStore {
	return &RuleSetStore{db: db}
}

// GetActive retrieves the currently active rule set. Callers must fetch it
// at the moment of evaluation, never cache it across requests: a rule-set
// swap must be visible to the very next decision.
func (s *RuleSetStore) GetActive(ctx context.Context) (*StoredRuleSet, error) {
	var stored StoredRuleSet
	err := getJSON(s.db, rulesKeyPrefix+rules.ActiveRuleSetName, &stored)
	if isKeyNotFound(err) {
		return nil, fmt.Errorf("%w: no active rule set uploaded", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get active rule set: %w", err)
	}
	return &stored, nil
}

// PutActive replaces the active rule set in a single key write. The caller
// is responsible for validating the rule set's structural invariants
// before activation; this method only records it.
func (s *RuleSetStore) PutActive(ctx context.Context, rs rules.RuleSet, sha256Hex string) (*StoredRuleSet, error) {
	now := time.Now().UTC()

	stored := StoredRuleSet{
		RuleSet:   rs,
		SHA256:    sha256Hex,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if prev, err := s.GetActive(ctx); err == nil {
		stored.CreatedAt = prev.CreatedAt
	}

	if err := putJSON(s.db, rulesKeyPrefix+rules.ActiveRuleSetName, &stored); err != nil {
		return nil, fmt.Errorf("put active rule set: %w", err)
	}
	return &stored, nil
}
