// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

package services

import (
	"context"
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/aerocite/aerocite/internal/logging"
)

const (
	defaultGCInterval     = 5 * time.Minute
	defaultGCDiscardRatio = 0.5
)

// BadgerGCService periodically runs Badger value log garbage collection.
// Badger does not reclaim value log space on its own; without this loop a
// long-lived deployment grows its on-disk footprint indefinitely.
type BadgerGCService struct {
	db           *badger.DB
	interval     time.Duration
	discardRatio float64
}

// NewBadgerGCService creates the maintenance loop. A non-positive interval
// falls back to five minutes.
func NewBadgerGCService(db *badger.DB, interval time.Duration) *BadgerGCService {
	if interval <= 0 {
		interval = defaultGCInterval
	}
	return &BadgerGCService{
		db:           db,
		interval:     interval,
		discardRatio: defaultGCDiscardRatio,
	}
}

// Serve implements suture.Service. ErrNoRewrite just means there was
// nothing worth collecting this round; any other error is returned so the
// supervisor restarts the loop with backoff.
func (s *BadgerGCService) Serve(ctx context.Context) error {
	log := logging.WithComponent("badger-gc")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// Repeat until a pass finds nothing to rewrite, so backlog
			// from a busy period drains in one tick.
			for {
				err := s.db.RunValueLogGC(s.discardRatio)
				if errors.Is(err, badger.ErrNoRewrite) {
					break
				}
				if err != nil {
					if errors.Is(err, badger.ErrRejected) || s.db.IsClosed() {
						return err
					}
					log.Warn().Err(err).Msg("value log GC pass failed")
					break
				}
				log.Debug().Msg("value log GC reclaimed a file")
			}
		}
	}
}

// String identifies the service in supervisor logs.
func (s *BadgerGCService) String() string {
	return "badger-gc"
}
