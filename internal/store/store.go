// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

// Package store provides the BadgerDB-backed key-addressed stores for the
// pipeline: sessions, catalog records, analysis results, and the active
// rule set.
//
// The core contract is deliberately narrow: get current state / put new
// state by key. Writes are last-write-wins; the lifecycle coordinator's
// idempotency-on-status check tolerates concurrent refreshes of the same
// key. Values are JSON-encoded with goccy/go-json.
package store

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Key prefixes for BadgerDB storage.
const (
	sessionKeyPrefix  = "session:"
	recordKeyPrefix   = "record:"
	analysisKeyPrefix = "analysis:"
	rulesKeyPrefix    = "rules:"
)

// Options configures the BadgerDB instance backing all stores.
type Options struct {
	// Path is the on-disk directory for the database. Empty with InMemory
	// set runs fully in memory (tests).
	Path string

	// InMemory runs BadgerDB without disk persistence.
	InMemory bool

	// SyncWrites forces fsync on every write. Decisions are money; the
	// default is on.
	SyncWrites bool
}

// Open opens (or creates) the BadgerDB database backing all stores.
func Open(opts Options) (*badger.DB, error) {
	bopts := badger.DefaultOptions(opts.Path)
	bopts.SyncWrites = opts.SyncWrites
	bopts.InMemory = opts.InMemory
	bopts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	return db, nil
}

// getJSON reads and decodes one key inside a view transaction. A missing
// key is reported as badger.ErrKeyNotFound for the caller to translate
// into the domain taxonomy.
func getJSON(db *badger.DB, key string, out interface{}) error {
	return db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
}

// putJSON encodes and writes one key inside an update transaction.
func putJSON(db *badger.DB, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

func isKeyNotFound(err error) bool {
	return errors.Is(err, badger.ErrKeyNotFound)
}
