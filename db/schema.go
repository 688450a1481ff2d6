// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The SQL is kept portable across sqlite and postgres: no driver-specific
// column types, CURRENT_TIMESTAMP instead of NOW().
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Elections
CREATE TABLE IF NOT EXISTS election (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    instructions TEXT,
    kind TEXT NOT NULL CHECK (kind IN ('single-role', 'multi-role')),
    window_start TIMESTAMP NOT NULL,
    window_end TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_election_window_end ON election(window_end);

-- Roles (positions being elected), ordered by position within an election
CREATE TABLE IF NOT EXISTS role (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    description TEXT,
    position INTEGER NOT NULL,
    UNIQUE (election_id, position)
);

CREATE INDEX IF NOT EXISTS idx_role_election_id ON role(election_id);

-- Candidates, ordered by position within a role
CREATE TABLE IF NOT EXISTS candidate (
    id TEXT PRIMARY KEY,
    role_id TEXT NOT NULL REFERENCES role(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    affiliation TEXT,
    statement TEXT,
    image_ref TEXT,
    position INTEGER NOT NULL,
    UNIQUE (role_id, position)
);

CREATE INDEX IF NOT EXISTS idx_candidate_role_id ON candidate(role_id);

-- Receipts: durable record of accepted submissions
CREATE TABLE IF NOT EXISTS receipt (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    ledger_ref TEXT NOT NULL,
    voter_hash TEXT NOT NULL,
    ip_hash TEXT,
    user_agent TEXT,
    submitted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (election_id, voter_hash)
);

CREATE INDEX IF NOT EXISTS idx_receipt_election_id ON receipt(election_id);
`
