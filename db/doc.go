// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The SQL is portable across sqlite (default, modernc.org/sqlite) and
postgres (lib/pq).

# Tables

The schema includes:

  - election: Election metadata, kind, and voting window
  - role: Positions being elected, ordered within an election
  - candidate: Candidates, ordered within a role
  - receipt: Durable record of accepted ballot submissions

# Relationships

	election 1──* role
	role     1──* candidate
	election 1──* receipt

All foreign keys use ON DELETE CASCADE.

Note: ballot drafts and submission state are deliberately NOT persisted.
A draft lives only inside its booth session; the receipt row is written
once, after the ledger gateway accepts the submission.

# Indexes

Performance indexes on:

  - election.window_end
  - role.election_id
  - candidate.role_id
  - receipt.election_id
  - receipt.(election_id, voter_hash) (unique)
*/
package db
