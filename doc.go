// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the ballotbooth API server.

Ballotbooth hosts the voting booth for university elections: voters enter a
per-election booth session, compose a ballot role by role, submit it exactly
once to an external tamper-evident ledger gateway, and check their receipt
against the ledger afterwards.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	LEDGER_URL=https://ledger.example.edu go run .

Or with flags:

	go run . -p 3419 -l "https://ledger.example.edu"

# Configuration

Required settings:

  - LEDGER_URL (-l): Ledger gateway base URL
  - ADMIN_KEY_SALT (--admin-salt): Secret for admin key HMAC
  - IDENTITY_SALT (--identity-salt): Secret for voter identity hashing

Optional settings:

  - PORT (-p): Server port (default: 3419)
  - DATABASE_URL (-d): Connection string (default: local sqlite file)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - SUBMIT_TIMEOUT (--submit-timeout): Ledger cast deadline (default: 15s)
  - VERIFY_INTERVAL / VERIFY_TIMEOUT / VERIFY_ATTEMPTS: Verification
    polling cadence, per-attempt deadline, and attempt budget

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (elections, booth, submission, receipts)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Domain and request/response types
  - election: Election snapshot loading and window checks
  - ballot: Draft ballot state machine
  - submission: At-most-once ledger submission
  - verification: Receipt verification polling
  - ledger: Ledger gateway HTTP client
  - session: In-memory booth sessions
  - auth: Tokens, identity hashing, check codes
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
