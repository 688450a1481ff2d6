// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3419)
  - DatabaseURL: Database connection string (required)
  - DatabaseType: "sqlite" or "postgres" (default: sqlite)
  - LedgerURL: Base URL of the external ledger gateway (required)
  - AdminKeySalt: Secret for admin key HMAC (required)
  - IdentitySalt: Secret for voter identity hashing (required)
  - SubmitTimeout: Bound on the cast-vote call (default: 15s)
  - VerifyInterval: Delay between verification polls (default: 2s)
  - VerifyTimeout: Per-poll verification timeout (default: 5s)
  - VerifyAttempts: Verification poll budget (default: 10)

# CLI Flags

	-p                Server port
	-d                Database URL
	-t                Database type
	-l                Ledger gateway URL
	--admin-salt      Admin key salt
	--identity-salt   Voter identity salt
	--submit-timeout  Cast-vote timeout
	--verify-interval Poll interval
	--verify-timeout  Per-poll timeout
	--verify-attempts Poll attempt budget

# Environment Variables

Flags fall back to environment variables:

	PORT            → -p
	DATABASE_URL    → -d
	DATABASE_TYPE   → -t
	LEDGER_URL      → -l
	ADMIN_KEY_SALT  → --admin-salt
	IDENTITY_SALT   → --identity-salt
	SUBMIT_TIMEOUT  → --submit-timeout
	VERIFY_INTERVAL → --verify-interval
	VERIFY_TIMEOUT  → --verify-timeout
	VERIFY_ATTEMPTS → --verify-attempts

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - LEDGER_URL must be provided
  - ADMIN_KEY_SALT must be provided
  - IDENTITY_SALT must be provided

# Example

	// In main.go
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open("sqlite", cfg.DatabaseURL)
	// ...
	mux := router.NewRouter(db, cfg, lc, sessions)
*/
package cliparse
