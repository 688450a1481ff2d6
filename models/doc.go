// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateElectionRequest: title, kind, voting window, roles with candidates
  - SelectRequest: role_id, candidate_id

# Response Types

Types for JSON responses:

  - CreateElectionResponse: election_id, admin_key
  - EnterBoothResponse: booth_token, election snapshot, draft view
  - SummaryResponse: per-role review entries for the confirmation screen
  - SubmissionStatusResponse: state, reason, receipt_id, ledger_ref
  - ReceiptResponse: receipt lookup with check code and humanized age
  - VerificationResponse: last-seen verification record plus guidance note
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - ElectionSnapshot: immutable election view (roles, candidates, window)
  - Role, Candidate: positions being elected and who is standing
  - DraftView, RoleProgress, SummaryEntry: ballot draft projections
  - Receipt: durable record of an accepted submission
  - VerificationRecord: one snapshot from a verification poll stream

# Constants

Election kind:

	KindSingleRole = "single-role"
	KindMultiRole  = "multi-role"

Derived election status:

	StatusUpcoming = "upcoming"
	StatusOpen     = "open"
	StatusClosed   = "closed"

Role navigation state:

	RoleUnvisited = "unvisited"
	RoleActive    = "active"
	RoleCompleted = "completed"

Verification status:

	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationFailed   = "failed"
*/
package models
