// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the ballotbooth API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, gateway, sessions)

# Endpoints

Health:

	GET /health

Election management:

	POST /elections            - Create election (returns admin_key)
	GET  /elections            - List elections with window status
	GET  /elections/{id}       - Election detail with roles and candidates
	POST /elections/{id}/close - End the voting window early (X-Admin-Key)

Booth (requires X-Booth-Token after entry):

	POST /elections/{id}/booth - Enter booth (requires X-Voter-Wallet)
	GET  /booth                - Current draft view
	POST /booth/select         - Select a candidate
	POST /booth/advance        - Advance to next role
	POST /booth/retreat        - Return to previous role
	GET  /booth/summary        - Ballot summary

Submission (requires X-Booth-Token):

	POST /booth/confirm    - Request confirmation summary
	POST /booth/cancel     - Back out of confirmation
	POST /booth/submit     - Cast the ballot to the ledger
	GET  /booth/submission - Submission state

Receipts (public, by receipt ID):

	GET    /receipts/{id}              - Receipt with check code
	GET    /receipts/{id}/verification - Last-seen verification record
	DELETE /receipts/{id}/verification - Stop the verification watch

# Handler Initialization

The router creates handler instances with dependency injection:

	electionHandler := handlers.NewElectionHandler(db, cfg)
	boothHandler := handlers.NewBoothHandler(db, cfg, sessions)
	submissionHandler := handlers.NewSubmissionHandler(db, cfg, sessions, gateway)
	receiptHandler := handlers.NewReceiptHandler(db, cfg, gateway)

The ledger gateway client serves both as the ballot caster and the receipt
verifier.
*/
package router
