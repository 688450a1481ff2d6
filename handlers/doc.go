// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the ballotbooth API.

# Handler Types

Each handler is a struct with its dependencies injected via constructor:

  - ElectionHandler: Election creation, listing, detail, and early close
  - BoothHandler: Booth entry and draft ballot composition
  - SubmissionHandler: Confirmation and ledger submission
  - ReceiptHandler: Receipt lookup and verification watches

	electionHandler := handlers.NewElectionHandler(db, cfg)
	boothHandler := handlers.NewBoothHandler(db, cfg, sessions)

# Voting Flow

A voter walks the booth end to end:

	POST /elections/{id}/booth → EnterBooth (X-Voter-Wallet, returns booth_token)
	POST /booth/select         → Select a candidate for a role
	POST /booth/advance        → Next role (multi-role elections)
	POST /booth/retreat        → Previous role, selections preserved
	GET  /booth/summary        → Ordered role/candidate summary
	POST /booth/confirm        → Summary the voter must acknowledge
	POST /booth/submit         → One ledger cast, at most once
	GET  /receipts/{id}        → Receipt with check code

Booth operations require the X-Booth-Token header. An accepted submission
discards the session's draft; later edits get a conflict.

POST /elections/{id}/close ends the window early and requires the
X-Admin-Key returned at creation.

# Submission Outcomes

Submit always answers 200 with the submission state. An accepted ballot
carries receipt_id and ledger_ref and is recorded in the receipt table. A
rejected ballot carries a reason (timeout, window-closed, duplicate-vote,
identity-rejected, transport-error) and whether retrying can help; the draft
survives rejection untouched.

# Verification

GET /receipts/{id}/verification starts a background watch polling the
ledger gateway and returns its last-seen record. The watch reaches verified
or failed on its own; DELETE on the same path stops it early. A failed
verification never invalidates the receipt.
*/
package handlers
