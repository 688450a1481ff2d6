// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package submission coordinates the irreversible ballot hand-off.

A Coordinator drives exactly one submission attempt through the lifecycle

	idle -> confirming -> submitting -> awaiting-ledger -> accepted
	                                                    -> rejected

# Flow

	sub := submission.New(draft, ledgerClient, submission.Options{
		ElectionID:    snap.ID,
		VoterIdentity: voterHash,
		Timeout:       cfg.SubmitTimeout,
	})

	entries, err := sub.RequestConfirm() // gated on draft.IsComplete()
	// ... voter reviews entries ...
	result, err := sub.Confirm(ctx)      // the one cast-vote call

RequestConfirm fails with ErrIncompleteBallot and stays idle if any role
is unselected. On success it freezes the draft and snapshots the
selections, so the summary the voter acknowledges is exactly what a later
Confirm submits. Cancel abandons a pending confirmation and unfreezes the
draft; it is the last exit before the irreversible part.

# At-Most-Once

Confirm fires the cast-vote call exactly once per coordinator, using the
selections snapshot taken at RequestConfirm. Concurrent or repeated
Confirm calls while one is in flight get ErrSubmissionInFlight and cause
no second ledger call. The UI treats that error as benign (the submit
button was double-clicked).

# Terminal States

Accepted carries the receipt ID and ledger reference; both are immutable
from then on and the session discards the draft. Rejected carries a reason
code (timeout, window-closed, duplicate-vote, identity-rejected,
transport-error) and unfreezes the draft. Retryable(reason) reports
whether a retry is sensible - it is for timeouts and transport errors,
not for window-closed or duplicate-vote. Retrying means creating a new
Coordinator over the same draft; a coordinator never leaves a terminal
state.
*/
package submission
