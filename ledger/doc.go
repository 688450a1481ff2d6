// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger is the HTTP client for the external ledger gateway.

The gateway records accepted ballots on a tamper-evident ledger and is the
sole authority on acceptance. This package exposes exactly the two
operations the core consumes and nothing about the ledger's internals.

# Casting

	reply, err := client.CastVote(ctx, ledger.CastVoteArgs{
		ElectionID:    electionID,
		Selections:    draft.Selections(),
		VoterIdentity: voterHash,
	})

A successful reply carries the receipt ID and ledger reference that prove
acceptance. Gateway rejections map to sentinel errors: ErrWindowClosed,
ErrDuplicateVote, ErrIdentityRejected. Anything else - connection failures,
timeouts, unexpected statuses - should be treated as a transport error.

CastVote never retries; at-most-once is the submission coordinator's
responsibility and retrying here would break it.

# Verifying

	reply, err := client.VerifyReceipt(ctx, receiptID)

Repeatedly callable; returns ErrReceiptNotFound when the gateway has no
record of the receipt. reply.Verified combined with a matching ledger_ref
is what the verification poller treats as confirmation.

# Error Bodies

Gateway errors arrive as JSON bodies of the form {"error": "code"}; the
code is mapped to the sentinel errors above, unknown codes are wrapped
with the HTTP status line.
*/
package ledger
