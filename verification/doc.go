// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package verification polls the ledger gateway to confirm a receipt.

Verification is best-effort and strictly after the fact: acceptance was
already decided by the submission reply, and a failed verification means
"could not confirm automatically", never "the vote was not counted".

# Polling

	poller := verification.Poller{
		Verifier:       ledgerClient,
		Interval:       cfg.VerifyInterval,
		Attempts:       cfg.VerifyAttempts,
		AttemptTimeout: cfg.VerifyTimeout,
	}
	for rec := range poller.Start(ctx, receiptID, ledgerRef) {
		// render rec
	}

The stream is finite: pending records while the ledger catches up, then
exactly one terminal record (verified or failed), then the channel closes.
Status never moves backwards.

# Outcomes

  - verified: the gateway confirms the receipt and its ledger reference
    matches the one returned at submission time
  - failed: explicit not-found or reference mismatch, or the attempt
    budget ran out

Transient transport errors consume an attempt but keep the status pending.

# Sequencing and Cancellation

Ticks are sequential - the next poll starts only after the previous
response or timeout resolves - so an old pending answer can never
overwrite a newer terminal one. Cancelling the context stops polling with
no side effects, and calling Start again with the same receipt opens a
fresh stream.
*/
package verification
