// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package verification

import (
	"context"
	"errors"
	"time"

	"github.com/campusvote/ballotbooth/ledger"
	"github.com/campusvote/ballotbooth/models"
)

// Verifier is the single external operation the poller performs.
// *ledger.Client satisfies it.
type Verifier interface {
	VerifyReceipt(ctx context.Context, receiptID string) (*ledger.VerifyReply, error)
}

// Poller repeatedly checks a receipt against the ledger gateway until a
// terminal status is reached or the attempt budget runs out.
//
// Ticks are strictly sequential: the next poll is scheduled only after the
// previous response (or its timeout) resolves, so a stale pending response
// can never overwrite a later terminal one.
type Poller struct {
	Verifier Verifier
	// Interval is the delay between poll ticks.
	Interval time.Duration
	// Attempts is the total poll budget before giving up.
	Attempts int
	// AttemptTimeout bounds each individual poll.
	AttemptTimeout time.Duration
}

// Start begins polling and returns a finite stream of status records. The
// stream emits one record per attempt - pending records first, then exactly
// one terminal record (verified or failed) - and is then closed.
//
// wantLedgerRef is the reference returned at submission time; a gateway
// answer carrying a different reference is a mismatch and fails the
// verification immediately.
//
// Cancelling ctx stops the poller without side effects; the stream closes
// after the in-flight tick, and no partial state survives anywhere but in
// whatever record the consumer saw last. Calling Start again with the same
// receipt simply begins a fresh stream.
func (p Poller) Start(ctx context.Context, receiptID, wantLedgerRef string) <-chan models.VerificationRecord {
	interval := p.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 10
	}

	out := make(chan models.VerificationRecord)

	go func() {
		defer close(out)

		for attempt := 1; attempt <= attempts; attempt++ {
			rec := p.poll(ctx, receiptID, wantLedgerRef, attempt)

			// Budget exhausted without a conclusive answer
			if rec.Status == models.VerificationPending && attempt == attempts {
				rec.Status = models.VerificationFailed
			}

			select {
			case out <- rec:
			case <-ctx.Done():
				return
			}

			if rec.Status != models.VerificationPending {
				return
			}

			select {
			case <-time.After(interval):
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// poll performs one bounded verification attempt and classifies the answer.
func (p Poller) poll(ctx context.Context, receiptID, wantLedgerRef string, attempt int) models.VerificationRecord {
	cctx, cancel := context.WithTimeout(ctx, p.attemptTimeout())
	defer cancel()

	rec := models.VerificationRecord{
		ReceiptID: receiptID,
		Status:    models.VerificationPending,
		Attempts:  attempt,
		CheckedAt: time.Now(),
	}

	reply, err := p.Verifier.VerifyReceipt(cctx, receiptID)
	switch {
	case errors.Is(err, ledger.ErrReceiptNotFound):
		// Explicit negative answer, no point in polling further
		rec.Status = models.VerificationFailed
	case err != nil:
		// Transient failure: the attempt is consumed, the status stays
		// pending until the budget runs out
	case reply.Verified && (wantLedgerRef == "" || reply.LedgerRef == wantLedgerRef):
		rec.Status = models.VerificationVerified
		rec.LedgerRef = reply.LedgerRef
		rec.BlockRef = reply.BlockRef
	case reply.Verified:
		// Confirmed on the ledger, but with a different reference than
		// the submission produced - a mismatch, not a success
		rec.Status = models.VerificationFailed
		rec.LedgerRef = reply.LedgerRef
	default:
		// Not confirmed yet
	}

	return rec
}

func (p Poller) attemptTimeout() time.Duration {
	if p.AttemptTimeout > 0 {
		return p.AttemptTimeout
	}
	return 5 * time.Second
}
