// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package verification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/campusvote/ballotbooth/ledger"
	"github.com/campusvote/ballotbooth/models"
)

// fakeVerifier returns scripted replies per call, repeating the last one
type fakeVerifier struct {
	mu      sync.Mutex
	calls   int
	inCall  int
	replies []verifyAnswer
}

type verifyAnswer struct {
	reply *ledger.VerifyReply
	err   error
}

func (f *fakeVerifier) VerifyReceipt(ctx context.Context, receiptID string) (*ledger.VerifyReply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.inCall > 0 {
		panic("overlapping verify calls: poll ticks must be sequential")
	}
	f.inCall++
	defer func() { f.inCall-- }()

	i := f.calls
	if i >= len(f.replies) {
		i = len(f.replies) - 1
	}
	f.calls++
	a := f.replies[i]
	if a.err != nil {
		return nil, a.err
	}
	reply := *a.reply
	return &reply, nil
}

func (f *fakeVerifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func fastPoller(v Verifier, attempts int) Poller {
	return Poller{
		Verifier:       v,
		Interval:       time.Millisecond,
		Attempts:       attempts,
		AttemptTimeout: time.Second,
	}
}

func collect(t *testing.T, ch <-chan models.VerificationRecord) []models.VerificationRecord {
	t.Helper()
	var records []models.VerificationRecord
	timeout := time.After(5 * time.Second)
	for {
		select {
		case rec, ok := <-ch:
			if !ok {
				return records
			}
			records = append(records, rec)
		case <-timeout:
			t.Fatal("poll stream never closed")
		}
	}
}

func TestVerifiedAfterPending(t *testing.T) {
	v := &fakeVerifier{replies: []verifyAnswer{
		{reply: &ledger.VerifyReply{Verified: false}},
		{reply: &ledger.VerifyReply{Verified: false}},
		{reply: &ledger.VerifyReply{Verified: true, LedgerRef: "0xabc", BlockRef: "99"}},
	}}

	records := collect(t, fastPoller(v, 10).Start(context.Background(), "R123", "0xabc"))

	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	for _, rec := range records[:2] {
		if rec.Status != models.VerificationPending {
			t.Errorf("early record status = %q, want pending", rec.Status)
		}
	}
	last := records[2]
	if last.Status != models.VerificationVerified {
		t.Fatalf("final status = %q, want verified", last.Status)
	}
	if last.LedgerRef != "0xabc" || last.BlockRef != "99" {
		t.Errorf("final record = %+v, missing ledger/block refs", last)
	}
	if last.Attempts != 3 {
		t.Errorf("final attempts = %d, want 3", last.Attempts)
	}
}

func TestStatusNeverRegresses(t *testing.T) {
	v := &fakeVerifier{replies: []verifyAnswer{
		{reply: &ledger.VerifyReply{Verified: false}},
		{reply: &ledger.VerifyReply{Verified: true, LedgerRef: "0xabc"}},
	}}

	records := collect(t, fastPoller(v, 10).Start(context.Background(), "R123", "0xabc"))

	terminal := false
	for _, rec := range records {
		if terminal {
			t.Fatalf("record emitted after terminal status: %+v", rec)
		}
		if rec.Status != models.VerificationPending {
			terminal = true
		}
	}
	if !terminal {
		t.Fatal("stream ended without a terminal record")
	}
}

func TestAttemptBudgetExhausted(t *testing.T) {
	v := &fakeVerifier{replies: []verifyAnswer{
		{reply: &ledger.VerifyReply{Verified: false}},
	}}

	records := collect(t, fastPoller(v, 4).Start(context.Background(), "R123", "0xabc"))

	if len(records) != 4 {
		t.Fatalf("got %d records, want 4", len(records))
	}
	last := records[len(records)-1]
	if last.Status != models.VerificationFailed {
		t.Errorf("final status = %q, want failed after budget exhaustion", last.Status)
	}
	if v.callCount() != 4 {
		t.Errorf("verify calls = %d, want 4", v.callCount())
	}
}

func TestNotFoundFailsImmediately(t *testing.T) {
	v := &fakeVerifier{replies: []verifyAnswer{
		{err: ledger.ErrReceiptNotFound},
	}}

	records := collect(t, fastPoller(v, 10).Start(context.Background(), "R123", "0xabc"))

	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Status != models.VerificationFailed {
		t.Errorf("status = %q, want failed", records[0].Status)
	}
	if v.callCount() != 1 {
		t.Errorf("verify calls = %d, want 1 (no retry after not-found)", v.callCount())
	}
}

func TestLedgerRefMismatchFails(t *testing.T) {
	v := &fakeVerifier{replies: []verifyAnswer{
		{reply: &ledger.VerifyReply{Verified: true, LedgerRef: "0xother"}},
	}}

	records := collect(t, fastPoller(v, 10).Start(context.Background(), "R123", "0xabc"))

	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Status != models.VerificationFailed {
		t.Errorf("status = %q, want failed on ledger ref mismatch", records[0].Status)
	}
}

func TestTransientErrorsStayPending(t *testing.T) {
	v := &fakeVerifier{replies: []verifyAnswer{
		{err: errors.New("connection reset")},
		{err: errors.New("connection reset")},
		{reply: &ledger.VerifyReply{Verified: true, LedgerRef: "0xabc"}},
	}}

	records := collect(t, fastPoller(v, 10).Start(context.Background(), "R123", "0xabc"))

	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if records[0].Status != models.VerificationPending || records[1].Status != models.VerificationPending {
		t.Error("transient errors should leave the status pending")
	}
	if records[2].Status != models.VerificationVerified {
		t.Errorf("final status = %q, want verified", records[2].Status)
	}
}

func TestCancellationStopsPolling(t *testing.T) {
	v := &fakeVerifier{replies: []verifyAnswer{
		{reply: &ledger.VerifyReply{Verified: false}},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	ch := Poller{
		Verifier:       v,
		Interval:       time.Hour, // cancellation must not wait for this
		Attempts:       10,
		AttemptTimeout: time.Second,
	}.Start(ctx, "R123", "0xabc")

	// Consume the first pending record, then walk away
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("no record emitted")
	}
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("record emitted after cancellation")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("stream not closed after cancellation")
	}

	calls := v.callCount()
	time.Sleep(20 * time.Millisecond)
	if v.callCount() != calls {
		t.Error("poller kept polling after cancellation")
	}
}

func TestRestartable(t *testing.T) {
	v := &fakeVerifier{replies: []verifyAnswer{
		{reply: &ledger.VerifyReply{Verified: true, LedgerRef: "0xabc"}},
	}}
	p := fastPoller(v, 10)

	first := collect(t, p.Start(context.Background(), "R123", "0xabc"))
	second := collect(t, p.Start(context.Background(), "R123", "0xabc"))

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("restarted stream records = %d/%d, want 1/1", len(first), len(second))
	}
	if second[0].Status != models.VerificationVerified {
		t.Errorf("restarted stream status = %q, want verified", second[0].Status)
	}
	if second[0].Attempts != 1 {
		t.Errorf("restarted stream attempts = %d, want a fresh count of 1", second[0].Attempts)
	}
}
