// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campusvote/ballotbooth/models"
	"github.com/campusvote/ballotbooth/testutil"
)

// insertReceipt stores a receipt row matching the fake ledger's handout
func insertReceipt(t *testing.T, env *testEnv, electionID string, submittedAt time.Time) string {
	t.Helper()

	_, err := env.db.Exec(`
		INSERT INTO receipt (id, election_id, ledger_ref, voter_hash, submitted_at)
		VALUES ($1, $2, $3, 'voter-hash-1', $4)
	`, env.fake.ReceiptID, electionID, env.fake.LedgerRef, submittedAt)
	if err != nil {
		t.Fatalf("insert receipt: %v", err)
	}
	return env.fake.ReceiptID
}

func getVerification(t *testing.T, env *testEnv, receiptID string) models.VerificationResponse {
	t.Helper()

	req := testutil.MakeRequest("GET", "/receipts/"+receiptID+"/verification", nil, nil)
	req.SetPathValue("id", receiptID)
	w := httptest.NewRecorder()
	env.receipts.GetVerification(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.VerificationResponse
	testutil.AssertJSON(t, w, &resp)
	return resp
}

// waitForStatus polls the verification endpoint until the record reaches a
// terminal status or the deadline passes
func waitForStatus(t *testing.T, env *testEnv, receiptID, want string) models.VerificationResponse {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp := getVerification(t, env, receiptID)
		if resp.Record.Status == want {
			return resp
		}
		if resp.Record.Status != models.VerificationPending {
			t.Fatalf("record reached %q, want %q", resp.Record.Status, want)
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("record never reached %q", want)
	return models.VerificationResponse{}
}

func TestGetReceipt(t *testing.T) {
	env := newTestEnv(t)
	start, end := testutil.OpenWindow()
	electionID, _, _ := testutil.CreateTestElection(t, env.db, models.KindSingleRole, start, end, []testutil.TestRole{
		{Title: "President", Candidates: []string{"Alice"}},
	})
	submittedAt := time.Now().Add(-10 * time.Minute)
	receiptID := insertReceipt(t, env, electionID, submittedAt)

	req := testutil.MakeRequest("GET", "/receipts/"+receiptID, nil, nil)
	req.SetPathValue("id", receiptID)
	w := httptest.NewRecorder()
	env.receipts.GetReceipt(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ReceiptResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.ReceiptID != receiptID {
		t.Errorf("receipt_id = %q, want %q", resp.ReceiptID, receiptID)
	}
	if resp.ElectionID != electionID {
		t.Errorf("election_id = %q, want %q", resp.ElectionID, electionID)
	}
	if resp.ElectionTitle != "Test Election" {
		t.Errorf("election_title = %q", resp.ElectionTitle)
	}
	if resp.LedgerRef != env.fake.LedgerRef {
		t.Errorf("ledger_ref = %q", resp.LedgerRef)
	}
	if resp.CheckCode == "" {
		t.Error("expected a check code")
	}
	if resp.SubmittedAgo == "" {
		t.Error("expected a humanized submission age")
	}
}

func TestGetReceiptNotFound(t *testing.T) {
	env := newTestEnv(t)

	req := testutil.MakeRequest("GET", "/receipts/nope", nil, nil)
	req.SetPathValue("id", "nope")
	w := httptest.NewRecorder()
	env.receipts.GetReceipt(w, req)

	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestVerificationReachesVerified(t *testing.T) {
	fake := testutil.NewFakeLedger()
	fake.VerifyAfter = 2
	env := newTestEnvWith(t, fake, testutil.GetTestConfig())

	start, end := testutil.OpenWindow()
	electionID, _, _ := testutil.CreateTestElection(t, env.db, models.KindSingleRole, start, end, []testutil.TestRole{
		{Title: "President", Candidates: []string{"Alice"}},
	})
	receiptID := insertReceipt(t, env, electionID, time.Now())

	resp := waitForStatus(t, env, receiptID, models.VerificationVerified)

	if resp.Record.LedgerRef != env.fake.LedgerRef {
		t.Errorf("ledger_ref = %q, want %q", resp.Record.LedgerRef, env.fake.LedgerRef)
	}
	if resp.Record.BlockRef != env.fake.BlockRef {
		t.Errorf("block_ref = %q, want %q", resp.Record.BlockRef, env.fake.BlockRef)
	}
	if resp.Note == "" {
		t.Error("expected a note for the verified record")
	}
}

func TestVerificationFailsOnMismatch(t *testing.T) {
	fake := testutil.NewFakeLedger()
	fake.LedgerRefOverride = "0xsomething-else"
	env := newTestEnvWith(t, fake, testutil.GetTestConfig())

	start, end := testutil.OpenWindow()
	electionID, _, _ := testutil.CreateTestElection(t, env.db, models.KindSingleRole, start, end, []testutil.TestRole{
		{Title: "President", Candidates: []string{"Alice"}},
	})
	receiptID := insertReceipt(t, env, electionID, time.Now())

	resp := waitForStatus(t, env, receiptID, models.VerificationFailed)

	// Failure wording must not read as the ballot being rejected
	if resp.Note == "" {
		t.Error("expected an explanatory note for the failed record")
	}
}

func TestVerificationUnknownReceipt(t *testing.T) {
	env := newTestEnv(t)

	req := testutil.MakeRequest("GET", "/receipts/nope/verification", nil, nil)
	req.SetPathValue("id", "nope")
	w := httptest.NewRecorder()
	env.receipts.GetVerification(w, req)

	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestCancelVerification(t *testing.T) {
	fake := testutil.NewFakeLedger()
	fake.VerifyAfter = 1000 // never verifies within the test
	cfg := testutil.GetTestConfig()
	cfg.VerifyAttempts = 10000
	env := newTestEnvWith(t, fake, cfg)

	start, end := testutil.OpenWindow()
	electionID, _, _ := testutil.CreateTestElection(t, env.db, models.KindSingleRole, start, end, []testutil.TestRole{
		{Title: "President", Candidates: []string{"Alice"}},
	})
	receiptID := insertReceipt(t, env, electionID, time.Now())

	// Start the watch
	getVerification(t, env, receiptID)

	req := testutil.MakeRequest("DELETE", "/receipts/"+receiptID+"/verification", nil, nil)
	req.SetPathValue("id", receiptID)
	w := httptest.NewRecorder()
	env.receipts.CancelVerification(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	// The poller stops shortly after cancellation
	time.Sleep(50 * time.Millisecond)
	before := env.fake.VerifyCount()
	time.Sleep(50 * time.Millisecond)
	if after := env.fake.VerifyCount(); after != before {
		t.Errorf("ledger still being polled after cancel: %d -> %d", before, after)
	}

	// Cancelling again reports no watch
	req = testutil.MakeRequest("DELETE", "/receipts/"+receiptID+"/verification", nil, nil)
	req.SetPathValue("id", receiptID)
	w = httptest.NewRecorder()
	env.receipts.CancelVerification(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}
