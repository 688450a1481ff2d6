// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/campusvote/ballotbooth/auth"
	"github.com/campusvote/ballotbooth/cliparse"
	"github.com/campusvote/ballotbooth/middleware"
	"github.com/campusvote/ballotbooth/models"
	"github.com/campusvote/ballotbooth/verification"
)

type ReceiptHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	poller verification.Poller

	mu      sync.Mutex
	watches map[string]*watch
}

// watch is one background verification poll, keyed by receipt ID. The
// handler reads the last-seen record; the consuming goroutine updates it.
type watch struct {
	cancel context.CancelFunc

	mu   sync.Mutex
	last models.VerificationRecord
}

func (w *watch) set(rec models.VerificationRecord) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.last = rec
}

func (w *watch) snapshot() models.VerificationRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

func NewReceiptHandler(db *sql.DB, cfg cliparse.Config, verifier verification.Verifier) *ReceiptHandler {
	return &ReceiptHandler{
		db:  db,
		cfg: cfg,
		poller: verification.Poller{
			Verifier:       verifier,
			Interval:       cfg.VerifyInterval,
			Attempts:       cfg.VerifyAttempts,
			AttemptTimeout: cfg.VerifyTimeout,
		},
		watches: make(map[string]*watch),
	}
}

// GetReceipt handles GET /receipts/{id}
func (h *ReceiptHandler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	receiptID := r.PathValue("id")
	if receiptID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "receipt_id is required")
		return
	}

	var (
		rec           models.Receipt
		electionTitle string
	)
	err := h.db.QueryRow(`
		SELECT r.id, r.election_id, e.title, r.ledger_ref, r.submitted_at
		FROM receipt r
		JOIN election e ON e.id = r.election_id
		WHERE r.id = $1
	`, receiptID).Scan(&rec.ReceiptID, &rec.ElectionID, &electionTitle, &rec.LedgerRef, &rec.SubmittedAt)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Receipt not found")
		return
	}
	if err != nil {
		slog.Error("failed to load receipt", "error", err, "receipt_id", receiptID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ReceiptResponse{
		ReceiptID:     rec.ReceiptID,
		ElectionID:    rec.ElectionID,
		ElectionTitle: electionTitle,
		LedgerRef:     rec.LedgerRef,
		CheckCode:     auth.CheckCode(rec.ReceiptID, h.cfg.AdminKeySalt),
		SubmittedAt:   rec.SubmittedAt,
		SubmittedAgo:  humanize.Time(rec.SubmittedAt),
	})
}

// GetVerification handles GET /receipts/{id}/verification
//
// The first call starts a background watch that polls the ledger gateway;
// this and every later call return the watch's last-seen record. The watch
// stops on its own once the record turns terminal.
func (h *ReceiptHandler) GetVerification(w http.ResponseWriter, r *http.Request) {
	receiptID := r.PathValue("id")
	if receiptID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "receipt_id is required")
		return
	}

	var ledgerRef string
	err := h.db.QueryRow(`SELECT ledger_ref FROM receipt WHERE id = $1`, receiptID).Scan(&ledgerRef)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Receipt not found")
		return
	}
	if err != nil {
		slog.Error("failed to load receipt", "error", err, "receipt_id", receiptID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rec := h.watchFor(receiptID, ledgerRef).snapshot()

	middleware.JSONResponse(w, http.StatusOK, models.VerificationResponse{
		Record: rec,
		Note:   verificationNote(rec.Status),
	})
}

// CancelVerification handles DELETE /receipts/{id}/verification
func (h *ReceiptHandler) CancelVerification(w http.ResponseWriter, r *http.Request) {
	receiptID := r.PathValue("id")
	if receiptID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "receipt_id is required")
		return
	}

	h.mu.Lock()
	wt := h.watches[receiptID]
	delete(h.watches, receiptID)
	h.mu.Unlock()

	if wt == nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "No verification watch for this receipt")
		return
	}
	wt.cancel()

	middleware.JSONResponse(w, http.StatusOK, models.VerificationResponse{
		Record: wt.snapshot(),
		Note:   "verification watch stopped",
	})
}

// watchFor returns the watch for a receipt, starting one if needed.
func (h *ReceiptHandler) watchFor(receiptID, ledgerRef string) *watch {
	h.mu.Lock()
	defer h.mu.Unlock()

	if wt, ok := h.watches[receiptID]; ok {
		return wt
	}

	ctx, cancel := context.WithCancel(context.Background())
	wt := &watch{
		cancel: cancel,
		last: models.VerificationRecord{
			ReceiptID: receiptID,
			Status:    models.VerificationPending,
			CheckedAt: time.Now(),
		},
	}
	h.watches[receiptID] = wt

	ch := h.poller.Start(ctx, receiptID, ledgerRef)
	go func() {
		for rec := range ch {
			wt.set(rec)
		}
		slog.Info("verification watch finished",
			"receipt_id", receiptID,
			"status", wt.snapshot().Status,
		)
	}()

	return wt
}

// verificationNote phrases the record for voters. A failed verification
// means automatic confirmation did not succeed, not that the ballot was
// rejected; the receipt is still the proof of acceptance.
func verificationNote(status string) string {
	switch status {
	case models.VerificationVerified:
		return "ballot confirmed on the ledger"
	case models.VerificationFailed:
		return "could not confirm automatically; your ballot was accepted and your receipt remains valid"
	default:
		return "verification in progress"
	}
}
