// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/campusvote/ballotbooth/auth"
	"github.com/campusvote/ballotbooth/cliparse"
	"github.com/campusvote/ballotbooth/middleware"
	"github.com/campusvote/ballotbooth/models"
	"github.com/campusvote/ballotbooth/session"
	"github.com/campusvote/ballotbooth/submission"
)

type SubmissionHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	sessions *session.Manager
	caster   submission.Caster
}

func NewSubmissionHandler(db *sql.DB, cfg cliparse.Config, sessions *session.Manager, caster submission.Caster) *SubmissionHandler {
	return &SubmissionHandler{db: db, cfg: cfg, sessions: sessions, caster: caster}
}

// Confirm handles POST /booth/confirm
//
// Moves the session's submission to confirming and returns the summary the
// voter must acknowledge. A rejected prior attempt is replaced by a fresh
// coordinator over the same draft, so the voter can try again.
func (h *SubmissionHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	s := resolveSession(h.sessions, w, r)
	if s == nil {
		return
	}

	s.Lock()
	if s.Draft == nil {
		s.Unlock()
		middleware.ErrorResponse(w, http.StatusConflict, "Ballot already submitted; the draft is gone")
		return
	}
	if s.Sub == nil || s.Sub.Status().State == submission.StateRejected {
		s.Sub = submission.New(s.Draft, h.caster, submission.Options{
			ElectionID:    s.Election.ID,
			VoterIdentity: s.VoterHash,
			Timeout:       h.cfg.SubmitTimeout,
		})
	}
	sub := s.Sub
	s.Unlock()

	summary, err := sub.RequestConfirm()
	if err != nil {
		writeSubmissionError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SummaryResponse{
		Complete: true,
		Entries:  summary,
	})
}

// Cancel handles POST /booth/cancel
func (h *SubmissionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	s := resolveSession(h.sessions, w, r)
	if s == nil {
		return
	}

	s.Lock()
	sub := s.Sub
	s.Unlock()

	if sub == nil {
		middleware.ErrorResponse(w, http.StatusConflict, "No confirmation is pending")
		return
	}
	if err := sub.Cancel(); err != nil {
		writeSubmissionError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SubmissionStatusResponse{
		State: submission.StateIdle,
	})
}

// Submit handles POST /booth/submit
//
// Performs the acknowledged submission. The coordinator guarantees at most
// one ledger call regardless of how many requests race here, so the ledger
// call runs without the session lock held.
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	s := resolveSession(h.sessions, w, r)
	if s == nil {
		return
	}

	s.Lock()
	sub := s.Sub
	s.Unlock()

	if sub == nil {
		middleware.ErrorResponse(w, http.StatusConflict, "No confirmation is pending")
		return
	}

	result, err := sub.Confirm(r.Context())
	if err != nil {
		writeSubmissionError(w, err)
		return
	}

	if result.State == submission.StateAccepted {
		h.recordReceipt(r, s, result)
		// The accepted ballot lives on the ledger now; the draft is done.
		s.Lock()
		s.Draft = nil
		s.Unlock()
		slog.Info("ballot accepted",
			"election_id", s.Election.ID,
			"receipt_id", result.ReceiptID,
		)
	} else {
		slog.Warn("ballot rejected",
			"election_id", s.Election.ID,
			"reason", result.Reason,
		)
	}

	middleware.JSONResponse(w, http.StatusOK, models.SubmissionStatusResponse{
		State:     result.State,
		Reason:    result.Reason,
		Retryable: submission.Retryable(result.Reason),
		ReceiptID: result.ReceiptID,
		LedgerRef: result.LedgerRef,
	})
}

// Status handles GET /booth/submission
func (h *SubmissionHandler) Status(w http.ResponseWriter, r *http.Request) {
	s := resolveSession(h.sessions, w, r)
	if s == nil {
		return
	}

	s.Lock()
	sub := s.Sub
	s.Unlock()

	if sub == nil {
		middleware.JSONResponse(w, http.StatusOK, models.SubmissionStatusResponse{
			State: submission.StateIdle,
		})
		return
	}

	st := sub.Status()
	middleware.JSONResponse(w, http.StatusOK, models.SubmissionStatusResponse{
		State:     st.State,
		Reason:    st.Reason,
		Retryable: st.State == submission.StateRejected && submission.Retryable(st.Reason),
		ReceiptID: st.ReceiptID,
		LedgerRef: st.LedgerRef,
	})
}

// recordReceipt stores the durable record of an accepted submission. The
// ledger already accepted the ballot, so a local write failure is logged but
// never surfaced to the voter.
func (h *SubmissionHandler) recordReceipt(r *http.Request, s *session.Session, result *submission.Result) {
	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.IdentitySalt)
	userAgent := r.UserAgent()

	_, err := h.db.Exec(`
		INSERT INTO receipt (id, election_id, ledger_ref, voter_hash, ip_hash, user_agent, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, result.ReceiptID, s.Election.ID, result.LedgerRef, s.VoterHash, ipHash, userAgent, time.Now())
	if err != nil {
		slog.Error("failed to record receipt",
			"error", err,
			"receipt_id", result.ReceiptID,
			"election_id", s.Election.ID,
		)
	}
}

func writeSubmissionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, submission.ErrIncompleteBallot):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Every role needs a selection before submitting")
	case errors.Is(err, submission.ErrNotConfirming):
		middleware.ErrorResponse(w, http.StatusConflict, "No confirmation is pending")
	case errors.Is(err, submission.ErrSubmissionInFlight):
		middleware.ErrorResponse(w, http.StatusConflict, "Submission already in progress")
	case errors.Is(err, submission.ErrAlreadyDecided):
		middleware.ErrorResponse(w, http.StatusConflict, "Submission already completed")
	default:
		slog.Error("submission failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Submission failed")
	}
}
