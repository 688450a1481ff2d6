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
	"github.com/campusvote/ballotbooth/ballot"
	"github.com/campusvote/ballotbooth/cliparse"
	"github.com/campusvote/ballotbooth/election"
	"github.com/campusvote/ballotbooth/middleware"
	"github.com/campusvote/ballotbooth/models"
	"github.com/campusvote/ballotbooth/session"
)

type BoothHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	sessions *session.Manager
}

func NewBoothHandler(db *sql.DB, cfg cliparse.Config, sessions *session.Manager) *BoothHandler {
	return &BoothHandler{db: db, cfg: cfg, sessions: sessions}
}

// EnterBooth handles POST /elections/{id}/booth
func (h *BoothHandler) EnterBooth(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election_id is required")
		return
	}

	wallet := r.Header.Get("X-Voter-Wallet")
	if wallet == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Voter-Wallet header is required")
		return
	}
	voterHash := auth.HashIdentity(wallet, h.cfg.IdentitySalt)

	snap, err := election.LoadForVoting(h.db, electionID, time.Now())
	if errors.Is(err, election.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if errors.Is(err, election.ErrNotActive) {
		middleware.ErrorResponse(w, http.StatusConflict, "Election is not open for voting")
		return
	}
	if err != nil {
		slog.Error("failed to load election", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// A voter with a recorded receipt has already voted in this election
	var existing string
	err = h.db.QueryRow(`
		SELECT id FROM receipt WHERE election_id = $1 AND voter_hash = $2
	`, electionID, voterHash).Scan(&existing)
	if err == nil {
		middleware.ErrorResponse(w, http.StatusConflict, "A ballot was already submitted for this election")
		return
	}
	if err != sql.ErrNoRows {
		slog.Error("failed to check receipts", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	draft, err := ballot.NewDraft(snap)
	if err != nil {
		slog.Error("failed to build draft", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Election is not votable")
		return
	}

	token, err := auth.GenerateBoothToken()
	if err != nil {
		slog.Error("failed to generate booth token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to enter booth")
		return
	}

	h.sessions.Create(token, snap, draft, voterHash)

	slog.Info("voter entered booth", "election_id", electionID)

	middleware.JSONResponse(w, http.StatusCreated, models.EnterBoothResponse{
		BoothToken: token,
		Election:   snap,
		Draft:      draft.View(),
	})
}

// boothSession resolves the X-Booth-Token header to a live session.
// Writes the error response itself and returns nil when there is none.
func (h *BoothHandler) boothSession(w http.ResponseWriter, r *http.Request) *session.Session {
	return resolveSession(h.sessions, w, r)
}

// sessionDraft returns the session's live draft. After an accepted
// submission the session discards its draft, so edits and views get a
// conflict. Writes the error response itself and returns nil then.
func sessionDraft(w http.ResponseWriter, s *session.Session) *ballot.Draft {
	s.Lock()
	d := s.Draft
	s.Unlock()
	if d == nil {
		middleware.ErrorResponse(w, http.StatusConflict, "Ballot already submitted; the draft is gone")
		return nil
	}
	return d
}

func resolveSession(sessions *session.Manager, w http.ResponseWriter, r *http.Request) *session.Session {
	token := r.Header.Get("X-Booth-Token")
	if token == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Booth-Token header is required")
		return nil
	}
	s := sessions.Get(token)
	if s == nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unknown or expired booth session")
		return nil
	}
	return s
}

// GetDraft handles GET /booth
func (h *BoothHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	s := h.boothSession(w, r)
	if s == nil {
		return
	}

	d := sessionDraft(w, s)
	if d == nil {
		return
	}

	middleware.JSONResponse(w, http.StatusOK, d.View())
}

// Select handles POST /booth/select
func (h *BoothHandler) Select(w http.ResponseWriter, r *http.Request) {
	s := h.boothSession(w, r)
	if s == nil {
		return
	}

	var req models.SelectRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	d := sessionDraft(w, s)
	if d == nil {
		return
	}

	if err := d.Select(req.RoleID, req.CandidateID); err != nil {
		writeBallotError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, d.View())
}

// Advance handles POST /booth/advance
func (h *BoothHandler) Advance(w http.ResponseWriter, r *http.Request) {
	s := h.boothSession(w, r)
	if s == nil {
		return
	}

	d := sessionDraft(w, s)
	if d == nil {
		return
	}

	if err := d.Advance(); err != nil {
		writeBallotError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, d.View())
}

// Retreat handles POST /booth/retreat
func (h *BoothHandler) Retreat(w http.ResponseWriter, r *http.Request) {
	s := h.boothSession(w, r)
	if s == nil {
		return
	}

	d := sessionDraft(w, s)
	if d == nil {
		return
	}

	if err := d.Retreat(); err != nil {
		writeBallotError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, d.View())
}

// Summary handles GET /booth/summary
func (h *BoothHandler) Summary(w http.ResponseWriter, r *http.Request) {
	s := h.boothSession(w, r)
	if s == nil {
		return
	}

	d := sessionDraft(w, s)
	if d == nil {
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SummaryResponse{
		Complete: d.IsComplete(),
		Entries:  d.Summary(),
	})
}

// writeBallotError maps draft errors to HTTP responses. Validation problems
// are 400s; attempting to edit a frozen draft is a benign 409.
func writeBallotError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ballot.ErrUnknownRole):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown role")
	case errors.Is(err, ballot.ErrInvalidCandidate):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Candidate does not belong to this role")
	case errors.Is(err, ballot.ErrIncompleteRole):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Select a candidate for the current role first")
	case errors.Is(err, ballot.ErrSingleRole):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Single-role ballots have no role navigation")
	case errors.Is(err, ballot.ErrAlreadySubmitting):
		middleware.ErrorResponse(w, http.StatusConflict, "Ballot is locked while submission is in progress")
	default:
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Ballot error")
	}
}
