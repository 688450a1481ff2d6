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
	"github.com/campusvote/ballotbooth/election"
	"github.com/campusvote/ballotbooth/middleware"
	"github.com/campusvote/ballotbooth/models"
)

type ElectionHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewElectionHandler(db *sql.DB, cfg cliparse.Config) *ElectionHandler {
	return &ElectionHandler{db: db, cfg: cfg}
}

// CreateElection handles POST /elections
func (h *ElectionHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Kind != models.KindSingleRole && req.Kind != models.KindMultiRole {
		middleware.ErrorResponse(w, http.StatusBadRequest, "kind must be single-role or multi-role")
		return
	}
	if len(req.Roles) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "at least one role is required")
		return
	}
	if req.Kind == models.KindSingleRole && len(req.Roles) != 1 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "single-role elections must have exactly one role")
		return
	}
	if !req.WindowEnd.After(req.WindowStart) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "window_end must be after window_start")
		return
	}
	for _, role := range req.Roles {
		if role.Title == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "every role needs a title")
			return
		}
		if len(role.Candidates) == 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "every role needs at least one candidate")
			return
		}
		for _, c := range role.Candidates {
			if c.Name == "" {
				middleware.ErrorResponse(w, http.StatusBadRequest, "every candidate needs a name")
				return
			}
		}
	}

	electionID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate election ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
		return
	}
	adminKey := auth.GenerateAdminKey(electionID, h.cfg.AdminKeySalt)

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO election (id, title, description, instructions, kind, window_start, window_end, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, electionID, req.Title, req.Description, req.Instructions, req.Kind, req.WindowStart, req.WindowEnd, time.Now())
	if err != nil {
		slog.Error("failed to insert election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
		return
	}

	for rolePos, role := range req.Roles {
		roleID, err := auth.GenerateID(12)
		if err != nil {
			slog.Error("failed to generate role ID", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
			return
		}
		_, err = tx.Exec(`
			INSERT INTO role (id, election_id, title, description, position)
			VALUES ($1, $2, $3, $4, $5)
		`, roleID, electionID, role.Title, role.Description, rolePos)
		if err != nil {
			slog.Error("failed to insert role", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
			return
		}

		for candPos, cand := range role.Candidates {
			candID, err := auth.GenerateID(12)
			if err != nil {
				slog.Error("failed to generate candidate ID", "error", err)
				middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
				return
			}
			_, err = tx.Exec(`
				INSERT INTO candidate (id, role_id, name, affiliation, statement, image_ref, position)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, candID, roleID, cand.Name, cand.Affiliation, cand.Statement, cand.ImageRef, candPos)
			if err != nil {
				slog.Error("failed to insert candidate", "error", err)
				middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
				return
			}
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
		return
	}

	slog.Info("election created", "election_id", electionID, "kind", req.Kind, "roles", len(req.Roles))

	middleware.JSONResponse(w, http.StatusCreated, models.CreateElectionResponse{
		ElectionID: electionID,
		AdminKey:   adminKey,
	})
}

// CloseElection handles POST /elections/{id}/close
//
// Ends the voting window early. Only the election's creator holds the
// admin key, so this is the one write that is admin-guarded.
func (h *ElectionHandler) CloseElection(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election_id is required")
		return
	}

	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(electionID, adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	var windowStart, windowEnd time.Time
	err := h.db.QueryRow(`
		SELECT window_start, window_end FROM election WHERE id = $1
	`, electionID).Scan(&windowStart, &windowEnd)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	now := time.Now()
	switch election.Status(windowStart, windowEnd, now) {
	case models.StatusUpcoming:
		middleware.ErrorResponse(w, http.StatusConflict, "Election has not opened yet")
		return
	case models.StatusClosed:
		middleware.ErrorResponse(w, http.StatusConflict, "Election is already closed")
		return
	}

	_, err = h.db.Exec(`
		UPDATE election SET window_end = $1 WHERE id = $2
	`, now, electionID)
	if err != nil {
		slog.Error("failed to close election", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to close election")
		return
	}

	slog.Info("election closed early", "election_id", electionID)

	middleware.JSONResponse(w, http.StatusOK, models.CloseElectionResponse{
		ElectionID: electionID,
		ClosedAt:   now,
	})
}

// ListElections handles GET /elections
func (h *ElectionHandler) ListElections(w http.ResponseWriter, r *http.Request) {
	summaries, err := election.List(h.db, time.Now())
	if err != nil {
		slog.Error("failed to list elections", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, summaries)
}

// GetElection handles GET /elections/{id}
func (h *ElectionHandler) GetElection(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("id")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election_id is required")
		return
	}

	snap, err := election.Load(h.db, electionID)
	if errors.Is(err, election.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to load election", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, snap)
}
