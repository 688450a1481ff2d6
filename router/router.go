// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/campusvote/ballotbooth/cliparse"
	"github.com/campusvote/ballotbooth/handlers"
	"github.com/campusvote/ballotbooth/ledger"
	"github.com/campusvote/ballotbooth/middleware"
	"github.com/campusvote/ballotbooth/session"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, gateway *ledger.Client, sessions *session.Manager) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	electionHandler := handlers.NewElectionHandler(db, cfg)
	boothHandler := handlers.NewBoothHandler(db, cfg, sessions)
	submissionHandler := handlers.NewSubmissionHandler(db, cfg, sessions, gateway)
	receiptHandler := handlers.NewReceiptHandler(db, cfg, gateway)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Election management
	mux.HandleFunc("POST /elections", middleware.WithLogging(electionHandler.CreateElection))
	mux.HandleFunc("GET /elections", middleware.WithLogging(electionHandler.ListElections))
	mux.HandleFunc("GET /elections/{id}", middleware.WithLogging(electionHandler.GetElection))
	mux.HandleFunc("POST /elections/{id}/close", middleware.WithLogging(electionHandler.CloseElection))

	// Booth entry and draft composition
	mux.HandleFunc("POST /elections/{id}/booth", middleware.WithLogging(boothHandler.EnterBooth))
	mux.HandleFunc("GET /booth", middleware.WithLogging(boothHandler.GetDraft))
	mux.HandleFunc("POST /booth/select", middleware.WithLogging(boothHandler.Select))
	mux.HandleFunc("POST /booth/advance", middleware.WithLogging(boothHandler.Advance))
	mux.HandleFunc("POST /booth/retreat", middleware.WithLogging(boothHandler.Retreat))
	mux.HandleFunc("GET /booth/summary", middleware.WithLogging(boothHandler.Summary))

	// Confirmation and submission
	mux.HandleFunc("POST /booth/confirm", middleware.WithLogging(submissionHandler.Confirm))
	mux.HandleFunc("POST /booth/cancel", middleware.WithLogging(submissionHandler.Cancel))
	mux.HandleFunc("POST /booth/submit", middleware.WithLogging(submissionHandler.Submit))
	mux.HandleFunc("GET /booth/submission", middleware.WithLogging(submissionHandler.Status))

	// Receipts and verification
	mux.HandleFunc("GET /receipts/{id}", middleware.WithLogging(receiptHandler.GetReceipt))
	mux.HandleFunc("GET /receipts/{id}/verification", middleware.WithLogging(receiptHandler.GetVerification))
	mux.HandleFunc("DELETE /receipts/{id}/verification", middleware.WithLogging(receiptHandler.CancelVerification))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ballotbooth API v1"))
	})

	return mux
}
