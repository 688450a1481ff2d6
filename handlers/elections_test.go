// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campusvote/ballotbooth/auth"
	"github.com/campusvote/ballotbooth/models"
	"github.com/campusvote/ballotbooth/testutil"
)

func validCreateRequest() models.CreateElectionRequest {
	now := time.Now()
	return models.CreateElectionRequest{
		Title:        "Student Council 2026",
		Description:  "Annual student council election",
		Instructions: "Select one candidate per position",
		Kind:         models.KindMultiRole,
		WindowStart:  now.Add(-time.Hour),
		WindowEnd:    now.Add(24 * time.Hour),
		Roles: []models.CreateRoleRequest{
			{
				Title: "President",
				Candidates: []models.CreateCandidateRequest{
					{Name: "Alice", Affiliation: "Progress Party"},
					{Name: "Bob", Affiliation: "Unity Party"},
				},
			},
			{
				Title: "Treasurer",
				Candidates: []models.CreateCandidateRequest{
					{Name: "Carol"},
				},
			},
		},
	}
}

func TestCreateElection(t *testing.T) {
	env := newTestEnv(t)

	req := testutil.MakeRequest("POST", "/elections", validCreateRequest(), nil)
	w := httptest.NewRecorder()
	env.elections.CreateElection(w, req)

	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.CreateElectionResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.ElectionID == "" {
		t.Error("expected a non-empty election_id")
	}
	if resp.AdminKey == "" {
		t.Error("expected a non-empty admin_key")
	}

	// Roundtrip: the created election loads with full detail
	getReq := testutil.MakeRequest("GET", "/elections/"+resp.ElectionID, nil, nil)
	getReq.SetPathValue("id", resp.ElectionID)
	getW := httptest.NewRecorder()
	env.elections.GetElection(getW, getReq)

	testutil.AssertStatus(t, getW, http.StatusOK)

	var snap models.ElectionSnapshot
	testutil.AssertJSON(t, getW, &snap)
	if snap.Title != "Student Council 2026" {
		t.Errorf("title = %q", snap.Title)
	}
	if len(snap.Roles) != 2 {
		t.Fatalf("got %d roles, want 2", len(snap.Roles))
	}
	if snap.Roles[0].Title != "President" || snap.Roles[1].Title != "Treasurer" {
		t.Error("roles not in request order")
	}
	if len(snap.Roles[0].Candidates) != 2 {
		t.Errorf("got %d president candidates, want 2", len(snap.Roles[0].Candidates))
	}
	if snap.Roles[0].Candidates[0].Name != "Alice" {
		t.Errorf("first candidate = %q, want Alice", snap.Roles[0].Candidates[0].Name)
	}
}

func TestCreateElectionValidation(t *testing.T) {
	env := newTestEnv(t)

	testCases := []struct {
		name   string
		mutate func(*models.CreateElectionRequest)
	}{
		{"missing title", func(r *models.CreateElectionRequest) { r.Title = "" }},
		{"bad kind", func(r *models.CreateElectionRequest) { r.Kind = "ranked-choice" }},
		{"no roles", func(r *models.CreateElectionRequest) { r.Roles = nil }},
		{"single-role with two roles", func(r *models.CreateElectionRequest) { r.Kind = models.KindSingleRole }},
		{"window end before start", func(r *models.CreateElectionRequest) {
			r.WindowEnd = r.WindowStart.Add(-time.Hour)
		}},
		{"role without title", func(r *models.CreateElectionRequest) { r.Roles[0].Title = "" }},
		{"role without candidates", func(r *models.CreateElectionRequest) { r.Roles[1].Candidates = nil }},
		{"candidate without name", func(r *models.CreateElectionRequest) { r.Roles[0].Candidates[0].Name = "" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			body := validCreateRequest()
			tc.mutate(&body)

			req := testutil.MakeRequest("POST", "/elections", body, nil)
			w := httptest.NewRecorder()
			env.elections.CreateElection(w, req)

			testutil.AssertStatus(t, w, http.StatusBadRequest)
		})
	}
}

func TestCreateElectionInvalidJSON(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("POST", "/elections", nil)
	w := httptest.NewRecorder()
	env.elections.CreateElection(w, req)

	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestListElections(t *testing.T) {
	env := newTestEnv(t)

	start, end := testutil.OpenWindow()
	openID, _, _ := testutil.CreateTestElection(t, env.db, models.KindSingleRole, start, end, []testutil.TestRole{
		{Title: "President", Candidates: []string{"Alice", "Bob"}},
	})

	req := testutil.MakeRequest("GET", "/elections", nil, nil)
	w := httptest.NewRecorder()
	env.elections.ListElections(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var summaries []models.ElectionSummary
	testutil.AssertJSON(t, w, &summaries)
	if len(summaries) != 1 {
		t.Fatalf("got %d summaries, want 1", len(summaries))
	}
	if summaries[0].ID != openID {
		t.Errorf("summary ID = %q, want %q", summaries[0].ID, openID)
	}
	if summaries[0].Status != models.StatusOpen {
		t.Errorf("status = %q, want open", summaries[0].Status)
	}
	if summaries[0].WindowNote == "" {
		t.Error("expected a window note")
	}
}

func TestGetElectionNotFound(t *testing.T) {
	env := newTestEnv(t)

	req := testutil.MakeRequest("GET", "/elections/nope", nil, nil)
	req.SetPathValue("id", "nope")
	w := httptest.NewRecorder()
	env.elections.GetElection(w, req)

	testutil.AssertStatus(t, w, http.StatusNotFound)
}

// closeElection runs the close handler with the given admin key
func closeElection(t *testing.T, env *testEnv, electionID, adminKey string) *httptest.ResponseRecorder {
	t.Helper()

	req := testutil.MakeRequest("POST", "/elections/"+electionID+"/close", nil,
		map[string]string{"X-Admin-Key": adminKey})
	req.SetPathValue("id", electionID)
	w := httptest.NewRecorder()
	env.elections.CloseElection(w, req)
	return w
}

func TestCloseElection(t *testing.T) {
	env := newTestEnv(t)

	req := testutil.MakeRequest("POST", "/elections", validCreateRequest(), nil)
	w := httptest.NewRecorder()
	env.elections.CreateElection(w, req)
	var created models.CreateElectionResponse
	testutil.AssertJSON(t, w, &created)

	w = closeElection(t, env, created.ElectionID, created.AdminKey)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.CloseElectionResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.ElectionID != created.ElectionID {
		t.Errorf("election_id = %q, want %q", resp.ElectionID, created.ElectionID)
	}
	if resp.ClosedAt.IsZero() {
		t.Error("expected a closed_at timestamp")
	}

	// The window is over; the booth refuses entry
	boothReq := testutil.MakeRequest("POST", "/elections/"+created.ElectionID+"/booth", nil,
		map[string]string{"X-Voter-Wallet": "0xWALLET1"})
	boothReq.SetPathValue("id", created.ElectionID)
	boothW := httptest.NewRecorder()
	env.booth.EnterBooth(boothW, boothReq)
	testutil.AssertStatus(t, boothW, http.StatusConflict)

	// Closing twice is a conflict
	w = closeElection(t, env, created.ElectionID, created.AdminKey)
	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestCloseElectionValidation(t *testing.T) {
	env := newTestEnv(t)

	req := testutil.MakeRequest("POST", "/elections", validCreateRequest(), nil)
	w := httptest.NewRecorder()
	env.elections.CreateElection(w, req)
	var created models.CreateElectionResponse
	testutil.AssertJSON(t, w, &created)

	upcoming := validCreateRequest()
	upcoming.WindowStart = time.Now().Add(time.Hour)
	upcoming.WindowEnd = time.Now().Add(24 * time.Hour)
	req = testutil.MakeRequest("POST", "/elections", upcoming, nil)
	w = httptest.NewRecorder()
	env.elections.CreateElection(w, req)
	var upcomingCreated models.CreateElectionResponse
	testutil.AssertJSON(t, w, &upcomingCreated)

	tests := []struct {
		name       string
		electionID string
		adminKey   string
		wantStatus int
	}{
		{"wrong admin key", created.ElectionID, "bogus-key", http.StatusUnauthorized},
		{"missing admin key", created.ElectionID, "", http.StatusUnauthorized},
		{"unknown election", "nonexistent", auth.GenerateAdminKey("nonexistent", env.cfg.AdminKeySalt), http.StatusNotFound},
		{"not yet open", upcomingCreated.ElectionID, upcomingCreated.AdminKey, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := closeElection(t, env, tt.electionID, tt.adminKey)
			testutil.AssertStatus(t, w, tt.wantStatus)
		})
	}
}
