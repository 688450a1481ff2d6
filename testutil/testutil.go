// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/campusvote/ballotbooth/cliparse"
	"github.com/campusvote/ballotbooth/db"
	"github.com/campusvote/ballotbooth/models"
)

// SetupTestDB creates a fresh in-memory sqlite database with the full schema.
// MaxOpenConns is pinned to 1 so every query sees the same :memory: database.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3419,
		DatabaseURL:    ":memory:",
		DatabaseType:   "sqlite",
		LedgerURL:      "http://ledger.invalid",
		AdminKeySalt:   "test-admin-salt",
		IdentitySalt:   "test-identity-salt",
		SubmitTimeout:  2 * time.Second,
		VerifyInterval: 10 * time.Millisecond,
		VerifyTimeout:  time.Second,
		VerifyAttempts: 5,
	}
}

// TestRole describes a role to create for a test election
type TestRole struct {
	Title      string
	Candidates []string
}

// CreateTestElection inserts an election with the given roles and candidates.
// Returns the election ID, role IDs in ballot order, and candidate IDs per
// role ID in ballot order.
func CreateTestElection(t *testing.T, conn *sql.DB, kind string, windowStart, windowEnd time.Time, roles []TestRole) (string, []string, map[string][]string) {
	t.Helper()

	electionID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO election (id, title, description, instructions, kind, window_start, window_end, created_at)
		VALUES ($1, 'Test Election', 'A test election', 'Pick one candidate per position', $2, $3, $4, $5)
	`, electionID, kind, windowStart, windowEnd, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}

	roleIDs := make([]string, 0, len(roles))
	candidateIDs := make(map[string][]string)
	for i, role := range roles {
		roleID := uuid.NewString()
		_, err := conn.Exec(`
			INSERT INTO role (id, election_id, title, description, position)
			VALUES ($1, $2, $3, '', $4)
		`, roleID, electionID, role.Title, i)
		if err != nil {
			t.Fatalf("Failed to create test role: %v", err)
		}
		roleIDs = append(roleIDs, roleID)

		for j, name := range role.Candidates {
			candidateID := uuid.NewString()
			_, err := conn.Exec(`
				INSERT INTO candidate (id, role_id, name, affiliation, statement, image_ref, position)
				VALUES ($1, $2, $3, 'Independent', '', '', $4)
			`, candidateID, roleID, name, j)
			if err != nil {
				t.Fatalf("Failed to create test candidate: %v", err)
			}
			candidateIDs[roleID] = append(candidateIDs[roleID], candidateID)
		}
	}

	return electionID, roleIDs, candidateIDs
}

// OpenWindow returns a voting window that is currently open
func OpenWindow() (time.Time, time.Time) {
	now := time.Now()
	return now.Add(-time.Hour), now.Add(time.Hour)
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// FakeLedger is a scriptable stand-in for the external ledger gateway.
// It serves the same routes the real gateway does (POST /votes,
// GET /votes/verify/{id}) so both the ledger client and full handler
// stacks can be tested against it.
type FakeLedger struct {
	// CastErrorCode, when set, makes cast-vote fail with that gateway
	// error code ("window-closed", "duplicate-vote", "identity-rejected").
	CastErrorCode string
	// CastDelay stalls the cast-vote response, for timeout tests.
	CastDelay time.Duration
	// VerifyAfter is the number of verify calls that report unconfirmed
	// before the receipt is reported as verified.
	VerifyAfter int
	// VerifyNotFound makes every verify call return 404.
	VerifyNotFound bool
	// LedgerRefOverride, when set, is reported by verify instead of the
	// ref handed out at cast time (for mismatch tests).
	LedgerRefOverride string

	ReceiptID string
	LedgerRef string
	BlockRef  string

	mu          sync.Mutex
	castCalls   int
	verifyCalls int
}

// SetCastDelay changes the cast-vote stall while the server is live
func (f *FakeLedger) SetCastDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CastDelay = d
}

// CastCount reports how many cast-vote calls the gateway has served
func (f *FakeLedger) CastCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.castCalls
}

// VerifyCount reports how many verify calls the gateway has served
func (f *FakeLedger) VerifyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verifyCalls
}

// NewFakeLedger returns a fake that accepts one submission and verifies it
// on the first poll
func NewFakeLedger() *FakeLedger {
	return &FakeLedger{
		ReceiptID: "R" + uuid.NewString()[:13],
		LedgerRef: "0x" + uuid.NewString(),
		BlockRef:  "8421302",
	}
}

// Server starts an httptest server speaking the gateway protocol.
// The caller owns the returned server and must Close it.
func (f *FakeLedger) Server() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /votes", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.castCalls++
		delay := f.CastDelay
		errCode := f.CastErrorCode
		f.mu.Unlock()
		if delay > 0 {
			time.Sleep(delay)
		}
		if errCode != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{"error": errCode})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{
			"receipt_id": f.ReceiptID,
			"ledger_ref": f.LedgerRef,
		})
	})

	mux.HandleFunc("GET /votes/verify/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.verifyCalls++
		calls := f.verifyCalls
		f.mu.Unlock()
		if f.VerifyNotFound || r.PathValue("id") != f.ReceiptID {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "receipt-not-found"})
			return
		}
		ledgerRef := f.LedgerRef
		if f.LedgerRefOverride != "" {
			ledgerRef = f.LedgerRefOverride
		}
		verified := calls > f.VerifyAfter
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"verified":   verified,
			"ledger_ref": ledgerRef,
			"block_ref":  f.BlockRef,
		})
	})

	return httptest.NewServer(mux)
}

// DecodeError decodes an API error envelope from a recorder
func DecodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	return resp
}
