package models

import "time"

// Election kind constants
const (
	KindSingleRole = "single-role"
	KindMultiRole  = "multi-role"
)

// Derived election status constants
const (
	StatusUpcoming = "upcoming"
	StatusOpen     = "open"
	StatusClosed   = "closed"
)

// Per-role navigation state constants
const (
	RoleUnvisited = "unvisited"
	RoleActive    = "active"
	RoleCompleted = "completed"
)

// Verification status constants
const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationFailed   = "failed"
)

// Request types

type CreateCandidateRequest struct {
	Name        string `json:"name"`
	Affiliation string `json:"affiliation"`
	Statement   string `json:"statement"`
	ImageRef    string `json:"image_ref,omitempty"`
}

type CreateRoleRequest struct {
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Candidates  []CreateCandidateRequest `json:"candidates"`
}

type CreateElectionRequest struct {
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Instructions string              `json:"instructions"`
	Kind         string              `json:"kind"`
	WindowStart  time.Time           `json:"window_start"`
	WindowEnd    time.Time           `json:"window_end"`
	Roles        []CreateRoleRequest `json:"roles"`
}

type SelectRequest struct {
	RoleID      string `json:"role_id"`
	CandidateID string `json:"candidate_id"`
}

// Response types

type CreateElectionResponse struct {
	ElectionID string `json:"election_id"`
	AdminKey   string `json:"admin_key"`
}

type CloseElectionResponse struct {
	ElectionID string    `json:"election_id"`
	ClosedAt   time.Time `json:"closed_at"`
}

type EnterBoothResponse struct {
	BoothToken string            `json:"booth_token"`
	Election   *ElectionSnapshot `json:"election"`
	Draft      DraftView         `json:"draft"`
}

type SummaryResponse struct {
	Complete bool           `json:"complete"`
	Entries  []SummaryEntry `json:"entries"`
}

type SubmissionStatusResponse struct {
	State     string `json:"state"`
	Reason    string `json:"reason,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
	ReceiptID string `json:"receipt_id,omitempty"`
	LedgerRef string `json:"ledger_ref,omitempty"`
}

type ReceiptResponse struct {
	ReceiptID     string    `json:"receipt_id"`
	ElectionID    string    `json:"election_id"`
	ElectionTitle string    `json:"election_title"`
	LedgerRef     string    `json:"ledger_ref"`
	CheckCode     string    `json:"check_code"`
	SubmittedAt   time.Time `json:"submitted_at"`
	SubmittedAgo  string    `json:"submitted_ago"`
}

type VerificationResponse struct {
	Record VerificationRecord `json:"record"`
	Note   string             `json:"note,omitempty"`
}

// Domain types

type ElectionSnapshot struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Instructions string    `json:"instructions"`
	Kind         string    `json:"kind"`
	WindowStart  time.Time `json:"window_start"`
	WindowEnd    time.Time `json:"window_end"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
}

type Role struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Candidates  []Candidate `json:"candidates"`
}

type Candidate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Affiliation string `json:"affiliation"`
	Statement   string `json:"statement"`
	ImageRef    string `json:"image_ref,omitempty"`
}

type ElectionSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Kind        string    `json:"kind"`
	Status      string    `json:"status"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	WindowNote  string    `json:"window_note"`
	RoleCount   int       `json:"role_count"`
}

// DraftView is the read-only draft projection exposed to the UI layer.
type DraftView struct {
	ActiveRoleIndex int            `json:"active_role_index"`
	Complete        bool           `json:"complete"`
	Frozen          bool           `json:"frozen"`
	Roles           []RoleProgress `json:"roles"`
}

type RoleProgress struct {
	RoleID   string `json:"role_id"`
	Title    string `json:"title"`
	State    string `json:"state"`
	Selected string `json:"selected,omitempty"`
}

// SummaryEntry pairs a role with the selected candidate, nil if unselected.
type SummaryEntry struct {
	Role      Role       `json:"role"`
	Candidate *Candidate `json:"candidate,omitempty"`
}

// Receipt is the durable record of an accepted submission, as stored in
// the receipt table.
type Receipt struct {
	ReceiptID   string    `json:"receipt_id"`
	ElectionID  string    `json:"election_id"`
	LedgerRef   string    `json:"ledger_ref"`
	VoterHash   string    `json:"-"` // Never expose in JSON
	IPHash      *string   `json:"-"` // Never expose in JSON
	UserAgent   *string   `json:"-"` // Never expose in JSON
	SubmittedAt time.Time `json:"submitted_at"`
}

// VerificationRecord is a single snapshot from a verification poll stream.
// Status only moves forward: pending, then verified or failed.
type VerificationRecord struct {
	ReceiptID string    `json:"receipt_id"`
	Status    string    `json:"status"`
	Attempts  int       `json:"attempts"`
	LedgerRef string    `json:"ledger_ref,omitempty"`
	BlockRef  string    `json:"block_ref,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
