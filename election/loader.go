// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/campusvote/ballotbooth/models"
)

var (
	ErrNotFound  = errors.New("election not found")
	ErrNotActive = errors.New("election is not open for voting")
)

// Load fetches a fully materialized election snapshot: the election row,
// its roles in ballot order, and each role's candidates in ballot order.
// The snapshot is read-only after this; nothing in the core mutates it.
func Load(db *sql.DB, electionID string) (*models.ElectionSnapshot, error) {
	var snap models.ElectionSnapshot
	var description, instructions sql.NullString

	err := db.QueryRow(`
		SELECT id, title, description, instructions, kind, window_start, window_end, created_at
		FROM election WHERE id = $1
	`, electionID).Scan(&snap.ID, &snap.Title, &description, &instructions,
		&snap.Kind, &snap.WindowStart, &snap.WindowEnd, &snap.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query election: %w", err)
	}
	snap.Description = description.String
	snap.Instructions = instructions.String

	roles, err := loadRoles(db, electionID)
	if err != nil {
		return nil, err
	}
	snap.Roles = roles

	return &snap, nil
}

// LoadForVoting is Load plus the voting-window check. A ballot draft must
// only ever be constructed from a snapshot returned by this function.
// The window is half-open: [window_start, window_end).
func LoadForVoting(db *sql.DB, electionID string, now time.Time) (*models.ElectionSnapshot, error) {
	snap, err := Load(db, electionID)
	if err != nil {
		return nil, err
	}

	if now.Before(snap.WindowStart) || !now.Before(snap.WindowEnd) {
		return nil, ErrNotActive
	}

	return snap, nil
}

// List returns summaries of all elections, newest window first, with a
// derived status and a humanized note about the voting window.
func List(db *sql.DB, now time.Time) ([]models.ElectionSummary, error) {
	rows, err := db.Query(`
		SELECT e.id, e.title, e.kind, e.window_start, e.window_end,
		       (SELECT COUNT(*) FROM role r WHERE r.election_id = e.id)
		FROM election e
		ORDER BY e.window_start DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query elections: %w", err)
	}
	defer rows.Close()

	summaries := []models.ElectionSummary{}
	for rows.Next() {
		var s models.ElectionSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Kind, &s.WindowStart, &s.WindowEnd, &s.RoleCount); err != nil {
			return nil, fmt.Errorf("failed to scan election: %w", err)
		}
		s.Status = Status(s.WindowStart, s.WindowEnd, now)
		s.WindowNote = WindowNote(s.WindowStart, s.WindowEnd, now)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate elections: %w", err)
	}

	return summaries, nil
}

// Status derives upcoming/open/closed from the voting window.
func Status(windowStart, windowEnd, now time.Time) string {
	switch {
	case now.Before(windowStart):
		return models.StatusUpcoming
	case now.Before(windowEnd):
		return models.StatusOpen
	default:
		return models.StatusClosed
	}
}

// WindowNote renders the voting window relative to now, e.g.
// "opens in 2 days", "closes in 3 hours", "closed 1 week ago".
func WindowNote(windowStart, windowEnd, now time.Time) string {
	switch Status(windowStart, windowEnd, now) {
	case models.StatusUpcoming:
		return "opens " + humanize.RelTime(windowStart, now, "ago", "from now")
	case models.StatusOpen:
		return "closes " + humanize.RelTime(windowEnd, now, "ago", "from now")
	default:
		return "closed " + humanize.RelTime(windowEnd, now, "ago", "from now")
	}
}

func loadRoles(db *sql.DB, electionID string) ([]models.Role, error) {
	rows, err := db.Query(`
		SELECT id, title, description FROM role
		WHERE election_id = $1
		ORDER BY position
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	defer rows.Close()

	var roles []models.Role
	roleIndex := make(map[string]int)
	for rows.Next() {
		var role models.Role
		var description sql.NullString
		if err := rows.Scan(&role.ID, &role.Title, &description); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		role.Description = description.String
		roleIndex[role.ID] = len(roles)
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roles: %w", err)
	}

	crows, err := db.Query(`
		SELECT c.id, c.role_id, c.name, c.affiliation, c.statement, c.image_ref
		FROM candidate c
		JOIN role r ON r.id = c.role_id
		WHERE r.election_id = $1
		ORDER BY r.position, c.position
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer crows.Close()

	for crows.Next() {
		var c models.Candidate
		var roleID string
		var affiliation, statement, imageRef sql.NullString
		if err := crows.Scan(&c.ID, &roleID, &c.Name, &affiliation, &statement, &imageRef); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		c.Affiliation = affiliation.String
		c.Statement = statement.String
		c.ImageRef = imageRef.String
		if i, ok := roleIndex[roleID]; ok {
			roles[i].Candidates = append(roles[i].Candidates, c)
		}
	}
	if err := crows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidates: %w", err)
	}

	return roles, nil
}
