// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"errors"
	"fmt"
	"sync"

	"github.com/campusvote/ballotbooth/models"
)

var (
	ErrUnknownRole       = errors.New("role is not part of this election")
	ErrInvalidCandidate  = errors.New("candidate is not standing for this role")
	ErrIncompleteRole    = errors.New("active role has no selection")
	ErrSingleRole        = errors.New("navigation is not available for single-role ballots")
	ErrAlreadySubmitting = errors.New("ballot is being submitted")
)

// Draft is one voter's in-progress ballot for one election. It is owned by
// exactly one booth session and is never shared across sessions.
//
// A draft tracks one selection per role and a single navigation position
// (activeRoleIndex). Selections persist independently of navigation: moving
// back to an earlier role never clears later choices.
//
// A draft's own mutex is the only lock over its state. Edit handlers and
// the submission path touch the same draft from different goroutines, so
// every method takes it; callers never need outside synchronization.
type Draft struct {
	mu         sync.Mutex
	snap       *models.ElectionSnapshot
	selections map[string]string // role ID -> candidate ID, "" = unselected
	roleIndex  int
	frozen     bool
}

// NewDraft creates an empty draft from a loaded election snapshot.
// Every role ID is present in the selection map from the start; keys are
// never added or removed afterwards.
func NewDraft(snap *models.ElectionSnapshot) (*Draft, error) {
	if snap == nil || len(snap.Roles) == 0 {
		return nil, fmt.Errorf("snapshot has no roles")
	}
	selections := make(map[string]string, len(snap.Roles))
	for _, role := range snap.Roles {
		if len(role.Candidates) == 0 {
			return nil, fmt.Errorf("role %q has no candidates", role.ID)
		}
		selections[role.ID] = ""
	}
	return &Draft{
		snap:       snap,
		selections: selections,
	}, nil
}

// Select records candidateID as the choice for roleID. It does not move the
// navigation position, so a voter can revise an earlier role and keep later
// selections intact.
func (d *Draft) Select(roleID, candidateID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.frozen {
		return ErrAlreadySubmitting
	}

	if _, ok := d.selections[roleID]; !ok {
		return ErrUnknownRole
	}

	role := d.roleByID(roleID)
	found := false
	for _, c := range role.Candidates {
		if c.ID == candidateID {
			found = true
			break
		}
	}
	if !found {
		return ErrInvalidCandidate
	}

	d.selections[roleID] = candidateID
	return nil
}

// Advance moves to the next role. Only meaningful for multi-role elections;
// the active role must have a selection first. Advancing past the last role
// is a no-op, not an error - the UI switches to "submit" once IsComplete.
func (d *Draft) Advance() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.frozen {
		return ErrAlreadySubmitting
	}
	if d.snap.Kind != models.KindMultiRole {
		return ErrSingleRole
	}
	if d.selections[d.activeRole().ID] == "" {
		return ErrIncompleteRole
	}
	if d.roleIndex < len(d.snap.Roles)-1 {
		d.roleIndex++
	}
	return nil
}

// Retreat moves to the previous role, floored at the first. Selections are
// untouched.
func (d *Draft) Retreat() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.frozen {
		return ErrAlreadySubmitting
	}
	if d.roleIndex > 0 {
		d.roleIndex--
	}
	return nil
}

// IsComplete reports whether every role has a selection. This is the single
// predicate gating submission for both single-role and multi-role ballots.
func (d *Draft) IsComplete() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isComplete()
}

func (d *Draft) isComplete() bool {
	for _, role := range d.snap.Roles {
		if d.selections[role.ID] == "" {
			return false
		}
	}
	return true
}

// Summary returns the ordered (role, candidate) review projection for the
// confirmation screen. Unselected roles carry a nil candidate. The result
// is a copy; mutating it does not touch the draft.
func (d *Draft) Summary() []models.SummaryEntry {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries := make([]models.SummaryEntry, 0, len(d.snap.Roles))
	for _, role := range d.snap.Roles {
		entry := models.SummaryEntry{Role: role}
		if id := d.selections[role.ID]; id != "" {
			for i := range role.Candidates {
				if role.Candidates[i].ID == id {
					c := role.Candidates[i]
					entry.Candidate = &c
					break
				}
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

// Selections returns a copy of the role -> candidate mapping with only the
// made selections, in the shape the ledger gateway expects.
func (d *Draft) Selections() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make(map[string]string, len(d.selections))
	for roleID, candidateID := range d.selections {
		if candidateID != "" {
			out[roleID] = candidateID
		}
	}
	return out
}

// ActiveRoleIndex returns the current navigation position.
func (d *Draft) ActiveRoleIndex() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.roleIndex
}

// Frozen reports whether the draft is locked by a pending or in-flight
// submission.
func (d *Draft) Frozen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frozen
}

// Freeze locks the draft once the voter enters confirmation, so what the
// ledger receives is exactly what the confirmation screen showed. Every
// mutating operation fails with ErrAlreadySubmitting until Unfreeze.
func (d *Draft) Freeze() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frozen = true
}

// Unfreeze unlocks the draft after a cancelled confirmation or a rejected
// submission so the voter can revise and retry. Never called after
// acceptance - an accepted draft is discarded by its session.
func (d *Draft) Unfreeze() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frozen = false
}

// View builds the read-only projection the UI renders: navigation position,
// completeness, and the per-role unvisited/active/completed states. The
// per-role state is derived - activeRoleIndex and the selection map are the
// only sources of truth.
func (d *Draft) View() models.DraftView {
	d.mu.Lock()
	defer d.mu.Unlock()

	view := models.DraftView{
		ActiveRoleIndex: d.roleIndex,
		Complete:        d.isComplete(),
		Frozen:          d.frozen,
		Roles:           make([]models.RoleProgress, 0, len(d.snap.Roles)),
	}
	for i, role := range d.snap.Roles {
		p := models.RoleProgress{
			RoleID:   role.ID,
			Title:    role.Title,
			Selected: d.selections[role.ID],
		}
		switch {
		case i == d.roleIndex:
			p.State = models.RoleActive
		case d.selections[role.ID] != "":
			p.State = models.RoleCompleted
		default:
			p.State = models.RoleUnvisited
		}
		view.Roles = append(view.Roles, p)
	}
	return view
}

func (d *Draft) activeRole() models.Role {
	return d.snap.Roles[d.roleIndex]
}

func (d *Draft) roleByID(roleID string) models.Role {
	for _, role := range d.snap.Roles {
		if role.ID == roleID {
			return role
		}
	}
	return models.Role{}
}
