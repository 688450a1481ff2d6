// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ballot implements the ballot draft state machine.

A Draft holds one voter's in-progress selections for one election, plus the
navigation position for multi-role ballots. The package does no I/O; it is
driven entirely by the booth handlers and owned by a single session.

# Creating a Draft

	draft, err := ballot.NewDraft(snapshot)

Every role of the snapshot gets an entry in the selection map up front, so
completeness is simply "no role maps to the empty string".

# Operations

	err := draft.Select(roleID, candidateID) // record a choice
	err := draft.Advance()                   // next role (multi-role only)
	err := draft.Retreat()                   // previous role
	ok := draft.IsComplete()                 // submit gate
	entries := draft.Summary()               // confirmation review
	view := draft.View()                     // UI projection

Select validates the candidate against the role's candidate set
(ErrInvalidCandidate, ErrUnknownRole). Advance requires a selection for the
active role (ErrIncompleteRole) and clamps at the last role. Retreat floors
at the first role and never clears selections.

# Freezing

When the voter enters confirmation the coordinator freezes the draft:

	draft.Freeze()

Every mutating call then fails with ErrAlreadySubmitting, so the ledger
receives exactly the selections the confirmation screen showed. Cancelling
the confirmation or a rejected submission unfreezes the draft so the voter
can revise and retry; an accepted submission discards it.

# Concurrency

A Draft carries its own mutex and is safe for concurrent use. Edit
handlers and the submission path can touch the same draft from different
goroutines without outside locking.
*/
package ballot
