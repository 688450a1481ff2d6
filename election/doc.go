// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package election loads immutable election snapshots.

# Loading

Load fetches the election, its roles in ballot order, and each role's
candidates in ballot order:

	snap, err := election.Load(db, electionID)

LoadForVoting adds the voting-window check and is the only entry point a
booth session may use:

	snap, err := election.LoadForVoting(db, electionID, time.Now())

Both return ErrNotFound for unknown elections. LoadForVoting returns
ErrNotActive outside the half-open window [window_start, window_end).
Loads are read-only and idempotent; a snapshot is never mutated after it
is returned.

# Listing

List returns election summaries with derived status (upcoming, open,
closed) and a humanized window note ("closes in 3 hours"):

	summaries, err := election.List(db, time.Now())
*/
package election
