// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package session keeps per-voter booth state between requests.
//
// A voter entering the booth gets an opaque token; every subsequent booth
// request carries it in the X-Booth-Token header. The token maps to a
// Session holding the election snapshot, the working draft, and (once
// submission starts) the submission coordinator.
//
// # Expiry
//
// Sessions are held in memory only. A session older than the manager's TTL
// is treated as gone, both lazily on lookup and eagerly via Purge. Losing a
// session before submission means the voter re-enters the booth and starts
// a fresh draft; losing it after an accepted submission is harmless because
// the receipt lives in the database.
package session
