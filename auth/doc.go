// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides authentication and token generation utilities.

# Admin Keys

Admin keys use HMAC-SHA256 to create deterministic, verifiable keys:

	adminKey := auth.GenerateAdminKey(electionID, salt)
	err := auth.ValidateAdminKey(electionID, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same election ID and salt always produce the same key. This allows
validation without storing the key in the database.

# Booth Tokens

Booth tokens are random 24-byte (192-bit) secrets:

	token, err := auth.GenerateBoothToken()

Tokens are URL-safe base64 encoded and identify one voting booth session.
Whoever holds the token owns the in-progress ballot draft, so tokens are
never logged or persisted.

# Receipt Check Codes

Check codes are short deterministic codes derived from a receipt ID:

	code := auth.CheckCode(receiptID, salt)

Codes are base62 encoded (alphanumeric only) so a voter can read them out
loud to support staff, who can detect a mistyped receipt ID by recomputing
the code.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters

# Identity and IP Hashing

For privacy-preserving duplicate detection:

	voterHash := auth.HashIdentity(walletAddress, salt)
	ipHash := auth.HashIP(ipAddress, salt)

HashIdentity normalizes the wallet address (trim, lowercase) before hashing
so the same wallet always maps to the same hash. HashIP returns the first
8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
