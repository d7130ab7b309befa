// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides ID generation and credential checking.

# ID Generation

GenerateID returns a random hex string used for row primary keys:

	id, err := auth.GenerateID(16) // 32 hex chars

# Credential Check

CheckCredential performs a constant-time comparison of the stored credential
against the submitted one and returns ErrBadCredentials on mismatch. User
provisioning (and any hashing policy) happens out of band; the server only
reads credentials at login.
*/
package auth
