// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

var ErrBadCredentials = errors.New("invalid username or password")

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// CheckCredential compares a submitted password against the stored one in
// constant time. Participant credentials are provisioned out of band and
// stored as-is; this only guards against timing leaks on the comparison.
func CheckCredential(stored, submitted string) error {
	if !hmac.Equal([]byte(stored), []byte(submitted)) {
		return ErrBadCredentials
	}
	return nil
}
