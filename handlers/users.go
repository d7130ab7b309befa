// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
)

// lookupUserID resolves an external participant identifier (e.g. "TEST001")
// to the internal users.id primary key. Returns sql.ErrNoRows when the
// participant is not provisioned.
func lookupUserID(db *sql.DB, userid string) (string, error) {
	var id string
	err := db.QueryRow("SELECT id FROM users WHERE userid = $1", userid).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}
