// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/blesslab/bless-server/auth"
	"github.com/blesslab/bless-server/cliparse"
	"github.com/blesslab/bless-server/db"
)

// SetupTestDB creates a fresh in-memory SQLite database with the full
// schema. The schema DDL is portable, so the handlers run the same SQL here
// as against PostgreSQL in production. MaxOpenConns(1) keeps the pool on the
// single shared memory database.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3000,
		DatabaseURL:  ":memory:",
		DatabaseType: "sqlite",
		Timezone:     "Asia/Taipei",
		StaticDir:    "./public",
	}
}

// CreateTestUser provisions a participant and returns the internal row ID.
func CreateTestUser(t *testing.T, conn *sql.DB, userid, password, group string) string {
	t.Helper()

	id, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO users (id, userid, password, group_label, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, userid, password, group, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return id
}

// SeedTask inserts a task_sequence assignment row.
func SeedTask(t *testing.T, conn *sql.DB, subject string, trial int, task string) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO task_sequence (subject_id, trial, task)
		VALUES ($1, $2, $3)
	`, subject, trial, task)
	if err != nil {
		t.Fatalf("Failed to seed task: %v", err)
	}
}

// CountRows returns the number of rows in a table matching a single
// equality condition, e.g. CountRows(t, conn, "daily_usage", "user_id", id).
func CountRows(t *testing.T, conn *sql.DB, table, column string, value any) int {
	t.Helper()

	var n int
	err := conn.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE "+column+" = $1", value).Scan(&n)
	if err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}
	return n
}
