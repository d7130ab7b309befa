// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
//
// The DDL sticks to the intersection of PostgreSQL and SQLite: TEXT primary
// keys generated in Go, CURRENT_TIMESTAMP defaults, $1-style placeholders in
// ascending order everywhere the tables are queried.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Participants (provisioned out of band)
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    userid TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL,
    group_label TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- One row per login; immutable after insert
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id),
    login_time TIMESTAMP NOT NULL,
    period TEXT NOT NULL CHECK (period IN ('morning', 'afternoon', 'evening'))
);

CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);

-- Coarse activity timing
CREATE TABLE IF NOT EXISTS activities (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id),
    type TEXT,
    start_time TIMESTAMP NOT NULL,
    end_time TIMESTAMP,
    duration_min REAL
);

CREATE INDEX IF NOT EXISTS idx_activities_user_id ON activities(user_id);

-- Pre/post questionnaire submissions, append-only
CREATE TABLE IF NOT EXISTS avi_results (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id),
    phase TEXT NOT NULL CHECK (phase IN ('pre', 'post')),
    feature_type TEXT,
    responses JSONB NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_avi_results_user_id ON avi_results(user_id);

-- One row per daily-flow start attempt. Several unfinished rows may pile up
-- for the same (user, day) when a participant aborts and restarts; only the
-- most recently started one gets finished.
CREATE TABLE IF NOT EXISTS daily_usage (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id),
    day TEXT NOT NULL,
    feature_type TEXT,
    cycle_id TEXT,
    started_at TIMESTAMP NOT NULL,
    is_finished BOOLEAN NOT NULL DEFAULT FALSE,
    finished_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_daily_usage_user_day ON daily_usage(user_id, day);
CREATE INDEX IF NOT EXISTS idx_daily_usage_cycle ON daily_usage(cycle_id);

-- Static (subject, trial) -> task assignments, populated out of band
CREATE TABLE IF NOT EXISTS task_sequence (
    subject_id TEXT NOT NULL,
    trial INTEGER NOT NULL,
    task TEXT NOT NULL,
    PRIMARY KEY (subject_id, trial)
);

-- Current trial counter, one row per user
CREATE TABLE IF NOT EXISTS user_progress (
    user_id TEXT PRIMARY KEY REFERENCES users(id),
    trial INTEGER NOT NULL DEFAULT 1,
    updated_at TIMESTAMP NOT NULL
);

-- Psychological-displacement writing artifacts, append-only
CREATE TABLE IF NOT EXISTS writings (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id),
    feature_type TEXT,
    self_text TEXT NOT NULL,
    you_text TEXT NOT NULL,
    he_text TEXT NOT NULL,
    back_text TEXT NOT NULL,
    reflect_text TEXT NOT NULL,
    duration_sec REAL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_writings_user_id ON writings(user_id);

-- 2-D affect coordinates from the mood picker, append-only
CREATE TABLE IF NOT EXISTS moods (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id),
    phase TEXT,
    valence REAL NOT NULL,
    arousal REAL NOT NULL,
    duration_sec REAL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_moods_user_id ON moods(user_id);
`
