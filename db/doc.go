// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - users: participants, provisioned out of band, read at login
  - sessions: one immutable row per login with a time-of-day bucket
  - activities: coarse start/end activity timing
  - avi_results: append-only pre/post questionnaire submissions
  - daily_usage: one row per daily-flow start attempt with a finished flag
  - task_sequence: static (subject, trial) -> task assignments
  - user_progress: per-user trial counter
  - writings: append-only reflective-writing artifacts
  - moods: append-only 2-D affect coordinates

# Portability

The DDL runs unchanged on PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite):
TEXT primary keys generated in Go instead of SERIAL, CURRENT_TIMESTAMP instead
of NOW(), and day stored as an ISO date string. Queries use $1-style
placeholders in strictly ascending order, which both drivers bind positionally.
*/
package db
