// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers implements the HTTP request handlers for the BLESS API.

# Handler Areas

  - AuthHandler: login (credential check + session row) and logout
  - DailyHandler: the once-per-day gate — check, start, status, and the
    transactional cycle completion
  - ProgressHandler: trial counter reads/overwrites and task-sequence lookup
  - AssessmentHandler: append-only AVI, writing, and mood persistence
  - ActivityHandler: coarse start/end activity timing
  - ContentHandler: day-indexed article/video dispatch
  - FeedbackHandler: LLM feedback relay with a distinguishable timeout

# Conventions

Each handler struct holds its dependencies (database, config) and is created
by the router. SQL lives inline; every query uses $1-style placeholders in
strictly ascending order so the statements run unchanged on PostgreSQL and
SQLite. Handlers that depend on the calendar carry an injectable clock
(`now func() time.Time`) so day-boundary behavior is testable.

Failure policy: user-input problems are 4xx with an inline message, missing
rows are 404, everything else is logged and mapped to a JSON 5xx — handlers
never panic the process.
*/
package handlers
