// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the BLESS API server.

BLESS is a browser-delivered psychology self-help and research platform:
participants log in, complete a daily emotional-regulation exercise cycle
(pre-test, stimulus video, practice, post-test), and submit pre/post mood
and questionnaire data. The server persists sessions, daily-usage flags,
trial progress, and assessment artifacts, and relays reflective text to a
language model for prose feedback.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... go run main.go

Or with flags:

	go run main.go -p 3000 -d "postgres://..." -t postgres

A .env file in the working directory is loaded at startup.

# Configuration

Required settings:

  - DATABASE_URL (-d): database connection string

Optional settings:

  - PORT (-p): server port (default: 3000)
  - DATABASE_TYPE (-t): postgres (default) or sqlite
  - OPENAI_API_KEY (--openai-key): feedback relay key; relay is disabled without it
  - TIMEZONE (--tz): calendar-day and period bucketing zone (default: Asia/Taipei)
  - STATIC_DIR (--static): exercise asset directory (default: ./public)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (login, daily gate, progress, assessments,
    activities, content, feedback)
  - router: route definitions using Go 1.22+ routing
  - middleware: CORS, CSP, logging, JSON helpers
  - models: request/response types
  - auth: ID generation and credential checks
  - db: schema creation (portable across postgres/sqlite)
  - llm: feedback relay client
  - flow: the daily-task flow controller state machine (used by clients and
    integration tests)
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
