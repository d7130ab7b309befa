// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3000)
  - DatabaseURL: connection string (required)
  - DatabaseType: "postgres" (default) or "sqlite"
  - OpenAIKey: feedback relay API key (optional; relay reports 503 without it)
  - OpenAIBase: OpenAI-compatible base URL override (optional)
  - Timezone: IANA zone for calendar-day and period bucketing (default: Asia/Taipei)
  - StaticDir: static exercise asset directory (default: ./public)

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type (sqlite or postgres)
	--openai-key  OpenAI API key
	--openai-base OpenAI-compatible base URL
	--tz          Timezone
	--static      Static asset directory

# Environment Variables

Flags fall back to environment variables:

	PORT            → -p
	DATABASE_URL    → -d
	DATABASE_TYPE   → -t
	OPENAI_API_KEY  → --openai-key
	OPENAI_BASE_URL → --openai-base
	TIMEZONE        → --tz
	STATIC_DIR      → --static

CLI flags take precedence over environment variables. A .env file in the
working directory is loaded by main before ParseFlags runs.

# Validation

ParseFlags returns an error if DATABASE_URL is missing, DATABASE_TYPE is not
one of postgres/sqlite, or TIMEZONE does not resolve to an IANA location.
*/
package cliparse
