// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and request/response helpers.

# Helpers

  - WithLogging: slog request/completion logging around a handler
  - JSONResponse / ErrorResponse: JSON body writers
  - ParseJSONBody: request body decoding
  - CORS: permissive cross-origin handling with preflight support
  - CSP: Content-Security-Policy header for the static exercise pages
  - GetClientIP: proxy-aware client address extraction
*/
package middleware
