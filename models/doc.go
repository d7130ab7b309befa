// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types shared across the
BLESS API server.

# Conventions

Request and response bodies use camelCase JSON field names, matching the
browser clients. Domain rows mirror their database columns in snake_case.

Phase constants (PhasePre, PhasePost) tag AVI questionnaire submissions with
where in the daily cycle they were collected. Period constants bucket a login
into morning/afternoon/evening by local hour.

Credentials are never serialized: User.Password carries a `json:"-"` tag.
*/
package models
