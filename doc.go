// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the RT-Vote API server.

RT-Vote runs a neighborhood (RT) head election. Residents register with
their NIK, log in, and cast exactly one vote for a candidate of their own
sub-district while the election clock is open. Admins manage candidates,
announcements, and the election schedule.

# Starting the Server

With no database settings the server uses a local SQLite file:

	TOKEN_SECRET=change-me-please-1234 ADMIN_PASSWORD=rahasia go run .

Or against PostgreSQL:

	go run . -t postgres -d "postgres://..." -token-secret ...

A .env file in the working directory is loaded before the environment is read.

# Configuration

Required settings:

  - TOKEN_SECRET (-token-secret): signing key for session tokens

Optional settings:

  - PORT (-p): Server port (default: 5176)
  - DATABASE_TYPE (-t) and DATABASE_URL (-d): sqlite (default) or postgres
  - ADMIN_NIK, ADMIN_NAME, ADMIN_PASSWORD: bootstrap admin for a fresh database
  - VOTE_TIMEOUT: deadline of a single vote transaction
  - LOG_LEVEL, LOG_FORMAT: slog level and text or json output

See package cliparse for the full list.

# Architecture

  - handlers: HTTP request handlers (auth, candidates, voting, admin)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, metrics, bearer auth, JSON helpers
  - store: SQL persistence and the vote transaction
  - election: Election clock and results computation
  - auth: Password hashing, NIK validation, session tokens
  - metrics: Prometheus collectors
  - db: Connections and goose migrations
  - models: Request/response and domain types
  - cliparse: Configuration parsing

The process shuts down gracefully on SIGINT or SIGTERM.
*/
package main
