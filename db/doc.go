// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the SQL backend and manages its schema.

# Backends

Two dialects are supported:

  - sqlite: modernc.org/sqlite, the default. The pool is limited to one
    connection so write transactions are serialized.
  - postgres: github.com/lib/pq. Vote transactions lock the voter row
    with SELECT ... FOR UPDATE (see Dialect.LockClause).

All queries use $N placeholders, which both drivers accept.

# Migrations

The schema lives in migrations/ and is embedded in the binary. Migrate
applies pending versions through goose:

	if err := db.Migrate(ctx, conn, dialect); err != nil {
		return err
	}

Safe to call on every start - goose records applied versions in
goose_db_version.

# Tables

	voters 1──0..1 vote_records *──1 candidates
	announcements
	election_settings (single row, id = 1)

Deleting a voter or candidate cascades to its vote records.
*/
package db
