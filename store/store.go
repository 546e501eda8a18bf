// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rtvote/rtvote-server/db"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrVoterNotFound        = fmt.Errorf("voter %w", ErrNotFound)
	ErrCandidateNotFound    = fmt.Errorf("candidate %w", ErrNotFound)
	ErrAnnouncementNotFound = fmt.Errorf("announcement %w", ErrNotFound)

	ErrDuplicateNIK        = errors.New("NIK already registered")
	ErrAlreadyVoted        = errors.New("voter has already voted")
	ErrElectionClosed      = errors.New("election is not open for voting")
	ErrCandidateOutOfScope = errors.New("candidate is not in the voter's sub-district")
	ErrVoteTimeout         = errors.New("vote transaction timed out, please try again")
	ErrCandidateHasVotes   = errors.New("candidate has recorded votes")
)

// Store is the SQL-backed repository for every RT-Vote entity
type Store struct {
	db          *sql.DB
	dialect     db.Dialect
	now         func() time.Time
	voteTimeout time.Duration

	// afterTally runs between the tally increment and the voter update
	afterTally func() error
}

type Option func(*Store)

// WithClock replaces the time source used for timestamps and the election gate
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithVoteTimeout bounds each vote transaction; zero disables the bound
func WithVoteTimeout(d time.Duration) Option {
	return func(s *Store) { s.voteTimeout = d }
}

func New(conn *sql.DB, dialect db.Dialect, opts ...Option) *Store {
	s := &Store{db: conn, dialect: dialect, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store's current time in UTC
func (s *Store) Now() time.Time {
	return s.now().UTC()
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func checkAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
