// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rtvote/rtvote-server/db"
	"github.com/rtvote/rtvote-server/election"
)

// VoteInput identifies who votes for whom. VoterID must come from the
// authenticated session, never from the request body.
type VoteInput struct {
	VoterID     string
	CandidateID string
	IPHash      string
	UserAgent   string
}

type VoteReceipt struct {
	RecordID    string
	CandidateID string
	CastAt      time.Time
}

// CastVote records a single vote. The tally increment, the voter's
// has_voted flag and the audit record commit together or not at all.
func (s *Store) CastVote(ctx context.Context, in VoteInput) (VoteReceipt, error) {
	if s.voteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.voteTimeout)
		defer cancel()
	}

	receipt, err := s.castVote(ctx, in)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return VoteReceipt{}, fmt.Errorf("%w: %v", ErrVoteTimeout, err)
	}
	return receipt, err
}

func (s *Store) castVote(ctx context.Context, in VoteInput) (VoteReceipt, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return VoteReceipt{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Lock the voter row first so concurrent submissions for one voter queue here
	var (
		hasVoted         bool
		voterSubDistrict string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT has_voted, sub_district FROM voters WHERE id = $1`+s.dialect.LockClause(),
		in.VoterID).Scan(&hasVoted, &voterSubDistrict)
	if errors.Is(err, sql.ErrNoRows) {
		return VoteReceipt{}, ErrVoterNotFound
	}
	if err != nil {
		return VoteReceipt{}, fmt.Errorf("failed to lock voter: %w", err)
	}

	settings, err := getElection(ctx, tx)
	if err != nil {
		return VoteReceipt{}, err
	}
	now := s.Now()
	if !election.IsOpen(settings, now) {
		return VoteReceipt{}, ErrElectionClosed
	}

	if hasVoted {
		return VoteReceipt{}, ErrAlreadyVoted
	}

	var candidateSubDistrict string
	err = tx.QueryRowContext(ctx,
		`SELECT sub_district FROM candidates WHERE id = $1`, in.CandidateID).Scan(&candidateSubDistrict)
	if errors.Is(err, sql.ErrNoRows) {
		return VoteReceipt{}, ErrCandidateNotFound
	}
	if err != nil {
		return VoteReceipt{}, fmt.Errorf("failed to query candidate: %w", err)
	}
	if candidateSubDistrict != voterSubDistrict {
		return VoteReceipt{}, ErrCandidateOutOfScope
	}

	res, err := tx.ExecContext(ctx, `UPDATE candidates SET votes = votes + 1 WHERE id = $1`, in.CandidateID)
	if err != nil {
		return VoteReceipt{}, fmt.Errorf("failed to update tally: %w", err)
	}
	if err := checkAffected(res, ErrCandidateNotFound); err != nil {
		return VoteReceipt{}, err
	}

	if s.afterTally != nil {
		if err := s.afterTally(); err != nil {
			return VoteReceipt{}, err
		}
	}

	res, err = tx.ExecContext(ctx,
		`UPDATE voters SET has_voted = TRUE WHERE id = $1 AND has_voted = FALSE`, in.VoterID)
	if err != nil {
		return VoteReceipt{}, fmt.Errorf("failed to mark voter: %w", err)
	}
	if err := checkAffected(res, ErrAlreadyVoted); err != nil {
		return VoteReceipt{}, err
	}

	receipt := VoteReceipt{
		RecordID:    uuid.NewString(),
		CandidateID: in.CandidateID,
		CastAt:      now,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO vote_records (id, voter_id, candidate_id, cast_at, ip_hash, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, receipt.RecordID, in.VoterID, in.CandidateID, receipt.CastAt, nullString(in.IPHash), nullString(in.UserAgent))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return VoteReceipt{}, ErrAlreadyVoted
		}
		return VoteReceipt{}, fmt.Errorf("failed to insert vote record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return VoteReceipt{}, fmt.Errorf("failed to commit vote: %w", err)
	}

	return receipt, nil
}

// CountVoteRecords returns the number of audit rows, optionally for one candidate
func (s *Store) CountVoteRecords(ctx context.Context, candidateID string) (int, error) {
	var (
		n   int
		err error
	)
	if candidateID == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vote_records`).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM vote_records WHERE candidate_id = $1`, candidateID).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count vote records: %w", err)
	}
	return n, nil
}

// ResetVotes clears every has_voted flag, zeroes all tallies and purges
// the vote records in one transaction.
func (s *Store) ResetVotes(ctx context.Context) (votersReset, recordsPurged int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM vote_records`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to purge vote records: %w", err)
	}
	if recordsPurged, err = res.RowsAffected(); err != nil {
		return 0, 0, err
	}

	res, err = tx.ExecContext(ctx, `UPDATE voters SET has_voted = FALSE WHERE has_voted = TRUE`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to reset voters: %w", err)
	}
	if votersReset, err = res.RowsAffected(); err != nil {
		return 0, 0, err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE candidates SET votes = 0`); err != nil {
		return 0, 0, fmt.Errorf("failed to reset tallies: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit reset: %w", err)
	}
	return votersReset, recordsPurged, nil
}
