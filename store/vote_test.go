// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtvote/rtvote-server/testutil"
)

func tallyOf(t *testing.T, conn *sql.DB, candidateID string) int {
	t.Helper()
	var votes int
	require.NoError(t, conn.QueryRow(`SELECT votes FROM candidates WHERE id = $1`, candidateID).Scan(&votes))
	return votes
}

func hasVoted(t *testing.T, conn *sql.DB, voterID string) bool {
	t.Helper()
	var voted bool
	require.NoError(t, conn.QueryRow(`SELECT has_voted FROM voters WHERE id = $1`, voterID).Scan(&voted))
	return voted
}

func TestCastVoteScenario(t *testing.T) {
	s, conn := newTestStore(t)
	ctx := context.Background()
	testutil.OpenElection(t, conn)

	a := testutil.CreateTestVoter(t, conn, "A", "X")
	c1 := testutil.CreateTestCandidate(t, conn, "C1", "X")
	c2 := testutil.CreateTestCandidate(t, conn, "C2", "X")

	receipt, err := s.CastVote(ctx, VoteInput{VoterID: a.ID, CandidateID: c1.ID, IPHash: "abc", UserAgent: "test"})
	require.NoError(t, err)
	assert.Equal(t, c1.ID, receipt.CandidateID)
	assert.NotEmpty(t, receipt.RecordID)
	assert.True(t, receipt.CastAt.Equal(fixedNow))

	assert.Equal(t, 1, tallyOf(t, conn, c1.ID))
	assert.True(t, hasVoted(t, conn, a.ID))

	_, err = s.CastVote(ctx, VoteInput{VoterID: a.ID, CandidateID: c2.ID})
	require.ErrorIs(t, err, ErrAlreadyVoted)

	assert.Equal(t, 0, tallyOf(t, conn, c2.ID))
	assert.Equal(t, 1, tallyOf(t, conn, c1.ID))

	n, err := s.CountVoteRecords(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCastVoteIdempotentRejection(t *testing.T) {
	s, conn := newTestStore(t)
	ctx := context.Background()
	testutil.OpenElection(t, conn)

	v := testutil.CreateTestVoter(t, conn, "Dewi", "Sukamaju")
	c := testutil.CreateTestCandidate(t, conn, "Eko", "Sukamaju")

	_, err := s.CastVote(ctx, VoteInput{VoterID: v.ID, CandidateID: c.ID})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := s.CastVote(ctx, VoteInput{VoterID: v.ID, CandidateID: c.ID})
		require.ErrorIs(t, err, ErrAlreadyVoted)
	}

	assert.Equal(t, 1, tallyOf(t, conn, c.ID))
	n, err := s.CountVoteRecords(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCastVoteElectionGate(t *testing.T) {
	past := fixedNow.Add(-time.Hour)
	future := fixedNow.Add(time.Hour)

	tests := []struct {
		name     string
		active   bool
		startAt  *time.Time
		endAt    *time.Time
		hasVoted bool
		wantErr  error
	}{
		{"inactive", false, nil, nil, false, ErrElectionClosed},
		{"inactive and already voted", false, nil, nil, true, ErrElectionClosed},
		{"ended", true, nil, &past, false, ErrElectionClosed},
		{"not started", true, &future, nil, false, ErrElectionClosed},
		{"inside window", true, &past, &future, false, nil},
		{"active with no schedule", true, nil, nil, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, conn := newTestStore(t)
			ctx := context.Background()
			testutil.SetElection(t, conn, tt.active, tt.startAt, tt.endAt)

			v := testutil.CreateTestVoter(t, conn, "Fajar", "Sukamaju")
			c := testutil.CreateTestCandidate(t, conn, "Gita", "Sukamaju")
			if tt.hasVoted {
				_, err := conn.Exec(`UPDATE voters SET has_voted = TRUE WHERE id = $1`, v.ID)
				require.NoError(t, err)
			}

			_, err := s.CastVote(ctx, VoteInput{VoterID: v.ID, CandidateID: c.ID})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 0, tallyOf(t, conn, c.ID))
				assert.Equal(t, tt.hasVoted, hasVoted(t, conn, v.ID))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, tallyOf(t, conn, c.ID))
		})
	}
}

func TestCastVoteRejectsBadTargets(t *testing.T) {
	s, conn := newTestStore(t)
	ctx := context.Background()
	testutil.OpenElection(t, conn)

	v := testutil.CreateTestVoter(t, conn, "Hadi", "Sukamaju")
	other := testutil.CreateTestCandidate(t, conn, "Indra", "Cibeureum")

	_, err := s.CastVote(ctx, VoteInput{VoterID: v.ID, CandidateID: "missing"})
	assert.ErrorIs(t, err, ErrCandidateNotFound)

	_, err = s.CastVote(ctx, VoteInput{VoterID: v.ID, CandidateID: other.ID})
	assert.ErrorIs(t, err, ErrCandidateOutOfScope)

	_, err = s.CastVote(ctx, VoteInput{VoterID: "ghost", CandidateID: other.ID})
	assert.ErrorIs(t, err, ErrVoterNotFound)

	assert.Equal(t, 0, tallyOf(t, conn, other.ID))
	assert.False(t, hasVoted(t, conn, v.ID))
}

func TestCastVoteAtomicity(t *testing.T) {
	s, conn := newTestStore(t)
	ctx := context.Background()
	testutil.OpenElection(t, conn)

	v := testutil.CreateTestVoter(t, conn, "Joko", "Sukamaju")
	c := testutil.CreateTestCandidate(t, conn, "Kartini", "Sukamaju")

	boom := errors.New("simulated crash")
	s.afterTally = func() error { return boom }

	_, err := s.CastVote(ctx, VoteInput{VoterID: v.ID, CandidateID: c.ID})
	require.ErrorIs(t, err, boom)

	// Nothing from the failed attempt may be visible
	assert.Equal(t, 0, tallyOf(t, conn, c.ID))
	assert.False(t, hasVoted(t, conn, v.ID))
	n, err := s.CountVoteRecords(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, n)

	// The voter can still vote once the failure is gone
	s.afterTally = nil
	_, err = s.CastVote(ctx, VoteInput{VoterID: v.ID, CandidateID: c.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, tallyOf(t, conn, c.ID))
}

func TestCastVoteTimeout(t *testing.T) {
	s, conn := newTestStore(t, WithVoteTimeout(20*time.Millisecond))
	ctx := context.Background()
	testutil.OpenElection(t, conn)

	v := testutil.CreateTestVoter(t, conn, "Lina", "Sukamaju")
	c := testutil.CreateTestCandidate(t, conn, "Made", "Sukamaju")

	s.afterTally = func() error {
		time.Sleep(100 * time.Millisecond)
		return nil
	}

	_, err := s.CastVote(ctx, VoteInput{VoterID: v.ID, CandidateID: c.ID})
	require.ErrorIs(t, err, ErrVoteTimeout)

	assert.Equal(t, 0, tallyOf(t, conn, c.ID))
	assert.False(t, hasVoted(t, conn, v.ID))
}

func TestCastVoteConcurrentSameVoter(t *testing.T) {
	s, conn := newTestStore(t)
	ctx := context.Background()
	testutil.OpenElection(t, conn)

	v := testutil.CreateTestVoter(t, conn, "Nina", "Sukamaju")
	c1 := testutil.CreateTestCandidate(t, conn, "Oki", "Sukamaju")
	c2 := testutil.CreateTestCandidate(t, conn, "Putu", "Sukamaju")

	const attempts = 20
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		rejected  atomic.Int32
	)
	start := make(chan struct{})

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start

			target := c1.ID
			if i%2 == 1 {
				target = c2.ID
			}
			_, err := s.CastVote(ctx, VoteInput{VoterID: v.ID, CandidateID: target})
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, ErrAlreadyVoted):
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(attempts-1), rejected.Load())
	assert.Equal(t, 1, tallyOf(t, conn, c1.ID)+tallyOf(t, conn, c2.ID))
	assert.True(t, hasVoted(t, conn, v.ID))

	n, err := s.CountVoteRecords(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCastVoteConcurrentManyVoters(t *testing.T) {
	s, conn := newTestStore(t)
	ctx := context.Background()
	testutil.OpenElection(t, conn)

	c := testutil.CreateTestCandidate(t, conn, "Ratna", "Sukamaju")

	const voters = 15
	ids := make([]string, voters)
	for i := range ids {
		ids[i] = testutil.CreateTestVoter(t, conn, "Warga", "Sukamaju").ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := s.CastVote(ctx, VoteInput{VoterID: id, CandidateID: c.ID}); err != nil {
				t.Errorf("vote for %s failed: %v", id, err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, voters, tallyOf(t, conn, c.ID))
	n, err := s.CountVoteRecords(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, voters, n)
}

func TestResetVotes(t *testing.T) {
	s, conn := newTestStore(t)
	ctx := context.Background()
	testutil.OpenElection(t, conn)

	c := testutil.CreateTestCandidate(t, conn, "Sari", "Sukamaju")
	v1 := testutil.CreateTestVoter(t, conn, "Tono", "Sukamaju")
	v2 := testutil.CreateTestVoter(t, conn, "Umi", "Sukamaju")
	testutil.CreateTestVoter(t, conn, "Vina", "Sukamaju")

	for _, id := range []string{v1.ID, v2.ID} {
		_, err := s.CastVote(ctx, VoteInput{VoterID: id, CandidateID: c.ID})
		require.NoError(t, err)
	}

	votersReset, purged, err := s.ResetVotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), votersReset)
	assert.Equal(t, int64(2), purged)

	assert.Equal(t, 0, tallyOf(t, conn, c.ID))
	assert.False(t, hasVoted(t, conn, v1.ID))
	assert.False(t, hasVoted(t, conn, v2.ID))

	// Voters may vote again after a reset
	_, err = s.CastVote(ctx, VoteInput{VoterID: v1.ID, CandidateID: c.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, tallyOf(t, conn, c.ID))
}
