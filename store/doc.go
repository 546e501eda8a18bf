// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists voters, candidates, announcements and the election
clock, and runs the vote transaction.

Queries are written once with $N placeholders, which both lib/pq and
modernc.org/sqlite accept. Lookups that miss return a typed sentinel
(ErrVoterNotFound, ErrCandidateNotFound, ...) so handlers can map them
onto status codes with errors.Is.

# Casting a Vote

CastVote runs in a single transaction bounded by the vote timeout:

	receipt, err := st.CastVote(ctx, store.VoteInput{VoterID: id, CandidateID: cid})

The voter row is locked (FOR UPDATE on Postgres; SQLite serializes writers
on one connection), the election clock and has_voted are checked, the
tally is incremented and has_voted flips in the same commit. The unique
index on vote_records.voter_id backs the one-vote rule if two requests
ever race past the has_voted check.
*/
package store
