// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rtvote/rtvote-server/election"
	"github.com/rtvote/rtvote-server/metrics"
	"github.com/rtvote/rtvote-server/middleware"
	"github.com/rtvote/rtvote-server/store"
)

// writeStoreError maps store and domain errors onto HTTP responses.
// Unknown errors are logged and answered with a generic 500 naming action.
func writeStoreError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, store.ErrVoterNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Voter not found")
	case errors.Is(err, store.ErrCandidateNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Candidate not found")
	case errors.Is(err, store.ErrAnnouncementNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Announcement not found")
	case errors.Is(err, store.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Not found")
	case errors.Is(err, store.ErrDuplicateNIK):
		middleware.ErrorResponse(w, http.StatusConflict, "NIK already registered")
	case errors.Is(err, store.ErrAlreadyVoted):
		middleware.ErrorResponse(w, http.StatusConflict, "You have already voted")
	case errors.Is(err, store.ErrElectionClosed):
		middleware.ErrorResponse(w, http.StatusConflict, "Election is not open for voting")
	case errors.Is(err, store.ErrCandidateHasVotes):
		middleware.ErrorResponse(w, http.StatusConflict, "Candidate already has votes; reset the election first")
	case errors.Is(err, store.ErrCandidateOutOfScope):
		middleware.ErrorResponse(w, http.StatusForbidden, "Candidate is not in your sub-district")
	case errors.Is(err, store.ErrVoteTimeout):
		w.Header().Set("Retry-After", "1")
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Vote could not be recorded in time, please try again")
	case errors.Is(err, election.ErrInvalidSchedule):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("request failed", "action", action, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to "+action)
	}
}

// rejectionReason labels a failed vote for the rejection counter
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, store.ErrAlreadyVoted):
		return metrics.ReasonAlreadyVoted
	case errors.Is(err, store.ErrElectionClosed):
		return metrics.ReasonElectionClosed
	case errors.Is(err, store.ErrCandidateOutOfScope):
		return metrics.ReasonOutOfScope
	case errors.Is(err, store.ErrNotFound):
		return metrics.ReasonNotFound
	case errors.Is(err, store.ErrVoteTimeout):
		return metrics.ReasonTimeout
	}
	return metrics.ReasonError
}
