// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rtvote/rtvote-server/auth"
	"github.com/rtvote/rtvote-server/cliparse"
	"github.com/rtvote/rtvote-server/election"
	"github.com/rtvote/rtvote-server/metrics"
	"github.com/rtvote/rtvote-server/middleware"
	"github.com/rtvote/rtvote-server/models"
	"github.com/rtvote/rtvote-server/store"
)

// maxUserAgentLength bounds what the audit record keeps of the User-Agent header
const maxUserAgentLength = 256

type CandidateHandler struct {
	store   *store.Store
	cfg     cliparse.Config
	metrics *metrics.Metrics
}

func NewCandidateHandler(st *store.Store, cfg cliparse.Config, m *metrics.Metrics) *CandidateHandler {
	return &CandidateHandler{store: st, cfg: cfg, metrics: m}
}

// scopeFor returns the sub-district a caller may see. Admins see every
// sub-district unless they narrow it with ?sub_district=.
func scopeFor(r *http.Request, claims *auth.Claims) string {
	if claims.Admin {
		if sd := strings.TrimSpace(r.URL.Query().Get("sub_district")); sd != "" {
			return sd
		}
		return models.AllSubDistricts
	}
	return claims.SubDistrict
}

// List handles GET /candidates
func (h *CandidateHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	candidates, err := h.store.ListCandidates(r.Context(), scopeFor(r, claims))
	if err != nil {
		writeStoreError(w, err, "list candidates")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, candidates)
}

// Get handles GET /candidates/{id}
func (h *CandidateHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	candidate, err := h.store.GetCandidate(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "load candidate")
		return
	}

	// Candidates of other sub-districts are invisible to residents
	if !claims.Admin && candidate.SubDistrict != claims.SubDistrict {
		middleware.ErrorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, candidate)
}

// Vote handles POST /candidates/vote
func (h *CandidateHandler) Vote(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	candidateID := strings.TrimSpace(req.CandidateID)
	if candidateID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate_id is required")
		return
	}

	// The voter is whoever holds the token; a body voter_id may only repeat it
	if req.VoterID != "" && req.VoterID != claims.Subject {
		h.metrics.VoteRejected(metrics.ReasonVoterMismatch)
		middleware.ErrorResponse(w, http.StatusForbidden, "Cannot vote on behalf of another voter")
		return
	}

	userAgent := r.UserAgent()
	if len(userAgent) > maxUserAgentLength {
		userAgent = userAgent[:maxUserAgentLength]
	}

	receipt, err := h.store.CastVote(r.Context(), store.VoteInput{
		VoterID:     claims.Subject,
		CandidateID: candidateID,
		IPHash:      auth.HashIP(middleware.GetClientIP(r, h.cfg.TrustProxy), h.cfg.IPHashSalt),
		UserAgent:   userAgent,
	})
	if err != nil {
		h.metrics.VoteRejected(rejectionReason(err))
		if errors.Is(err, store.ErrVoterNotFound) {
			middleware.ErrorResponse(w, http.StatusUnauthorized, "Session no longer valid")
			return
		}
		writeStoreError(w, err, "cast vote")
		return
	}

	h.metrics.VoteCast()
	slog.Info("vote cast",
		"voter_id", claims.Subject,
		"candidate_id", receipt.CandidateID,
		"record_id", receipt.RecordID,
	)

	middleware.JSONResponse(w, http.StatusOK, models.CastVoteResponse{
		Message: "Vote recorded",
		CastAt:  receipt.CastAt,
	})
}

// Results handles GET /results
func (h *CandidateHandler) Results(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	ctx := r.Context()

	voter, err := h.store.GetVoterByID(ctx, claims.Subject)
	if errors.Is(err, store.ErrVoterNotFound) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Session no longer valid")
		return
	}
	if err != nil {
		writeStoreError(w, err, "load results")
		return
	}

	settings, err := h.store.GetElection(ctx)
	if err != nil {
		writeStoreError(w, err, "load results")
		return
	}

	subDistrict := voter.SubDistrict
	if voter.IsAdmin {
		subDistrict = scopeFor(r, claims)
	}

	candidates, err := h.store.ListCandidates(ctx, subDistrict)
	if err != nil {
		writeStoreError(w, err, "load results")
		return
	}

	// Admins monitor the count; residents wait until they voted or the election ended
	canSee := voter.HasVoted || voter.IsAdmin
	middleware.JSONResponse(w, http.StatusOK,
		election.BuildResults(candidates, settings, subDistrict, canSee, h.store.Now()))
}
