// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/rtvote/rtvote-server/auth"
	"github.com/rtvote/rtvote-server/election"
	"github.com/rtvote/rtvote-server/middleware"
	"github.com/rtvote/rtvote-server/models"
	"github.com/rtvote/rtvote-server/store"
)

// AdminHandler serves the /admin routes. Every route is wrapped in
// middleware.RequireAdmin by the router.
type AdminHandler struct {
	store *store.Store
}

func NewAdminHandler(st *store.Store) *AdminHandler {
	return &AdminHandler{store: st}
}

func adminID(r *http.Request) string {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	return claims.Subject
}

// candidateFromRequest validates and normalizes a candidate payload
func candidateFromRequest(req models.CandidateRequest) (models.Candidate, string) {
	c := models.Candidate{
		Name:        auth.NormalizeName(req.Name),
		PhotoURL:    strings.TrimSpace(req.PhotoURL),
		SubDistrict: strings.TrimSpace(req.SubDistrict),
		Vision:      strings.TrimSpace(req.Vision),
		Background:  strings.TrimSpace(req.Background),
		Experience:  strings.TrimSpace(req.Experience),
		Mission:     make([]string, 0, len(req.Mission)),
	}
	for _, m := range req.Mission {
		if m = strings.TrimSpace(m); m != "" {
			c.Mission = append(c.Mission, m)
		}
	}

	switch {
	case c.Name == "":
		return c, "name is required"
	case c.SubDistrict == "":
		return c, "sub_district is required"
	case c.SubDistrict == models.AllSubDistricts:
		return c, "candidates must belong to a single sub-district"
	}
	return c, ""
}

// CreateCandidate handles POST /admin/candidates
func (h *AdminHandler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	var req models.CandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	candidate, problem := candidateFromRequest(req)
	if problem != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, problem)
		return
	}

	created, err := h.store.CreateCandidate(r.Context(), candidate)
	if err != nil {
		writeStoreError(w, err, "create candidate")
		return
	}

	slog.Info("candidate created", "candidate_id", created.ID, "sub_district", created.SubDistrict, "admin_id", adminID(r))
	middleware.JSONResponse(w, http.StatusCreated, created)
}

// UpdateCandidate handles PUT /admin/candidates/{id}
func (h *AdminHandler) UpdateCandidate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	var req models.CandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	candidate, problem := candidateFromRequest(req)
	if problem != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, problem)
		return
	}
	candidate.ID = id

	updated, err := h.store.UpdateCandidate(r.Context(), candidate)
	if err != nil {
		writeStoreError(w, err, "update candidate")
		return
	}

	slog.Info("candidate updated", "candidate_id", id, "admin_id", adminID(r))
	middleware.JSONResponse(w, http.StatusOK, updated)
}

// DeleteCandidate handles DELETE /admin/candidates/{id}
func (h *AdminHandler) DeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.store.DeleteCandidate(r.Context(), id); err != nil {
		writeStoreError(w, err, "delete candidate")
		return
	}

	slog.Info("candidate deleted", "candidate_id", id, "admin_id", adminID(r))
	w.WriteHeader(http.StatusNoContent)
}

// CreateAnnouncement handles POST /admin/announcements
func (h *AdminHandler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req models.AnnouncementRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	a := models.Announcement{
		Title:       strings.TrimSpace(req.Title),
		Content:     strings.TrimSpace(req.Content),
		SubDistrict: strings.TrimSpace(req.SubDistrict),
		IsImportant: req.IsImportant,
	}
	if a.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if a.Content == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "content is required")
		return
	}
	if a.SubDistrict == "" {
		a.SubDistrict = models.AllSubDistricts
	}

	created, err := h.store.CreateAnnouncement(r.Context(), a)
	if err != nil {
		writeStoreError(w, err, "create announcement")
		return
	}

	slog.Info("announcement created", "announcement_id", created.ID, "sub_district", created.SubDistrict, "admin_id", adminID(r))
	middleware.JSONResponse(w, http.StatusCreated, created)
}

// DeleteAnnouncement handles DELETE /admin/announcements/{id}
func (h *AdminHandler) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.store.DeleteAnnouncement(r.Context(), id); err != nil {
		writeStoreError(w, err, "delete announcement")
		return
	}

	slog.Info("announcement deleted", "announcement_id", id, "admin_id", adminID(r))
	w.WriteHeader(http.StatusNoContent)
}

// StartElection handles POST /admin/election/start
func (h *AdminHandler) StartElection(w http.ResponseWriter, r *http.Request) {
	current, err := h.store.GetElection(r.Context())
	if err != nil {
		writeStoreError(w, err, "start election")
		return
	}

	// Starting would be a no-op once the end has passed
	if election.Ended(current, h.store.Now()) {
		middleware.ErrorResponse(w, http.StatusConflict, "Election end has passed; update the schedule first")
		return
	}

	h.setActive(w, r, true)
}

// StopElection handles POST /admin/election/stop
func (h *AdminHandler) StopElection(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *AdminHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	settings, err := h.store.SetElectionActive(r.Context(), active)
	if err != nil {
		writeStoreError(w, err, "update election")
		return
	}

	slog.Info("election status changed", "active", active, "admin_id", adminID(r))
	middleware.JSONResponse(w, http.StatusOK, election.Status(settings, h.store.Now()))
}

// SetSchedule handles PUT /admin/election/schedule
func (h *AdminHandler) SetSchedule(w http.ResponseWriter, r *http.Request) {
	var req models.ScheduleRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := election.ValidateSchedule(req.StartAt, req.EndAt); err != nil {
		writeStoreError(w, err, "update schedule")
		return
	}

	settings, err := h.store.SetSchedule(r.Context(), req.StartAt, req.EndAt)
	if err != nil {
		writeStoreError(w, err, "update schedule")
		return
	}

	slog.Info("election schedule changed", "start_at", req.StartAt, "end_at", req.EndAt, "admin_id", adminID(r))
	middleware.JSONResponse(w, http.StatusOK, election.Status(settings, h.store.Now()))
}

// ResetVotes handles POST /admin/election/reset
func (h *AdminHandler) ResetVotes(w http.ResponseWriter, r *http.Request) {
	votersReset, recordsPurged, err := h.store.ResetVotes(r.Context())
	if err != nil {
		writeStoreError(w, err, "reset votes")
		return
	}

	slog.Warn("votes reset",
		"voters_reset", votersReset,
		"records_purged", recordsPurged,
		"admin_id", adminID(r),
	)
	middleware.JSONResponse(w, http.StatusOK, models.ResetResponse{
		Message:       "All votes have been reset",
		VotersReset:   votersReset,
		RecordsPurged: recordsPurged,
	})
}

// ListResidents handles GET /admin/residents?sub_district=&q=
func (h *AdminHandler) ListResidents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	residents, err := h.store.ListResidents(r.Context(), strings.TrimSpace(q.Get("sub_district")), q.Get("q"))
	if err != nil {
		writeStoreError(w, err, "list residents")
		return
	}

	profiles := make([]models.Profile, 0, len(residents))
	for _, v := range residents {
		profiles = append(profiles, v.Profile())
	}

	middleware.JSONResponse(w, http.StatusOK, models.ResidentsResponse{
		Residents: profiles,
		Total:     len(profiles),
	})
}
