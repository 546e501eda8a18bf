// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rtvote/rtvote-server/auth"
	"github.com/rtvote/rtvote-server/metrics"
	"github.com/rtvote/rtvote-server/middleware"
	"github.com/rtvote/rtvote-server/models"
	"github.com/rtvote/rtvote-server/store"
)

type AuthHandler struct {
	store   *store.Store
	tokens  *auth.TokenIssuer
	metrics *metrics.Metrics
}

func NewAuthHandler(st *store.Store, tokens *auth.TokenIssuer, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{store: st, tokens: tokens, metrics: m}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	nik := strings.TrimSpace(req.NIK)
	if nik == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "nik and password are required")
		return
	}

	voter, err := h.store.GetVoterByNIK(r.Context(), nik)
	if errors.Is(err, store.ErrVoterNotFound) {
		// Same work and same answer as a wrong password
		auth.RejectUnknown(req.Password)
		h.metrics.Login("invalid")
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		writeStoreError(w, err, "log in")
		return
	}

	if err := auth.CheckPassword(voter.PasswordHash, req.Password); err != nil {
		h.metrics.Login("invalid")
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if req.IsAdminLogin && !voter.IsAdmin {
		h.metrics.Login("forbidden")
		middleware.ErrorResponse(w, http.StatusForbidden, "Unauthorized access")
		return
	}

	token, expiresAt, err := h.tokens.Issue(voter)
	if err != nil {
		slog.Error("failed to issue token", "voter_id", voter.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	h.metrics.Login("success")
	slog.Info("voter logged in", "voter_id", voter.ID, "admin", voter.IsAdmin)

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		User:      voter.Profile(),
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	name := auth.NormalizeName(req.Name)
	nik := strings.TrimSpace(req.NIK)
	subDistrict := strings.TrimSpace(req.SubDistrict)

	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if subDistrict == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "sub_district is required")
		return
	}
	if subDistrict == models.AllSubDistricts {
		middleware.ErrorResponse(w, http.StatusBadRequest, "sub_district must name a single sub-district")
		return
	}
	if err := auth.ValidateNIK(nik); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	voter, err := h.store.CreateVoter(r.Context(), models.Voter{
		Name:         name,
		NIK:          nik,
		PasswordHash: hash,
		SubDistrict:  subDistrict,
	})
	if err != nil {
		writeStoreError(w, err, "register")
		return
	}

	h.metrics.Registered()
	slog.Info("voter registered", "voter_id", voter.ID, "sub_district", voter.SubDistrict)

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterResponse{User: voter.Profile()})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	voter, err := h.store.GetVoterByID(r.Context(), claims.Subject)
	if errors.Is(err, store.ErrVoterNotFound) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Session no longer valid")
		return
	}
	if err != nil {
		writeStoreError(w, err, "load profile")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, voter.Profile())
}

// ListAdmins handles GET /auth/admins
func (h *AuthHandler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.store.ListAdmins(r.Context())
	if err != nil {
		writeStoreError(w, err, "list admins")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.AdminsResponse{Admins: admins})
}
