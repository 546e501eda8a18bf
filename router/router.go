// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rtvote/rtvote-server/auth"
	"github.com/rtvote/rtvote-server/cliparse"
	"github.com/rtvote/rtvote-server/handlers"
	"github.com/rtvote/rtvote-server/metrics"
	"github.com/rtvote/rtvote-server/middleware"
	"github.com/rtvote/rtvote-server/store"
)

// NewRouter registers every route. Collectors are registered on reg and
// served from GET /metrics.
func NewRouter(st *store.Store, cfg cliparse.Config, reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()

	m := metrics.New(reg)
	tokens := auth.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(st, tokens, m)
	candidateHandler := handlers.NewCandidateHandler(st, cfg, m)
	announcementHandler := handlers.NewAnnouncementHandler(st)
	electionHandler := handlers.NewElectionHandler(st)
	adminHandler := handlers.NewAdminHandler(st)

	handle := func(pattern string, h http.HandlerFunc) {
		_, route, _ := strings.Cut(pattern, " ")
		mux.HandleFunc(pattern, middleware.WithMetrics(m, route, middleware.WithLogging(h)))
	}
	voter := func(h http.HandlerFunc) http.HandlerFunc { return middleware.RequireAuth(tokens, h) }
	admin := func(h http.HandlerFunc) http.HandlerFunc { return middleware.RequireAdmin(tokens, h) }

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", metrics.Handler(reg))

	// Authentication (public except /auth/me)
	handle("POST /auth/login", authHandler.Login)
	handle("POST /auth/register", authHandler.Register)
	handle("GET /auth/me", voter(authHandler.Me))
	handle("GET /auth/admins", authHandler.ListAdmins)

	// Voter operations
	handle("GET /candidates", voter(candidateHandler.List))
	handle("GET /candidates/{id}", voter(candidateHandler.Get))
	handle("POST /candidates/vote", voter(candidateHandler.Vote))
	handle("GET /results", voter(candidateHandler.Results))
	handle("GET /announcements", voter(announcementHandler.List))
	handle("GET /election", electionHandler.Status)

	// Administration
	handle("POST /admin/candidates", admin(adminHandler.CreateCandidate))
	handle("PUT /admin/candidates/{id}", admin(adminHandler.UpdateCandidate))
	handle("DELETE /admin/candidates/{id}", admin(adminHandler.DeleteCandidate))
	handle("POST /admin/announcements", admin(adminHandler.CreateAnnouncement))
	handle("DELETE /admin/announcements/{id}", admin(adminHandler.DeleteAnnouncement))
	handle("POST /admin/election/start", admin(adminHandler.StartElection))
	handle("POST /admin/election/stop", admin(adminHandler.StopElection))
	handle("PUT /admin/election/schedule", admin(adminHandler.SetSchedule))
	handle("POST /admin/election/reset", admin(adminHandler.ResetVotes))
	handle("GET /admin/residents", admin(adminHandler.ListResidents))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("rtvote API v1"))
	})

	return mux
}
