// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/rtvote/rtvote-server/election"
	"github.com/rtvote/rtvote-server/middleware"
	"github.com/rtvote/rtvote-server/store"
)

type ElectionHandler struct {
	store *store.Store
}

func NewElectionHandler(st *store.Store) *ElectionHandler {
	return &ElectionHandler{store: st}
}

// Status handles GET /election
func (h *ElectionHandler) Status(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.GetElection(r.Context())
	if err != nil {
		writeStoreError(w, err, "load election status")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, election.Status(settings, h.store.Now()))
}
