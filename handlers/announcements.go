// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/rtvote/rtvote-server/middleware"
	"github.com/rtvote/rtvote-server/store"
)

type AnnouncementHandler struct {
	store *store.Store
}

func NewAnnouncementHandler(st *store.Store) *AnnouncementHandler {
	return &AnnouncementHandler{store: st}
}

// List handles GET /announcements
func (h *AnnouncementHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())

	announcements, err := h.store.ListAnnouncements(r.Context(), scopeFor(r, claims))
	if err != nil {
		writeStoreError(w, err, "list announcements")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, announcements)
}
