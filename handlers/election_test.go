// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rtvote/rtvote-server/models"
	"github.com/rtvote/rtvote-server/testutil"
)

func TestElectionStatus(t *testing.T) {
	env := setupEnv(t)
	h := NewElectionHandler(env.store)

	status := func() models.ElectionStatus {
		w := serve(h.Status, testutil.MakeRequest("GET", "/election", nil, nil))
		testutil.AssertStatus(t, w, http.StatusOK)
		var s models.ElectionStatus
		testutil.AssertJSON(t, w, &s)
		return s
	}

	if s := status(); s.IsActive || s.IsOpen || s.Ended {
		t.Errorf("Expected a fresh election to be closed, got %+v", s)
	}

	testutil.SetElection(t, env.db, true, nil, ptrTime(time.Now().Add(3*time.Hour)))
	s := status()
	if !s.IsOpen {
		t.Errorf("Expected open election, got %+v", s)
	}
	if !strings.HasSuffix(s.EndsIn, "from now") {
		t.Errorf("Expected countdown text, got %q", s.EndsIn)
	}

	// Still flagged active, but the clock says it is over
	testutil.SetElection(t, env.db, true, nil, ptrTime(time.Now().Add(-time.Minute)))
	s = status()
	if !s.IsActive || s.IsOpen || !s.Ended {
		t.Errorf("Expected active-but-ended election, got %+v", s)
	}
	if s.EndsIn != "" {
		t.Errorf("Expected no countdown after the end, got %q", s.EndsIn)
	}
}
