// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rtvote/rtvote-server/models"
	"github.com/rtvote/rtvote-server/router"
	"github.com/rtvote/rtvote-server/store"
	"github.com/rtvote/rtvote-server/testutil"
)

// TestElectionFlow drives a whole election through the router
func TestElectionFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	mux := router.NewRouter(store.New(db, testutil.TestDialect()), cfg, prometheus.NewRegistry())

	do := func(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, testutil.MakeRequest(method, path, body, headers))
		return w
	}

	admin := testutil.CreateTestAdmin(t, db, "Pak RT")
	adminAuth := testutil.AuthHeader(t, cfg, admin)

	// Admin prepares the ballot
	var candidate models.Candidate
	w := do("POST", "/admin/candidates", models.CandidateRequest{Name: "Dewi", SubDistrict: "Sukamaju"}, adminAuth)
	testutil.AssertStatus(t, w, http.StatusCreated)
	testutil.AssertJSON(t, w, &candidate)

	w = do("POST", "/admin/election/start", nil, adminAuth)
	testutil.AssertStatus(t, w, http.StatusOK)

	// Resident registers and logs in
	nik := testutil.NextNIK()
	w = do("POST", "/auth/register", models.RegisterRequest{
		Name: "Eko", NIK: nik, Password: testutil.TestPassword, SubDistrict: "Sukamaju",
	}, nil)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var login models.LoginResponse
	w = do("POST", "/auth/login", models.LoginRequest{NIK: nik, Password: testutil.TestPassword}, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &login)
	residentAuth := map[string]string{"Authorization": "Bearer " + login.Token}

	// Results stay hidden until the resident votes
	var results models.ResultsResponse
	w = do("GET", "/results", nil, residentAuth)
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &results)
	if results.Visible {
		t.Error("Expected results hidden before voting")
	}

	w = do("POST", "/candidates/vote", models.CastVoteRequest{CandidateID: candidate.ID}, residentAuth)
	testutil.AssertStatus(t, w, http.StatusOK)

	w = do("POST", "/candidates/vote", models.CastVoteRequest{CandidateID: candidate.ID}, residentAuth)
	testutil.AssertStatus(t, w, http.StatusConflict)

	w = do("GET", "/results", nil, residentAuth)
	testutil.AssertStatus(t, w, http.StatusOK)
	results = models.ResultsResponse{}
	testutil.AssertJSON(t, w, &results)
	if !results.Visible || results.TotalVotes != 1 {
		t.Errorf("Expected visible results with 1 vote, got %+v", results)
	}

	var me models.Profile
	w = do("GET", "/auth/me", nil, residentAuth)
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertJSON(t, w, &me)
	if !me.HasVoted {
		t.Error("Expected profile to report has_voted")
	}

	// Residents cannot reach admin routes
	w = do("POST", "/admin/election/reset", nil, residentAuth)
	testutil.AssertStatus(t, w, http.StatusForbidden)

	w = do("POST", "/admin/election/reset", nil, adminAuth)
	testutil.AssertStatus(t, w, http.StatusOK)

	// After a reset the resident may vote again
	w = do("POST", "/candidates/vote", models.CastVoteRequest{CandidateID: candidate.ID}, residentAuth)
	testutil.AssertStatus(t, w, http.StatusOK)
}
