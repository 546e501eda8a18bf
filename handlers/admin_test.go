// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/rtvote/rtvote-server/models"
	"github.com/rtvote/rtvote-server/store"
	"github.com/rtvote/rtvote-server/testutil"
)

func TestCandidateAdministration(t *testing.T) {
	env := setupEnv(t)
	h := NewAdminHandler(env.store)
	admin := testutil.CreateTestAdmin(t, env.db, "Pak RT")

	// Create
	createReq := models.CandidateRequest{
		Name:        " Yusuf ",
		SubDistrict: "Sukamaju",
		Vision:      "Warga sejahtera",
		Mission:     []string{"Posyandu", "  ", "Ronda"},
	}
	w := serve(h.CreateCandidate, as(testutil.MakeRequest("POST", "/admin/candidates", createReq, nil), admin))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var created models.Candidate
	testutil.AssertJSON(t, w, &created)
	if created.Name != "Yusuf" {
		t.Errorf("Expected trimmed name 'Yusuf', got '%s'", created.Name)
	}
	if len(created.Mission) != 2 {
		t.Errorf("Expected blank mission items dropped, got %v", created.Mission)
	}

	// Update
	updateReq := createReq
	updateReq.Name = "Yusuf Hamdani"
	req := as(testutil.MakeRequest("PUT", "/admin/candidates/"+created.ID, updateReq, nil), admin)
	req.SetPathValue("id", created.ID)
	w = serve(h.UpdateCandidate, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var updated models.Candidate
	testutil.AssertJSON(t, w, &updated)
	if updated.Name != "Yusuf Hamdani" {
		t.Errorf("Expected updated name, got '%s'", updated.Name)
	}

	// Delete, then delete again
	for _, expected := range []int{http.StatusNoContent, http.StatusNotFound} {
		req := as(testutil.MakeRequest("DELETE", "/admin/candidates/"+created.ID, nil, nil), admin)
		req.SetPathValue("id", created.ID)
		w := serve(h.DeleteCandidate, req)
		testutil.AssertStatus(t, w, expected)
	}

	// Update of a missing candidate
	req = as(testutil.MakeRequest("PUT", "/admin/candidates/missing", updateReq, nil), admin)
	req.SetPathValue("id", "missing")
	w = serve(h.UpdateCandidate, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestDeleteCandidate_WithVotes(t *testing.T) {
	env := setupEnv(t)
	h := NewAdminHandler(env.store)
	admin := testutil.CreateTestAdmin(t, env.db, "Pak RT")
	testutil.OpenElection(t, env.db)

	voter := testutil.CreateTestVoter(t, env.db, "Warga", "Sukamaju")
	candidate := testutil.CreateTestCandidate(t, env.db, "Calon", "Sukamaju")
	if _, err := env.store.CastVote(t.Context(), store.VoteInput{VoterID: voter.ID, CandidateID: candidate.ID}); err != nil {
		t.Fatalf("Failed to cast vote: %v", err)
	}

	req := as(testutil.MakeRequest("DELETE", "/admin/candidates/"+candidate.ID, nil, nil), admin)
	req.SetPathValue("id", candidate.ID)
	testutil.AssertStatus(t, serve(h.DeleteCandidate, req), http.StatusConflict)

	if n := countRows(t, env.db, `SELECT COUNT(*) FROM vote_records WHERE voter_id = $1`, voter.ID); n != 1 {
		t.Errorf("Expected the vote record to survive, got %d", n)
	}
}

func TestCreateCandidate_Validation(t *testing.T) {
	env := setupEnv(t)
	h := NewAdminHandler(env.store)
	admin := testutil.CreateTestAdmin(t, env.db, "Pak RT")

	testCases := []struct {
		name string
		body interface{}
	}{
		{"missing name", models.CandidateRequest{SubDistrict: "Sukamaju"}},
		{"missing sub-district", models.CandidateRequest{Name: "Zaki"}},
		{"sentinel sub-district", models.CandidateRequest{Name: "Zaki", SubDistrict: models.AllSubDistricts}},
		{"invalid JSON", "nope"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(h.CreateCandidate, as(testutil.MakeRequest("POST", "/admin/candidates", tc.body, nil), admin))
			testutil.AssertStatus(t, w, http.StatusBadRequest)
		})
	}
}

func TestAnnouncementAdministration(t *testing.T) {
	env := setupEnv(t)
	h := NewAdminHandler(env.store)
	admin := testutil.CreateTestAdmin(t, env.db, "Pak RT")

	w := serve(h.CreateAnnouncement, as(testutil.MakeRequest("POST", "/admin/announcements",
		models.AnnouncementRequest{Title: "Rapat warga", Content: "Balai RW, 19.30", IsImportant: true}, nil), admin))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var created models.Announcement
	testutil.AssertJSON(t, w, &created)
	if created.SubDistrict != models.AllSubDistricts {
		t.Errorf("Expected default sub-district %s, got %s", models.AllSubDistricts, created.SubDistrict)
	}

	w = serve(h.CreateAnnouncement, as(testutil.MakeRequest("POST", "/admin/announcements",
		models.AnnouncementRequest{Title: "Tanpa isi"}, nil), admin))
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	for _, expected := range []int{http.StatusNoContent, http.StatusNotFound} {
		req := as(testutil.MakeRequest("DELETE", "/admin/announcements/"+created.ID, nil, nil), admin)
		req.SetPathValue("id", created.ID)
		testutil.AssertStatus(t, serve(h.DeleteAnnouncement, req), expected)
	}
}

func TestElectionControls(t *testing.T) {
	env := setupEnv(t)
	h := NewAdminHandler(env.store)
	admin := testutil.CreateTestAdmin(t, env.db, "Pak RT")

	post := func(fn http.HandlerFunc, path string) models.ElectionStatus {
		w := serve(fn, as(testutil.MakeRequest("POST", path, nil, nil), admin))
		testutil.AssertStatus(t, w, http.StatusOK)
		var s models.ElectionStatus
		testutil.AssertJSON(t, w, &s)
		return s
	}

	if s := post(h.StartElection, "/admin/election/start"); !s.IsActive || !s.IsOpen {
		t.Errorf("Expected open election after start, got %+v", s)
	}
	if s := post(h.StopElection, "/admin/election/stop"); s.IsActive || s.IsOpen {
		t.Errorf("Expected closed election after stop, got %+v", s)
	}
}

func TestStartElection_AfterEnd(t *testing.T) {
	env := setupEnv(t)
	h := NewAdminHandler(env.store)
	admin := testutil.CreateTestAdmin(t, env.db, "Pak RT")

	testutil.SetElection(t, env.db, false, nil, ptrTime(time.Now().Add(-time.Hour)))

	w := serve(h.StartElection, as(testutil.MakeRequest("POST", "/admin/election/start", nil, nil), admin))
	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestSetSchedule(t *testing.T) {
	env := setupEnv(t)
	h := NewAdminHandler(env.store)
	admin := testutil.CreateTestAdmin(t, env.db, "Pak RT")

	start := time.Now().Add(-time.Hour).UTC().Truncate(time.Second)
	end := time.Now().Add(5 * time.Hour).UTC().Truncate(time.Second)

	testCases := []struct {
		name           string
		body           models.ScheduleRequest
		expectedStatus int
	}{
		{"valid window", models.ScheduleRequest{StartAt: &start, EndAt: &end}, http.StatusOK},
		{"end only", models.ScheduleRequest{EndAt: &end}, http.StatusOK},
		{"clear", models.ScheduleRequest{}, http.StatusOK},
		{"end before start", models.ScheduleRequest{StartAt: &end, EndAt: &start}, http.StatusBadRequest},
		{"end equals start", models.ScheduleRequest{StartAt: &start, EndAt: &start}, http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(h.SetSchedule, as(testutil.MakeRequest("PUT", "/admin/election/schedule", tc.body, nil), admin))
			testutil.AssertStatus(t, w, tc.expectedStatus)

			if tc.expectedStatus != http.StatusOK {
				return
			}
			var s models.ElectionStatus
			testutil.AssertJSON(t, w, &s)
			if (s.EndAt == nil) != (tc.body.EndAt == nil) {
				t.Errorf("Expected end_at %v, got %v", tc.body.EndAt, s.EndAt)
			}
			if s.EndAt != nil && !s.EndAt.Equal(*tc.body.EndAt) {
				t.Errorf("Expected end_at %v, got %v", *tc.body.EndAt, *s.EndAt)
			}
		})
	}
}

func TestResetVotes(t *testing.T) {
	env := setupEnv(t)
	h := NewAdminHandler(env.store)
	admin := testutil.CreateTestAdmin(t, env.db, "Pak RT")
	testutil.OpenElection(t, env.db)

	voter := testutil.CreateTestVoter(t, env.db, "Warga", "Sukamaju")
	candidate := testutil.CreateTestCandidate(t, env.db, "Calon", "Sukamaju")
	if _, err := env.store.CastVote(t.Context(), store.VoteInput{VoterID: voter.ID, CandidateID: candidate.ID}); err != nil {
		t.Fatalf("Failed to cast vote: %v", err)
	}

	w := serve(h.ResetVotes, as(testutil.MakeRequest("POST", "/admin/election/reset", nil, nil), admin))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ResetResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.VotersReset != 1 || resp.RecordsPurged != 1 {
		t.Errorf("Expected 1 voter reset and 1 record purged, got %+v", resp)
	}
	if n := countRows(t, env.db, `SELECT votes FROM candidates WHERE id = $1`, candidate.ID); n != 0 {
		t.Errorf("Expected tally reset to 0, got %d", n)
	}
}

func TestListResidents(t *testing.T) {
	env := setupEnv(t)
	h := NewAdminHandler(env.store)
	admin := testutil.CreateTestAdmin(t, env.db, "Pak RT")

	testutil.CreateTestVoter(t, env.db, "Ani", "Sukamaju")
	testutil.CreateTestVoter(t, env.db, "Bayu", "Sukamaju")
	testutil.CreateTestVoter(t, env.db, "Anton", "Cibeureum")

	testCases := []struct {
		name     string
		path     string
		expected int
	}{
		{"all", "/admin/residents", 3},
		{"by sub-district", "/admin/residents?sub_district=Sukamaju", 2},
		{"by name", "/admin/residents?q=an", 2},
		{"by sub-district and name", "/admin/residents?sub_district=Cibeureum&q=an", 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(h.ListResidents, as(testutil.MakeRequest("GET", tc.path, nil, nil), admin))
			testutil.AssertStatus(t, w, http.StatusOK)

			var resp models.ResidentsResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Total != tc.expected || len(resp.Residents) != tc.expected {
				t.Errorf("Expected %d residents, got total=%d len=%d", tc.expected, resp.Total, len(resp.Residents))
			}
			for _, r := range resp.Residents {
				if r.IsAdmin {
					t.Error("Admins must not be listed as residents")
				}
			}
		})
	}
}
