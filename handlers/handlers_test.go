// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rtvote/rtvote-server/auth"
	"github.com/rtvote/rtvote-server/cliparse"
	"github.com/rtvote/rtvote-server/middleware"
	"github.com/rtvote/rtvote-server/models"
	"github.com/rtvote/rtvote-server/store"
	"github.com/rtvote/rtvote-server/testutil"
)

// testEnv bundles what every handler test needs
type testEnv struct {
	db     *sql.DB
	cfg    cliparse.Config
	store  *store.Store
	tokens *auth.TokenIssuer
}

func setupEnv(t *testing.T, opts ...store.Option) testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()

	return testEnv{
		db:     db,
		cfg:    cfg,
		store:  store.New(db, testutil.TestDialect(), opts...),
		tokens: auth.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL),
	}
}

// as attaches the claims a valid token for v would carry
func as(req *http.Request, v models.Voter) *http.Request {
	claims := &auth.Claims{
		Admin:            v.IsAdmin,
		SubDistrict:      v.SubDistrict,
		RegisteredClaims: jwt.RegisteredClaims{Subject: v.ID},
	}
	return req.WithContext(middleware.WithClaims(req.Context(), claims))
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func ptrTime(t time.Time) *time.Time { return &t }

func countRows(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return n
}
