// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/rtvote/rtvote-server/auth"
	"github.com/rtvote/rtvote-server/cliparse"
	"github.com/rtvote/rtvote-server/db"
	"github.com/rtvote/rtvote-server/models"
)

// TestPassword is the password of every voter created by CreateTestVoter
const TestPassword = "rahasia123"

// TestTokenSecret signs tokens in tests
const TestTokenSecret = "test-token-secret-0123456789"

// Set TEST_DATABASE_URL to run against PostgreSQL instead of a temp SQLite file
const testDBEnv = "TEST_DATABASE_URL"

var nikSeq atomic.Int64

func init() {
	// Keep bcrypt fast in tests
	auth.PasswordCost = bcrypt.MinCost
}

// TestDialect reports which backend SetupTestDB connects to
func TestDialect() db.Dialect {
	if os.Getenv(testDBEnv) != "" {
		return db.Postgres
	}
	return db.SQLite
}

// SetupTestDB returns a migrated, empty database. The connection is
// closed when the test finishes.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	dialect := TestDialect()

	dsn := os.Getenv(testDBEnv)
	if dialect == db.SQLite {
		dsn = filepath.Join(t.TempDir(), "rtvote-test.db")
	}

	conn, err := db.Open(ctx, dialect, dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if dialect == db.Postgres {
		// Shared server database: start from scratch every time
		_, err = conn.ExecContext(ctx, `
			DROP TABLE IF EXISTS vote_records CASCADE;
			DROP TABLE IF EXISTS election_settings CASCADE;
			DROP TABLE IF EXISTS announcements CASCADE;
			DROP TABLE IF EXISTS candidates CASCADE;
			DROP TABLE IF EXISTS voters CASCADE;
			DROP TABLE IF EXISTS goose_db_version CASCADE;
		`)
		if err != nil {
			t.Fatalf("Failed to clean database: %v", err)
		}
	}

	if err := db.Migrate(ctx, conn, dialect); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	cfg := cliparse.Default()
	cfg.Port = 3318
	cfg.DatabaseType = string(TestDialect())
	cfg.TokenSecret = TestTokenSecret
	cfg.IPHashSalt = "test-ip-salt"
	cfg.AllowedOrigins = []string{"http://localhost:5173"}
	return cfg
}

// NextNIK returns a fresh, valid 16-digit NIK
func NextNIK() string {
	return fmt.Sprintf("3201%012d", nikSeq.Add(1))
}

// CreateTestVoter inserts a resident whose password is TestPassword
func CreateTestVoter(t *testing.T, conn *sql.DB, name, subDistrict string) models.Voter {
	t.Helper()
	return insertVoter(t, conn, name, subDistrict, false)
}

// CreateTestAdmin inserts an admin scoped to every sub-district
func CreateTestAdmin(t *testing.T, conn *sql.DB, name string) models.Voter {
	t.Helper()
	return insertVoter(t, conn, name, models.AllSubDistricts, true)
}

func insertVoter(t *testing.T, conn *sql.DB, name, subDistrict string, isAdmin bool) models.Voter {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	v := models.Voter{
		ID:           fmt.Sprintf("voter-%d", nikSeq.Add(1)),
		Name:         name,
		NIK:          NextNIK(),
		PasswordHash: hash,
		SubDistrict:  subDistrict,
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	_, err = conn.Exec(`
		INSERT INTO voters (id, name, nik, password_hash, sub_district, is_admin, has_voted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)
	`, v.ID, v.Name, v.NIK, v.PasswordHash, v.SubDistrict, v.IsAdmin, v.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}

	return v
}

// CreateTestCandidate inserts a candidate with a zero tally
func CreateTestCandidate(t *testing.T, conn *sql.DB, name, subDistrict string) models.Candidate {
	t.Helper()

	c := models.Candidate{
		ID:          fmt.Sprintf("cand-%d", nikSeq.Add(1)),
		Name:        name,
		SubDistrict: subDistrict,
		Vision:      "Lingkungan bersih dan aman",
		Mission:     []string{"Ronda malam", "Kerja bakti"},
		CreatedAt:   time.Now().UTC(),
	}
	_, err := conn.Exec(`
		INSERT INTO candidates (id, name, photo_url, sub_district, vision, mission, background, experience, votes, created_at)
		VALUES ($1, $2, '', $3, $4, $5, '', '', 0, $6)
	`, c.ID, c.Name, c.SubDistrict, c.Vision, `["Ronda malam","Kerja bakti"]`, c.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}

	return c
}

// CreateTestAnnouncement inserts an announcement with an explicit timestamp
func CreateTestAnnouncement(t *testing.T, conn *sql.DB, title, subDistrict string, createdAt time.Time) models.Announcement {
	t.Helper()

	a := models.Announcement{
		ID:          fmt.Sprintf("ann-%d", nikSeq.Add(1)),
		Title:       title,
		Content:     "Isi pengumuman " + title,
		SubDistrict: subDistrict,
		CreatedAt:   createdAt.UTC(),
	}
	_, err := conn.Exec(`
		INSERT INTO announcements (id, title, content, sub_district, is_important, created_at)
		VALUES ($1, $2, $3, $4, FALSE, $5)
	`, a.ID, a.Title, a.Content, a.SubDistrict, a.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create test announcement: %v", err)
	}

	return a
}

// SetElection overwrites the election clock row
func SetElection(t *testing.T, conn *sql.DB, active bool, startAt, endAt *time.Time) {
	t.Helper()

	var start, end sql.NullTime
	if startAt != nil {
		start = sql.NullTime{Time: startAt.UTC(), Valid: true}
	}
	if endAt != nil {
		end = sql.NullTime{Time: endAt.UTC(), Valid: true}
	}

	_, err := conn.Exec(`
		UPDATE election_settings SET is_active = $1, start_at = $2, end_at = $3, updated_at = $4 WHERE id = 1
	`, active, start, end, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to set election: %v", err)
	}
}

// OpenElection activates the election with no schedule
func OpenElection(t *testing.T, conn *sql.DB) {
	t.Helper()
	SetElection(t, conn, true, nil, nil)
}

// AuthHeader returns an Authorization header carrying a valid token for v
func AuthHeader(t *testing.T, cfg cliparse.Config, v models.Voter) map[string]string {
	t.Helper()

	token, _, err := auth.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL).Issue(v)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
