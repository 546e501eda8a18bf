// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rtvote/rtvote-server/db"
	"github.com/rtvote/rtvote-server/models"
)

const voterColumns = `id, name, nik, password_hash, sub_district, is_admin, has_voted, created_at`

func scanVoter(row rowScanner) (models.Voter, error) {
	var v models.Voter
	err := row.Scan(&v.ID, &v.Name, &v.NIK, &v.PasswordHash, &v.SubDistrict, &v.IsAdmin, &v.HasVoted, &v.CreatedAt)
	return v, err
}

// CreateVoter inserts a new voter. The NIK must be unique.
func (s *Store) CreateVoter(ctx context.Context, v models.Voter) (models.Voter, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	v.CreatedAt = s.Now()
	v.HasVoted = false

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO voters (id, name, nik, password_hash, sub_district, is_admin, has_voted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, v.ID, v.Name, v.NIK, v.PasswordHash, v.SubDistrict, v.IsAdmin, v.HasVoted, v.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return models.Voter{}, ErrDuplicateNIK
		}
		return models.Voter{}, fmt.Errorf("failed to insert voter: %w", err)
	}

	return v, nil
}

func (s *Store) GetVoterByNIK(ctx context.Context, nik string) (models.Voter, error) {
	return s.getVoter(ctx, `SELECT `+voterColumns+` FROM voters WHERE nik = $1`, nik)
}

func (s *Store) GetVoterByID(ctx context.Context, id string) (models.Voter, error) {
	return s.getVoter(ctx, `SELECT `+voterColumns+` FROM voters WHERE id = $1`, id)
}

func (s *Store) getVoter(ctx context.Context, query string, arg string) (models.Voter, error) {
	v, err := scanVoter(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Voter{}, ErrVoterNotFound
	}
	if err != nil {
		return models.Voter{}, fmt.Errorf("failed to query voter: %w", err)
	}
	return v, nil
}

// ListAdmins returns the id and name of every admin
func (s *Store) ListAdmins(ctx context.Context) ([]models.AdminSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name FROM voters WHERE is_admin = TRUE ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query admins: %w", err)
	}
	defer rows.Close()

	admins := make([]models.AdminSummary, 0)
	for rows.Next() {
		var a models.AdminSummary
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

// ListResidents returns non-admin voters, optionally narrowed to one
// sub-district and to names or NIKs containing query.
func (s *Store) ListResidents(ctx context.Context, subDistrict, query string) ([]models.Voter, error) {
	var (
		where = []string{"is_admin = FALSE"}
		args  []any
	)
	if subDistrict != "" && subDistrict != models.AllSubDistricts {
		args = append(args, subDistrict)
		where = append(where, fmt.Sprintf("sub_district = $%d", len(args)))
	}
	if q := strings.TrimSpace(query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		args = append(args, like, like)
		where = append(where, fmt.Sprintf("(LOWER(name) LIKE $%d OR nik LIKE $%d)", len(args)-1, len(args)))
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+voterColumns+` FROM voters WHERE `+strings.Join(where, " AND ")+` ORDER BY name`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query residents: %w", err)
	}
	defer rows.Close()

	residents := make([]models.Voter, 0)
	for rows.Next() {
		v, err := scanVoter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resident: %w", err)
		}
		residents = append(residents, v)
	}
	return residents, rows.Err()
}

// EnsureAdmin creates admin when no admin exists yet.
// It reports whether a new admin was inserted.
func (s *Store) EnsureAdmin(ctx context.Context, admin models.Voter) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM voters WHERE is_admin = TRUE`).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	admin.IsAdmin = true
	if admin.SubDistrict == "" {
		admin.SubDistrict = models.AllSubDistricts
	}
	if _, err := s.CreateVoter(ctx, admin); err != nil {
		return false, err
	}
	return true, nil
}
