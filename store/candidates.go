// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rtvote/rtvote-server/models"
)

const candidateColumns = `id, name, photo_url, sub_district, vision, mission, background, experience, votes, created_at`

func scanCandidate(row rowScanner) (models.Candidate, error) {
	var (
		c       models.Candidate
		mission string
	)
	err := row.Scan(&c.ID, &c.Name, &c.PhotoURL, &c.SubDistrict, &c.Vision, &mission,
		&c.Background, &c.Experience, &c.Votes, &c.CreatedAt)
	if err != nil {
		return models.Candidate{}, err
	}
	if err := json.Unmarshal([]byte(mission), &c.Mission); err != nil {
		return models.Candidate{}, fmt.Errorf("corrupt mission for candidate %s: %w", c.ID, err)
	}
	if c.Mission == nil {
		c.Mission = []string{}
	}
	return c, nil
}

func encodeMission(mission []string) (string, error) {
	if mission == nil {
		mission = []string{}
	}
	buf, err := json.Marshal(mission)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// CreateCandidate inserts a candidate with a zero tally
func (s *Store) CreateCandidate(ctx context.Context, c models.Candidate) (models.Candidate, error) {
	c.ID = uuid.NewString()
	c.Votes = 0
	c.CreatedAt = s.Now()
	if c.Mission == nil {
		c.Mission = []string{}
	}

	mission, err := encodeMission(c.Mission)
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to encode mission: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO candidates (id, name, photo_url, sub_district, vision, mission, background, experience, votes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, c.ID, c.Name, c.PhotoURL, c.SubDistrict, c.Vision, mission, c.Background, c.Experience, c.Votes, c.CreatedAt)
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to insert candidate: %w", err)
	}

	return c, nil
}

// UpdateCandidate replaces a candidate's profile. The tally is untouched.
func (s *Store) UpdateCandidate(ctx context.Context, c models.Candidate) (models.Candidate, error) {
	mission, err := encodeMission(c.Mission)
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to encode mission: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE candidates
		SET name = $1, photo_url = $2, sub_district = $3, vision = $4, mission = $5, background = $6, experience = $7
		WHERE id = $8
	`, c.Name, c.PhotoURL, c.SubDistrict, c.Vision, mission, c.Background, c.Experience, c.ID)
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to update candidate: %w", err)
	}
	if err := checkAffected(res, ErrCandidateNotFound); err != nil {
		return models.Candidate{}, err
	}

	return s.GetCandidate(ctx, c.ID)
}

// DeleteCandidate removes a candidate nobody has voted for yet.
// Deleting a voted-for candidate would drop its vote records while the
// voters stay marked as voted, so that is ErrCandidateHasVotes until the
// votes are reset.
func (s *Store) DeleteCandidate(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM candidates WHERE id = $1 AND votes = 0`, id)
	if err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	if _, err := s.GetCandidate(ctx, id); err != nil {
		return err
	}
	return ErrCandidateHasVotes
}

func (s *Store) GetCandidate(ctx context.Context, id string) (models.Candidate, error) {
	c, err := scanCandidate(s.db.QueryRowContext(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Candidate{}, ErrCandidateNotFound
	}
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to query candidate: %w", err)
	}
	return c, nil
}

// ListCandidates returns the candidates of one sub-district, or all
// candidates for "" and AllSubDistricts.
func (s *Store) ListCandidates(ctx context.Context, subDistrict string) ([]models.Candidate, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if subDistrict == "" || subDistrict == models.AllSubDistricts {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+candidateColumns+` FROM candidates ORDER BY sub_district, name`)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+candidateColumns+` FROM candidates WHERE sub_district = $1 ORDER BY name`, subDistrict)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	candidates := make([]models.Candidate, 0)
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}
