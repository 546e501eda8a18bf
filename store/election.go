// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rtvote/rtvote-server/models"
)

func getElection(ctx context.Context, q queryer) (models.ElectionSettings, error) {
	var (
		s              models.ElectionSettings
		startAt, endAt sql.NullTime
	)
	err := q.QueryRowContext(ctx, `
		SELECT is_active, start_at, end_at, updated_at FROM election_settings WHERE id = 1
	`).Scan(&s.IsActive, &startAt, &endAt, &s.UpdatedAt)
	if err != nil {
		return models.ElectionSettings{}, fmt.Errorf("failed to query election settings: %w", err)
	}
	s.StartAt = timePtr(startAt)
	s.EndAt = timePtr(endAt)
	return s, nil
}

// GetElection reads the stored election clock
func (s *Store) GetElection(ctx context.Context) (models.ElectionSettings, error) {
	return getElection(ctx, s.db)
}

// SetElectionActive starts or stops the election
func (s *Store) SetElectionActive(ctx context.Context, active bool) (models.ElectionSettings, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE election_settings SET is_active = $1, updated_at = $2 WHERE id = 1
	`, active, s.Now())
	if err != nil {
		return models.ElectionSettings{}, fmt.Errorf("failed to update election status: %w", err)
	}
	return s.GetElection(ctx)
}

// SetSchedule stores the election window. A nil bound clears it.
func (s *Store) SetSchedule(ctx context.Context, startAt, endAt *time.Time) (models.ElectionSettings, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE election_settings SET start_at = $1, end_at = $2, updated_at = $3 WHERE id = 1
	`, nullTime(startAt), nullTime(endAt), s.Now())
	if err != nil {
		return models.ElectionSettings{}, fmt.Errorf("failed to update election schedule: %w", err)
	}
	return s.GetElection(ctx)
}
