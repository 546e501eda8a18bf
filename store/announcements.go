// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/rtvote/rtvote-server/models"
)

func (s *Store) CreateAnnouncement(ctx context.Context, a models.Announcement) (models.Announcement, error) {
	a.ID = uuid.NewString()
	a.CreatedAt = s.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO announcements (id, title, content, sub_district, is_important, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, a.ID, a.Title, a.Content, a.SubDistrict, a.IsImportant, a.CreatedAt)
	if err != nil {
		return models.Announcement{}, fmt.Errorf("failed to insert announcement: %w", err)
	}
	return a, nil
}

func (s *Store) DeleteAnnouncement(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete announcement: %w", err)
	}
	return checkAffected(res, ErrAnnouncementNotFound)
}

// ListAnnouncements returns, newest first, the announcements addressed to
// subDistrict or to everyone. "" and AllSubDistricts list everything.
func (s *Store) ListAnnouncements(ctx context.Context, subDistrict string) ([]models.Announcement, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if subDistrict == "" || subDistrict == models.AllSubDistricts {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, title, content, sub_district, is_important, created_at
			FROM announcements
			ORDER BY created_at DESC
		`)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, title, content, sub_district, is_important, created_at
			FROM announcements
			WHERE sub_district = $1 OR sub_district = $2
			ORDER BY created_at DESC
		`, subDistrict, models.AllSubDistricts)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query announcements: %w", err)
	}
	defer rows.Close()

	announcements := make([]models.Announcement, 0)
	for rows.Next() {
		var a models.Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.SubDistrict, &a.IsImportant, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan announcement: %w", err)
		}
		announcements = append(announcements, a)
	}
	return announcements, rows.Err()
}
