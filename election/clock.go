// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package election evaluates the stored election clock.
//
// The stored row only records what an admin set. Whether voting is
// actually open is always derived from that row and the current time,
// so an election whose end has passed is closed even while its stored
// flag is still true.
package election

import (
	"errors"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/rtvote/rtvote-server/models"
)

var ErrInvalidSchedule = errors.New("election end must be after its start")

// IsOpen reports whether votes may be cast at now
func IsOpen(s models.ElectionSettings, now time.Time) bool {
	if !s.IsActive {
		return false
	}
	if s.StartAt != nil && now.Before(*s.StartAt) {
		return false
	}
	if s.EndAt != nil && !now.Before(*s.EndAt) {
		return false
	}
	return true
}

// Ended reports whether the scheduled end has passed
func Ended(s models.ElectionSettings, now time.Time) bool {
	return s.EndAt != nil && !now.Before(*s.EndAt)
}

// ResultsVisible hides tallies from a voter until they have voted
// or the election has ended, whichever comes first.
func ResultsVisible(s models.ElectionSettings, hasVoted bool, now time.Time) bool {
	return hasVoted || Ended(s, now)
}

// ValidateSchedule checks a proposed start/end pair
func ValidateSchedule(startAt, endAt *time.Time) error {
	if startAt != nil && endAt != nil && !endAt.After(*startAt) {
		return ErrInvalidSchedule
	}
	return nil
}

// Status derives the client-facing view of the clock
func Status(s models.ElectionSettings, now time.Time) models.ElectionStatus {
	status := models.ElectionStatus{
		IsActive: s.IsActive,
		IsOpen:   IsOpen(s, now),
		Ended:    Ended(s, now),
		StartAt:  s.StartAt,
		EndAt:    s.EndAt,
	}
	if s.EndAt != nil && !status.Ended {
		status.EndsIn = humanize.RelTime(*s.EndAt, now, "ago", "from now")
	}
	return status
}
