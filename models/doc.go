// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - LoginRequest: nik, password, is_admin_login
  - RegisterRequest: name, nik, password, sub_district
  - CastVoteRequest: candidate_id (voter comes from the session)
  - CandidateRequest, AnnouncementRequest, ScheduleRequest: admin payloads

# Domain Types

  - Voter: stored credential record (PasswordHash is never serialized)
  - Profile: the client-visible part of a Voter
  - Candidate: profile and running vote count, scoped to a sub-district
  - Announcement: notice for one sub-district or AllSubDistricts
  - ElectionSettings: the stored election clock row
  - ElectionStatus: settings plus values derived from the current time
  - VoteRecord: append-only audit row written by the vote transaction

# Sub-districts

Voters, candidates and announcements carry a sub-district (kelurahan).
AllSubDistricts ("Semua") marks admins and announcements for everyone.

# JSON Conventions

All JSON fields use snake_case. Optional fields use omitempty.
*/
package models
