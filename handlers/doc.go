// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the RT-Vote API.

# Handler Types

  - AuthHandler: login, registration, current profile, admin directory
  - CandidateHandler: candidate listing, vote casting, results
  - AnnouncementHandler: announcement board
  - ElectionHandler: public election clock
  - AdminHandler: candidate and announcement management, election control

Each handler is created with its dependencies injected:

	st := store.New(dbConn, dialect)
	candidateHandler := handlers.NewCandidateHandler(st, cfg, m)

# Sessions

Protected routes are wrapped by middleware.RequireAuth or
middleware.RequireAdmin, which place the verified token claims on the
request context. Handlers read them with middleware.ClaimsFromContext
and always re-read the voter row when has_voted matters.

# Sub-district Scope

Residents only see candidates and announcements of their own
sub-district (announcements addressed to "Semua" reach everyone).
Admins see everything and may narrow with ?sub_district=.

# Voting

	POST /candidates/vote → Vote

A vote succeeds once per voter. Store errors map onto status codes in
errors.go: 409 for a second vote or a closed election, 403 for a
candidate of another sub-district, 503 when the vote transaction times
out.

# Results

Results are hidden from a resident until they have voted or the
election end has passed. Admins always see them. Without ?sub_district=
an admin gets one ranked result per sub-district under sub_districts.
*/
package handlers
