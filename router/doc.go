// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the RT-Vote API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(st, cfg, prometheus.NewRegistry())

Every API route is wrapped with request logging and Prometheus metrics,
labelled by its pattern rather than the concrete path.

# Endpoints

Operational:

	GET /health   - database ping
	GET /metrics  - Prometheus exposition

Authentication:

	POST /auth/login     - NIK + password, returns a bearer token
	POST /auth/register  - Create a resident account
	GET  /auth/me        - Current profile (bearer)
	GET  /auth/admins    - Admin directory

Residents (bearer token):

	GET  /candidates        - Candidates in scope
	GET  /candidates/{id}   - Candidate detail
	POST /candidates/vote   - Cast the single vote
	GET  /results           - Tallies when visible
	GET  /announcements     - Announcement board

Public:

	GET /election  - Election clock

Admin (bearer token of an admin):

	POST   /admin/candidates
	PUT    /admin/candidates/{id}
	DELETE /admin/candidates/{id}
	POST   /admin/announcements
	DELETE /admin/announcements/{id}
	POST   /admin/election/start
	POST   /admin/election/stop
	PUT    /admin/election/schedule
	POST   /admin/election/reset
	GET    /admin/residents

CORS is applied around the whole mux by main.
*/
package router
