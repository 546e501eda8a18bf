// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging and Metrics

Wrap handlers with request logging and Prometheus instrumentation:

	mux.HandleFunc("GET /health", middleware.WithMetrics(m, "/health", middleware.WithLogging(handler)))

WithLogging logs completion with method, path, status and duration_ms;
5xx responses are logged at error level. WithMetrics takes the route
pattern as a label so path parameters do not multiply series.

# Authentication

Protected routes require a bearer token issued at login:

	mux.HandleFunc("GET /auth/me", middleware.RequireAuth(tokens, h.Me))
	mux.HandleFunc("POST /admin/candidates", middleware.RequireAdmin(tokens, h.CreateCandidate))

Missing or invalid tokens get 401, non-admin tokens on admin routes get
403. Handlers read the caller's identity with ClaimsFromContext and never
from the request body.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(cfg.AllowedOrigins)(mux),
	}

Listed origins (or any origin, for an empty list or "*") are reflected
with credentials allowed. Preflight requests are answered with 204.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

Bodies larger than 1 MiB are rejected.

# Client IP Extraction

	ip := middleware.GetClientIP(r, cfg.TrustProxy)

With trustProxy set it checks X-Forwarded-For, then X-Real-IP, then
RemoteAddr. Without it only RemoteAddr is used, so clients cannot pick
the recorded address. The result is
only stored salted and hashed in the vote audit record.
*/
package middleware
