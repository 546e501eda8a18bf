// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Values are layered, lowest precedence first:

 1. built-in defaults (see Default)
 2. an optional YAML file (-config or RTVOTE_CONFIG)
 3. environment variables
 4. CLI flags

# CLI Flags

	-config        YAML config file
	-p             Server port
	-d             Database URL (postgres DSN or sqlite file path)
	-t             Database type (sqlite or postgres)
	-token-secret  Session token signing secret
	-log-level     debug, info, warn or error
	-trust-proxy   Trust X-Forwarded-For / X-Real-IP

# Environment Variables

	PORT            → -p
	DATABASE_URL    → -d
	DATABASE_TYPE   → -t
	TOKEN_SECRET    → -token-secret
	LOG_LEVEL       → -log-level
	TRUST_PROXY     → -trust-proxy
	TOKEN_TTL, VOTE_TIMEOUT, IP_HASH_SALT, LOG_FORMAT, ALLOWED_ORIGINS,
	ADMIN_NIK, ADMIN_NAME, ADMIN_PASSWORD

# Validation

ParseFlags returns an error if:

  - TOKEN_SECRET is missing or shorter than 16 characters
  - DATABASE_TYPE is neither sqlite nor postgres
  - postgres is selected without DATABASE_URL

SQLite defaults to the rtvote.db file in the working directory.
*/
package cliparse
