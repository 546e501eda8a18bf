// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides credential checks and session tokens.

# Passwords

Passwords are hashed with bcrypt:

	hash, err := auth.HashPassword(password)
	err = auth.CheckPassword(hash, password) // ErrInvalidCredentials on mismatch

For a NIK that is not registered, RejectUnknown performs an equivalent
bcrypt comparison so both failure paths take the same time and return
the same ErrInvalidCredentials.

# Session Tokens

TokenIssuer signs HS256 JWTs whose subject is the voter ID:

	issuer := auth.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL)
	token, expiresAt, err := issuer.Issue(voter)
	claims, err := issuer.Parse(token)

Clients send the token as "Authorization: Bearer <token>".

# Validation

  - ValidateNIK: exactly 16 ASCII digits
  - ValidatePassword: at least 6 characters, at most 72 bytes

# IP Hashing

HashIP creates privacy-preserving IP hashes stored on vote records.
*/
package auth
