// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/rtvote/rtvote-server/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidNIK         = fmt.Errorf("NIK must be exactly %d digits", models.NIKLength)
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", models.MinPasswordLength)
)

// PasswordCost is the bcrypt work factor. Tests lower it to bcrypt.MinCost.
var PasswordCost = bcrypt.DefaultCost

// HashPassword returns the bcrypt hash of a password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a password against its stored hash.
// Any mismatch, including a malformed hash, is ErrInvalidCredentials.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// RejectUnknown burns the same bcrypt work as CheckPassword for a NIK
// that does not exist, so response timing does not reveal registration.
// It always returns ErrInvalidCredentials.
func RejectUnknown(password string) error {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("rtvote-placeholder"), PasswordCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
	return ErrInvalidCredentials
}

// ValidateNIK checks the fixed-length numeric national ID
func ValidateNIK(nik string) error {
	if len(nik) != models.NIKLength {
		return ErrInvalidNIK
	}
	for _, c := range nik {
		if c < '0' || c > '9' {
			return ErrInvalidNIK
		}
	}
	return nil
}

// ValidatePassword enforces the registration password policy
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < models.MinPasswordLength {
		return ErrWeakPassword
	}
	// bcrypt ignores everything past 72 bytes
	if len(password) > 72 {
		return errors.New("password must be at most 72 bytes")
	}
	return nil
}

// NormalizeName trims and collapses inner whitespace
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}
