// Package token issues and verifies signed, time-limited password-reset
// tokens. A token proves control of an email address; it is never a login
// credential and is not persisted anywhere.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const resetScope = "password_reset"

// ErrInvalidToken is returned for any token that fails signature, expiry or
// scope checks. Callers must not surface the underlying reason.
var ErrInvalidToken = errors.New("invalid or expired token")

// GeneratePasswordReset returns an HMAC-signed token authorizing a password
// change for the given user, valid for ttl.
func GeneratePasswordReset(secret string, userID uint, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("signing secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(uint64(userID), 10),
		"scope": resetScope,
		"exp":   now.Add(ttl).Unix(),
		"iat":   now.Unix(),
		"jti":   uuid.New().String(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// VerifyPasswordReset validates the token's signature, expiry and scope and
// returns the user ID it was issued for. Every failure mode collapses into
// ErrInvalidToken.
func VerifyPasswordReset(secret, tokenString string) (uint, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	if scope, ok := claims["scope"].(string); !ok || scope != resetScope {
		return 0, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, ErrInvalidToken
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return 0, ErrInvalidToken
	}

	return uint(userID), nil
}
