// Package token issues and validates signed, time-limited identity tokens.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/notehub-app/notehub/internal/errs"
)

// Tokens are HS256 JWTs carrying a single claim set: subject, issued-at and
// expiry. They are stateless; there is no server-side revocation.

// Issue creates a signed token for subject expiring at now+ttl.
func Issue(subject string, key []byte, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(key)
	return signed, exp, err
}

// Validate verifies signature and expiry and returns the subject. Any failure
// (bad signature, wrong algorithm, malformed token, missing subject, expiry in
// the past) yields errs.ErrUnauthenticated. Expiry has zero leeway.
func Validate(tokenStr string, key []byte) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{},
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return "", errs.ErrUnauthenticated
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", errs.ErrUnauthenticated
	}
	return claims.Subject, nil
}
