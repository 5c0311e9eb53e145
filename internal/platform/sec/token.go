// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides the security primitives of the client: roles, bearer
// token inspection and sealing of values kept on the local disk.
//
// # Architecture
//
// The client never holds signing keys. Tokens are opaque to it except for
// their registered claims, which may be read without verification to avoid
// spending a backend round trip on a token that is known to be expired.
package sec

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenLeeway is the clock skew tolerated before a token is treated as expired
// locally. The backend stays the authority on anything inside the window.
const TokenLeeway = 2 * time.Minute

// registeredClaims reads the claims of a JWT without verifying its signature.
// ok is false when the token is not a JWT or carries no exp claim; opaque
// tokens are common and must be handed to the backend as-is.
func registeredClaims(token string) (claims *jwt.RegisteredClaims, ok bool) {
	claims = &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, claims.ExpiresAt != nil
}

// TokenExpired reports whether token is a JWT whose exp claim lies more than
// [TokenLeeway] before now.
func TokenExpired(token string, now time.Time) bool {
	claims, ok := registeredClaims(token)
	if !ok {
		return false
	}

	validator := jwt.NewValidator(
		jwt.WithLeeway(TokenLeeway),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	return errors.Is(validator.Validate(claims), jwt.ErrTokenExpired)
}
