package authz

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the principal a bearer token acts for.
type Claims struct {
	Principal string `json:"principal"`
	jwt.RegisteredClaims
}

// SignToken mints an HS256 bearer token for the given principal. Used by
// operators to issue credentials and by tests.
func SignToken(principal, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Principal: principal,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies an HS256 bearer token and returns the principal it
// acts for.
func ParseToken(tokenStr, secret string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}
	principal := claims.Principal
	if principal == "" {
		principal = claims.Subject
	}
	if principal == "" {
		return "", fmt.Errorf("%w: token names no principal", ErrUnauthorized)
	}
	return principal, nil
}
