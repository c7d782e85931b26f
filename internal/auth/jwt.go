package auth

import (
	"fmt"
	"time"

	"github.com/fivetwenty-io/quoter-client/internal/constants"
	"github.com/golang-jwt/jwt/v5"
)

// jwtExpiry reads the exp claim of an access token without verifying its
// signature. The token is only inspected to decide when to fetch a new one.
func jwtExpiry(accessToken string) (time.Time, error) {
	claims := &jwt.RegisteredClaims{}

	_, _, err := jwt.NewParser().ParseUnverified(accessToken, claims)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", constants.ErrInvalidJWTFormat, err)
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, constants.ErrNoExpirationClaim
	}

	return claims.ExpiresAt.Time, nil
}
