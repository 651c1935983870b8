package credentials

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiryFromToken extracts the exp claim from a JWT access token
// without verifying its signature. Signature verification is the
// backend's job; the client only needs the lifetime the server minted
// into the token. Returns false for opaque tokens and tokens that carry
// no exp claim.
func ExpiryFromToken(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
