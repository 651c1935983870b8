package credentials_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hkominsky/bullseye-client/credentials"
	"github.com/stretchr/testify/require"
)

func TestExpiryFromToken(t *testing.T) {
	t.Run("jwt with exp claim", func(t *testing.T) {
		exp := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "user-1",
			"exp": exp.Unix(),
		})
		signed, err := token.SignedString([]byte("test-secret"))
		require.NoError(t, err)

		got, ok := credentials.ExpiryFromToken(signed)
		require.True(t, ok)
		require.True(t, got.Equal(exp))
	})

	t.Run("jwt without exp claim", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"})
		signed, err := token.SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, ok := credentials.ExpiryFromToken(signed)
		require.False(t, ok)
	})

	t.Run("opaque token", func(t *testing.T) {
		_, ok := credentials.ExpiryFromToken("not-a-jwt")
		require.False(t, ok)
	})

	t.Run("empty token", func(t *testing.T) {
		_, ok := credentials.ExpiryFromToken("")
		require.False(t, ok)
	})
}
