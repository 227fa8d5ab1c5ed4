package credentials

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestAccessTokenExpired(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	expired := signedToken(t, jwt.MapClaims{"exp": now.Add(-time.Hour).Unix()})
	active := signedToken(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()})
	noExp := signedToken(t, jwt.MapClaims{"sub": "u-1"})

	assert.True(t, AccessTokenExpired(expired, now))
	assert.False(t, AccessTokenExpired(active, now))

	// Токен без exp считается действующим
	assert.False(t, AccessTokenExpired(noExp, now))

	// Непрозрачный токен решает сервер, не консоль
	assert.False(t, AccessTokenExpired("opaque-session-token", now))

	// Пустой токен всегда истекший
	assert.True(t, AccessTokenExpired("", now))
}
