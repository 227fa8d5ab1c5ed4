package credentials

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenExpired проверяет, истек ли access-токен, без обращения к серверу.
// Токен разбирается без проверки подписи: консоль не владеет ключом,
// окончательное решение всегда за сервером. Непрозрачные (не-JWT) токены
// и токены без exp считаются действующими.
func AccessTokenExpired(token string, now time.Time) bool {
	if token == "" {
		return true
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	return exp.Before(now)
}
