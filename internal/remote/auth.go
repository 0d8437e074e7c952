package remote

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSubject identifies sync clients in the bearer token.
const TokenSubject = "medcore-sync"

const tokenTTL = 5 * time.Minute

// SignToken issues the short-lived HS256 bearer token sent with every request.
func SignToken(secret string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   TokenSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
