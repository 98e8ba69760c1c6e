// app/token.go
package app

import (
	"Gin_postgres_redis_fleet_custody/config"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// FederatedClaims is the bearer token handed to federated principals after
// the broker callback. It carries only the redis session id; role and profile
// come from the server on every request.
type FederatedClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func IssueFederatedToken(cfg config.Config, sessionID, subject string, ttl time.Duration) (string, time.Time, error) {
	if cfg.JWTSecret == "" {
		return "", time.Time{}, errors.New("jwt secret is empty")
	}
	now := time.Now()
	exp := now.Add(ttl)
	c := FederatedClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    cfg.JWTIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func ParseFederatedToken(cfg config.Config, token string) (*FederatedClaims, error) {
	var claims FederatedClaims
	t, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.JWTSecret), nil
	}, jwt.WithIssuer(cfg.JWTIssuer))
	if err != nil {
		return nil, err
	}
	if !t.Valid || claims.SessionID == "" {
		return nil, errors.New("invalid token")
	}
	return &claims, nil
}
