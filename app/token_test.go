package app

import (
	"testing"
	"time"

	"Gin_postgres_redis_fleet_custody/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCfg() config.Config {
	return config.Config{JWTSecret: "test-secret", JWTIssuer: "frota-custodia"}
}

func TestFederatedTokenRoundTrip(t *testing.T) {
	cfg := testCfg()
	tok, exp, err := IssueFederatedToken(cfg, "sess-1", "subject-1", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := ParseFederatedToken(cfg, tok)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, "subject-1", claims.Subject)
}

func TestFederatedTokenWrongSecret(t *testing.T) {
	tok, _, err := IssueFederatedToken(testCfg(), "sess-1", "s", time.Hour)
	require.NoError(t, err)

	other := testCfg()
	other.JWTSecret = "another-secret"
	_, err = ParseFederatedToken(other, tok)
	assert.Error(t, err)
}

func TestFederatedTokenWrongIssuer(t *testing.T) {
	tok, _, err := IssueFederatedToken(testCfg(), "sess-1", "s", time.Hour)
	require.NoError(t, err)

	other := testCfg()
	other.JWTIssuer = "someone-else"
	_, err = ParseFederatedToken(other, tok)
	assert.Error(t, err)
}

func TestFederatedTokenExpired(t *testing.T) {
	tok, _, err := IssueFederatedToken(testCfg(), "sess-1", "s", -time.Hour)
	require.NoError(t, err)

	_, err = ParseFederatedToken(testCfg(), tok)
	assert.Error(t, err)
}

func TestFederatedTokenEmptySecret(t *testing.T) {
	_, _, err := IssueFederatedToken(config.Config{JWTIssuer: "x"}, "sess-1", "s", time.Hour)
	assert.Error(t, err)
}
