package broker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Gin_postgres_redis_fleet_custody/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedIDToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("broker-side-secret"))
	require.NoError(t, err)
	return tok
}

func TestExchangeCode(t *testing.T) {
	idToken := signedIDToken(t, jwt.MapClaims{
		"sub":   "subject-123",
		"email": "silva@frota.example",
		"name":  "Agente Silva",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostFormValue("grant_type"))
		assert.Equal(t, "the-code", r.PostFormValue("code"))
		assert.Equal(t, "cid", r.PostFormValue("client_id"))
		assert.Equal(t, "csecret", r.PostFormValue("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","refresh_token":"rt","id_token":"` + idToken + `","expires_in":3600}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "cid", "csecret")
	ts, err := c.ExchangeCode(context.Background(), "the-code", "https://app/callback")
	require.NoError(t, err)

	assert.Equal(t, "at", ts.AccessToken)
	assert.Equal(t, "rt", ts.RefreshToken)
	assert.Equal(t, "subject-123", ts.Subject)
	assert.Equal(t, "silva@frota.example", ts.Email)
	assert.Equal(t, "Agente Silva", ts.Name)
}

func TestExchangeCodeRejectsMissingIDToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"at"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "cid", "csecret")
	_, err := c.ExchangeCode(context.Background(), "code", "uri")
	assert.ErrorContains(t, err, "no id_token")
}

func TestExchangeCodeRejectsMissingSubject(t *testing.T) {
	idToken := signedIDToken(t, jwt.MapClaims{"email": "x@y"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id_token":"` + idToken + `"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "cid", "csecret")
	_, err := c.ExchangeCode(context.Background(), "code", "uri")
	assert.ErrorContains(t, err, "no subject")
}

func TestExchangeCodeSurfacesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "cid", "csecret")
	_, err := c.ExchangeCode(context.Background(), "expired", "uri")
	assert.ErrorContains(t, err, "status 400")
}

func TestExchangeCodeNotConfigured(t *testing.T) {
	c := NewClient("", "", "", "")
	_, err := c.ExchangeCode(context.Background(), "code", "uri")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestFetchGroups(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer the-access-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"groups":["frota-gestores","outra-coisa"]}`))
	}))
	defer srv.Close()

	c := NewClient("", srv.URL, "", "")
	groups, err := c.FetchGroups(context.Background(), "the-access-token")
	require.NoError(t, err)
	assert.Equal(t, []string{"frota-gestores", "outra-coisa"}, groups)
}

func TestMapGroupsToRole(t *testing.T) {
	const admin, gestor = "frota-admin", "frota-gestores"

	assert.Equal(t, models.RoleAgent, MapGroupsToRole(nil, admin, gestor))
	assert.Equal(t, models.RoleAgent, MapGroupsToRole([]string{"dev", "rh"}, admin, gestor))
	assert.Equal(t, models.RoleManager, MapGroupsToRole([]string{"dev", gestor}, admin, gestor))
	// admin wins regardless of order
	assert.Equal(t, models.RoleAdmin, MapGroupsToRole([]string{gestor, admin}, admin, gestor))
	assert.Equal(t, models.RoleAdmin, MapGroupsToRole([]string{admin, gestor}, admin, gestor))
}
