// broker/broker.go
package broker

import (
	"Gin_postgres_redis_fleet_custody/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNotConfigured = errors.New("identity broker not configured")

// Client runs the federated login server-side: authorization-code exchange
// against the broker and role derivation from the tenant directory. Broker
// credentials never reach the browser.
type Client struct {
	TokenURL     string
	DirectoryURL string
	ClientID     string
	ClientSecret string
	HTTP         *http.Client
}

func NewClient(tokenURL, directoryURL, clientID, clientSecret string) *Client {
	return &Client{
		TokenURL:     tokenURL,
		DirectoryURL: directoryURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		HTTP:         &http.Client{Timeout: 15 * time.Second},
	}
}

// TokenSet is the broker's exchange response plus the identity claims pulled
// out of the ID token.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
	ExpiresIn    int64  `json:"expires_in"`

	Subject string `json:"-"`
	Email   string `json:"-"`
	Name    string `json:"-"`
}

// ExchangeCode swaps an authorization code for tokens. The identity claims
// come from the ID token; the token arrived over the broker's TLS channel in
// direct response to our client-credentials request, which is what
// authenticates it here.
func (c *Client) ExchangeCode(ctx context.Context, code, redirectURI string) (*TokenSet, error) {
	if c.TokenURL == "" {
		return nil, ErrNotConfigured
	}

	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {redirectURI},
		"client_id":     {c.ClientID},
		"client_secret": {c.ClientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("code exchange: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var ts TokenSet
	if err := json.Unmarshal(body, &ts); err != nil {
		return nil, fmt.Errorf("code exchange: decode response: %w", err)
	}
	if ts.IDToken == "" {
		return nil, errors.New("code exchange: broker returned no id_token")
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(ts.IDToken, claims); err != nil {
		return nil, fmt.Errorf("code exchange: parse id_token: %w", err)
	}
	ts.Subject, _ = claims["sub"].(string)
	ts.Email, _ = claims["email"].(string)
	ts.Name, _ = claims["name"].(string)
	if ts.Subject == "" {
		return nil, errors.New("code exchange: id_token has no subject")
	}
	return &ts, nil
}

// FetchGroups asks the tenant directory for the principal's group memberships.
func (c *Client) FetchGroups(ctx context.Context, accessToken string) ([]string, error) {
	if c.DirectoryURL == "" {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.DirectoryURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("directory lookup: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out struct {
		Groups []string `json:"groups"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("directory lookup: decode response: %w", err)
	}
	return out.Groups, nil
}

// MapGroupsToRole turns directory group memberships into a profile role.
// Unknown memberships fall through to agente; the role is re-derived on every
// federated login, never taken from the client.
func MapGroupsToRole(groups []string, adminGroup, gestorGroup string) string {
	role := models.RoleAgent
	for _, g := range groups {
		switch g {
		case adminGroup:
			return models.RoleAdmin
		case gestorGroup:
			role = models.RoleManager
		}
	}
	return role
}
