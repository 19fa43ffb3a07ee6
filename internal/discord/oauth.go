// internal/discord/oauth.go
package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"application-gateway/internal/common/config"
	gwerrors "application-gateway/internal/common/errors"
)

// OAuthClient performs the authorization-code exchange and the follow-up
// identity fetch against the platform's OAuth2 endpoints.
type OAuthClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	scope        string
	httpClient   *http.Client
}

func NewOAuthClient(cfg config.OAuthConfig, baseURL string) *OAuthClient {
	return &OAuthClient{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		scope:        cfg.Scope,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// ExchangeCode trades an authorization code for tokens and fetches the
// profile of the user who authorized.
func (c *OAuthClient) ExchangeCode(ctx context.Context, code, redirectURI string) (*Identity, error) {
	data := url.Values{}
	data.Set("client_id", c.clientID)
	data.Set("client_secret", c.clientSecret)
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", redirectURI)
	data.Set("scope", c.scope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth2/token", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, gwerrors.NewTokenExchangeError(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, gwerrors.NewTokenExchangeError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, gwerrors.NewTokenExchangeError(
			fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(body)),
		)
	}

	var tokens tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, gwerrors.NewTokenExchangeError(err)
	}

	user, err := c.fetchUser(ctx, tokens.AccessToken)
	if err != nil {
		return nil, err
	}

	return &Identity{
		User:         *user,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

func (c *OAuthClient) fetchUser(ctx context.Context, accessToken string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/@me", nil)
	if err != nil {
		return nil, gwerrors.NewUserFetchError(err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, gwerrors.NewUserFetchError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, gwerrors.NewUserFetchError(
			fmt.Errorf("identity endpoint returned %d: %s", resp.StatusCode, string(body)),
		)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, gwerrors.NewUserFetchError(err)
	}
	return &user, nil
}
