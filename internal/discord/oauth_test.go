// internal/discord/oauth_test.go
package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"application-gateway/internal/common/config"
	gwerrors "application-gateway/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestOAuthClient(serverURL string) *OAuthClient {
	return NewOAuthClient(config.OAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Scope:        "identify guilds.join",
	}, serverURL)
}

func TestOAuthClient_ExchangeCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth2/token":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
			assert.Equal(t, "the-code", r.PostForm.Get("code"))
			assert.Equal(t, "https://example.com/callback.html", r.PostForm.Get("redirect_uri"))
			assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
			assert.Equal(t, "identify guilds.join", r.PostForm.Get("scope"))

			json.NewEncoder(w).Encode(tokenResponse{
				AccessToken:  "access-token",
				RefreshToken: "refresh-token",
				TokenType:    "Bearer",
			})
		case "/users/@me":
			assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(User{ID: "u1", Username: "applicant"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	identity, err := createTestOAuthClient(server.URL).ExchangeCode(
		context.Background(), "the-code", "https://example.com/callback.html",
	)
	require.NoError(t, err)
	assert.Equal(t, "u1", identity.User.ID)
	assert.Equal(t, "applicant", identity.User.Username)
	assert.Equal(t, "access-token", identity.AccessToken)
	assert.Equal(t, "refresh-token", identity.RefreshToken)
}

func TestOAuthClient_ExchangeCode_TokenFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := createTestOAuthClient(server.URL).ExchangeCode(context.Background(), "bad-code", "uri")
	assert.Equal(t, gwerrors.ErrCodeTokenExchangeFailed, gwerrors.CodeOf(err))
}

func TestOAuthClient_ExchangeCode_UserFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth2/token" {
			json.NewEncoder(w).Encode(tokenResponse{AccessToken: "access-token"})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := createTestOAuthClient(server.URL).ExchangeCode(context.Background(), "the-code", "uri")
	assert.Equal(t, gwerrors.ErrCodeUserFetchFailed, gwerrors.CodeOf(err))
}
