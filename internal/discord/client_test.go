// internal/discord/client_test.go
package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"application-gateway/internal/common/config"
	gwerrors "application-gateway/internal/common/errors"
	"application-gateway/internal/common/logger"
	"application-gateway/internal/lifecycle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestClient(t *testing.T, serverURL string) *Client {
	cfg := config.DiscordConfig{
		BotToken:       "bot-token",
		APIBaseURL:     serverURL,
		GuildID:        "guild-1",
		StaffChannelID: "staff-1",
		Timeout:        5000,
	}
	return NewClient(cfg, logger.NewTestLogger(t))
}

func createTestReviewRequest() lifecycle.ReviewRequest {
	return lifecycle.ReviewRequest{
		Identity:     "u1",
		SubmissionID: "sub-42",
		DisplayName:  "applicant",
		Profile: map[string]string{
			"q1": "I want to help",
			"q3": "10 hours a week",
		},
		Report: []lifecycle.QuestionScore{
			{Key: "theory1", RawAnswer: "ban", NormalizedAnswer: "B", Correct: true},
		},
		SubmittedAt: time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC),
	}
}

// ==========================
// Review Request Tests
// ==========================

func TestClient_SendReviewRequest(t *testing.T) {
	var captured messagePayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/channels/staff-1/messages", r.URL.Path)
		assert.Equal(t, "Bot bot-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := createTestClient(t, server.URL)
	require.NoError(t, client.SendReviewRequest(context.Background(), createTestReviewRequest()))

	require.Len(t, captured.Embeds, 1)
	embed := captured.Embeds[0]
	assert.Equal(t, "New Staff Application", embed.Title)
	assert.Equal(t, reviewEmbedColor, embed.Color)

	fieldsByName := map[string]string{}
	for _, f := range embed.Fields {
		fieldsByName[f.Name] = f.Value
	}
	assert.Equal(t, "<@u1> (applicant)", fieldsByName["Applicant"])
	assert.Equal(t, "u1", fieldsByName["User ID"])
	assert.Equal(t, "I want to help", fieldsByName["Why join?"])
	assert.Equal(t, "N/A", fieldsByName["Experience"], "missing profile answer renders as N/A")
	assert.Equal(t, "10 hours a week", fieldsByName["Time Dedication"])
	assert.Contains(t, fieldsByName["Assessment"], "theory1")

	require.NotNil(t, embed.Footer)
	assert.Equal(t, "Submission sub-42", embed.Footer.Text)

	require.Len(t, captured.Components, 1)
	row := captured.Components[0]
	require.Len(t, row.Components, 2)
	assert.Equal(t, "approve_u1", row.Components[0].CustomID)
	assert.Equal(t, buttonStyleSuccess, row.Components[0].Style)
	assert.Equal(t, "deny_u1", row.Components[1].CustomID)
	assert.Equal(t, buttonStyleDanger, row.Components[1].Style)
}

func TestClient_SendReviewRequest_ChannelUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := createTestClient(t, server.URL)
	err := client.SendReviewRequest(context.Background(), createTestReviewRequest())
	assert.Equal(t, gwerrors.ErrCodeChannelUnavailable, gwerrors.CodeOf(err))
}

// ==========================
// Guild Membership Tests
// ==========================

func TestClient_ForceJoinGuild(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"member added", http.StatusCreated, false},
		{"already a member", http.StatusNoContent, false},
		{"expired token", http.StatusUnauthorized, true},
		{"missing permissions", http.StatusForbidden, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPut, r.Method)
				assert.Equal(t, "/guilds/guild-1/members/u1", r.URL.Path)

				var body map[string]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "user-access-token", body["access_token"])
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := createTestClient(t, server.URL)
			err := client.ForceJoinGuild(context.Background(), "u1", "user-access-token")
			if tt.wantErr {
				assert.Equal(t, gwerrors.ErrCodeGuildJoinFailed, gwerrors.CodeOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClient_GrantRoles(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := createTestClient(t, server.URL)
	require.NoError(t, client.GrantRoles(context.Background(), "u1", []string{"role-a", "role-b"}))

	assert.Equal(t, []string{
		"/guilds/guild-1/members/u1/roles/role-a",
		"/guilds/guild-1/members/u1/roles/role-b",
	}, paths)
}

func TestClient_GrantRoles_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := createTestClient(t, server.URL)
	err := client.GrantRoles(context.Background(), "u1", []string{"role-a"})
	assert.Equal(t, gwerrors.ErrCodeRoleGrantFailed, gwerrors.CodeOf(err))
}

// ==========================
// Direct Message Tests
// ==========================

func TestClient_SendDirectMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/@me/channels":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "u1", body["recipient_id"])
			json.NewEncoder(w).Encode(map[string]string{"id": "dm-42"})
		case "/channels/dm-42/messages":
			var body messagePayload
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "hello", body.Content)
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := createTestClient(t, server.URL)
	require.NoError(t, client.SendDirectMessage(context.Background(), "u1", "hello"))
}

func TestClient_SendDirectMessage_ClosedDMs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := createTestClient(t, server.URL)
	err := client.SendDirectMessage(context.Background(), "u1", "hello")
	assert.Equal(t, gwerrors.ErrCodeDMSendFailed, gwerrors.CodeOf(err))
}
