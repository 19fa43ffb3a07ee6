// internal/discord/client.go
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"application-gateway/internal/common/config"
	gwerrors "application-gateway/internal/common/errors"
	"application-gateway/internal/common/logger"
	"application-gateway/internal/common/metrics"
	"application-gateway/internal/lifecycle"
)

const reviewEmbedColor = 0x5865F2

// profileLabels maps the well-known profile question keys to the headings
// shown on the review message. Unknown keys fall back to the raw key.
var profileLabels = map[string]string{
	"q1": "Why join?",
	"q2": "Experience",
	"q3": "Time Dedication",
}

// Client is the bot-authenticated REST collaborator. It implements
// lifecycle.GuildGateway.
type Client struct {
	baseURL        string
	botToken       string
	guildID        string
	staffChannelID string
	httpClient     *http.Client
	logger         logger.Logger
}

func NewClient(cfg config.DiscordConfig, log logger.Logger) *Client {
	return &Client{
		baseURL:        strings.TrimSuffix(cfg.APIBaseURL, "/"),
		botToken:       cfg.BotToken,
		guildID:        cfg.GuildID,
		staffChannelID: cfg.StaffChannelID,
		httpClient:     &http.Client{Timeout: config.GetDuration(cfg.Timeout)},
		logger:         log.WithFields(map[string]interface{}{"component": "discord"}),
	}
}

// SendReviewRequest posts the reviewable application message with approve
// and deny buttons to the staff channel.
func (c *Client) SendReviewRequest(ctx context.Context, req lifecycle.ReviewRequest) error {
	payload := messagePayload{
		Embeds:     []Embed{buildReviewEmbed(req)},
		Components: []ActionRow{buildDecisionRow(req.Identity)},
	}

	path := fmt.Sprintf("/channels/%s/messages", c.staffChannelID)
	if err := c.do(ctx, "send_review", http.MethodPost, path, payload, http.StatusOK); err != nil {
		return gwerrors.NewChannelUnavailableError(err)
	}
	return nil
}

// ForceJoinGuild adds the applicant to the guild using the access token
// captured at submission time. 201 means added, 204 already a member.
func (c *Client) ForceJoinGuild(ctx context.Context, identity, accessToken string) error {
	payload := map[string]string{"access_token": accessToken}
	path := fmt.Sprintf("/guilds/%s/members/%s", c.guildID, identity)
	if err := c.do(ctx, "guild_join", http.MethodPut, path, payload, http.StatusCreated, http.StatusNoContent); err != nil {
		return gwerrors.NewGuildJoinError(identity, err)
	}
	return nil
}

// GrantRoles assigns each configured role to the member, one call per role.
func (c *Client) GrantRoles(ctx context.Context, identity string, roleIDs []string) error {
	for _, roleID := range roleIDs {
		path := fmt.Sprintf("/guilds/%s/members/%s/roles/%s", c.guildID, identity, roleID)
		if err := c.do(ctx, "role_grant", http.MethodPut, path, nil, http.StatusNoContent); err != nil {
			return gwerrors.NewRoleGrantError(identity, fmt.Errorf("role %s: %w", roleID, err))
		}
	}
	return nil
}

// SendDirectMessage opens a DM channel with the user and posts content to
// it. Callers treat failures as best-effort.
func (c *Client) SendDirectMessage(ctx context.Context, identity, content string) error {
	var channel struct {
		ID string `json:"id"`
	}
	payload := map[string]string{"recipient_id": identity}
	if err := c.doJSON(ctx, "dm_open", http.MethodPost, "/users/@me/channels", payload, &channel, http.StatusOK); err != nil {
		return gwerrors.NewDMSendError(identity, err)
	}

	message := messagePayload{Content: content}
	path := fmt.Sprintf("/channels/%s/messages", channel.ID)
	if err := c.do(ctx, "dm_send", http.MethodPost, path, message, http.StatusOK); err != nil {
		return gwerrors.NewDMSendError(identity, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, operation, method, path string, body interface{}, okStatuses ...int) error {
	return c.doJSON(ctx, operation, method, path, body, nil, okStatuses...)
}

func (c *Client) doJSON(ctx context.Context, operation, method, path string, body, out interface{}, okStatuses ...int) error {
	start := time.Now()
	err := c.roundTrip(ctx, method, path, body, out, okStatuses)
	metrics.DiscordRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DiscordRequestFailures.WithLabelValues(operation).Inc()
		c.logger.WithError(err).Warn("platform request failed", map[string]interface{}{
			"operation": operation,
			"method":    method,
		})
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body, out interface{}, okStatuses []int) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.botToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	for _, status := range okStatuses {
		if resp.StatusCode == status {
			if out != nil {
				if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
					return fmt.Errorf("decode response: %w", err)
				}
			}
			return nil
		}
	}

	respBody, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
}

// ==========================
// Message rendering
// ==========================

func buildReviewEmbed(req lifecycle.ReviewRequest) Embed {
	fields := []EmbedField{
		{Name: "Applicant", Value: fmt.Sprintf("<@%s> (%s)", req.Identity, req.DisplayName), Inline: true},
		{Name: "User ID", Value: req.Identity, Inline: true},
	}

	for _, key := range orderedProfileKeys(req.Profile) {
		label, ok := profileLabels[key]
		if !ok {
			label = key
		}
		value := req.Profile[key]
		if value == "" {
			value = "N/A"
		}
		fields = append(fields, EmbedField{Name: label, Value: value})
	}

	if len(req.Report) > 0 {
		fields = append(fields, EmbedField{Name: "Assessment", Value: renderReport(req.Report)})
	}

	var footer *EmbedFooter
	if req.SubmissionID != "" {
		footer = &EmbedFooter{Text: "Submission " + req.SubmissionID}
	}

	return Embed{
		Title:     "New Staff Application",
		Color:     reviewEmbedColor,
		Fields:    fields,
		Footer:    footer,
		Timestamp: req.SubmittedAt.UTC().Format(time.RFC3339),
	}
}

// orderedProfileKeys lists the well-known questions first, in their fixed
// order and with "N/A" placeholders for missing ones, then any extra keys
// sorted.
func orderedProfileKeys(profile map[string]string) []string {
	known := []string{"q1", "q2", "q3"}
	keys := append([]string{}, known...)

	var extra []string
	for key := range profile {
		isKnown := false
		for _, k := range known {
			if key == k {
				isKnown = true
				break
			}
		}
		if !isKnown {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

func renderReport(report []lifecycle.QuestionScore) string {
	lines := make([]string, 0, len(report))
	for _, score := range report {
		mark := "❌"
		if score.Correct {
			mark = "✅"
		}
		lines = append(lines, fmt.Sprintf("%s %s: %s → %s", mark, score.Key, score.RawAnswer, score.NormalizedAnswer))
	}
	return strings.Join(lines, "\n")
}

func buildDecisionRow(identity string) ActionRow {
	return ActionRow{
		Type: componentTypeActionRow,
		Components: []Button{
			{
				Type:     componentTypeButton,
				Style:    buttonStyleSuccess,
				Label:    "APPROVE",
				CustomID: EncodeCustomID(lifecycle.DecisionApprove, identity),
			},
			{
				Type:     componentTypeButton,
				Style:    buttonStyleDanger,
				Label:    "DENY",
				CustomID: EncodeCustomID(lifecycle.DecisionDeny, identity),
			},
		},
	}
}
