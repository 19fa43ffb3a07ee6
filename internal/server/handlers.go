// internal/server/handlers.go
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	gwerrors "application-gateway/internal/common/errors"
	"application-gateway/internal/common/validation"
	"application-gateway/internal/discord"
	"application-gateway/internal/lifecycle"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleRoot(c *gin.Context) {
	c.String(http.StatusOK, "Application gateway is online! %s", time.Now().UTC().Format(time.RFC3339))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleTokenExchange(c *gin.Context) {
	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if err := validation.ValidateExchange(payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing code or redirect_uri"})
		return
	}

	code, _ := payload["code"].(string)
	redirectURI, _ := payload["redirect_uri"].(string)

	identity, err := s.exchanger.ExchangeCode(c.Request.Context(), code, redirectURI)
	if err != nil {
		switch gwerrors.CodeOf(err) {
		case gwerrors.ErrCodeTokenExchangeFailed:
			c.JSON(http.StatusBadRequest, gin.H{"message": "Token exchange failed"})
		case gwerrors.ErrCodeUserFetchFailed:
			c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to get user info"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":          identity.User,
		"access_token":  identity.AccessToken,
		"refresh_token": identity.RefreshToken,
	})
}

func (s *Server) handleApply(c *gin.Context) {
	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if err := validation.ValidateSubmission(payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing application data"})
		return
	}

	userID, _ := payload["user_id"].(string)
	username, _ := payload["username"].(string)
	accessToken, _ := payload["access_token"].(string)
	answers, _ := payload["answers"].(map[string]interface{})

	profile, assessment := splitAnswers(answers)

	err := s.lifecycle.Submit(c.Request.Context(), lifecycle.Submission{
		Identity:    userID,
		DisplayName: username,
		Profile:     profile,
		Assessment:  assessment,
		AccessToken: accessToken,
	}, time.Now().UTC())
	if err != nil {
		s.writeSubmitError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Application sent to staff."})
}

// splitAnswers applies the question-key convention exactly once: keys
// beginning with "t" are assessment questions, everything else is profile.
func splitAnswers(answers map[string]interface{}) (map[string]string, map[string]string) {
	profile := make(map[string]string)
	assessment := make(map[string]string)
	for key, value := range answers {
		text, _ := value.(string)
		if strings.HasPrefix(key, "t") {
			assessment[key] = text
		} else {
			profile[key] = text
		}
	}
	return profile, assessment
}

func (s *Server) writeSubmitError(c *gin.Context, err error) {
	switch gwerrors.CodeOf(err) {
	case gwerrors.ErrCodeValidationFailed:
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing application data"})
	case gwerrors.ErrCodeApplicantBlocked:
		message := "You are blocked from applying."
		if remaining, ok := gwerrors.BlockedRemaining(err); ok {
			days := int(remaining.Hours()/24) + 1
			message = fmt.Sprintf("You are blocked from applying for %d more days.", days)
		}
		c.JSON(http.StatusForbidden, gin.H{"message": message})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to send application message."})
	}
}

// handleInteraction answers the platform's signed interaction callbacks:
// signature check, PING/PONG, then the approve/deny buttons.
func (s *Server) handleInteraction(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unreadable body"})
		return
	}

	signature := c.GetHeader(discord.HeaderSignature)
	timestamp := c.GetHeader(discord.HeaderTimestamp)
	if !s.verifier.Verify(signature, timestamp, body) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid request signature"})
		return
	}

	var interaction discord.Interaction
	if err := json.Unmarshal(body, &interaction); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Malformed interaction"})
		return
	}

	switch interaction.Type {
	case discord.InteractionTypePing:
		c.JSON(http.StatusOK, discord.InteractionResponse{Type: discord.ResponseTypePong})
	case discord.InteractionTypeComponent:
		s.handleDecision(c, interaction)
	default:
		c.JSON(http.StatusOK, ephemeralMessage("Unsupported interaction."))
	}
}

func (s *Server) handleDecision(c *gin.Context, interaction discord.Interaction) {
	kind, identity, err := discord.ParseCustomID(interaction.Data.CustomID)
	if err != nil {
		c.JSON(http.StatusOK, ephemeralMessage("Unrecognized action."))
		return
	}

	result, err := s.lifecycle.Decide(c.Request.Context(), kind, identity, time.Now().UTC())
	if err != nil {
		switch gwerrors.CodeOf(err) {
		case gwerrors.ErrCodeNotFound:
			c.JSON(http.StatusOK, ephemeralMessage("Application data not found."))
		default:
			c.JSON(http.StatusOK, ephemeralMessage("Failed to process action."))
		}
		return
	}

	c.JSON(http.StatusOK, decisionUpdate(result))
}

// decisionUpdate replaces the review message, clearing the buttons so the
// resolved decision cannot be re-clicked from a stale message.
func decisionUpdate(result lifecycle.DecideResult) discord.InteractionResponse {
	var content string
	if result.Kind == lifecycle.DecisionApprove {
		content = fmt.Sprintf("✅ Application APPROVED for <@%s>", result.Identity)
	} else {
		content = fmt.Sprintf("❌ Application DENIED for <@%s>", result.Identity)
	}
	if !result.Notified {
		content += " (applicant could not be notified)"
	}

	return discord.InteractionResponse{
		Type: discord.ResponseTypeUpdateMessage,
		Data: &discord.InteractionResponseData{
			Content:    content,
			Embeds:     []discord.Embed{},
			Components: []discord.ActionRow{},
		},
	}
}

func ephemeralMessage(content string) discord.InteractionResponse {
	return discord.InteractionResponse{
		Type: discord.ResponseTypeChannelMessage,
		Data: &discord.InteractionResponseData{
			Content: content,
			Flags:   discord.MessageFlagEphemeral,
		},
	}
}
