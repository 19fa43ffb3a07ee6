// internal/common/errors/errors_test.go
package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStandardError_Error(t *testing.T) {
	err := NewValidationError("missing user_id")
	assert.Equal(t, "StandardError[VALIDATION_FAILED]: Application data validation failed", err.Error())
	assert.False(t, err.Retryable)
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorCode
	}{
		{"validation error", NewValidationError("x"), ErrCodeValidationFailed},
		{"not found error", NewNotFoundError("u1"), ErrCodeNotFound},
		{"wrapped in fmt", fmt.Errorf("handler: %w", NewNotFoundError("u1")), ErrCodeNotFound},
		{"foreign error", errors.New("plain"), ErrorCode("")},
		{"nil", nil, ErrorCode("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CodeOf(tt.err))
		})
	}
}

func TestIsCode_Chain(t *testing.T) {
	join := NewGuildJoinError("u1", errors.New("401: invalid oauth token"))
	external := NewExternalActionError(join)

	assert.True(t, IsCode(external, ErrCodeExternalActionFailed))
	assert.True(t, IsCode(external, ErrCodeGuildJoinFailed))
	assert.False(t, IsCode(external, ErrCodeRoleGrantFailed))
	assert.False(t, IsCode(nil, ErrCodeGuildJoinFailed))
}

func TestBlockedRemaining(t *testing.T) {
	remaining := 29*24*time.Hour + 5*time.Minute
	err := NewBlockedError(remaining)

	got, ok := BlockedRemaining(err)
	assert.True(t, ok)
	assert.Equal(t, remaining, got)

	_, ok = BlockedRemaining(NewValidationError("x"))
	assert.False(t, ok)
}

func TestUnwrap_PreservesCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewChannelUnavailableError(cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, err.Retryable)
}
