// Package errors provides standardized error handling for the application gateway.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Caller-side failures (4xx-equivalent)
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeApplicantBlocked ErrorCode = "APPLICANT_BLOCKED"
	ErrCodeNotFound         ErrorCode = "APPLICATION_NOT_FOUND"

	// Identity provider failures
	ErrCodeTokenExchangeFailed ErrorCode = "TOKEN_EXCHANGE_FAILED"
	ErrCodeUserFetchFailed     ErrorCode = "USER_FETCH_FAILED"

	// Chat platform failures
	ErrCodeChannelUnavailable ErrorCode = "CHANNEL_UNAVAILABLE"
	ErrCodeGuildJoinFailed    ErrorCode = "GUILD_JOIN_FAILED"
	ErrCodeRoleGrantFailed    ErrorCode = "ROLE_GRANT_FAILED"
	ErrCodeDMSendFailed       ErrorCode = "DM_SEND_FAILED"

	// Wrapper raised from within a review decision
	ErrCodeExternalActionFailed ErrorCode = "EXTERNAL_ACTION_FAILED"

	// Storage backend failures
	ErrCodeStorageFailed ErrorCode = "STORAGE_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// CodeOf extracts the ErrorCode from any error produced by this package.
// Returns an empty code for foreign errors.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		var stdErr *StandardError
		if !errors.As(err, &stdErr) {
			return false
		}
		if stdErr.Code == code {
			return true
		}
		err = stdErr.cause
	}
	return false
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationError creates a non-retryable error for malformed caller input.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Application data validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewBlockedError creates a policy-rejection error carrying the remaining
// cooldown duration in its metadata.
func NewBlockedError(remaining time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeApplicantBlocked,
		Message:   "Applicant is blocked from re-applying",
		Details:   fmt.Sprintf("remaining: %s", remaining.Round(time.Second)),
		Retryable: false,
		Metadata:  map[string]interface{}{"remaining": remaining},
		Timestamp: time.Now().UTC(),
	}
}

// BlockedRemaining returns the remaining cooldown carried by a blocked error.
func BlockedRemaining(err error) (time.Duration, bool) {
	var stdErr *StandardError
	if !errors.As(err, &stdErr) || stdErr.Code != ErrCodeApplicantBlocked {
		return 0, false
	}
	remaining, ok := stdErr.Metadata["remaining"].(time.Duration)
	return remaining, ok
}

// NewNotFoundError creates a non-retryable error for a stale or duplicate
// review-action reference.
func NewNotFoundError(identity string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   "No pending application for applicant",
		Details:   fmt.Sprintf("identity: %s", identity),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTokenExchangeError creates a retryable identity-provider error.
func NewTokenExchangeError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTokenExchangeFailed,
		Message:   "Failed to exchange authorization code for access token",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewUserFetchError creates a retryable identity-fetch error.
func NewUserFetchError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUserFetchFailed,
		Message:   "Failed to retrieve user profile from identity provider",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewChannelUnavailableError creates a retryable review-delivery error.
func NewChannelUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeChannelUnavailable,
		Message:   "Review channel is unreachable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewGuildJoinError creates a guild-join error. Not retryable when the
// captured access token has expired; the applicant must re-authorize.
func NewGuildJoinError(identity string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGuildJoinFailed,
		Message:   "Failed to add applicant to guild",
		Details:   fmt.Sprintf("identity: %s, error: %s", identity, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewRoleGrantError creates a retryable role-grant error.
func NewRoleGrantError(identity string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRoleGrantFailed,
		Message:   "Failed to grant roles to applicant",
		Details:   fmt.Sprintf("identity: %s, error: %s", identity, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewDMSendError creates a non-fatal direct-message error. Callers treat
// this as best-effort and never propagate it.
func NewDMSendError(identity string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDMSendFailed,
		Message:   "Failed to deliver direct message",
		Details:   fmt.Sprintf("identity: %s, error: %s", identity, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewExternalActionError wraps a platform failure raised from within a
// review decision.
func NewExternalActionError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalActionFailed,
		Message:   "Review decision could not be applied",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewStorageError creates a retryable storage-backend error.
func NewStorageError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageFailed,
		Message:   "Storage backend operation failed",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}
