// internal/discord/interaction_test.go
package discord

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"testing"

	"application-gateway/internal/lifecycle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomID_RoundTrip(t *testing.T) {
	id := EncodeCustomID(lifecycle.DecisionApprove, "123456789")
	assert.Equal(t, "approve_123456789", id)

	kind, identity, err := ParseCustomID(id)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.DecisionApprove, kind)
	assert.Equal(t, "123456789", identity)
}

func TestParseCustomID(t *testing.T) {
	tests := []struct {
		name     string
		customID string
		wantKind lifecycle.DecisionKind
		wantID   string
		wantErr  bool
	}{
		{"approve", "approve_u1", lifecycle.DecisionApprove, "u1", false},
		{"deny", "deny_u1", lifecycle.DecisionDeny, "u1", false},
		{"identity containing underscore", "deny_u_1", lifecycle.DecisionDeny, "u_1", false},
		{"unknown action", "escalate_u1", "", "", true},
		{"no separator", "approve", "", "", true},
		{"empty identity", "approve_", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, identity, err := ParseCustomID(tt.customID)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantID, identity)
		})
	}
}

func TestVerifier_Verify(t *testing.T) {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	verifier, err := NewVerifier(hex.EncodeToString(public))
	require.NoError(t, err)

	timestamp := "1719830000"
	body := []byte(`{"type":1}`)
	signature := ed25519.Sign(private, append([]byte(timestamp), body...))

	assert.True(t, verifier.Verify(hex.EncodeToString(signature), timestamp, body))
	assert.False(t, verifier.Verify(hex.EncodeToString(signature), "1719830001", body))
	assert.False(t, verifier.Verify(hex.EncodeToString(signature), timestamp, []byte(`{"type":2}`)))
	assert.False(t, verifier.Verify("not-hex", timestamp, body))

	otherPublic, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	otherVerifier, err := NewVerifier(hex.EncodeToString(otherPublic))
	require.NoError(t, err)
	assert.False(t, otherVerifier.Verify(hex.EncodeToString(signature), timestamp, body))
}

func TestNewVerifier_RejectsBadKeys(t *testing.T) {
	_, err := NewVerifier("zz")
	assert.Error(t, err)

	_, err = NewVerifier(hex.EncodeToString([]byte("short")))
	assert.Error(t, err)
}
