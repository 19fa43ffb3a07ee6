// internal/discord/interaction.go
package discord

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"

	"application-gateway/internal/lifecycle"
)

// Signature headers set by the platform on interaction callbacks.
const (
	HeaderSignature = "X-Signature-Ed25519"
	HeaderTimestamp = "X-Signature-Timestamp"
)

// EncodeCustomID tags a decision button with the action kind and the
// applicant identity.
func EncodeCustomID(kind lifecycle.DecisionKind, identity string) string {
	return fmt.Sprintf("%s_%s", kind, identity)
}

// ParseCustomID recovers (kind, identity) from a button tag.
func ParseCustomID(customID string) (lifecycle.DecisionKind, string, error) {
	parts := strings.SplitN(customID, "_", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("malformed custom id %q", customID)
	}

	kind := lifecycle.DecisionKind(parts[0])
	switch kind {
	case lifecycle.DecisionApprove, lifecycle.DecisionDeny:
		return kind, parts[1], nil
	default:
		return "", "", fmt.Errorf("unknown action %q in custom id", parts[0])
	}
}

// Verifier checks interaction-callback signatures against the application
// public key.
type Verifier struct {
	publicKey ed25519.PublicKey
}

func NewVerifier(publicKeyHex string) (*Verifier, error) {
	key, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return nil, fmt.Errorf("decode public key: %w", err)
	}
	if len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", ed25519.PublicKeySize, len(key))
	}
	return &Verifier{publicKey: ed25519.PublicKey(key)}, nil
}

// Verify reports whether signature covers timestamp followed by the raw
// request body.
func (v *Verifier) Verify(signatureHex, timestamp string, body []byte) bool {
	signature, err := hex.DecodeString(signatureHex)
	if err != nil || len(signature) != ed25519.SignatureSize {
		return false
	}

	message := make([]byte, 0, len(timestamp)+len(body))
	message = append(message, []byte(timestamp)...)
	message = append(message, body...)
	return ed25519.Verify(v.publicKey, message, signature)
}
