// internal/lifecycle/models.go
package lifecycle

import (
	"context"
	"time"
)

// Application is one pending submission. At most one exists per identity
// at any time; a new submission replaces any prior pending one.
type Application struct {
	Identity     string            `json:"identity"`
	SubmissionID string            `json:"submission_id"`
	DisplayName  string            `json:"display_name"`
	Profile      map[string]string `json:"profile"`
	Assessment   map[string]string `json:"assessment"`
	AccessToken  string            `json:"access_token"`
	SubmittedAt  time.Time         `json:"submitted_at"`
}

// Submission is the validated input to Submit. Profile and assessment
// answers arrive already split; the key-prefix convention is applied once,
// at the HTTP boundary.
type Submission struct {
	Identity    string
	DisplayName string
	Profile     map[string]string
	Assessment  map[string]string
	AccessToken string
}

// QuestionScore is one scored assessment answer.
type QuestionScore struct {
	Key              string `json:"key"`
	RawAnswer        string `json:"raw_answer"`
	NormalizedAnswer string `json:"normalized_answer"`
	Correct          bool   `json:"correct"`
}

// DecisionKind identifies a review action.
type DecisionKind string

const (
	DecisionApprove DecisionKind = "approve"
	DecisionDeny    DecisionKind = "deny"
)

// DecideResult is the reviewer-facing confirmation payload. Notified is
// false when the best-effort direct message could not be delivered.
type DecideResult struct {
	Identity string       `json:"identity"`
	Kind     DecisionKind `json:"kind"`
	Notified bool         `json:"notified"`
}

// ReviewRequest carries everything the reviewer-facing message needs.
type ReviewRequest struct {
	Identity     string
	SubmissionID string
	DisplayName  string
	Profile      map[string]string
	Report       []QuestionScore
	SubmittedAt  time.Time
}

// CooldownLedger tracks identities blocked from re-applying. IsBlocked
// lazily evicts expired entries as a side effect of the read.
type CooldownLedger interface {
	IsBlocked(ctx context.Context, identity string, now time.Time) (bool, time.Duration, error)
	Block(ctx context.Context, identity string, now time.Time, duration time.Duration) error
}

// ApplicationStore holds pending applications keyed by identity. Put is an
// unconditional upsert; Remove is idempotent.
type ApplicationStore interface {
	Put(ctx context.Context, app Application) error
	Get(ctx context.Context, identity string) (Application, bool, error)
	Remove(ctx context.Context, identity string) error
}

// GuildGateway is the external chat-platform collaborator. Implementations
// must resolve rather than hang; each call owns its own timeout behavior.
type GuildGateway interface {
	SendReviewRequest(ctx context.Context, req ReviewRequest) error
	ForceJoinGuild(ctx context.Context, identity, accessToken string) error
	GrantRoles(ctx context.Context, identity string, roleIDs []string) error
	SendDirectMessage(ctx context.Context, identity, content string) error
}
