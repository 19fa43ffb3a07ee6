// internal/lifecycle/controller.go
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	gwerrors "application-gateway/internal/common/errors"
	"application-gateway/internal/common/logger"
	"application-gateway/internal/common/metrics"

	"github.com/google/uuid"
)

// Policy carries the review-policy knobs injected at construction time.
type Policy struct {
	Cooldown       time.Duration
	ApproveRoleIDs []string
}

// Controller owns the application lifecycle state machine:
// NONE -> PENDING -> {APPROVED, DENIED} -> NONE. Terminal states collapse
// back to NONE by removal from the store; they are not retained.
//
// Operations are atomic per identity. The per-identity lock is held only
// around ledger/store access, never across calls to the guild gateway:
// Decide re-validates presence before mutating so interleavings resolve to
// an idempotent NotFound rejection rather than a double execution.
type Controller struct {
	scorer  *Scorer
	ledger  CooldownLedger
	store   ApplicationStore
	gateway GuildGateway
	policy  Policy
	logger  logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewController(scorer *Scorer, ledger CooldownLedger, store ApplicationStore, gateway GuildGateway, policy Policy, log logger.Logger) *Controller {
	return &Controller{
		scorer:  scorer,
		ledger:  ledger,
		store:   store,
		gateway: gateway,
		policy:  policy,
		logger:  log.WithFields(map[string]interface{}{"component": "lifecycle"}),
		locks:   make(map[string]*sync.Mutex),
	}
}

// identityLock returns the mutex guarding one identity's state. Locks are
// never released from the map; the identity space is small and bounded by
// real applicants.
func (c *Controller) identityLock(identity string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	lock, ok := c.locks[identity]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[identity] = lock
	}
	return lock
}

// Submit validates a new submission, records it as the single pending
// application for the identity, and delivers the review request. A
// delivery failure leaves the application pending; a retried submission
// overwrites it.
func (c *Controller) Submit(ctx context.Context, sub Submission, now time.Time) error {
	if sub.Identity == "" || sub.DisplayName == "" || (len(sub.Profile) == 0 && len(sub.Assessment) == 0) {
		metrics.SubmissionsReceived.WithLabelValues("invalid").Inc()
		return gwerrors.NewValidationError("identity, display name and answers are required")
	}

	lock := c.identityLock(sub.Identity)
	lock.Lock()

	blocked, remaining, err := c.ledger.IsBlocked(ctx, sub.Identity, now)
	if err != nil {
		lock.Unlock()
		return err
	}
	if blocked {
		lock.Unlock()
		metrics.SubmissionsReceived.WithLabelValues("blocked").Inc()
		c.logger.Info("submission rejected, applicant on cooldown", map[string]interface{}{
			"identity":  sub.Identity,
			"remaining": remaining.String(),
		})
		return gwerrors.NewBlockedError(remaining)
	}

	report := c.scoreAssessment(sub.Assessment)
	submissionID := uuid.NewString()

	app := Application{
		Identity:     sub.Identity,
		SubmissionID: submissionID,
		DisplayName:  sub.DisplayName,
		Profile:      sub.Profile,
		Assessment:   sub.Assessment,
		AccessToken:  sub.AccessToken,
		SubmittedAt:  now,
	}
	if err := c.store.Put(ctx, app); err != nil {
		lock.Unlock()
		return err
	}
	lock.Unlock()

	err = c.gateway.SendReviewRequest(ctx, ReviewRequest{
		Identity:     sub.Identity,
		SubmissionID: submissionID,
		DisplayName:  sub.DisplayName,
		Profile:      sub.Profile,
		Report:       report,
		SubmittedAt:  now,
	})
	if err != nil {
		metrics.SubmissionsReceived.WithLabelValues("delivery_failed").Inc()
		c.logger.WithError(err).Error("failed to deliver review request", map[string]interface{}{
			"identity": sub.Identity,
		})
		return err
	}

	metrics.SubmissionsReceived.WithLabelValues("accepted").Inc()
	c.logger.Info("application submitted", map[string]interface{}{
		"identity":     sub.Identity,
		"submissionId": submissionID,
		"displayName":  sub.DisplayName,
		"scored":       len(report),
	})
	return nil
}

// Decide applies a review action to the pending application for identity.
// A second decision for an already-resolved identity fails with NotFound
// and triggers no external calls.
func (c *Controller) Decide(ctx context.Context, kind DecisionKind, identity string, now time.Time) (DecideResult, error) {
	switch kind {
	case DecisionApprove, DecisionDeny:
	default:
		return DecideResult{}, gwerrors.NewValidationError(fmt.Sprintf("unknown decision kind %q", kind))
	}

	result, err := c.decide(ctx, kind, identity, now)
	outcome := "success"
	if err != nil {
		outcome = string(gwerrors.CodeOf(err))
	}
	metrics.DecisionsProcessed.WithLabelValues(string(kind), outcome).Inc()
	return result, err
}

func (c *Controller) decide(ctx context.Context, kind DecisionKind, identity string, now time.Time) (DecideResult, error) {
	lock := c.identityLock(identity)

	if kind == DecisionDeny {
		lock.Lock()
		_, ok, err := c.store.Get(ctx, identity)
		if err != nil {
			lock.Unlock()
			return DecideResult{}, err
		}
		if !ok {
			lock.Unlock()
			return DecideResult{}, gwerrors.NewNotFoundError(identity)
		}
		if err := c.ledger.Block(ctx, identity, now, c.policy.Cooldown); err != nil {
			lock.Unlock()
			return DecideResult{}, err
		}
		if err := c.store.Remove(ctx, identity); err != nil {
			lock.Unlock()
			return DecideResult{}, err
		}
		lock.Unlock()

		notified := c.notify(ctx, identity, fmt.Sprintf(
			"Your staff application has been denied. You may apply again in %d days.",
			int(c.policy.Cooldown.Hours()/24),
		))
		c.logger.Info("application denied", map[string]interface{}{
			"identity": identity,
			"cooldown": c.policy.Cooldown.String(),
			"notified": notified,
		})
		return DecideResult{Identity: identity, Kind: kind, Notified: notified}, nil
	}

	// Approve path. Presence is checked under the lock; the fallible
	// external calls run outside it. The record is removed only after
	// join and role grant both succeed, so a failed approval can be
	// retried from the same review message.
	lock.Lock()
	app, ok, err := c.store.Get(ctx, identity)
	if err != nil {
		lock.Unlock()
		return DecideResult{}, err
	}
	lock.Unlock()
	if !ok {
		return DecideResult{}, gwerrors.NewNotFoundError(identity)
	}

	if err := c.gateway.ForceJoinGuild(ctx, identity, app.AccessToken); err != nil {
		c.logger.WithError(err).Error("guild join failed", map[string]interface{}{
			"identity": identity,
		})
		return DecideResult{}, gwerrors.NewExternalActionError(err)
	}
	if err := c.gateway.GrantRoles(ctx, identity, c.policy.ApproveRoleIDs); err != nil {
		c.logger.WithError(err).Error("role grant failed", map[string]interface{}{
			"identity": identity,
			"roles":    c.policy.ApproveRoleIDs,
		})
		return DecideResult{}, gwerrors.NewExternalActionError(err)
	}

	// Re-validate presence before removal: if a concurrent decision
	// resolved this identity while the external calls were in flight,
	// this click loses and reports the stale-action rejection.
	lock.Lock()
	_, ok, err = c.store.Get(ctx, identity)
	if err != nil {
		lock.Unlock()
		return DecideResult{}, err
	}
	if !ok {
		lock.Unlock()
		return DecideResult{}, gwerrors.NewNotFoundError(identity)
	}
	if err := c.store.Remove(ctx, identity); err != nil {
		lock.Unlock()
		return DecideResult{}, err
	}
	lock.Unlock()

	notified := c.notify(ctx, identity,
		"Congratulations! Your staff application has been approved and your roles have been assigned.",
	)

	c.logger.Info("application approved", map[string]interface{}{
		"identity": identity,
		"roles":    len(c.policy.ApproveRoleIDs),
		"notified": notified,
	})
	return DecideResult{Identity: identity, Kind: kind, Notified: notified}, nil
}

// notify sends a best-effort direct message. Failures are logged and
// reported on the result payload, never propagated.
func (c *Controller) notify(ctx context.Context, identity, content string) bool {
	if err := c.gateway.SendDirectMessage(ctx, identity, content); err != nil {
		c.logger.WithError(err).Warn("direct message not delivered", map[string]interface{}{
			"identity": identity,
		})
		return false
	}
	return true
}

func (c *Controller) scoreAssessment(assessment map[string]string) []QuestionScore {
	raw := make(map[string]interface{}, len(assessment))
	for k, v := range assessment {
		raw[k] = v
	}
	return c.scorer.Score(raw)
}
