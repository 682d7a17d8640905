package activate_subscription

import (
	"context"
	"errors"
	"time"

	"github.com/complypoint/membership-billing/internal/app/membership/contracts"
	"github.com/complypoint/membership-billing/internal/app/membership/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Request contains the input for activating a subscription after the member
// completes checkout with the payment provider.
type Request struct {
	MemberID               string
	Tier                   domain.Tier
	BillingInterval        domain.BillingInterval
	PeriodStart            time.Time
	PeriodEnd              time.Time
	MinimumTermMonths      int64
	ExternalSubscriptionID string
}

// Interactor handles the activate subscription use case
type Interactor struct {
	repo     contracts.SubscriptionRepository
	auditLog contracts.AuditLogRepository
	clock    domain.Clock
	log      zerolog.Logger
}

// NewInteractor creates a new activate subscription interactor
func NewInteractor(repo contracts.SubscriptionRepository, auditLog contracts.AuditLogRepository, clock domain.Clock, log zerolog.Logger) *Interactor {
	return &Interactor{
		repo:     repo,
		auditLog: auditLog,
		clock:    clock,
		log:      log,
	}
}

// Execute creates the member's subscription record. A member with a live
// record cannot get a second one: exactly one record is authoritative at any
// instant, and only a terminal (canceled) predecessor may be replaced.
func (i *Interactor) Execute(ctx context.Context, req Request) (*domain.Subscription, *domain.SubscriptionActivatedEvent, error) {
	existing, err := i.repo.FindByMemberID(ctx, req.MemberID)
	if err != nil && !errors.Is(err, domain.ErrNoActiveSubscription) {
		return nil, nil, err
	}
	if existing != nil && existing.Status() != domain.StatusCanceled {
		return nil, nil, domain.ErrSubscriptionExists
	}

	id := uuid.New().String()
	sub, event, err := domain.NewSubscription(
		id,
		req.MemberID,
		req.Tier,
		req.BillingInterval,
		req.PeriodStart,
		req.PeriodEnd,
		req.MinimumTermMonths,
		req.ExternalSubscriptionID,
		i.clock,
	)
	if err != nil {
		return nil, nil, err
	}

	mutation, err := i.repo.Save(ctx, sub)
	if err != nil {
		return nil, nil, err
	}

	if err := i.repo.Apply(ctx, mutation); err != nil {
		return nil, nil, err
	}

	i.log.Info().
		Str("member_id", req.MemberID).
		Str("tier", string(req.Tier)).
		Str("interval", string(req.BillingInterval)).
		Msg("subscription activated")
	i.audit(ctx, req.MemberID, "ok", "subscription "+id+" activated on tier "+string(req.Tier))

	return sub, event, nil
}

func (i *Interactor) audit(ctx context.Context, memberID, outcome, detail string) {
	entry := domain.AuditEntry{
		ID:          uuid.New().String(),
		MemberID:    memberID,
		Action:      domain.AuditActivate,
		Outcome:     outcome,
		Detail:      detail,
		RequestedAt: i.clock.Now(),
	}
	if err := i.auditLog.Record(ctx, entry); err != nil {
		i.log.Error().Err(err).Str("member_id", memberID).Msg("failed to record audit entry")
	}
}
