package cancel_subscription

import (
	"context"

	"github.com/complypoint/membership-billing/internal/app/membership/contracts"
	"github.com/complypoint/membership-billing/internal/app/membership/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Interactor handles the cancel subscription use case: schedule termination
// at the end of the current paid period, provider-confirmed before any local
// write.
type Interactor struct {
	repo     contracts.SubscriptionRepository
	provider contracts.PaymentProvider
	auditLog contracts.AuditLogRepository
	clock    domain.Clock
	log      zerolog.Logger
}

// NewInteractor creates a new cancel subscription interactor
func NewInteractor(repo contracts.SubscriptionRepository, provider contracts.PaymentProvider, auditLog contracts.AuditLogRepository, clock domain.Clock, log zerolog.Logger) *Interactor {
	return &Interactor{
		repo:     repo,
		provider: provider,
		auditLog: auditLog,
		clock:    clock,
		log:      log,
	}
}

// Execute schedules cancellation for the member's subscription.
//
// Denials are decided locally and make no provider call: the minimum-term
// commitment must hold even if the provider API would accept the request.
// The provider is confirmed before the local record changes, so a failure
// anywhere leaves local state exactly as loaded.
func (i *Interactor) Execute(ctx context.Context, memberID string) (*domain.CancellationScheduledEvent, error) {
	sub, err := i.repo.FindByMemberID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	decision := domain.CanCancel(sub, i.clock.Now())
	if !decision.Allowed {
		err := decision.Err()
		i.audit(ctx, memberID, "denied:"+string(decision.Reason), err.Error())
		return nil, err
	}

	if err := i.provider.ScheduleCancellation(ctx, sub.ExternalSubscriptionID()); err != nil {
		i.log.Warn().Err(err).Str("member_id", memberID).Msg("provider rejected cancellation scheduling")
		i.audit(ctx, memberID, "provider_error", err.Error())
		return nil, err
	}

	event, err := sub.ScheduleCancellation(i.clock)
	if err != nil {
		return nil, err
	}

	mutation, err := i.repo.Save(ctx, sub)
	if err != nil {
		return nil, err
	}

	if err := i.repo.CompareAndApply(ctx, memberID, sub.Version(), mutation); err != nil {
		i.audit(ctx, memberID, "conflict", err.Error())
		return nil, err
	}

	i.log.Info().
		Str("member_id", memberID).
		Time("effective_at", event.EffectiveAt).
		Msg("cancellation scheduled at period end")
	i.audit(ctx, memberID, "ok", "cancel at period end scheduled")

	return event, nil
}

func (i *Interactor) audit(ctx context.Context, memberID, outcome, detail string) {
	entry := domain.AuditEntry{
		ID:          uuid.New().String(),
		MemberID:    memberID,
		Action:      domain.AuditCancel,
		Outcome:     outcome,
		Detail:      detail,
		RequestedAt: i.clock.Now(),
	}
	if err := i.auditLog.Record(ctx, entry); err != nil {
		i.log.Error().Err(err).Str("member_id", memberID).Msg("failed to record audit entry")
	}
}
