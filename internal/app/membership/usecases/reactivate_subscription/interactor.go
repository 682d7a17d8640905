package reactivate_subscription

import (
	"context"

	"github.com/complypoint/membership-billing/internal/app/membership/contracts"
	"github.com/complypoint/membership-billing/internal/app/membership/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Interactor handles the reactivate subscription use case: remove a pending
// cancel-at-period-end so the subscription renews again.
type Interactor struct {
	repo     contracts.SubscriptionRepository
	provider contracts.PaymentProvider
	auditLog contracts.AuditLogRepository
	clock    domain.Clock
	log      zerolog.Logger
}

// NewInteractor creates a new reactivate subscription interactor
func NewInteractor(repo contracts.SubscriptionRepository, provider contracts.PaymentProvider, auditLog contracts.AuditLogRepository, clock domain.Clock, log zerolog.Logger) *Interactor {
	return &Interactor{
		repo:     repo,
		provider: provider,
		auditLog: auditLog,
		clock:    clock,
		log:      log,
	}
}

// Execute removes the member's scheduled cancellation. Same ordering rule as
// cancellation: provider confirmation first, local write after, local state
// untouched on any failure.
func (i *Interactor) Execute(ctx context.Context, memberID string) (*domain.CancellationRevokedEvent, error) {
	sub, err := i.repo.FindByMemberID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	decision := domain.CanReactivate(sub)
	if !decision.Allowed {
		err := decision.Err()
		i.audit(ctx, memberID, "denied:"+string(decision.Reason), err.Error())
		return nil, err
	}

	if err := i.provider.RemoveScheduledCancellation(ctx, sub.ExternalSubscriptionID()); err != nil {
		i.log.Warn().Err(err).Str("member_id", memberID).Msg("provider rejected cancellation removal")
		i.audit(ctx, memberID, "provider_error", err.Error())
		return nil, err
	}

	event, err := sub.RevokeScheduledCancellation(i.clock)
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

	i.log.Info().Str("member_id", memberID).Msg("scheduled cancellation removed")
	i.audit(ctx, memberID, "ok", "scheduled cancellation removed")

	return event, nil
}

func (i *Interactor) audit(ctx context.Context, memberID, outcome, detail string) {
	entry := domain.AuditEntry{
		ID:          uuid.New().String(),
		MemberID:    memberID,
		Action:      domain.AuditReactivate,
		Outcome:     outcome,
		Detail:      detail,
		RequestedAt: i.clock.Now(),
	}
	if err := i.auditLog.Record(ctx, entry); err != nil {
		i.log.Error().Err(err).Str("member_id", memberID).Msg("failed to record audit entry")
	}
}
