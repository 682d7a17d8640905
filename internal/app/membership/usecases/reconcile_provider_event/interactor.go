package reconcile_provider_event

import (
	"context"
	"errors"

	"github.com/complypoint/membership-billing/internal/app/membership/contracts"
	"github.com/complypoint/membership-billing/internal/app/membership/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Interactor applies provider webhook events to the local record. Delivery
// is at least once and may be out of order, so everything here is keyed on
// the provider's own event id and timestamp: duplicates and stale events are
// logged and dropped, never errors. Only infrastructure failures return an
// error, which makes the provider redeliver.
type Interactor struct {
	repo     contracts.SubscriptionRepository
	events   contracts.BillingEventRepository
	auditLog contracts.AuditLogRepository
	clock    domain.Clock
	log      zerolog.Logger
}

// NewInteractor creates a new provider event reconciliation interactor
func NewInteractor(repo contracts.SubscriptionRepository, events contracts.BillingEventRepository, auditLog contracts.AuditLogRepository, clock domain.Clock, log zerolog.Logger) *Interactor {
	return &Interactor{
		repo:     repo,
		events:   events,
		auditLog: auditLog,
		clock:    clock,
		log:      log,
	}
}

// Execute reconciles one provider event.
//
// State is applied before the ledger row is written. If the process dies
// between the two, redelivery finds the state change stale (dropped) and
// still inserts the missing ledger row; in the opposite order a redelivered
// event would hit the duplicate row and never repair the state.
func (i *Interactor) Execute(ctx context.Context, ev domain.ProviderEvent) error {
	logger := i.log.With().
		Str("event_id", ev.ID).
		Str("event_type", string(ev.Type)).
		Str("external_subscription_id", ev.ExternalSubscriptionID).
		Logger()

	if err := ev.Validate(); err != nil {
		logger.Warn().Err(err).Msg("dropping malformed provider event")
		return nil
	}

	sub, err := i.repo.FindByExternalID(ctx, ev.ExternalSubscriptionID)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveSubscription) {
			logger.Warn().Msg("dropping provider event for unknown subscription")
			return nil
		}
		return err
	}

	switch err := sub.ApplyProviderEvent(ev); {
	case err == nil:
		mutation, err := i.repo.Save(ctx, sub)
		if err != nil {
			return err
		}
		if err := i.repo.CompareAndApply(ctx, sub.MemberID(), sub.Version(), mutation); err != nil {
			return err
		}
		i.audit(ctx, sub.MemberID(), "ok", "applied provider event "+ev.ID+" ("+string(ev.Type)+")")
		logger.Info().Str("status", string(sub.Status())).Msg("provider event applied")
	case errors.Is(err, domain.ErrStaleEvent), errors.Is(err, domain.ErrAlreadyCanceled):
		logger.Info().Err(err).Msg("provider event lost recency check, state unchanged")
	default:
		logger.Warn().Err(err).Msg("dropping provider event")
		return nil
	}

	if outcome, ok := ledgerOutcome(ev.Type); ok {
		entry := domain.BillingEvent{
			MemberID:        sub.MemberID(),
			ProviderEventID: ev.ID,
			AmountCents:     ev.AmountCents,
			Currency:        ev.Currency,
			Outcome:         outcome,
			Description:     ev.Description,
			ReceiptURL:      ev.ReceiptURL,
			OccurredAt:      ev.OccurredAt,
		}
		if err := i.events.Insert(ctx, entry); err != nil {
			if errors.Is(err, domain.ErrDuplicateEvent) {
				logger.Debug().Msg("ledger entry already recorded")
				return nil
			}
			return err
		}
	}

	return nil
}

// ledgerOutcome maps a provider event to a charge-ledger outcome. A final
// cancellation carries no charge and produces no ledger entry.
func ledgerOutcome(t domain.ProviderEventType) (domain.BillingOutcome, bool) {
	switch t {
	case domain.ProviderEventRenewed:
		return domain.OutcomePaid, true
	case domain.ProviderEventPaymentFailed:
		return domain.OutcomeFailed, true
	default:
		return "", false
	}
}

func (i *Interactor) audit(ctx context.Context, memberID, outcome, detail string) {
	entry := domain.AuditEntry{
		ID:          uuid.New().String(),
		MemberID:    memberID,
		Action:      domain.AuditReconcile,
		Outcome:     outcome,
		Detail:      detail,
		RequestedAt: i.clock.Now(),
	}
	if err := i.auditLog.Record(ctx, entry); err != nil {
		i.log.Error().Err(err).Str("member_id", memberID).Msg("failed to record audit entry")
	}
}
