package domain

import "time"

// SubscriptionActivatedEvent is emitted when a completed checkout creates a
// subscription record.
type SubscriptionActivatedEvent struct {
	SubscriptionID         string
	MemberID               string
	Tier                   Tier
	BillingInterval        BillingInterval
	MinimumTermEnd         *time.Time
	ExternalSubscriptionID string
	ActivatedAt            time.Time
}

// CancellationScheduledEvent is emitted when a cancellation is scheduled for
// the end of the current paid period.
type CancellationScheduledEvent struct {
	SubscriptionID string
	MemberID       string
	EffectiveAt    time.Time // end of the paid period
	ScheduledAt    time.Time
}

// CancellationRevokedEvent is emitted when a scheduled cancellation is
// removed and the subscription resumes auto-renewal.
type CancellationRevokedEvent struct {
	SubscriptionID string
	MemberID       string
	RevokedAt      time.Time
}

// ProviderEventType classifies an inbound payment-provider webhook event.
type ProviderEventType string

const (
	ProviderEventRenewed       ProviderEventType = "renewed"
	ProviderEventPaymentFailed ProviderEventType = "payment_failed"
	ProviderEventCanceled      ProviderEventType = "canceled"
)

// ProviderEvent is the provider-asserted truth delivered over the webhook
// channel, at least once and possibly out of order. OccurredAt is the
// provider's own timestamp and drives recency-based conflict resolution.
type ProviderEvent struct {
	ID                     string
	Type                   ProviderEventType
	ExternalSubscriptionID string
	OccurredAt             time.Time
	PeriodStart            time.Time // set for renewed
	PeriodEnd              time.Time // set for renewed
	AmountCents            int64
	Currency               string
	Description            string
	ReceiptURL             string
}

// Validate checks the fields every event must carry.
func (e ProviderEvent) Validate() error {
	if e.ID == "" || e.ExternalSubscriptionID == "" || e.OccurredAt.IsZero() {
		return ErrMalformedEvent
	}
	switch e.Type {
	case ProviderEventRenewed:
		if !e.PeriodStart.Before(e.PeriodEnd) {
			return ErrMalformedEvent
		}
	case ProviderEventPaymentFailed, ProviderEventCanceled:
	default:
		return ErrMalformedEvent
	}
	return nil
}

// BillingOutcome is the settled result of a charge or credit.
type BillingOutcome string

const (
	OutcomePaid    BillingOutcome = "paid"
	OutcomeFailed  BillingOutcome = "failed"
	OutcomePending BillingOutcome = "pending"
)

// BillingEvent is an immutable ledger entry, created only by webhook
// ingestion. The (MemberID, ProviderEventID) pair deduplicates redelivery.
type BillingEvent struct {
	MemberID        string
	ProviderEventID string
	AmountCents     int64
	Currency        string
	Outcome         BillingOutcome
	Description     string
	ReceiptURL      string
	OccurredAt      time.Time
}

// AuditAction names a controller-initiated operation in the audit trail.
type AuditAction string

const (
	AuditActivate   AuditAction = "activate"
	AuditCancel     AuditAction = "cancel"
	AuditReactivate AuditAction = "reactivate"
	AuditReconcile  AuditAction = "reconcile"
)

// AuditEntry records who requested which billing operation and how it ended,
// enough to reconstruct why a state transition occurred.
type AuditEntry struct {
	ID          string
	MemberID    string
	Action      AuditAction
	Outcome     string // "ok" or the denial/error name
	Detail      string
	RequestedAt time.Time
}
