package domain

import (
	"time"
)

// SubscriptionStatus represents the lifecycle status of a subscription
type SubscriptionStatus string

const (
	StatusTrialing   SubscriptionStatus = "trialing"
	StatusActive     SubscriptionStatus = "active"
	StatusPastDue    SubscriptionStatus = "past_due"
	StatusCanceled   SubscriptionStatus = "canceled"
	StatusIncomplete SubscriptionStatus = "incomplete"
)

// BillingInterval is the renewal cadence of a subscription
type BillingInterval string

const (
	IntervalMonthly BillingInterval = "monthly"
	IntervalAnnual  BillingInterval = "annual"
)

// Subscription is the aggregate root for a member's billing lifecycle. At
// most one non-canceled record is authoritative per member; a canceled
// record is terminal and only a new checkout creates a successor.
type Subscription struct {
	id                     string
	memberID               string
	tier                   Tier
	status                 SubscriptionStatus
	billingInterval        BillingInterval
	currentPeriodStart     time.Time
	currentPeriodEnd       time.Time
	cancelAtPeriodEnd      bool
	minimumTermEnd         *time.Time
	minimumTermMonths      int64
	externalSubscriptionID string
	providerStateAt        time.Time // provider timestamp of the last applied event
	version                int64     // optimistic concurrency token
}

// NewSubscription creates the aggregate for a member who just completed
// checkout. The record starts active; the provider's first webhook will
// correct status and period if checkout settled differently.
func NewSubscription(id, memberID string, tier Tier, interval BillingInterval, periodStart, periodEnd time.Time, minimumTermMonths int64, externalSubscriptionID string, clock Clock) (*Subscription, *SubscriptionActivatedEvent, error) {
	if memberID == "" {
		return nil, nil, ErrInvalidMemberID
	}
	if !tier.Valid() {
		return nil, nil, ErrInvalidTier
	}
	if interval != IntervalMonthly && interval != IntervalAnnual {
		return nil, nil, ErrInvalidInterval
	}
	if !periodStart.Before(periodEnd) {
		return nil, nil, ErrInvalidPeriod
	}
	if externalSubscriptionID == "" {
		return nil, nil, ErrInvalidExternalID
	}

	now := clock.Now()
	var termEnd *time.Time
	if minimumTermMonths > 0 {
		t := periodStart.AddDate(0, int(minimumTermMonths), 0)
		termEnd = &t
	}

	sub := &Subscription{
		id:                     id,
		memberID:               memberID,
		tier:                   tier,
		status:                 StatusActive,
		billingInterval:        interval,
		currentPeriodStart:     periodStart,
		currentPeriodEnd:       periodEnd,
		minimumTermEnd:         termEnd,
		minimumTermMonths:      minimumTermMonths,
		externalSubscriptionID: externalSubscriptionID,
		providerStateAt:        now,
	}

	event := &SubscriptionActivatedEvent{
		SubscriptionID:         id,
		MemberID:               memberID,
		Tier:                   tier,
		BillingInterval:        interval,
		MinimumTermEnd:         termEnd,
		ExternalSubscriptionID: externalSubscriptionID,
		ActivatedAt:            now,
	}

	return sub, event, nil
}

// ScheduleCancellation marks the subscription to terminate at the end of the
// current paid period instead of renewing. Callers must have the provider's
// confirmation before invoking this; the aggregate only re-checks the local
// preconditions.
func (s *Subscription) ScheduleCancellation(clock Clock) (*CancellationScheduledEvent, error) {
	now := clock.Now()
	if d := CanCancel(s, now); !d.Allowed {
		return nil, d.Err()
	}

	s.cancelAtPeriodEnd = true

	return &CancellationScheduledEvent{
		SubscriptionID: s.id,
		MemberID:       s.memberID,
		EffectiveAt:    s.currentPeriodEnd,
		ScheduledAt:    now,
	}, nil
}

// RevokeScheduledCancellation removes a pending cancel-at-period-end so the
// subscription resumes auto-renewal. Only legal while the period has not yet
// elapsed and the provider has not terminated the subscription.
func (s *Subscription) RevokeScheduledCancellation(clock Clock) (*CancellationRevokedEvent, error) {
	if d := CanReactivate(s); !d.Allowed {
		return nil, d.Err()
	}

	s.cancelAtPeriodEnd = false

	return &CancellationRevokedEvent{
		SubscriptionID: s.id,
		MemberID:       s.memberID,
		RevokedAt:      clock.Now(),
	}, nil
}

// ApplyProviderEvent reconciles provider-asserted truth into the record.
// Events must be strictly newer than the recorded watermark; anything else
// is refused with ErrStaleEvent so that last-writer-wins follows provider
// recency, not arrival order. A canceled record refuses every event.
func (s *Subscription) ApplyProviderEvent(ev ProviderEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	if s.status == StatusCanceled {
		return ErrAlreadyCanceled
	}
	if !ev.OccurredAt.After(s.providerStateAt) {
		return ErrStaleEvent
	}

	switch ev.Type {
	case ProviderEventRenewed:
		s.currentPeriodStart = ev.PeriodStart
		s.currentPeriodEnd = ev.PeriodEnd
		s.status = StatusActive
	case ProviderEventPaymentFailed:
		s.status = StatusPastDue
	case ProviderEventCanceled:
		s.status = StatusCanceled
		s.cancelAtPeriodEnd = false
	}

	s.providerStateAt = ev.OccurredAt
	return nil
}

// ReconstructFromPersistence recreates a subscription from the database
func ReconstructFromPersistence(id, memberID string, tier Tier, status SubscriptionStatus, interval BillingInterval, periodStart, periodEnd time.Time, cancelAtPeriodEnd bool, minimumTermEnd *time.Time, minimumTermMonths int64, externalSubscriptionID string, providerStateAt time.Time, version int64) *Subscription {
	return &Subscription{
		id:                     id,
		memberID:               memberID,
		tier:                   tier,
		status:                 status,
		billingInterval:        interval,
		currentPeriodStart:     periodStart,
		currentPeriodEnd:       periodEnd,
		cancelAtPeriodEnd:      cancelAtPeriodEnd,
		minimumTermEnd:         minimumTermEnd,
		minimumTermMonths:      minimumTermMonths,
		externalSubscriptionID: externalSubscriptionID,
		providerStateAt:        providerStateAt,
		version:                version,
	}
}

// Getters (no setters!)
func (s *Subscription) ID() string {
	return s.id
}

func (s *Subscription) MemberID() string {
	return s.memberID
}

func (s *Subscription) Tier() Tier {
	return s.tier
}

func (s *Subscription) Status() SubscriptionStatus {
	return s.status
}

func (s *Subscription) BillingInterval() BillingInterval {
	return s.billingInterval
}

func (s *Subscription) CurrentPeriodStart() time.Time {
	return s.currentPeriodStart
}

func (s *Subscription) CurrentPeriodEnd() time.Time {
	return s.currentPeriodEnd
}

func (s *Subscription) CancelAtPeriodEnd() bool {
	return s.cancelAtPeriodEnd
}

func (s *Subscription) MinimumTermEnd() *time.Time {
	return s.minimumTermEnd
}

func (s *Subscription) MinimumTermMonths() int64 {
	return s.minimumTermMonths
}

func (s *Subscription) ExternalSubscriptionID() string {
	return s.externalSubscriptionID
}

func (s *Subscription) ProviderStateAt() time.Time {
	return s.providerStateAt
}

func (s *Subscription) Version() int64 {
	return s.version
}
