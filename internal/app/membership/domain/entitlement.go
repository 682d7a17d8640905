package domain

import "time"

// DenialReason is the machine-readable reason a billing operation was
// refused. It is part of the contract: the UI must tell the member why, not
// just that the operation failed.
type DenialReason string

const (
	DenyAlreadyCanceled     DenialReason = "already_canceled"
	DenyMinimumTermActive   DenialReason = "minimum_term_active"
	DenyAlreadyScheduled    DenialReason = "already_scheduled"
	DenyNothingToReactivate DenialReason = "nothing_to_reactivate"
)

// Decision is the outcome of a precondition check on a billing operation.
type Decision struct {
	Allowed bool
	Reason  DenialReason
	// TermEnd is set when Reason is DenyMinimumTermActive.
	TermEnd time.Time
}

// Err maps a denial to its typed error. Calling Err on an allowed decision
// returns nil.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case DenyAlreadyCanceled:
		return ErrAlreadyCanceled
	case DenyMinimumTermActive:
		return &MinimumTermError{Until: d.TermEnd}
	case DenyAlreadyScheduled:
		return ErrCancellationScheduled
	case DenyNothingToReactivate:
		return ErrNothingToReactivate
	default:
		return nil
	}
}

func allowed() Decision {
	return Decision{Allowed: true}
}

func denied(reason DenialReason) Decision {
	return Decision{Reason: reason}
}

// ResolveContentAccess answers whether a member holding sub (nil for no
// subscription at all) may see content gated at requirement, as of now.
//
// A past_due record still grants access: a failed charge opens a grace
// window and only provider-driven final cancellation revokes entitlement. A
// canceled record that had been scheduled to terminate at period end keeps
// the access the member already paid for until that period elapses.
func ResolveContentAccess(sub *Subscription, requirement AccessRequirement, now time.Time) bool {
	if requirement == RequireAll {
		return true
	}
	if sub == nil {
		return false
	}

	switch sub.Status() {
	case StatusActive, StatusTrialing, StatusPastDue:
		return CanAccessTier(sub.Tier(), requirement)
	case StatusCanceled:
		if now.Before(sub.CurrentPeriodEnd()) {
			return CanAccessTier(sub.Tier(), requirement)
		}
		return false
	default: // incomplete: checkout never settled, nothing was paid for
		return false
	}
}

// CanCancel checks the local preconditions for scheduling a cancellation.
// Denials are authoritative: the controller makes no provider call for a
// denied request, which is what keeps the minimum-term commitment
// enforceable regardless of what the provider API would accept.
func CanCancel(sub *Subscription, now time.Time) Decision {
	if sub.Status() == StatusCanceled {
		return denied(DenyAlreadyCanceled)
	}
	if end := sub.MinimumTermEnd(); end != nil && now.Before(*end) {
		d := denied(DenyMinimumTermActive)
		d.TermEnd = *end
		return d
	}
	if sub.CancelAtPeriodEnd() {
		return denied(DenyAlreadyScheduled)
	}
	return allowed()
}

// CanReactivate checks whether a scheduled cancellation can be revoked:
// only while the record is not terminal and a cancellation is pending.
func CanReactivate(sub *Subscription) Decision {
	if sub.Status() != StatusCanceled && sub.CancelAtPeriodEnd() {
		return allowed()
	}
	return denied(DenyNothingToReactivate)
}
