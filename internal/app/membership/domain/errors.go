package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoActiveSubscription   = errors.New("member has no subscription")
	ErrSubscriptionExists     = errors.New("member already has an authoritative subscription")
	ErrAlreadyCanceled        = errors.New("subscription already canceled")
	ErrMinimumTermActive      = errors.New("minimum term commitment still active")
	ErrCancellationScheduled  = errors.New("cancellation already scheduled for period end")
	ErrNothingToReactivate    = errors.New("no scheduled cancellation to reactivate")
	ErrConcurrentModification = errors.New("subscription modified concurrently, reload and retry")
	ErrDuplicateEvent         = errors.New("provider event already applied")
	ErrStaleEvent             = errors.New("provider event older than recorded state")
	ErrMalformedEvent         = errors.New("provider event is malformed")
	ErrInvalidTier            = errors.New("unknown tier")
	ErrInvalidInterval        = errors.New("unknown billing interval")
	ErrInvalidPeriod          = errors.New("period start must precede period end")
	ErrInvalidMemberID        = errors.New("member ID cannot be empty")
	ErrInvalidExternalID      = errors.New("external subscription ID cannot be empty")
)

// MinimumTermError carries the commitment end date so callers can tell the
// member when cancellation becomes possible. It matches ErrMinimumTermActive
// under errors.Is.
type MinimumTermError struct {
	Until time.Time
}

func (e *MinimumTermError) Error() string {
	return fmt.Sprintf("minimum term commitment active until %s", e.Until.Format(time.RFC3339))
}

func (e *MinimumTermError) Is(target error) bool {
	return target == ErrMinimumTermActive
}

// ProviderError wraps a failed call to the payment provider. Local state is
// guaranteed untouched when one is returned, so the caller may retry.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("payment provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
