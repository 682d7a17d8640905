package contracts

import "context"

// PaymentProvider defines the interface for the external payment provider.
// Both operations are idempotent on the provider side: repeating a schedule
// or removal against an already-settled state is a no-op there.
type PaymentProvider interface {
	ScheduleCancellation(ctx context.Context, externalSubscriptionID string) error
	RemoveScheduledCancellation(ctx context.Context, externalSubscriptionID string) error
}
