package contracts

import (
	"context"

	"cloud.google.com/go/spanner"
	"github.com/complypoint/membership-billing/internal/app/membership/domain"
)

// SubscriptionRepository defines the interface for subscription persistence.
// Save only builds the mutation; writes go through Apply (blind insert for
// brand-new records) or CompareAndApply (version-checked update).
type SubscriptionRepository interface {
	Save(ctx context.Context, sub *domain.Subscription) (*spanner.Mutation, error)
	FindByMemberID(ctx context.Context, memberID string) (*domain.Subscription, error)
	FindByExternalID(ctx context.Context, externalSubscriptionID string) (*domain.Subscription, error)
	Apply(ctx context.Context, mutations ...*spanner.Mutation) error
	// CompareAndApply commits the mutations only if the stored record for
	// memberID still carries expectedVersion; otherwise it fails with
	// domain.ErrConcurrentModification and writes nothing.
	CompareAndApply(ctx context.Context, memberID string, expectedVersion int64, mutations ...*spanner.Mutation) error
}

// BillingEventRepository persists the append-only charge ledger. Insert is
// idempotent by (memberID, providerEventID): redelivered events fail with
// domain.ErrDuplicateEvent.
type BillingEventRepository interface {
	Insert(ctx context.Context, ev domain.BillingEvent) error
	ListByMember(ctx context.Context, memberID string) ([]domain.BillingEvent, error)
}

// AuditLogRepository records controller-initiated operations and their
// outcomes. Best-effort from the caller's perspective: audit failures are
// logged, never turned into operation failures.
type AuditLogRepository interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
}
