package repo

import (
	"context"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/complypoint/membership-billing/internal/app/membership/contracts"
	"github.com/complypoint/membership-billing/internal/app/membership/domain"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
)

var _ contracts.SubscriptionRepository = (*SubscriptionRepo)(nil)

var subscriptionColumns = []string{
	"member_id",
	"id",
	"tier",
	"status",
	"billing_interval",
	"current_period_start",
	"current_period_end",
	"cancel_at_period_end",
	"minimum_term_end",
	"minimum_term_months",
	"external_subscription_id",
	"provider_state_at",
	"version",
}

// SubscriptionRepo implements the subscription repository interface using Cloud Spanner
type SubscriptionRepo struct {
	client *spanner.Client
}

// NewSubscriptionRepo creates a new subscription repository
func NewSubscriptionRepo(client *spanner.Client) *SubscriptionRepo {
	return &SubscriptionRepo{client: client}
}

// Save returns a mutation for persisting a subscription. The written version
// is the loaded version plus one; pair it with CompareAndApply so concurrent
// writers fail instead of silently overwriting each other.
func (r *SubscriptionRepo) Save(ctx context.Context, sub *domain.Subscription) (*spanner.Mutation, error) {
	var termEnd spanner.NullTime
	if end := sub.MinimumTermEnd(); end != nil {
		termEnd = spanner.NullTime{Time: *end, Valid: true}
	}

	mutation := spanner.InsertOrUpdate("subscriptions",
		subscriptionColumns,
		[]interface{}{
			sub.MemberID(),
			sub.ID(),
			string(sub.Tier()),
			string(sub.Status()),
			string(sub.BillingInterval()),
			sub.CurrentPeriodStart(),
			sub.CurrentPeriodEnd(),
			sub.CancelAtPeriodEnd(),
			termEnd,
			sub.MinimumTermMonths(),
			sub.ExternalSubscriptionID(),
			sub.ProviderStateAt(),
			sub.Version() + 1,
		})

	return mutation, nil
}

// Apply applies the given mutations to the database
func (r *SubscriptionRepo) Apply(ctx context.Context, mutations ...*spanner.Mutation) error {
	_, err := r.client.Apply(ctx, mutations)
	return err
}

// CompareAndApply commits mutations inside a read-write transaction that
// re-reads the record's version. A version drift since the caller loaded the
// record means another writer got there first; the caller sees
// ErrConcurrentModification and must reload before retrying.
func (r *SubscriptionRepo) CompareAndApply(ctx context.Context, memberID string, expectedVersion int64, mutations ...*spanner.Mutation) error {
	_, err := r.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		row, err := txn.ReadRow(ctx, "subscriptions", spanner.Key{memberID}, []string{"version"})
		if err != nil {
			if spanner.ErrCode(err) == codes.NotFound {
				return domain.ErrNoActiveSubscription
			}
			return err
		}

		var version int64
		if err := row.Columns(&version); err != nil {
			return err
		}
		if version != expectedVersion {
			return domain.ErrConcurrentModification
		}

		return txn.BufferWrite(mutations)
	})
	return err
}

// FindByMemberID retrieves the member's authoritative subscription record.
func (r *SubscriptionRepo) FindByMemberID(ctx context.Context, memberID string) (*domain.Subscription, error) {
	stmt := spanner.Statement{
		SQL: `
			SELECT member_id, id, tier, status, billing_interval,
			       current_period_start, current_period_end, cancel_at_period_end,
			       minimum_term_end, minimum_term_months, external_subscription_id,
			       provider_state_at, version
			FROM subscriptions
			WHERE member_id = @member_id
		`,
		Params: map[string]interface{}{
			"member_id": memberID,
		},
	}
	return r.queryOne(ctx, stmt)
}

// FindByExternalID retrieves a subscription by the provider-side reference,
// the key webhook events carry.
func (r *SubscriptionRepo) FindByExternalID(ctx context.Context, externalSubscriptionID string) (*domain.Subscription, error) {
	stmt := spanner.Statement{
		SQL: `
			SELECT member_id, id, tier, status, billing_interval,
			       current_period_start, current_period_end, cancel_at_period_end,
			       minimum_term_end, minimum_term_months, external_subscription_id,
			       provider_state_at, version
			FROM subscriptions
			WHERE external_subscription_id = @external_id
		`,
		Params: map[string]interface{}{
			"external_id": externalSubscriptionID,
		},
	}
	return r.queryOne(ctx, stmt)
}

func (r *SubscriptionRepo) queryOne(ctx context.Context, stmt spanner.Statement) (*domain.Subscription, error) {
	iter := r.client.Single().Query(ctx, stmt)
	defer iter.Stop()

	row, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil, domain.ErrNoActiveSubscription
		}
		return nil, err
	}

	return scanSubscription(row)
}

func scanSubscription(row *spanner.Row) (*domain.Subscription, error) {
	var (
		memberID          string
		id                string
		tier              string
		status            string
		interval          string
		periodStart       time.Time
		periodEnd         time.Time
		cancelAtPeriodEnd bool
		minimumTermEnd    spanner.NullTime
		minimumTermMonths int64
		externalID        string
		providerStateAt   time.Time
		version           int64
	)

	if err := row.Columns(&memberID, &id, &tier, &status, &interval, &periodStart, &periodEnd, &cancelAtPeriodEnd, &minimumTermEnd, &minimumTermMonths, &externalID, &providerStateAt, &version); err != nil {
		return nil, err
	}

	var termEnd *time.Time
	if minimumTermEnd.Valid {
		t := minimumTermEnd.Time
		termEnd = &t
	}

	return domain.ReconstructFromPersistence(
		id,
		memberID,
		domain.Tier(tier),
		domain.SubscriptionStatus(status),
		domain.BillingInterval(interval),
		periodStart,
		periodEnd,
		cancelAtPeriodEnd,
		termEnd,
		minimumTermMonths,
		externalID,
		providerStateAt,
		version,
	), nil
}
