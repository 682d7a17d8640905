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

var _ contracts.BillingEventRepository = (*BillingEventRepo)(nil)

// BillingEventRepo persists the append-only charge ledger in Cloud Spanner.
type BillingEventRepo struct {
	client *spanner.Client
}

// NewBillingEventRepo creates a new billing event repository
func NewBillingEventRepo(client *spanner.Client) *BillingEventRepo {
	return &BillingEventRepo{client: client}
}

// Insert appends a ledger entry. The table's primary key is
// (member_id, provider_event_id), so a redelivered webhook event comes back
// as domain.ErrDuplicateEvent instead of a second row.
func (r *BillingEventRepo) Insert(ctx context.Context, ev domain.BillingEvent) error {
	mutation := spanner.Insert("billing_events",
		[]string{"member_id", "provider_event_id", "amount_cents", "currency", "outcome", "description", "receipt_url", "occurred_at"},
		[]interface{}{
			ev.MemberID,
			ev.ProviderEventID,
			ev.AmountCents,
			ev.Currency,
			string(ev.Outcome),
			ev.Description,
			ev.ReceiptURL,
			ev.OccurredAt,
		})

	_, err := r.client.Apply(ctx, []*spanner.Mutation{mutation})
	if err != nil {
		if spanner.ErrCode(err) == codes.AlreadyExists {
			return domain.ErrDuplicateEvent
		}
		return err
	}
	return nil
}

// ListByMember returns the member's ledger entries ordered by the provider's
// own timestamps, oldest first.
func (r *BillingEventRepo) ListByMember(ctx context.Context, memberID string) ([]domain.BillingEvent, error) {
	stmt := spanner.Statement{
		SQL: `
			SELECT member_id, provider_event_id, amount_cents, currency, outcome,
			       description, receipt_url, occurred_at
			FROM billing_events
			WHERE member_id = @member_id
			ORDER BY occurred_at ASC
		`,
		Params: map[string]interface{}{
			"member_id": memberID,
		},
	}

	iter := r.client.Single().Query(ctx, stmt)
	defer iter.Stop()

	var events []domain.BillingEvent
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var (
			ev         domain.BillingEvent
			outcome    string
			occurredAt time.Time
		)
		if err := row.Columns(&ev.MemberID, &ev.ProviderEventID, &ev.AmountCents, &ev.Currency, &outcome, &ev.Description, &ev.ReceiptURL, &occurredAt); err != nil {
			return nil, err
		}
		ev.Outcome = domain.BillingOutcome(outcome)
		ev.OccurredAt = occurredAt
		events = append(events, ev)
	}

	return events, nil
}
