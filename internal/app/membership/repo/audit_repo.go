package repo

import (
	"context"

	"cloud.google.com/go/spanner"
	"github.com/complypoint/membership-billing/internal/app/membership/contracts"
	"github.com/complypoint/membership-billing/internal/app/membership/domain"
)

var _ contracts.AuditLogRepository = (*AuditLogRepo)(nil)

// AuditLogRepo persists controller-initiated operations for later review.
type AuditLogRepo struct {
	client *spanner.Client
}

// NewAuditLogRepo creates a new audit log repository
func NewAuditLogRepo(client *spanner.Client) *AuditLogRepo {
	return &AuditLogRepo{client: client}
}

// Record appends an audit entry.
func (r *AuditLogRepo) Record(ctx context.Context, entry domain.AuditEntry) error {
	mutation := spanner.Insert("billing_audit_log",
		[]string{"member_id", "id", "action", "outcome", "detail", "requested_at"},
		[]interface{}{
			entry.MemberID,
			entry.ID,
			string(entry.Action),
			entry.Outcome,
			entry.Detail,
			entry.RequestedAt,
		})

	_, err := r.client.Apply(ctx, []*spanner.Mutation{mutation})
	return err
}
