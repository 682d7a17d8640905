package billing_history

import (
	"context"

	"github.com/complypoint/membership-billing/internal/app/membership/contracts"
	"github.com/rs/zerolog"
)

// Interactor loads a member's charge ledger and projects it for display.
type Interactor struct {
	events contracts.BillingEventRepository
	log    zerolog.Logger
}

// NewInteractor creates a new billing history interactor
func NewInteractor(events contracts.BillingEventRepository, log zerolog.Logger) *Interactor {
	return &Interactor{
		events: events,
		log:    log,
	}
}

// Execute returns the member's billing history, oldest entry first.
func (i *Interactor) Execute(ctx context.Context, memberID string) ([]LedgerLine, error) {
	events, err := i.events.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return Project(events, i.log), nil
}
