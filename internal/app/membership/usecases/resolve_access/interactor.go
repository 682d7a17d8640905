package resolve_access

import (
	"context"
	"errors"

	"github.com/complypoint/membership-billing/internal/app/membership/contracts"
	"github.com/complypoint/membership-billing/internal/app/membership/domain"
)

// Interactor answers content-access queries for a member. It is the read
// path: load the record (absent is a normal answer, not an error) and
// delegate to the pure entitlement rules.
type Interactor struct {
	repo  contracts.SubscriptionRepository
	clock domain.Clock
}

// NewInteractor creates a new resolve access interactor
func NewInteractor(repo contracts.SubscriptionRepository, clock domain.Clock) *Interactor {
	return &Interactor{
		repo:  repo,
		clock: clock,
	}
}

// Execute reports whether the member may access content gated at requirement.
func (i *Interactor) Execute(ctx context.Context, memberID string, requirement domain.AccessRequirement) (bool, error) {
	sub, err := i.repo.FindByMemberID(ctx, memberID)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveSubscription) {
			return domain.ResolveContentAccess(nil, requirement, i.clock.Now()), nil
		}
		return false, err
	}

	return domain.ResolveContentAccess(sub, requirement, i.clock.Now()), nil
}
