package reactivate_subscription

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/complypoint/membership-billing/internal/app/membership/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of SubscriptionRepository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Save(ctx context.Context, sub *domain.Subscription) (*spanner.Mutation, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*spanner.Mutation), args.Error(1)
}

func (m *MockRepository) FindByMemberID(ctx context.Context, memberID string) (*domain.Subscription, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *MockRepository) FindByExternalID(ctx context.Context, externalID string) (*domain.Subscription, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

func (m *MockRepository) Apply(ctx context.Context, mutations ...*spanner.Mutation) error {
	args := m.Called(ctx, mutations)
	return args.Error(0)
}

func (m *MockRepository) CompareAndApply(ctx context.Context, memberID string, expectedVersion int64, mutations ...*spanner.Mutation) error {
	args := m.Called(ctx, memberID, expectedVersion, mutations)
	return args.Error(0)
}

// MockPaymentProvider is a mock implementation of PaymentProvider
type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockPaymentProvider) ScheduleCancellation(ctx context.Context, externalID string) error {
	args := m.Called(ctx, externalID)
	return args.Error(0)
}

func (m *MockPaymentProvider) RemoveScheduledCancellation(ctx context.Context, externalID string) error {
	args := m.Called(ctx, externalID)
	return args.Error(0)
}

// MockAuditLog is a mock implementation of AuditLogRepository
type MockAuditLog struct {
	mock.Mock
}

func (m *MockAuditLog) Record(ctx context.Context, entry domain.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

var (
	periodStart = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	periodEnd   = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
)

func recordWithFlag(status domain.SubscriptionStatus, cancelAtPeriodEnd bool) *domain.Subscription {
	return domain.ReconstructFromPersistence(
		"sub-123", "member-456", domain.TierPro, status, domain.IntervalMonthly,
		periodStart, periodEnd, cancelAtPeriodEnd, nil, 0, "ext-789", periodStart, 3,
	)
}

func newTestInteractor(repo *MockRepository, provider *MockPaymentProvider, audit *MockAuditLog) *Interactor {
	clock := domain.FixedClock{FixedTime: periodStart.AddDate(0, 0, 15)}
	return NewInteractor(repo, provider, audit, clock, zerolog.Nop())
}

func TestReactivate_Success(t *testing.T) {
	// Pending cancellation on an active record: provider called exactly once,
	// then the local flag comes off.
	ctx := context.Background()
	sub := recordWithFlag(domain.StatusActive, true)

	mockRepo := new(MockRepository)
	mockProvider := new(MockPaymentProvider)
	mockAudit := new(MockAuditLog)
	interactor := newTestInteractor(mockRepo, mockProvider, mockAudit)

	mockRepo.On("FindByMemberID", ctx, "member-456").Return(sub, nil)
	mockProvider.On("RemoveScheduledCancellation", ctx, "ext-789").Return(nil).Once()
	mockRepo.On("Save", ctx, mock.MatchedBy(func(s *domain.Subscription) bool {
		return !s.CancelAtPeriodEnd()
	})).Return(&spanner.Mutation{}, nil)
	mockRepo.On("CompareAndApply", ctx, "member-456", int64(3), mock.Anything).Return(nil)
	mockAudit.On("Record", ctx, mock.Anything).Return(nil)

	event, err := interactor.Execute(ctx, "member-456")

	require.NoError(t, err)
	assert.Equal(t, "member-456", event.MemberID)
	assert.False(t, sub.CancelAtPeriodEnd())
	mockRepo.AssertExpectations(t)
	mockProvider.AssertExpectations(t)
}

func TestReactivate_NothingToReactivate(t *testing.T) {
	testCases := []struct {
		name string
		sub  *domain.Subscription
	}{
		{"no pending cancellation", recordWithFlag(domain.StatusActive, false)},
		{"already terminated", recordWithFlag(domain.StatusCanceled, false)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			mockRepo := new(MockRepository)
			mockProvider := new(MockPaymentProvider)
			mockAudit := new(MockAuditLog)
			interactor := newTestInteractor(mockRepo, mockProvider, mockAudit)

			mockRepo.On("FindByMemberID", ctx, "member-456").Return(tc.sub, nil)
			mockAudit.On("Record", ctx, mock.Anything).Return(nil)

			_, err := interactor.Execute(ctx, "member-456")

			assert.ErrorIs(t, err, domain.ErrNothingToReactivate)
			mockProvider.AssertNotCalled(t, "RemoveScheduledCancellation", mock.Anything, mock.Anything)
		})
	}
}

func TestReactivate_NoSubscription(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockRepository)
	mockProvider := new(MockPaymentProvider)
	mockAudit := new(MockAuditLog)
	interactor := newTestInteractor(mockRepo, mockProvider, mockAudit)

	mockRepo.On("FindByMemberID", ctx, "member-456").Return(nil, domain.ErrNoActiveSubscription)

	_, err := interactor.Execute(ctx, "member-456")

	assert.ErrorIs(t, err, domain.ErrNoActiveSubscription)
	mockProvider.AssertNotCalled(t, "RemoveScheduledCancellation", mock.Anything, mock.Anything)
}

func TestReactivate_ProviderFailure_LeavesLocalStateUnchanged(t *testing.T) {
	ctx := context.Background()
	sub := recordWithFlag(domain.StatusActive, true)

	mockRepo := new(MockRepository)
	mockProvider := new(MockPaymentProvider)
	mockAudit := new(MockAuditLog)
	interactor := newTestInteractor(mockRepo, mockProvider, mockAudit)

	providerErr := &domain.ProviderError{Op: "remove scheduled cancellation", Err: errors.New("timeout")}
	mockRepo.On("FindByMemberID", ctx, "member-456").Return(sub, nil)
	mockProvider.On("RemoveScheduledCancellation", ctx, "ext-789").Return(providerErr)
	mockAudit.On("Record", ctx, mock.Anything).Return(nil)

	_, err := interactor.Execute(ctx, "member-456")

	var pe *domain.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.True(t, sub.CancelAtPeriodEnd(), "flag stays set until the provider confirms removal")
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "CompareAndApply", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
