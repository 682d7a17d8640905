package activate_subscription

import (
	"context"
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

func validRequest() Request {
	return Request{
		MemberID:               "member-456",
		Tier:                   domain.TierPro,
		BillingInterval:        domain.IntervalMonthly,
		PeriodStart:            periodStart,
		PeriodEnd:              periodEnd,
		MinimumTermMonths:      3,
		ExternalSubscriptionID: "ext-789",
	}
}

func TestActivate_Success(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockRepository)
	mockAudit := new(MockAuditLog)
	clock := domain.FixedClock{FixedTime: periodStart}
	interactor := NewInteractor(mockRepo, mockAudit, clock, zerolog.Nop())

	mockRepo.On("FindByMemberID", ctx, "member-456").Return(nil, domain.ErrNoActiveSubscription)
	mockRepo.On("Save", ctx, mock.MatchedBy(func(s *domain.Subscription) bool {
		return s.MemberID() == "member-456" && s.Status() == domain.StatusActive
	})).Return(&spanner.Mutation{}, nil)
	mockRepo.On("Apply", ctx, mock.Anything).Return(nil)
	mockAudit.On("Record", ctx, mock.Anything).Return(nil)

	sub, event, err := interactor.Execute(ctx, validRequest())

	require.NoError(t, err)
	assert.Equal(t, domain.TierPro, sub.Tier())
	require.NotNil(t, sub.MinimumTermEnd())
	assert.Equal(t, periodStart.AddDate(0, 3, 0), *sub.MinimumTermEnd())
	assert.Equal(t, "member-456", event.MemberID)
	mockRepo.AssertExpectations(t)
}

func TestActivate_ExistingLiveRecordRejected(t *testing.T) {
	// One authoritative record per member: activation while a non-terminal
	// record exists must fail.
	ctx := context.Background()
	existing := domain.ReconstructFromPersistence(
		"sub-old", "member-456", domain.TierBasic, domain.StatusActive, domain.IntervalMonthly,
		periodStart, periodEnd, false, nil, 0, "ext-old", periodStart, 1,
	)

	mockRepo := new(MockRepository)
	mockAudit := new(MockAuditLog)
	clock := domain.FixedClock{FixedTime: periodStart}
	interactor := NewInteractor(mockRepo, mockAudit, clock, zerolog.Nop())

	mockRepo.On("FindByMemberID", ctx, "member-456").Return(existing, nil)

	_, _, err := interactor.Execute(ctx, validRequest())

	assert.ErrorIs(t, err, domain.ErrSubscriptionExists)
	mockRepo.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
}

func TestActivate_ReplacesTerminatedRecord(t *testing.T) {
	// A canceled predecessor does not block a fresh checkout.
	ctx := context.Background()
	terminated := domain.ReconstructFromPersistence(
		"sub-old", "member-456", domain.TierBasic, domain.StatusCanceled, domain.IntervalMonthly,
		periodStart.AddDate(0, -2, 0), periodStart.AddDate(0, -1, 0), false, nil, 0, "ext-old", periodStart, 5,
	)

	mockRepo := new(MockRepository)
	mockAudit := new(MockAuditLog)
	clock := domain.FixedClock{FixedTime: periodStart}
	interactor := NewInteractor(mockRepo, mockAudit, clock, zerolog.Nop())

	mockRepo.On("FindByMemberID", ctx, "member-456").Return(terminated, nil)
	mockRepo.On("Save", ctx, mock.Anything).Return(&spanner.Mutation{}, nil)
	mockRepo.On("Apply", ctx, mock.Anything).Return(nil)
	mockAudit.On("Record", ctx, mock.Anything).Return(nil)

	sub, _, err := interactor.Execute(ctx, validRequest())

	require.NoError(t, err)
	assert.NotEqual(t, "sub-old", sub.ID())
}

func TestActivate_InvalidRequest(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockRepository)
	mockAudit := new(MockAuditLog)
	clock := domain.FixedClock{FixedTime: periodStart}
	interactor := NewInteractor(mockRepo, mockAudit, clock, zerolog.Nop())

	mockRepo.On("FindByMemberID", ctx, "member-456").Return(nil, domain.ErrNoActiveSubscription)

	req := validRequest()
	req.Tier = domain.Tier("platinum")

	_, _, err := interactor.Execute(ctx, req)

	assert.ErrorIs(t, err, domain.ErrInvalidTier)
	mockRepo.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
}
