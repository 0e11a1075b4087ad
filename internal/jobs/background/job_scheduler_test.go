package background

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/models"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/services"
)

type MockInstituteRepository struct {
	mock.Mock
}

func (m *MockInstituteRepository) Create(ctx context.Context, institute *models.Institute) error {
	args := m.Called(ctx, institute)
	return args.Error(0)
}

func (m *MockInstituteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Institute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Institute), args.Error(1)
}

func (m *MockInstituteRepository) Update(ctx context.Context, institute *models.Institute) error {
	args := m.Called(ctx, institute)
	return args.Error(0)
}

func (m *MockInstituteRepository) UpdateSubscriptionStatus(ctx context.Context, id uuid.UUID, status string, expiresAt *time.Time) error {
	args := m.Called(ctx, id, status, expiresAt)
	return args.Error(0)
}

func (m *MockInstituteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInstituteRepository) List(ctx context.Context, limit, offset int) ([]*models.Institute, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Institute), args.Error(1)
}

func (m *MockInstituteRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockInstituteRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}

type MockInstituteService struct {
	mock.Mock
}

func (m *MockInstituteService) CreateInstitute(ctx context.Context, req *services.CreateInstituteRequest) (*models.Institute, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Institute), args.Error(1)
}

func (m *MockInstituteService) GetInstitute(ctx context.Context, id uuid.UUID) (*models.Institute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Institute), args.Error(1)
}

func (m *MockInstituteService) UpdateInstitute(ctx context.Context, id uuid.UUID, req *services.UpdateInstituteRequest) (*models.Institute, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Institute), args.Error(1)
}

func (m *MockInstituteService) UpdateSubscriptionStatus(ctx context.Context, id uuid.UUID, status string, expiresAt *time.Time) error {
	args := m.Called(ctx, id, status, expiresAt)
	return args.Error(0)
}

func (m *MockInstituteService) DeleteInstitute(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInstituteService) ListInstitutes(ctx context.Context, limit, offset int) ([]*models.Institute, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Institute), args.Error(1)
}

func (m *MockInstituteService) ListMembers(ctx context.Context, instituteID uuid.UUID, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, instituteID, limit, offset)
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockInstituteService) GetStats(ctx context.Context) (*services.InstituteStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.InstituteStats), args.Error(1)
}

func (m *MockInstituteService) EnsureWritable(ctx context.Context, instituteID uuid.UUID) error {
	args := m.Called(ctx, instituteID)
	return args.Error(0)
}

func TestSweepExpiredSubscriptions_FlipsLapsedTenants(t *testing.T) {
	ctx := context.Background()
	mockRepo := &MockInstituteRepository{}
	mockSvc := &MockInstituteService{}

	past := time.Now().AddDate(0, 0, -2)
	future := time.Now().AddDate(0, 0, 20)

	lapsed := &models.Institute{
		ID:                    uuid.New(),
		Name:                  "Lapsed Trial",
		SubscriptionStatus:    models.SubscriptionTrial,
		SubscriptionExpiresAt: &past,
	}
	current := &models.Institute{
		ID:                    uuid.New(),
		Name:                  "Paid Up",
		SubscriptionStatus:    models.SubscriptionActive,
		SubscriptionExpiresAt: &future,
	}
	openEnded := &models.Institute{
		ID:                 uuid.New(),
		Name:               "No Expiry",
		SubscriptionStatus: models.SubscriptionActive,
	}

	mockRepo.On("List", ctx, 1000, 0).Return([]*models.Institute{lapsed, current, openEnded}, nil)
	mockSvc.On("UpdateSubscriptionStatus", ctx, lapsed.ID, models.SubscriptionExpired, lapsed.SubscriptionExpiresAt).Return(nil)

	scheduler := NewJobScheduler(mockRepo, mockSvc, nil, nil)
	defer scheduler.Stop()

	err := scheduler.sweepExpiredSubscriptions(ctx)
	assert.NoError(t, err)

	mockSvc.AssertExpectations(t)
	mockSvc.AssertNumberOfCalls(t, "UpdateSubscriptionStatus", 1)
}

func TestSweepExpiredSubscriptions_ContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	mockRepo := &MockInstituteRepository{}
	mockSvc := &MockInstituteService{}

	past := time.Now().AddDate(0, 0, -1)
	first := &models.Institute{
		ID:                    uuid.New(),
		Name:                  "First",
		SubscriptionStatus:    models.SubscriptionTrial,
		SubscriptionExpiresAt: &past,
	}
	second := &models.Institute{
		ID:                    uuid.New(),
		Name:                  "Second",
		SubscriptionStatus:    models.SubscriptionActive,
		SubscriptionExpiresAt: &past,
	}

	mockRepo.On("List", ctx, 1000, 0).Return([]*models.Institute{first, second}, nil)
	mockSvc.On("UpdateSubscriptionStatus", ctx, first.ID, models.SubscriptionExpired, first.SubscriptionExpiresAt).Return(services.ErrInstituteNotFound)
	mockSvc.On("UpdateSubscriptionStatus", ctx, second.ID, models.SubscriptionExpired, second.SubscriptionExpiresAt).Return(nil)

	scheduler := NewJobScheduler(mockRepo, mockSvc, nil, nil)
	defer scheduler.Stop()

	err := scheduler.sweepExpiredSubscriptions(ctx)
	assert.NoError(t, err)

	// One failed flip must not stop the rest of the sweep.
	mockSvc.AssertExpectations(t)
	mockSvc.AssertNumberOfCalls(t, "UpdateSubscriptionStatus", 2)
}
