package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/caching"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/models"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/repositories"
)

const (
	instituteCacheTTL = 10 * time.Minute

	// defaultTrialDays is how long a new institute can evaluate before
	// the subscription sweep flips it to expired.
	defaultTrialDays = 30
)

type CreateInstituteRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	MaxStudents int    `json:"max_students"`
}

type UpdateInstituteRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	MaxStudents int    `json:"max_students"`
}

// InstituteStats is the super admin dashboard summary.
type InstituteStats struct {
	TotalInstitutes int `json:"total_institutes"`
	TrialCount      int `json:"trial_count"`
	ActiveCount     int `json:"active_count"`
	SuspendedCount  int `json:"suspended_count"`
	ExpiredCount    int `json:"expired_count"`
}

type InstituteService interface {
	CreateInstitute(ctx context.Context, req *CreateInstituteRequest) (*models.Institute, error)
	GetInstitute(ctx context.Context, id uuid.UUID) (*models.Institute, error)
	UpdateInstitute(ctx context.Context, id uuid.UUID, req *UpdateInstituteRequest) (*models.Institute, error)
	UpdateSubscriptionStatus(ctx context.Context, id uuid.UUID, status string, expiresAt *time.Time) error
	DeleteInstitute(ctx context.Context, id uuid.UUID) error
	ListInstitutes(ctx context.Context, limit, offset int) ([]*models.Institute, error)
	ListMembers(ctx context.Context, instituteID uuid.UUID, limit, offset int) ([]*models.User, error)
	GetStats(ctx context.Context) (*InstituteStats, error)

	// EnsureWritable rejects writes for suspended or expired tenants.
	EnsureWritable(ctx context.Context, instituteID uuid.UUID) error
}

type instituteService struct {
	instituteRepo repositories.InstituteRepository
	userRepo      repositories.UserRepository
	cacheSvc      caching.CacheService
}

func NewInstituteService(instituteRepo repositories.InstituteRepository, userRepo repositories.UserRepository, cacheSvc caching.CacheService) InstituteService {
	return &instituteService{
		instituteRepo: instituteRepo,
		userRepo:      userRepo,
		cacheSvc:      cacheSvc,
	}
}

func (s *instituteService) CreateInstitute(ctx context.Context, req *CreateInstituteRequest) (*models.Institute, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("institute name is required")
	}

	maxStudents := req.MaxStudents
	if maxStudents <= 0 {
		maxStudents = 100
	}

	trialEnd := time.Now().AddDate(0, 0, defaultTrialDays)
	institute := &models.Institute{
		ID:                    uuid.New(),
		Name:                  req.Name,
		Email:                 req.Email,
		Phone:                 req.Phone,
		Address:               req.Address,
		SubscriptionStatus:    models.SubscriptionTrial,
		SubscriptionExpiresAt: &trialEnd,
		MaxStudents:           maxStudents,
	}
	if err := s.instituteRepo.Create(ctx, institute); err != nil {
		return nil, fmt.Errorf("failed to create institute: %w", err)
	}
	return institute, nil
}

func (s *instituteService) GetInstitute(ctx context.Context, id uuid.UUID) (*models.Institute, error) {
	if cached, err := s.cacheSvc.GetInstitute(ctx, id); err == nil && cached != nil {
		return cached, nil
	}

	institute, err := s.instituteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrInstituteNotFound
	}

	if err := s.cacheSvc.SetInstitute(ctx, institute, instituteCacheTTL); err != nil {
		log.Printf("WARN: institute cache write failed for %s: %v", id, err)
	}
	return institute, nil
}

func (s *instituteService) UpdateInstitute(ctx context.Context, id uuid.UUID, req *UpdateInstituteRequest) (*models.Institute, error) {
	institute, err := s.instituteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrInstituteNotFound
	}

	institute.Name = req.Name
	institute.Email = req.Email
	institute.Phone = req.Phone
	institute.Address = req.Address
	if req.MaxStudents > 0 {
		institute.MaxStudents = req.MaxStudents
	}

	if err := s.instituteRepo.Update(ctx, institute); err != nil {
		return nil, fmt.Errorf("failed to update institute: %w", err)
	}

	if err := s.cacheSvc.DeleteInstitute(ctx, id); err != nil {
		log.Printf("WARN: institute cache invalidation failed for %s: %v", id, err)
	}
	return institute, nil
}

func (s *instituteService) UpdateSubscriptionStatus(ctx context.Context, id uuid.UUID, status string, expiresAt *time.Time) error {
	if !models.ValidSubscriptionStatus(status) {
		return fmt.Errorf("invalid subscription status: %s", status)
	}

	if _, err := s.instituteRepo.GetByID(ctx, id); err != nil {
		return ErrInstituteNotFound
	}

	if err := s.instituteRepo.UpdateSubscriptionStatus(ctx, id, status, expiresAt); err != nil {
		return fmt.Errorf("failed to update subscription status: %w", err)
	}

	// The cached copy carries the old status; drop it so the write
	// guard sees the change on the next request.
	if err := s.cacheSvc.DeleteInstitute(ctx, id); err != nil {
		log.Printf("WARN: institute cache invalidation failed for %s: %v", id, err)
	}
	return nil
}

func (s *instituteService) DeleteInstitute(ctx context.Context, id uuid.UUID) error {
	if err := s.instituteRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete institute: %w", err)
	}
	if err := s.cacheSvc.InvalidateInstituteCache(ctx, id); err != nil {
		log.Printf("WARN: institute cache invalidation failed for %s: %v", id, err)
	}
	return nil
}

func (s *instituteService) ListInstitutes(ctx context.Context, limit, offset int) ([]*models.Institute, error) {
	return s.instituteRepo.List(ctx, limit, offset)
}

// ListMembers returns the directory records bound to an institute, for
// the super admin institute detail view.
func (s *instituteService) ListMembers(ctx context.Context, instituteID uuid.UUID, limit, offset int) ([]*models.User, error) {
	if _, err := s.GetInstitute(ctx, instituteID); err != nil {
		return nil, err
	}
	return s.userRepo.ListByInstitute(ctx, instituteID, limit, offset)
}

func (s *instituteService) GetStats(ctx context.Context) (*InstituteStats, error) {
	total, err := s.instituteRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	stats := &InstituteStats{TotalInstitutes: total}
	for status, target := range map[string]*int{
		models.SubscriptionTrial:     &stats.TrialCount,
		models.SubscriptionActive:    &stats.ActiveCount,
		models.SubscriptionSuspended: &stats.SuspendedCount,
		models.SubscriptionExpired:   &stats.ExpiredCount,
	} {
		count, err := s.instituteRepo.CountByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		*target = count
	}
	return stats, nil
}

func (s *instituteService) EnsureWritable(ctx context.Context, instituteID uuid.UUID) error {
	institute, err := s.GetInstitute(ctx, instituteID)
	if err != nil {
		return err
	}
	if !institute.AcceptsWrites() {
		return ErrSubscriptionClosed
	}
	return nil
}
