package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/models"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/repositories"
)

type CreateBatchRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Subjects    []string `json:"subjects"`
	MonthlyFee  float64  `json:"monthly_fee"`
	StartDate   string   `json:"start_date"`
	EndDate     *string  `json:"end_date"`
}

type UpdateBatchRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Subjects    []string `json:"subjects"`
	MonthlyFee  float64  `json:"monthly_fee"`
	StartDate   string   `json:"start_date"`
	EndDate     *string  `json:"end_date"`
	IsActive    *bool    `json:"is_active"`
}

// BatchWithCount pairs a batch with its active enrollment count for
// list screens.
type BatchWithCount struct {
	*models.Batch
	StudentCount int `json:"student_count"`
}

type BatchService interface {
	CreateBatch(ctx context.Context, instituteID uuid.UUID, req *CreateBatchRequest) (*models.Batch, error)
	GetBatch(ctx context.Context, instituteID, batchID uuid.UUID) (*models.Batch, error)
	UpdateBatch(ctx context.Context, instituteID, batchID uuid.UUID, req *UpdateBatchRequest) (*models.Batch, error)
	DeleteBatch(ctx context.Context, instituteID, batchID uuid.UUID) error
	ListBatches(ctx context.Context, instituteID uuid.UUID, limit, offset int) ([]*BatchWithCount, error)
	ListBatchesByStudent(ctx context.Context, instituteID, studentID uuid.UUID) ([]*models.Batch, error)
	EnrollStudent(ctx context.Context, instituteID, batchID, studentID uuid.UUID) error
}

type batchService struct {
	batchRepo      repositories.BatchRepository
	enrollmentRepo repositories.EnrollmentRepository
	studentRepo    repositories.StudentRepository
}

func NewBatchService(batchRepo repositories.BatchRepository, enrollmentRepo repositories.EnrollmentRepository, studentRepo repositories.StudentRepository) BatchService {
	return &batchService{
		batchRepo:      batchRepo,
		enrollmentRepo: enrollmentRepo,
		studentRepo:    studentRepo,
	}
}

func (s *batchService) CreateBatch(ctx context.Context, instituteID uuid.UUID, req *CreateBatchRequest) (*models.Batch, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("batch name is required")
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start_date: %w", err)
	}

	batch := &models.Batch{
		ID:          uuid.New(),
		InstituteID: instituteID,
		Name:        req.Name,
		Description: req.Description,
		Subjects:    req.Subjects,
		MonthlyFee:  req.MonthlyFee,
		StartDate:   startDate,
		IsActive:    true,
	}
	if req.EndDate != nil && *req.EndDate != "" {
		endDate, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid end_date: %w", err)
		}
		batch.EndDate = &endDate
	}

	if err := s.batchRepo.Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}
	return batch, nil
}

func (s *batchService) GetBatch(ctx context.Context, instituteID, batchID uuid.UUID) (*models.Batch, error) {
	batch, err := s.batchRepo.GetByID(ctx, instituteID, batchID)
	if err != nil {
		return nil, ErrBatchNotFound
	}
	return batch, nil
}

func (s *batchService) UpdateBatch(ctx context.Context, instituteID, batchID uuid.UUID, req *UpdateBatchRequest) (*models.Batch, error) {
	batch, err := s.batchRepo.GetByID(ctx, instituteID, batchID)
	if err != nil {
		return nil, ErrBatchNotFound
	}

	batch.Name = req.Name
	batch.Description = req.Description
	batch.Subjects = req.Subjects
	batch.MonthlyFee = req.MonthlyFee
	if req.StartDate != "" {
		startDate, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start_date: %w", err)
		}
		batch.StartDate = startDate
	}
	if req.EndDate != nil && *req.EndDate != "" {
		endDate, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid end_date: %w", err)
		}
		batch.EndDate = &endDate
	}
	if req.IsActive != nil {
		batch.IsActive = *req.IsActive
	}

	if err := s.batchRepo.Update(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to update batch: %w", err)
	}
	return batch, nil
}

func (s *batchService) DeleteBatch(ctx context.Context, instituteID, batchID uuid.UUID) error {
	if _, err := s.batchRepo.GetByID(ctx, instituteID, batchID); err != nil {
		return ErrBatchNotFound
	}
	return s.batchRepo.Delete(ctx, instituteID, batchID)
}

func (s *batchService) ListBatches(ctx context.Context, instituteID uuid.UUID, limit, offset int) ([]*BatchWithCount, error) {
	batches, err := s.batchRepo.List(ctx, instituteID, limit, offset)
	if err != nil {
		return nil, err
	}

	result := make([]*BatchWithCount, 0, len(batches))
	for _, batch := range batches {
		count, err := s.enrollmentRepo.CountActiveByBatch(ctx, instituteID, batch.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, &BatchWithCount{Batch: batch, StudentCount: count})
	}
	return result, nil
}

func (s *batchService) ListBatchesByStudent(ctx context.Context, instituteID, studentID uuid.UUID) ([]*models.Batch, error) {
	return s.batchRepo.ListByStudent(ctx, instituteID, studentID)
}

func (s *batchService) EnrollStudent(ctx context.Context, instituteID, batchID, studentID uuid.UUID) error {
	// Both sides of the link must live in the caller's institute.
	if _, err := s.batchRepo.GetByID(ctx, instituteID, batchID); err != nil {
		return ErrBatchNotFound
	}
	if _, err := s.studentRepo.GetByID(ctx, instituteID, studentID); err != nil {
		return ErrStudentNotFound
	}

	enrollment := &models.Enrollment{
		ID:          uuid.New(),
		StudentID:   studentID,
		BatchID:     batchID,
		InstituteID: instituteID,
		IsActive:    true,
	}
	return s.enrollmentRepo.Create(ctx, enrollment)
}
