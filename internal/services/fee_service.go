package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/models"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/repositories"
)

type CreateFeePaymentRequest struct {
	StudentID uuid.UUID `json:"student_id"`
	BatchID   uuid.UUID `json:"batch_id"`
	Amount    float64   `json:"amount"`
	DueDate   string    `json:"due_date"`
}

type RecordPaymentRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// StudentFeeReport is a student's payment history plus aggregate.
type StudentFeeReport struct {
	Payments []*models.FeePayment `json:"payments"`
	Summary  *models.FeeSummary   `json:"summary"`
}

type FeeService interface {
	CreateFeePayment(ctx context.Context, instituteID uuid.UUID, req *CreateFeePaymentRequest) (*models.FeePayment, error)
	RecordPayment(ctx context.Context, instituteID, paymentID uuid.UUID, req *RecordPaymentRequest) (*models.FeePayment, error)
	ListFeePayments(ctx context.Context, instituteID uuid.UUID, limit, offset int) ([]*models.FeePayment, error)
	StudentReport(ctx context.Context, instituteID, studentID uuid.UUID, limit, offset int) (*StudentFeeReport, error)
	MarkOverdue(ctx context.Context, instituteID uuid.UUID) (int64, error)
}

type feeService struct {
	feeRepo     repositories.FeeRepository
	studentRepo repositories.StudentRepository
	batchRepo   repositories.BatchRepository
}

func NewFeeService(feeRepo repositories.FeeRepository, studentRepo repositories.StudentRepository, batchRepo repositories.BatchRepository) FeeService {
	return &feeService{
		feeRepo:     feeRepo,
		studentRepo: studentRepo,
		batchRepo:   batchRepo,
	}
}

func (s *feeService) CreateFeePayment(ctx context.Context, instituteID uuid.UUID, req *CreateFeePaymentRequest) (*models.FeePayment, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}

	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return nil, fmt.Errorf("invalid due_date: %w", err)
	}

	if _, err := s.studentRepo.GetByID(ctx, instituteID, req.StudentID); err != nil {
		return nil, ErrStudentNotFound
	}
	if _, err := s.batchRepo.GetByID(ctx, instituteID, req.BatchID); err != nil {
		return nil, ErrBatchNotFound
	}

	payment := &models.FeePayment{
		ID:          uuid.New(),
		StudentID:   req.StudentID,
		BatchID:     req.BatchID,
		InstituteID: instituteID,
		Amount:      req.Amount,
		Status:      models.FeePending,
		DueDate:     dueDate,
	}
	if err := s.feeRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create fee payment: %w", err)
	}
	return payment, nil
}

func (s *feeService) RecordPayment(ctx context.Context, instituteID, paymentID uuid.UUID, req *RecordPaymentRequest) (*models.FeePayment, error) {
	payment, err := s.feeRepo.GetByID(ctx, instituteID, paymentID)
	if err != nil {
		return nil, ErrPaymentNotFound
	}
	if payment.Status == models.FeePaid {
		return nil, fmt.Errorf("payment already recorded")
	}

	now := time.Now()
	method := req.PaymentMethod
	if method == "" {
		method = "cash"
	}
	if err := s.feeRepo.UpdateStatus(ctx, instituteID, paymentID, models.FeePaid, &now, &method); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	payment.Status = models.FeePaid
	payment.PaidAt = &now
	payment.PaymentMethod = &method
	return payment, nil
}

func (s *feeService) ListFeePayments(ctx context.Context, instituteID uuid.UUID, limit, offset int) ([]*models.FeePayment, error) {
	return s.feeRepo.List(ctx, instituteID, limit, offset)
}

func (s *feeService) StudentReport(ctx context.Context, instituteID, studentID uuid.UUID, limit, offset int) (*StudentFeeReport, error) {
	payments, err := s.feeRepo.ListByStudent(ctx, instituteID, studentID, limit, offset)
	if err != nil {
		return nil, err
	}

	summary, err := s.feeRepo.SummaryByStudent(ctx, instituteID, studentID)
	if err != nil {
		return nil, err
	}

	return &StudentFeeReport{Payments: payments, Summary: summary}, nil
}

// MarkOverdue flips pending payments past due date to overdue. The
// background sweep calls this per institute.
func (s *feeService) MarkOverdue(ctx context.Context, instituteID uuid.UUID) (int64, error) {
	return s.feeRepo.MarkOverdue(ctx, instituteID, time.Now())
}
