package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/models"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/repositories"
)

type CreateNotificationRequest struct {
	UserID  *uuid.UUID `json:"user_id"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
}

type NotificationService interface {
	CreateNotification(ctx context.Context, instituteID uuid.UUID, req *CreateNotificationRequest) (*models.Notification, error)
	ListForInstitute(ctx context.Context, instituteID uuid.UUID, limit, offset int) ([]*models.Notification, error)
	ListForUser(ctx context.Context, instituteID, userID uuid.UUID, limit, offset int) ([]*models.Notification, error)

	// SendPending delivers queued notifications for one institute and
	// marks them sent. Delivery is a log line until a mail provider is
	// wired up.
	SendPending(ctx context.Context, instituteID uuid.UUID, limit int) (int, error)

	// SendFeeReminders queues a reminder for every student with an
	// unpaid fee in the institute.
	SendFeeReminders(ctx context.Context, instituteID uuid.UUID) (int, error)
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	feeRepo          repositories.FeeRepository
	studentRepo      repositories.StudentRepository
}

func NewNotificationService(notificationRepo repositories.NotificationRepository, feeRepo repositories.FeeRepository, studentRepo repositories.StudentRepository) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		feeRepo:          feeRepo,
		studentRepo:      studentRepo,
	}
}

func (s *notificationService) CreateNotification(ctx context.Context, instituteID uuid.UUID, req *CreateNotificationRequest) (*models.Notification, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("notification title is required")
	}

	notification := &models.Notification{
		ID:          uuid.New(),
		InstituteID: &instituteID,
		UserID:      req.UserID,
		Title:       req.Title,
		Message:     req.Message,
		IsSent:      false,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return notification, nil
}

func (s *notificationService) ListForInstitute(ctx context.Context, instituteID uuid.UUID, limit, offset int) ([]*models.Notification, error) {
	return s.notificationRepo.ListByInstitute(ctx, instituteID, limit, offset)
}

func (s *notificationService) ListForUser(ctx context.Context, instituteID, userID uuid.UUID, limit, offset int) ([]*models.Notification, error) {
	return s.notificationRepo.ListByUser(ctx, instituteID, userID, limit, offset)
}

func (s *notificationService) SendPending(ctx context.Context, instituteID uuid.UUID, limit int) (int, error) {
	notifications, err := s.notificationRepo.ListByInstitute(ctx, instituteID, limit, 0)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, notification := range notifications {
		if notification.IsSent {
			continue
		}
		log.Printf("Sending notification %s: %s", notification.ID, notification.Title)
		if err := s.notificationRepo.MarkSent(ctx, notification.ID); err != nil {
			return sent, fmt.Errorf("failed to mark notification sent: %w", err)
		}
		sent++
	}
	return sent, nil
}

func (s *notificationService) SendFeeReminders(ctx context.Context, instituteID uuid.UUID) (int, error) {
	payments, err := s.feeRepo.List(ctx, instituteID, 1000, 0)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, payment := range payments {
		if payment.Status == models.FeePaid {
			continue
		}

		student, err := s.studentRepo.GetByID(ctx, instituteID, payment.StudentID)
		if err != nil {
			log.Printf("WARN: fee reminder skipped, student %s not found: %v", payment.StudentID, err)
			continue
		}

		notification := &models.Notification{
			ID:          uuid.New(),
			InstituteID: &instituteID,
			UserID:      &student.UserID,
			Title:       "Fee payment due",
			Message:     fmt.Sprintf("Payment of %.2f is due on %s", payment.Amount, payment.DueDate.Format("2006-01-02")),
			IsSent:      false,
		}
		if err := s.notificationRepo.Create(ctx, notification); err != nil {
			return queued, fmt.Errorf("failed to queue fee reminder: %w", err)
		}
		queued++
	}
	return queued, nil
}
