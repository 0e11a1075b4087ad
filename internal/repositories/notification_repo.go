package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByInstitute(ctx context.Context, instituteID uuid.UUID, limit, offset int) ([]*models.Notification, error)
	ListByUser(ctx context.Context, instituteID, userID uuid.UUID, limit, offset int) ([]*models.Notification, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	CountUnsentByInstitute(ctx context.Context, instituteID uuid.UUID) (int, error)
}

type notificationRepo struct {
	db DB
}

func NewNotificationRepo(db DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	query := `
		INSERT INTO notifications (id, institute_id, user_id, title, message, is_sent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.db.Exec(ctx, query, notification.ID, notification.InstituteID, notification.UserID, notification.Title, notification.Message, notification.IsSent)
	return err
}

func (r *notificationRepo) ListByInstitute(ctx context.Context, instituteID uuid.UUID, limit, offset int) ([]*models.Notification, error) {
	query := `
		SELECT id, institute_id, user_id, title, message, is_sent, created_at
		FROM notifications
		WHERE institute_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, instituteID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		notification := &models.Notification{}
		if err := rows.Scan(&notification.ID, &notification.InstituteID, &notification.UserID, &notification.Title, &notification.Message, &notification.IsSent, &notification.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}
	return notifications, nil
}

func (r *notificationRepo) ListByUser(ctx context.Context, instituteID, userID uuid.UUID, limit, offset int) ([]*models.Notification, error) {
	query := `
		SELECT id, institute_id, user_id, title, message, is_sent, created_at
		FROM notifications
		WHERE institute_id = $1 AND user_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, instituteID, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		notification := &models.Notification{}
		if err := rows.Scan(&notification.ID, &notification.InstituteID, &notification.UserID, &notification.Title, &notification.Message, &notification.IsSent, &notification.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}
	return notifications, nil
}

func (r *notificationRepo) MarkSent(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE notifications SET is_sent = true WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *notificationRepo) CountUnsentByInstitute(ctx context.Context, instituteID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE institute_id = $1 AND is_sent = false`
	err := r.db.QueryRow(ctx, query, instituteID).Scan(&count)
	return count, err
}
