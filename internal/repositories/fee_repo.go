package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/models"
)

type FeeRepository interface {
	Create(ctx context.Context, payment *models.FeePayment) error
	GetByID(ctx context.Context, instituteID, id uuid.UUID) (*models.FeePayment, error)
	UpdateStatus(ctx context.Context, instituteID, id uuid.UUID, status string, paidAt *time.Time, paymentMethod *string) error
	List(ctx context.Context, instituteID uuid.UUID, limit, offset int) ([]*models.FeePayment, error)
	ListByStudent(ctx context.Context, instituteID, studentID uuid.UUID, limit, offset int) ([]*models.FeePayment, error)
	SummaryByStudent(ctx context.Context, instituteID, studentID uuid.UUID) (*models.FeeSummary, error)
	MarkOverdue(ctx context.Context, instituteID uuid.UUID, asOf time.Time) (int64, error)
}

type feeRepo struct {
	db DB
}

func NewFeeRepo(db DB) FeeRepository {
	return &feeRepo{db: db}
}

func (r *feeRepo) Create(ctx context.Context, payment *models.FeePayment) error {
	query := `
		INSERT INTO fee_payments (id, institute_id, student_id, batch_id, amount, status, due_date, paid_at, payment_method, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, payment.ID, payment.InstituteID, payment.StudentID, payment.BatchID, payment.Amount, payment.Status, payment.DueDate, payment.PaidAt, payment.PaymentMethod)
	return err
}

func (r *feeRepo) GetByID(ctx context.Context, instituteID, id uuid.UUID) (*models.FeePayment, error) {
	payment := &models.FeePayment{}
	query := `
		SELECT id, institute_id, student_id, batch_id, amount, status, due_date, paid_at, payment_method, created_at, updated_at
		FROM fee_payments
		WHERE institute_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, instituteID, id).Scan(&payment.ID, &payment.InstituteID, &payment.StudentID, &payment.BatchID, &payment.Amount, &payment.Status, &payment.DueDate, &payment.PaidAt, &payment.PaymentMethod, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *feeRepo) UpdateStatus(ctx context.Context, instituteID, id uuid.UUID, status string, paidAt *time.Time, paymentMethod *string) error {
	query := `
		UPDATE fee_payments
		SET status = $1, paid_at = $2, payment_method = $3, updated_at = NOW()
		WHERE institute_id = $4 AND id = $5
	`
	_, err := r.db.Exec(ctx, query, status, paidAt, paymentMethod, instituteID, id)
	return err
}

func (r *feeRepo) List(ctx context.Context, instituteID uuid.UUID, limit, offset int) ([]*models.FeePayment, error) {
	query := `
		SELECT id, institute_id, student_id, batch_id, amount, status, due_date, paid_at, payment_method, created_at, updated_at
		FROM fee_payments
		WHERE institute_id = $1
		ORDER BY due_date DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, instituteID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.FeePayment
	for rows.Next() {
		payment := &models.FeePayment{}
		if err := rows.Scan(&payment.ID, &payment.InstituteID, &payment.StudentID, &payment.BatchID, &payment.Amount, &payment.Status, &payment.DueDate, &payment.PaidAt, &payment.PaymentMethod, &payment.CreatedAt, &payment.UpdatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, nil
}

func (r *feeRepo) ListByStudent(ctx context.Context, instituteID, studentID uuid.UUID, limit, offset int) ([]*models.FeePayment, error) {
	query := `
		SELECT id, institute_id, student_id, batch_id, amount, status, due_date, paid_at, payment_method, created_at, updated_at
		FROM fee_payments
		WHERE institute_id = $1 AND student_id = $2
		ORDER BY due_date DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, instituteID, studentID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.FeePayment
	for rows.Next() {
		payment := &models.FeePayment{}
		if err := rows.Scan(&payment.ID, &payment.InstituteID, &payment.StudentID, &payment.BatchID, &payment.Amount, &payment.Status, &payment.DueDate, &payment.PaidAt, &payment.PaymentMethod, &payment.CreatedAt, &payment.UpdatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, nil
}

func (r *feeRepo) SummaryByStudent(ctx context.Context, instituteID, studentID uuid.UUID) (*models.FeeSummary, error) {
	summary := &models.FeeSummary{}
	query := `
		SELECT COALESCE(SUM(amount), 0),
		       COALESCE(SUM(amount) FILTER (WHERE status = 'paid'), 0),
		       COALESCE(SUM(amount) FILTER (WHERE status = 'pending'), 0),
		       COALESCE(SUM(amount) FILTER (WHERE status = 'overdue'), 0)
		FROM fee_payments
		WHERE institute_id = $1 AND student_id = $2
	`
	err := r.db.QueryRow(ctx, query, instituteID, studentID).Scan(&summary.Total, &summary.Paid, &summary.Pending, &summary.Overdue)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// MarkOverdue flips pending payments past their due date to overdue and
// reports how many rows changed.
func (r *feeRepo) MarkOverdue(ctx context.Context, instituteID uuid.UUID, asOf time.Time) (int64, error) {
	query := `
		UPDATE fee_payments
		SET status = 'overdue', updated_at = NOW()
		WHERE institute_id = $1 AND status = 'pending' AND due_date < $2
	`
	tag, err := r.db.Exec(ctx, query, instituteID, asOf)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
