package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/models"
)

type BatchRepository interface {
	Create(ctx context.Context, batch *models.Batch) error
	GetByID(ctx context.Context, instituteID, id uuid.UUID) (*models.Batch, error)
	Update(ctx context.Context, batch *models.Batch) error
	Delete(ctx context.Context, instituteID, id uuid.UUID) error
	List(ctx context.Context, instituteID uuid.UUID, limit, offset int) ([]*models.Batch, error)
	ListByStudent(ctx context.Context, instituteID, studentID uuid.UUID) ([]*models.Batch, error)
}

type batchRepo struct {
	db DB
}

func NewBatchRepo(db DB) BatchRepository {
	return &batchRepo{db: db}
}

func (r *batchRepo) Create(ctx context.Context, batch *models.Batch) error {
	query := `
		INSERT INTO batches (id, institute_id, name, description, subjects, monthly_fee, start_date, end_date, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, batch.ID, batch.InstituteID, batch.Name, batch.Description, batch.Subjects, batch.MonthlyFee, batch.StartDate, batch.EndDate, batch.IsActive)
	return err
}

func (r *batchRepo) GetByID(ctx context.Context, instituteID, id uuid.UUID) (*models.Batch, error) {
	batch := &models.Batch{}
	query := `
		SELECT id, institute_id, name, description, subjects, monthly_fee, start_date, end_date, is_active, created_at, updated_at
		FROM batches
		WHERE institute_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, instituteID, id).Scan(&batch.ID, &batch.InstituteID, &batch.Name, &batch.Description, &batch.Subjects, &batch.MonthlyFee, &batch.StartDate, &batch.EndDate, &batch.IsActive, &batch.CreatedAt, &batch.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (r *batchRepo) Update(ctx context.Context, batch *models.Batch) error {
	query := `
		UPDATE batches
		SET name = $1, description = $2, subjects = $3, monthly_fee = $4, start_date = $5, end_date = $6, is_active = $7, updated_at = NOW()
		WHERE institute_id = $8 AND id = $9
	`
	_, err := r.db.Exec(ctx, query, batch.Name, batch.Description, batch.Subjects, batch.MonthlyFee, batch.StartDate, batch.EndDate, batch.IsActive, batch.InstituteID, batch.ID)
	return err
}

func (r *batchRepo) Delete(ctx context.Context, instituteID, id uuid.UUID) error {
	query := `DELETE FROM batches WHERE institute_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, instituteID, id)
	return err
}

func (r *batchRepo) List(ctx context.Context, instituteID uuid.UUID, limit, offset int) ([]*models.Batch, error) {
	query := `
		SELECT id, institute_id, name, description, subjects, monthly_fee, start_date, end_date, is_active, created_at, updated_at
		FROM batches
		WHERE institute_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, instituteID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBatches(rows)
}

func (r *batchRepo) ListByStudent(ctx context.Context, instituteID, studentID uuid.UUID) ([]*models.Batch, error) {
	query := `
		SELECT b.id, b.institute_id, b.name, b.description, b.subjects, b.monthly_fee, b.start_date, b.end_date, b.is_active, b.created_at, b.updated_at
		FROM batches b
		JOIN student_batches sb ON sb.batch_id = b.id AND sb.is_active = true
		WHERE b.institute_id = $1 AND sb.institute_id = $1 AND sb.student_id = $2
		ORDER BY b.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, instituteID, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBatches(rows)
}

func scanBatches(rows pgx.Rows) ([]*models.Batch, error) {
	var batches []*models.Batch
	for rows.Next() {
		batch := &models.Batch{}
		if err := rows.Scan(&batch.ID, &batch.InstituteID, &batch.Name, &batch.Description, &batch.Subjects, &batch.MonthlyFee, &batch.StartDate, &batch.EndDate, &batch.IsActive, &batch.CreatedAt, &batch.UpdatedAt); err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	return batches, nil
}
