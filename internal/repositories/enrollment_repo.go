package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/models"
)

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	BulkCreate(ctx context.Context, enrollments []*models.Enrollment) error
	DeactivateByStudent(ctx context.Context, instituteID, studentID uuid.UUID) error
	DeleteByStudent(ctx context.Context, instituteID, studentID uuid.UUID) error
	ListByStudent(ctx context.Context, instituteID, studentID uuid.UUID) ([]*models.Enrollment, error)
	ListByBatch(ctx context.Context, instituteID, batchID uuid.UUID) ([]*models.Enrollment, error)
	CountActiveByBatch(ctx context.Context, instituteID, batchID uuid.UUID) (int, error)
}

type enrollmentRepo struct {
	db DB
}

func NewEnrollmentRepo(db DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

func (r *enrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	query := `
		INSERT INTO student_batches (id, student_id, batch_id, institute_id, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.db.Exec(ctx, query, enrollment.ID, enrollment.StudentID, enrollment.BatchID, enrollment.InstituteID, enrollment.IsActive)
	return err
}

func (r *enrollmentRepo) BulkCreate(ctx context.Context, enrollments []*models.Enrollment) error {
	for _, enrollment := range enrollments {
		if err := r.Create(ctx, enrollment); err != nil {
			return err
		}
	}
	return nil
}

func (r *enrollmentRepo) DeactivateByStudent(ctx context.Context, instituteID, studentID uuid.UUID) error {
	query := `UPDATE student_batches SET is_active = false WHERE institute_id = $1 AND student_id = $2`
	_, err := r.db.Exec(ctx, query, instituteID, studentID)
	return err
}

func (r *enrollmentRepo) DeleteByStudent(ctx context.Context, instituteID, studentID uuid.UUID) error {
	query := `DELETE FROM student_batches WHERE institute_id = $1 AND student_id = $2`
	_, err := r.db.Exec(ctx, query, instituteID, studentID)
	return err
}

func (r *enrollmentRepo) ListByStudent(ctx context.Context, instituteID, studentID uuid.UUID) ([]*models.Enrollment, error) {
	query := `
		SELECT id, student_id, batch_id, institute_id, is_active, created_at
		FROM student_batches
		WHERE institute_id = $1 AND student_id = $2
	`
	rows, err := r.db.Query(ctx, query, instituteID, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []*models.Enrollment
	for rows.Next() {
		enrollment := &models.Enrollment{}
		if err := rows.Scan(&enrollment.ID, &enrollment.StudentID, &enrollment.BatchID, &enrollment.InstituteID, &enrollment.IsActive, &enrollment.CreatedAt); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, enrollment)
	}
	return enrollments, nil
}

func (r *enrollmentRepo) ListByBatch(ctx context.Context, instituteID, batchID uuid.UUID) ([]*models.Enrollment, error) {
	query := `
		SELECT id, student_id, batch_id, institute_id, is_active, created_at
		FROM student_batches
		WHERE institute_id = $1 AND batch_id = $2 AND is_active = true
	`
	rows, err := r.db.Query(ctx, query, instituteID, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []*models.Enrollment
	for rows.Next() {
		enrollment := &models.Enrollment{}
		if err := rows.Scan(&enrollment.ID, &enrollment.StudentID, &enrollment.BatchID, &enrollment.InstituteID, &enrollment.IsActive, &enrollment.CreatedAt); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, enrollment)
	}
	return enrollments, nil
}

func (r *enrollmentRepo) CountActiveByBatch(ctx context.Context, instituteID, batchID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM student_batches WHERE institute_id = $1 AND batch_id = $2 AND is_active = true`
	err := r.db.QueryRow(ctx, query, instituteID, batchID).Scan(&count)
	return count, err
}
