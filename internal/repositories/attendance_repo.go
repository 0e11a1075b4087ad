package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/models"
)

type AttendanceRepository interface {
	Upsert(ctx context.Context, record *models.Attendance) error
	ListByBatchDate(ctx context.Context, instituteID, batchID uuid.UUID, date time.Time) ([]*models.Attendance, error)
	ListByStudent(ctx context.Context, instituteID, studentID uuid.UUID, limit, offset int) ([]*models.Attendance, error)
	SummaryByStudent(ctx context.Context, instituteID, studentID uuid.UUID) (*models.AttendanceSummary, error)
}

type attendanceRepo struct {
	db DB
}

func NewAttendanceRepo(db DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

// Upsert keeps one record per student, batch and date. Marking twice on
// the same day overwrites the status.
func (r *attendanceRepo) Upsert(ctx context.Context, record *models.Attendance) error {
	query := `
		INSERT INTO attendance (id, institute_id, student_id, batch_id, date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (student_id, batch_id, date)
		DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, record.ID, record.InstituteID, record.StudentID, record.BatchID, record.Date, record.Status)
	return err
}

func (r *attendanceRepo) ListByBatchDate(ctx context.Context, instituteID, batchID uuid.UUID, date time.Time) ([]*models.Attendance, error) {
	query := `
		SELECT id, institute_id, student_id, batch_id, date, status, created_at, updated_at
		FROM attendance
		WHERE institute_id = $1 AND batch_id = $2 AND date = $3
	`
	rows, err := r.db.Query(ctx, query, instituteID, batchID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.Attendance
	for rows.Next() {
		record := &models.Attendance{}
		if err := rows.Scan(&record.ID, &record.InstituteID, &record.StudentID, &record.BatchID, &record.Date, &record.Status, &record.CreatedAt, &record.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *attendanceRepo) ListByStudent(ctx context.Context, instituteID, studentID uuid.UUID, limit, offset int) ([]*models.Attendance, error) {
	query := `
		SELECT id, institute_id, student_id, batch_id, date, status, created_at, updated_at
		FROM attendance
		WHERE institute_id = $1 AND student_id = $2
		ORDER BY date DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, instituteID, studentID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.Attendance
	for rows.Next() {
		record := &models.Attendance{}
		if err := rows.Scan(&record.ID, &record.InstituteID, &record.StudentID, &record.BatchID, &record.Date, &record.Status, &record.CreatedAt, &record.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *attendanceRepo) SummaryByStudent(ctx context.Context, instituteID, studentID uuid.UUID) (*models.AttendanceSummary, error) {
	summary := &models.AttendanceSummary{}
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'present'),
		       COUNT(*) FILTER (WHERE status = 'absent'),
		       COUNT(*) FILTER (WHERE status = 'late')
		FROM attendance
		WHERE institute_id = $1 AND student_id = $2
	`
	err := r.db.QueryRow(ctx, query, instituteID, studentID).Scan(&summary.Total, &summary.Present, &summary.Absent, &summary.Late)
	if err != nil {
		return nil, err
	}
	return summary, nil
}
