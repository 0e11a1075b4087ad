package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/models"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/repositories"
)

type MarkAttendanceRequest struct {
	StudentID uuid.UUID `json:"student_id"`
	BatchID   uuid.UUID `json:"batch_id"`
	Date      string    `json:"date"`
	Status    string    `json:"status"`
}

type BulkMarkAttendanceRequest struct {
	BatchID uuid.UUID         `json:"batch_id"`
	Date    string            `json:"date"`
	Entries []AttendanceEntry `json:"entries"`
}

type AttendanceEntry struct {
	StudentID uuid.UUID `json:"student_id"`
	Status    string    `json:"status"`
}

// StudentAttendanceReport is a student's history plus aggregate.
type StudentAttendanceReport struct {
	Records    []*models.Attendance      `json:"records"`
	Summary    *models.AttendanceSummary `json:"summary"`
	Percentage float64                   `json:"percentage"`
}

type AttendanceService interface {
	MarkAttendance(ctx context.Context, instituteID uuid.UUID, req *MarkAttendanceRequest) (*models.Attendance, error)
	BulkMarkAttendance(ctx context.Context, instituteID uuid.UUID, req *BulkMarkAttendanceRequest) (int, error)
	ListByBatchDate(ctx context.Context, instituteID, batchID uuid.UUID, date string) ([]*models.Attendance, error)
	StudentReport(ctx context.Context, instituteID, studentID uuid.UUID, limit, offset int) (*StudentAttendanceReport, error)
}

type attendanceService struct {
	attendanceRepo repositories.AttendanceRepository
	batchRepo      repositories.BatchRepository
	studentRepo    repositories.StudentRepository
}

func NewAttendanceService(attendanceRepo repositories.AttendanceRepository, batchRepo repositories.BatchRepository, studentRepo repositories.StudentRepository) AttendanceService {
	return &attendanceService{
		attendanceRepo: attendanceRepo,
		batchRepo:      batchRepo,
		studentRepo:    studentRepo,
	}
}

func (s *attendanceService) MarkAttendance(ctx context.Context, instituteID uuid.UUID, req *MarkAttendanceRequest) (*models.Attendance, error) {
	if !models.ValidAttendanceStatus(req.Status) {
		return nil, fmt.Errorf("invalid attendance status: %s", req.Status)
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}

	if _, err := s.batchRepo.GetByID(ctx, instituteID, req.BatchID); err != nil {
		return nil, ErrBatchNotFound
	}
	if _, err := s.studentRepo.GetByID(ctx, instituteID, req.StudentID); err != nil {
		return nil, ErrStudentNotFound
	}

	record := &models.Attendance{
		ID:          uuid.New(),
		StudentID:   req.StudentID,
		BatchID:     req.BatchID,
		InstituteID: instituteID,
		Date:        date,
		Status:      req.Status,
	}
	if err := s.attendanceRepo.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to mark attendance: %w", err)
	}
	return record, nil
}

// BulkMarkAttendance marks a whole batch for one date and returns how
// many entries were written. Bad entries fail the call before any write.
func (s *attendanceService) BulkMarkAttendance(ctx context.Context, instituteID uuid.UUID, req *BulkMarkAttendanceRequest) (int, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return 0, fmt.Errorf("invalid date: %w", err)
	}

	if _, err := s.batchRepo.GetByID(ctx, instituteID, req.BatchID); err != nil {
		return 0, ErrBatchNotFound
	}

	for _, entry := range req.Entries {
		if !models.ValidAttendanceStatus(entry.Status) {
			return 0, fmt.Errorf("invalid attendance status for student %s: %s", entry.StudentID, entry.Status)
		}
		// Every entry must resolve inside the caller's institute before
		// anything is written.
		if _, err := s.studentRepo.GetByID(ctx, instituteID, entry.StudentID); err != nil {
			return 0, ErrStudentNotFound
		}
	}

	marked := 0
	for _, entry := range req.Entries {
		record := &models.Attendance{
			ID:          uuid.New(),
			StudentID:   entry.StudentID,
			BatchID:     req.BatchID,
			InstituteID: instituteID,
			Date:        date,
			Status:      entry.Status,
		}
		if err := s.attendanceRepo.Upsert(ctx, record); err != nil {
			return marked, fmt.Errorf("failed to mark attendance for student %s: %w", entry.StudentID, err)
		}
		marked++
	}
	return marked, nil
}

func (s *attendanceService) ListByBatchDate(ctx context.Context, instituteID, batchID uuid.UUID, dateStr string) ([]*models.Attendance, error) {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}
	return s.attendanceRepo.ListByBatchDate(ctx, instituteID, batchID, date)
}

func (s *attendanceService) StudentReport(ctx context.Context, instituteID, studentID uuid.UUID, limit, offset int) (*StudentAttendanceReport, error) {
	records, err := s.attendanceRepo.ListByStudent(ctx, instituteID, studentID, limit, offset)
	if err != nil {
		return nil, err
	}

	summary, err := s.attendanceRepo.SummaryByStudent(ctx, instituteID, studentID)
	if err != nil {
		return nil, err
	}

	return &StudentAttendanceReport{
		Records:    records,
		Summary:    summary,
		Percentage: summary.Percentage(),
	}, nil
}
