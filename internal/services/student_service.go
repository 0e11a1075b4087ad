package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/models"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/repositories"
)

// StudentService is read-side access to student records. Account
// lifecycle (create, delete, password) lives in ProvisioningService.
type StudentService interface {
	GetStudent(ctx context.Context, instituteID, studentID uuid.UUID) (*models.Student, error)
	GetStudentByUser(ctx context.Context, instituteID, userID uuid.UUID) (*models.Student, error)
	ListStudents(ctx context.Context, instituteID uuid.UUID, limit, offset int) ([]*models.Student, error)
	CountStudents(ctx context.Context, instituteID uuid.UUID) (int, error)
}

type studentService struct {
	studentRepo repositories.StudentRepository
}

func NewStudentService(studentRepo repositories.StudentRepository) StudentService {
	return &studentService{studentRepo: studentRepo}
}

func (s *studentService) GetStudent(ctx context.Context, instituteID, studentID uuid.UUID) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, instituteID, studentID)
	if err != nil {
		return nil, ErrStudentNotFound
	}
	return student, nil
}

func (s *studentService) GetStudentByUser(ctx context.Context, instituteID, userID uuid.UUID) (*models.Student, error) {
	student, err := s.studentRepo.GetByUserID(ctx, instituteID, userID)
	if err != nil {
		return nil, ErrStudentNotFound
	}
	return student, nil
}

func (s *studentService) ListStudents(ctx context.Context, instituteID uuid.UUID, limit, offset int) ([]*models.Student, error) {
	return s.studentRepo.List(ctx, instituteID, limit, offset)
}

func (s *studentService) CountStudents(ctx context.Context, instituteID uuid.UUID) (int, error) {
	return s.studentRepo.CountByInstitute(ctx, instituteID)
}
