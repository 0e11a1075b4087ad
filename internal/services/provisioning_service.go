package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/random"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/credstore"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/models"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/repositories"
)

type CreateCoachingAdminRequest struct {
	InstituteID uuid.UUID `json:"institute_id"`
	Email       string    `json:"email"`
	Password    string    `json:"password"`
}

type CreateStudentRequest struct {
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	DateOfBirth *string     `json:"date_of_birth"`
	Gender      string      `json:"gender"`
	Phone       string      `json:"phone"`
	Address     string      `json:"address"`
	ParentName  string      `json:"parent_name"`
	ParentPhone string      `json:"parent_phone"`
	ParentEmail string      `json:"parent_email"`
	BatchIDs    []uuid.UUID `json:"batch_ids"`
}

type UpdateStudentRequest struct {
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	Gender      string      `json:"gender"`
	Phone       string      `json:"phone"`
	Address     string      `json:"address"`
	ParentName  string      `json:"parent_name"`
	ParentPhone string      `json:"parent_phone"`
	ParentEmail string      `json:"parent_email"`
	IsActive    *bool       `json:"is_active"`
	BatchIDs    []uuid.UUID `json:"batch_ids"`
}

// ProvisionedStudent is returned on student creation so the admin can
// hand the generated credentials to the student.
type ProvisionedStudent struct {
	Student  *models.Student `json:"student"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
}

// ProvisioningService creates and removes accounts. Each account spans
// two stores (credentials and directory) plus domain rows, so creation
// is ordered and failures after the identity step are compensated.
type ProvisioningService interface {
	CreateCoachingAdmin(ctx context.Context, req *CreateCoachingAdminRequest) (*models.User, error)
	ListCoachingAdmins(ctx context.Context, limit, offset int) ([]*models.User, error)
	DeleteCoachingAdmin(ctx context.Context, userID uuid.UUID) error
	CreateStudent(ctx context.Context, instituteID uuid.UUID, req *CreateStudentRequest) (*ProvisionedStudent, error)
	UpdateStudent(ctx context.Context, instituteID, studentID uuid.UUID, req *UpdateStudentRequest) (*models.Student, error)
	UpdateStudentPassword(ctx context.Context, instituteID, studentID uuid.UUID, newPassword string) error
	DeleteStudent(ctx context.Context, instituteID, studentID uuid.UUID) error
}

type provisioningService struct {
	credStore      credstore.CredentialStore
	userRepo       repositories.UserRepository
	studentRepo    repositories.StudentRepository
	batchRepo      repositories.BatchRepository
	enrollmentRepo repositories.EnrollmentRepository
	instituteRepo  repositories.InstituteRepository
	sessionSvc     SessionService
}

func NewProvisioningService(
	credStore credstore.CredentialStore,
	userRepo repositories.UserRepository,
	studentRepo repositories.StudentRepository,
	batchRepo repositories.BatchRepository,
	enrollmentRepo repositories.EnrollmentRepository,
	instituteRepo repositories.InstituteRepository,
	sessionSvc SessionService,
) ProvisioningService {
	return &provisioningService{
		credStore:      credStore,
		userRepo:       userRepo,
		studentRepo:    studentRepo,
		batchRepo:      batchRepo,
		enrollmentRepo: enrollmentRepo,
		instituteRepo:  instituteRepo,
		sessionSvc:     sessionSvc,
	}
}

// verifyBatches confirms every requested batch exists inside the
// institute. Enrollments must never point across the tenant boundary,
// so this runs before any row is written.
func (s *provisioningService) verifyBatches(ctx context.Context, instituteID uuid.UUID, batchIDs []uuid.UUID) error {
	for _, batchID := range batchIDs {
		if _, err := s.batchRepo.GetByID(ctx, instituteID, batchID); err != nil {
			return ErrBatchNotFound
		}
	}
	return nil
}

func (s *provisioningService) CreateCoachingAdmin(ctx context.Context, req *CreateCoachingAdminRequest) (*models.User, error) {
	institute, err := s.instituteRepo.GetByID(ctx, req.InstituteID)
	if err != nil {
		return nil, ErrInstituteNotFound
	}

	if existing, lookupErr := s.userRepo.GetByEmail(ctx, req.Email); lookupErr == nil && existing != nil {
		return nil, credstore.ErrEmailTaken
	}

	identityID, err := s.credStore.CreateIdentity(ctx, req.Email, req.Password, true)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:          identityID,
		Email:       req.Email,
		Role:        models.RoleCoachingAdmin,
		InstituteID: &institute.ID,
		IsActive:    true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Roll the identity back so no credential exists without a
		// directory binding.
		if delErr := s.credStore.DeleteIdentity(ctx, identityID); delErr != nil {
			log.Printf("ERROR: orphaned identity %s after directory failure: %v", identityID, delErr)
		}
		return nil, fmt.Errorf("failed to create admin directory record: %w", err)
	}

	return user, nil
}

func (s *provisioningService) ListCoachingAdmins(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return s.userRepo.ListByRole(ctx, models.RoleCoachingAdmin, limit, offset)
}

// DeleteCoachingAdmin removes an admin's directory record and identity.
// The role check keeps the route from deleting super admins or students
// through the admin surface.
func (s *provisioningService) DeleteCoachingAdmin(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return ErrAdminNotFound
	}
	if user.Role != models.RoleCoachingAdmin {
		return ErrAdminNotFound
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete directory record: %w", err)
	}
	if err := s.credStore.DeleteIdentity(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete identity: %w", err)
	}
	if err := s.sessionSvc.Purge(ctx, userID); err != nil {
		log.Printf("WARN: failed to purge session for %s: %v", userID, err)
	}
	return nil
}

func (s *provisioningService) CreateStudent(ctx context.Context, instituteID uuid.UUID, req *CreateStudentRequest) (*ProvisionedStudent, error) {
	institute, err := s.instituteRepo.GetByID(ctx, instituteID)
	if err != nil {
		return nil, ErrInstituteNotFound
	}
	if !institute.AcceptsWrites() {
		return nil, ErrSubscriptionClosed
	}

	count, err := s.studentRepo.CountByInstitute(ctx, instituteID)
	if err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}
	if count >= institute.MaxStudents {
		return nil, ErrStudentLimit
	}

	var dateOfBirth *time.Time
	if req.DateOfBirth != nil && *req.DateOfBirth != "" {
		dob, parseErr := time.Parse("2006-01-02", *req.DateOfBirth)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid date_of_birth: %w", parseErr)
		}
		dateOfBirth = &dob
	}

	if err := s.verifyBatches(ctx, instituteID, req.BatchIDs); err != nil {
		return nil, err
	}

	email, password := studentCredentials(req.FirstName, req.LastName, institute.Name)

	identityID, err := s.credStore.CreateIdentity(ctx, email, password, true)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:          identityID,
		Email:       email,
		Role:        models.RoleStudent,
		InstituteID: &instituteID,
		IsActive:    true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if delErr := s.credStore.DeleteIdentity(ctx, identityID); delErr != nil {
			log.Printf("ERROR: orphaned identity %s after directory failure: %v", identityID, delErr)
		}
		return nil, fmt.Errorf("failed to create student directory record: %w", err)
	}

	student := &models.Student{
		ID:          uuid.New(),
		UserID:      identityID,
		InstituteID: instituteID,
		StudentCode: "STU" + random.String(6, random.Numeric),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Gender:      req.Gender,
		Phone:       req.Phone,
		Email:       email,
		Address:     req.Address,
		ParentName:  req.ParentName,
		ParentPhone: req.ParentPhone,
		ParentEmail: req.ParentEmail,
		DateOfBirth: dateOfBirth,
		IsActive:    true,
	}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		if delErr := s.userRepo.Delete(ctx, identityID); delErr != nil {
			log.Printf("ERROR: orphaned directory record %s after student failure: %v", identityID, delErr)
		}
		if delErr := s.credStore.DeleteIdentity(ctx, identityID); delErr != nil {
			log.Printf("ERROR: orphaned identity %s after student failure: %v", identityID, delErr)
		}
		return nil, fmt.Errorf("failed to create student record: %w", err)
	}

	provisioned := &ProvisionedStudent{
		Student:  student,
		Email:    email,
		Password: password,
	}

	// Enrollment failures do not unwind the account; the admin can
	// re-enroll from the batch screen.
	if len(req.BatchIDs) > 0 {
		if err := s.enrollmentRepo.BulkCreate(ctx, newEnrollments(student.ID, instituteID, req.BatchIDs)); err != nil {
			return provisioned, &PartialProvisioningFailure{
				StudentID: student.ID,
				UserID:    identityID,
				Step:      "batch enrollment",
				Err:       err,
			}
		}
	}

	return provisioned, nil
}

func newEnrollments(studentID, instituteID uuid.UUID, batchIDs []uuid.UUID) []*models.Enrollment {
	enrollments := make([]*models.Enrollment, 0, len(batchIDs))
	for _, batchID := range batchIDs {
		enrollments = append(enrollments, &models.Enrollment{
			ID:          uuid.New(),
			StudentID:   studentID,
			BatchID:     batchID,
			InstituteID: instituteID,
			IsActive:    true,
		})
	}
	return enrollments
}

func (s *provisioningService) UpdateStudent(ctx context.Context, instituteID, studentID uuid.UUID, req *UpdateStudentRequest) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, instituteID, studentID)
	if err != nil {
		return nil, ErrStudentNotFound
	}

	if req.BatchIDs != nil {
		if err := s.verifyBatches(ctx, instituteID, req.BatchIDs); err != nil {
			return nil, err
		}
	}

	student.FirstName = req.FirstName
	student.LastName = req.LastName
	student.Gender = req.Gender
	student.Phone = req.Phone
	student.Address = req.Address
	student.ParentName = req.ParentName
	student.ParentPhone = req.ParentPhone
	student.ParentEmail = req.ParentEmail
	if req.IsActive != nil {
		student.IsActive = *req.IsActive
	}

	if err := s.studentRepo.Update(ctx, student); err != nil {
		return nil, fmt.Errorf("failed to update student: %w", err)
	}

	if req.BatchIDs != nil {
		if err := s.enrollmentRepo.DeactivateByStudent(ctx, instituteID, student.ID); err != nil {
			return nil, fmt.Errorf("failed to reset enrollments: %w", err)
		}
		if len(req.BatchIDs) > 0 {
			if err := s.enrollmentRepo.BulkCreate(ctx, newEnrollments(student.ID, instituteID, req.BatchIDs)); err != nil {
				return nil, fmt.Errorf("failed to enroll student: %w", err)
			}
		}
	}

	if req.IsActive != nil {
		// Role/active changes must not outlive the cached session.
		if err := s.sessionSvc.Purge(ctx, student.UserID); err != nil {
			log.Printf("WARN: failed to purge session for %s: %v", student.UserID, err)
		}
		if err := s.userRepo.SetActive(ctx, student.UserID, *req.IsActive); err != nil {
			return nil, fmt.Errorf("failed to update directory record: %w", err)
		}
	}

	return student, nil
}

func (s *provisioningService) UpdateStudentPassword(ctx context.Context, instituteID, studentID uuid.UUID, newPassword string) error {
	student, err := s.studentRepo.GetByID(ctx, instituteID, studentID)
	if err != nil {
		return ErrStudentNotFound
	}
	return s.credStore.UpdatePassword(ctx, student.UserID, newPassword)
}

// DeleteStudent removes the student's enrollments, record, directory
// entry and identity, in that order. Attendance and fee history stay
// for institute reporting.
func (s *provisioningService) DeleteStudent(ctx context.Context, instituteID, studentID uuid.UUID) error {
	student, err := s.studentRepo.GetByID(ctx, instituteID, studentID)
	if err != nil {
		return ErrStudentNotFound
	}

	if err := s.enrollmentRepo.DeleteByStudent(ctx, instituteID, student.ID); err != nil {
		return fmt.Errorf("failed to delete enrollments: %w", err)
	}
	if err := s.studentRepo.Delete(ctx, instituteID, student.ID); err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	if err := s.userRepo.Delete(ctx, student.UserID); err != nil {
		return fmt.Errorf("failed to delete directory record: %w", err)
	}
	if err := s.credStore.DeleteIdentity(ctx, student.UserID); err != nil {
		return fmt.Errorf("failed to delete identity: %w", err)
	}

	if err := s.sessionSvc.Purge(ctx, student.UserID); err != nil {
		log.Printf("WARN: failed to purge session for %s: %v", student.UserID, err)
	}

	return nil
}

// studentCredentials derives a deterministic login email and a password
// the admin can read out to the student.
func studentCredentials(firstName, lastName, instituteName string) (email, password string) {
	domain := sanitizeName(instituteName)
	if domain == "" {
		domain = "institute"
	}
	email = fmt.Sprintf("%s.%s@%s.com", sanitizeName(firstName), sanitizeName(lastName), domain)
	password = domain + random.String(4, random.Numeric)
	return email, password
}

func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
