package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/credstore"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/models"
)

type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) Authenticate(ctx context.Context, email, password string) (uuid.UUID, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockCredentialStore) CreateIdentity(ctx context.Context, email, password string, preVerified bool) (uuid.UUID, error) {
	args := m.Called(ctx, email, password, preVerified)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockCredentialStore) DeleteIdentity(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCredentialStore) UpdatePassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	args := m.Called(ctx, id, newPassword)
	return args.Error(0)
}

type MockStudentRepository struct {
	mock.Mock
}

func (m *MockStudentRepository) Create(ctx context.Context, student *models.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

func (m *MockStudentRepository) GetByID(ctx context.Context, instituteID, id uuid.UUID) (*models.Student, error) {
	args := m.Called(ctx, instituteID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Student), args.Error(1)
}

func (m *MockStudentRepository) GetByUserID(ctx context.Context, instituteID, userID uuid.UUID) (*models.Student, error) {
	args := m.Called(ctx, instituteID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Student), args.Error(1)
}

func (m *MockStudentRepository) Update(ctx context.Context, student *models.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

func (m *MockStudentRepository) Delete(ctx context.Context, instituteID, id uuid.UUID) error {
	args := m.Called(ctx, instituteID, id)
	return args.Error(0)
}

func (m *MockStudentRepository) List(ctx context.Context, instituteID uuid.UUID, limit, offset int) ([]*models.Student, error) {
	args := m.Called(ctx, instituteID, limit, offset)
	return args.Get(0).([]*models.Student), args.Error(1)
}

func (m *MockStudentRepository) CountByInstitute(ctx context.Context, instituteID uuid.UUID) (int, error) {
	args := m.Called(ctx, instituteID)
	return args.Int(0), args.Error(1)
}

type MockEnrollmentRepository struct {
	mock.Mock
}

func (m *MockEnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	args := m.Called(ctx, enrollment)
	return args.Error(0)
}

func (m *MockEnrollmentRepository) BulkCreate(ctx context.Context, enrollments []*models.Enrollment) error {
	args := m.Called(ctx, enrollments)
	return args.Error(0)
}

func (m *MockEnrollmentRepository) DeactivateByStudent(ctx context.Context, instituteID, studentID uuid.UUID) error {
	args := m.Called(ctx, instituteID, studentID)
	return args.Error(0)
}

func (m *MockEnrollmentRepository) DeleteByStudent(ctx context.Context, instituteID, studentID uuid.UUID) error {
	args := m.Called(ctx, instituteID, studentID)
	return args.Error(0)
}

func (m *MockEnrollmentRepository) ListByStudent(ctx context.Context, instituteID, studentID uuid.UUID) ([]*models.Enrollment, error) {
	args := m.Called(ctx, instituteID, studentID)
	return args.Get(0).([]*models.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepository) ListByBatch(ctx context.Context, instituteID, batchID uuid.UUID) ([]*models.Enrollment, error) {
	args := m.Called(ctx, instituteID, batchID)
	return args.Get(0).([]*models.Enrollment), args.Error(1)
}

func (m *MockEnrollmentRepository) CountActiveByBatch(ctx context.Context, instituteID, batchID uuid.UUID) (int, error) {
	args := m.Called(ctx, instituteID, batchID)
	return args.Int(0), args.Error(1)
}

type MockInstituteRepository struct {
	mock.Mock
}

func (m *MockInstituteRepository) Create(ctx context.Context, institute *models.Institute) error {
	args := m.Called(ctx, institute)
	return args.Error(0)
}

func (m *MockInstituteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Institute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Institute), args.Error(1)
}

func (m *MockInstituteRepository) Update(ctx context.Context, institute *models.Institute) error {
	args := m.Called(ctx, institute)
	return args.Error(0)
}

func (m *MockInstituteRepository) UpdateSubscriptionStatus(ctx context.Context, id uuid.UUID, status string, expiresAt *time.Time) error {
	args := m.Called(ctx, id, status, expiresAt)
	return args.Error(0)
}

func (m *MockInstituteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInstituteRepository) List(ctx context.Context, limit, offset int) ([]*models.Institute, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Institute), args.Error(1)
}

func (m *MockInstituteRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockInstituteRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Resolve(ctx context.Context, identityID uuid.UUID) (*models.Session, error) {
	args := m.Called(ctx, identityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionService) Purge(ctx context.Context, identityID uuid.UUID) error {
	args := m.Called(ctx, identityID)
	return args.Error(0)
}

type ProvisioningServiceTestSuite struct {
	suite.Suite
	mockCreds       *MockCredentialStore
	mockUsers       *MockUserRepository
	mockStudents    *MockStudentRepository
	mockBatches     *MockBatchRepository
	mockEnrollments *MockEnrollmentRepository
	mockInstitutes  *MockInstituteRepository
	mockSessions    *MockSessionService
	service         ProvisioningService

	instituteID uuid.UUID
	institute   *models.Institute
}

func (suite *ProvisioningServiceTestSuite) SetupTest() {
	suite.mockCreds = &MockCredentialStore{}
	suite.mockUsers = &MockUserRepository{}
	suite.mockStudents = &MockStudentRepository{}
	suite.mockBatches = &MockBatchRepository{}
	suite.mockEnrollments = &MockEnrollmentRepository{}
	suite.mockInstitutes = &MockInstituteRepository{}
	suite.mockSessions = &MockSessionService{}

	suite.service = NewProvisioningService(
		suite.mockCreds,
		suite.mockUsers,
		suite.mockStudents,
		suite.mockBatches,
		suite.mockEnrollments,
		suite.mockInstitutes,
		suite.mockSessions,
	)

	suite.instituteID = uuid.New()
	suite.institute = &models.Institute{
		ID:                 suite.instituteID,
		Name:               "Sunrise Academy",
		SubscriptionStatus: models.SubscriptionActive,
		MaxStudents:        100,
	}
}

func (suite *ProvisioningServiceTestSuite) TearDownTest() {
	suite.mockCreds.AssertExpectations(suite.T())
	suite.mockUsers.AssertExpectations(suite.T())
	suite.mockStudents.AssertExpectations(suite.T())
	suite.mockBatches.AssertExpectations(suite.T())
	suite.mockEnrollments.AssertExpectations(suite.T())
	suite.mockInstitutes.AssertExpectations(suite.T())
	suite.mockSessions.AssertExpectations(suite.T())
}

func TestProvisioningServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProvisioningServiceTestSuite))
}

func (suite *ProvisioningServiceTestSuite) TestCreateStudent_Success() {
	ctx := context.Background()
	identityID := uuid.New()
	batchID := uuid.New()

	suite.mockInstitutes.On("GetByID", ctx, suite.instituteID).Return(suite.institute, nil)
	suite.mockStudents.On("CountByInstitute", ctx, suite.instituteID).Return(10, nil)
	suite.mockBatches.On("GetByID", ctx, suite.instituteID, batchID).Return(&models.Batch{ID: batchID, InstituteID: suite.instituteID}, nil)
	suite.mockCreds.On("CreateIdentity", ctx, "john.doe@sunriseacademy.com", mock.AnythingOfType("string"), true).Return(identityID, nil)
	suite.mockUsers.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil).Run(func(args mock.Arguments) {
		user := args.Get(1).(*models.User)
		assert.Equal(suite.T(), models.RoleStudent, user.Role)
		assert.Equal(suite.T(), suite.instituteID, *user.InstituteID)
		assert.True(suite.T(), user.IsActive)
	})
	suite.mockStudents.On("Create", ctx, mock.AnythingOfType("*models.Student")).Return(nil)
	suite.mockEnrollments.On("BulkCreate", ctx, mock.AnythingOfType("[]*models.Enrollment")).Return(nil).Run(func(args mock.Arguments) {
		enrollments := args.Get(1).([]*models.Enrollment)
		assert.Len(suite.T(), enrollments, 1)
		assert.Equal(suite.T(), batchID, enrollments[0].BatchID)
		assert.Equal(suite.T(), suite.instituteID, enrollments[0].InstituteID)
	})

	provisioned, err := suite.service.CreateStudent(ctx, suite.instituteID, &CreateStudentRequest{
		FirstName: "John",
		LastName:  "Doe",
		BatchIDs:  []uuid.UUID{batchID},
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "john.doe@sunriseacademy.com", provisioned.Email)
	assert.Contains(suite.T(), provisioned.Password, "sunriseacademy")
	assert.Equal(suite.T(), identityID, provisioned.Student.UserID)
}

func (suite *ProvisioningServiceTestSuite) TestCreateStudent_StudentLimitReached() {
	ctx := context.Background()

	suite.mockInstitutes.On("GetByID", ctx, suite.instituteID).Return(suite.institute, nil)
	suite.mockStudents.On("CountByInstitute", ctx, suite.instituteID).Return(100, nil)

	provisioned, err := suite.service.CreateStudent(ctx, suite.instituteID, &CreateStudentRequest{
		FirstName: "John",
		LastName:  "Doe",
	})
	assert.Nil(suite.T(), provisioned)
	assert.ErrorIs(suite.T(), err, ErrStudentLimit)
	suite.mockCreds.AssertNotCalled(suite.T(), "CreateIdentity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ProvisioningServiceTestSuite) TestCreateStudent_SuspendedInstitute() {
	ctx := context.Background()
	suite.institute.SubscriptionStatus = models.SubscriptionSuspended

	suite.mockInstitutes.On("GetByID", ctx, suite.instituteID).Return(suite.institute, nil)

	provisioned, err := suite.service.CreateStudent(ctx, suite.instituteID, &CreateStudentRequest{
		FirstName: "John",
		LastName:  "Doe",
	})
	assert.Nil(suite.T(), provisioned)
	assert.ErrorIs(suite.T(), err, ErrSubscriptionClosed)
}

func (suite *ProvisioningServiceTestSuite) TestCreateStudent_DirectoryFailureRollsBackIdentity() {
	ctx := context.Background()
	identityID := uuid.New()

	suite.mockInstitutes.On("GetByID", ctx, suite.instituteID).Return(suite.institute, nil)
	suite.mockStudents.On("CountByInstitute", ctx, suite.instituteID).Return(10, nil)
	suite.mockCreds.On("CreateIdentity", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("string"), true).Return(identityID, nil)
	suite.mockUsers.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(errors.New("constraint violation"))
	suite.mockCreds.On("DeleteIdentity", ctx, identityID).Return(nil)

	provisioned, err := suite.service.CreateStudent(ctx, suite.instituteID, &CreateStudentRequest{
		FirstName: "John",
		LastName:  "Doe",
	})
	assert.Nil(suite.T(), provisioned)
	assert.Error(suite.T(), err)
}

func (suite *ProvisioningServiceTestSuite) TestCreateStudent_EnrollmentFailureIsPartial() {
	ctx := context.Background()
	identityID := uuid.New()
	batchID := uuid.New()

	suite.mockInstitutes.On("GetByID", ctx, suite.instituteID).Return(suite.institute, nil)
	suite.mockStudents.On("CountByInstitute", ctx, suite.instituteID).Return(10, nil)
	suite.mockBatches.On("GetByID", ctx, suite.instituteID, batchID).Return(&models.Batch{ID: batchID, InstituteID: suite.instituteID}, nil)
	suite.mockCreds.On("CreateIdentity", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("string"), true).Return(identityID, nil)
	suite.mockUsers.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil)
	suite.mockStudents.On("Create", ctx, mock.AnythingOfType("*models.Student")).Return(nil)
	suite.mockEnrollments.On("BulkCreate", ctx, mock.AnythingOfType("[]*models.Enrollment")).Return(errors.New("batch gone"))

	provisioned, err := suite.service.CreateStudent(ctx, suite.instituteID, &CreateStudentRequest{
		FirstName: "John",
		LastName:  "Doe",
		BatchIDs:  []uuid.UUID{batchID},
	})

	var partial *PartialProvisioningFailure
	assert.ErrorAs(suite.T(), err, &partial)
	assert.NotNil(suite.T(), provisioned)
	assert.Equal(suite.T(), provisioned.Student.ID, partial.StudentID)
	// The account stays; nothing is rolled back.
	suite.mockCreds.AssertNotCalled(suite.T(), "DeleteIdentity", mock.Anything, mock.Anything)
}

func (suite *ProvisioningServiceTestSuite) TestCreateStudent_BatchOutsideInstituteRejected() {
	ctx := context.Background()
	foreignBatchID := uuid.New()

	suite.mockInstitutes.On("GetByID", ctx, suite.instituteID).Return(suite.institute, nil)
	suite.mockStudents.On("CountByInstitute", ctx, suite.instituteID).Return(10, nil)
	// The tenant-scoped lookup finds nothing for another institute's batch.
	suite.mockBatches.On("GetByID", ctx, suite.instituteID, foreignBatchID).Return(nil, errors.New("no rows in result set"))

	provisioned, err := suite.service.CreateStudent(ctx, suite.instituteID, &CreateStudentRequest{
		FirstName: "John",
		LastName:  "Doe",
		BatchIDs:  []uuid.UUID{foreignBatchID},
	})
	assert.Nil(suite.T(), provisioned)
	assert.ErrorIs(suite.T(), err, ErrBatchNotFound)
	// No account and no enrollment may come out of a cross-institute request.
	suite.mockCreds.AssertNotCalled(suite.T(), "CreateIdentity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockEnrollments.AssertNotCalled(suite.T(), "BulkCreate", mock.Anything, mock.Anything)
}

func (suite *ProvisioningServiceTestSuite) TestUpdateStudent_BatchOutsideInstituteRejected() {
	ctx := context.Background()
	studentID := uuid.New()
	foreignBatchID := uuid.New()

	suite.mockStudents.On("GetByID", ctx, suite.instituteID, studentID).Return(&models.Student{
		ID:          studentID,
		UserID:      uuid.New(),
		InstituteID: suite.instituteID,
	}, nil)
	suite.mockBatches.On("GetByID", ctx, suite.instituteID, foreignBatchID).Return(nil, errors.New("no rows in result set"))

	student, err := suite.service.UpdateStudent(ctx, suite.instituteID, studentID, &UpdateStudentRequest{
		FirstName: "John",
		LastName:  "Doe",
		BatchIDs:  []uuid.UUID{foreignBatchID},
	})
	assert.Nil(suite.T(), student)
	assert.ErrorIs(suite.T(), err, ErrBatchNotFound)
	suite.mockStudents.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything)
	suite.mockEnrollments.AssertNotCalled(suite.T(), "DeactivateByStudent", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ProvisioningServiceTestSuite) TestDeleteStudent_CascadeOrder() {
	ctx := context.Background()
	studentID := uuid.New()
	userID := uuid.New()

	student := &models.Student{
		ID:          studentID,
		UserID:      userID,
		InstituteID: suite.instituteID,
	}

	suite.mockStudents.On("GetByID", ctx, suite.instituteID, studentID).Return(student, nil)
	suite.mockEnrollments.On("DeleteByStudent", ctx, suite.instituteID, studentID).Return(nil)
	suite.mockStudents.On("Delete", ctx, suite.instituteID, studentID).Return(nil)
	suite.mockUsers.On("Delete", ctx, userID).Return(nil)
	suite.mockCreds.On("DeleteIdentity", ctx, userID).Return(nil)
	suite.mockSessions.On("Purge", ctx, userID).Return(nil)

	assert.NoError(suite.T(), suite.service.DeleteStudent(ctx, suite.instituteID, studentID))
}

func (suite *ProvisioningServiceTestSuite) TestDeleteStudent_WrongInstitute() {
	ctx := context.Background()
	studentID := uuid.New()

	suite.mockStudents.On("GetByID", ctx, suite.instituteID, studentID).Return(nil, errors.New("no rows in result set"))

	err := suite.service.DeleteStudent(ctx, suite.instituteID, studentID)
	assert.ErrorIs(suite.T(), err, ErrStudentNotFound)
	suite.mockEnrollments.AssertNotCalled(suite.T(), "DeleteByStudent", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ProvisioningServiceTestSuite) TestCreateCoachingAdmin_DirectoryFailureRollsBackIdentity() {
	ctx := context.Background()
	identityID := uuid.New()

	suite.mockInstitutes.On("GetByID", ctx, suite.instituteID).Return(suite.institute, nil)
	suite.mockUsers.On("GetByEmail", ctx, "admin@sunrise.com").Return(nil, errors.New("no rows in result set"))
	suite.mockCreds.On("CreateIdentity", ctx, "admin@sunrise.com", "secret123", true).Return(identityID, nil)
	suite.mockUsers.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(errors.New("duplicate email"))
	suite.mockCreds.On("DeleteIdentity", ctx, identityID).Return(nil)

	user, err := suite.service.CreateCoachingAdmin(ctx, &CreateCoachingAdminRequest{
		InstituteID: suite.instituteID,
		Email:       "admin@sunrise.com",
		Password:    "secret123",
	})
	assert.Nil(suite.T(), user)
	assert.Error(suite.T(), err)
}

func (suite *ProvisioningServiceTestSuite) TestCreateCoachingAdmin_DuplicateEmailRejected() {
	ctx := context.Background()

	suite.mockInstitutes.On("GetByID", ctx, suite.instituteID).Return(suite.institute, nil)
	suite.mockUsers.On("GetByEmail", ctx, "admin@sunrise.com").Return(&models.User{
		ID:    uuid.New(),
		Email: "admin@sunrise.com",
		Role:  models.RoleCoachingAdmin,
	}, nil)

	user, err := suite.service.CreateCoachingAdmin(ctx, &CreateCoachingAdminRequest{
		InstituteID: suite.instituteID,
		Email:       "admin@sunrise.com",
		Password:    "secret123",
	})
	assert.Nil(suite.T(), user)
	assert.ErrorIs(suite.T(), err, credstore.ErrEmailTaken)
	suite.mockCreds.AssertNotCalled(suite.T(), "CreateIdentity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ProvisioningServiceTestSuite) TestDeleteCoachingAdmin_Cascade() {
	ctx := context.Background()
	userID := uuid.New()

	suite.mockUsers.On("GetByID", ctx, userID).Return(&models.User{
		ID:          userID,
		Role:        models.RoleCoachingAdmin,
		InstituteID: &suite.instituteID,
	}, nil)
	suite.mockUsers.On("Delete", ctx, userID).Return(nil)
	suite.mockCreds.On("DeleteIdentity", ctx, userID).Return(nil)
	suite.mockSessions.On("Purge", ctx, userID).Return(nil)

	assert.NoError(suite.T(), suite.service.DeleteCoachingAdmin(ctx, userID))
}

func (suite *ProvisioningServiceTestSuite) TestDeleteCoachingAdmin_RejectsOtherRoles() {
	ctx := context.Background()
	userID := uuid.New()

	suite.mockUsers.On("GetByID", ctx, userID).Return(&models.User{
		ID:   userID,
		Role: models.RoleSuperAdmin,
	}, nil)

	err := suite.service.DeleteCoachingAdmin(ctx, userID)
	assert.ErrorIs(suite.T(), err, ErrAdminNotFound)
	suite.mockUsers.AssertNotCalled(suite.T(), "Delete", mock.Anything, mock.Anything)
	suite.mockCreds.AssertNotCalled(suite.T(), "DeleteIdentity", mock.Anything, mock.Anything)
}

func (suite *ProvisioningServiceTestSuite) TestListCoachingAdmins() {
	ctx := context.Background()

	suite.mockUsers.On("ListByRole", ctx, models.RoleCoachingAdmin, 50, 0).Return([]*models.User{
		{ID: uuid.New(), Role: models.RoleCoachingAdmin, InstituteID: &suite.instituteID},
	}, nil)

	admins, err := suite.service.ListCoachingAdmins(ctx, 50, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), admins, 1)
}

func (suite *ProvisioningServiceTestSuite) TestUpdateStudentPassword() {
	ctx := context.Background()
	studentID := uuid.New()
	userID := uuid.New()

	suite.mockStudents.On("GetByID", ctx, suite.instituteID, studentID).Return(&models.Student{
		ID:     studentID,
		UserID: userID,
	}, nil)
	suite.mockCreds.On("UpdatePassword", ctx, userID, "newpassword1").Return(nil)

	assert.NoError(suite.T(), suite.service.UpdateStudentPassword(ctx, suite.instituteID, studentID, "newpassword1"))
}
