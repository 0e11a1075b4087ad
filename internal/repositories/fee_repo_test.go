package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type FeeRepoTestSuite struct {
	suite.Suite
	mock        pgxmock.PgxPoolIface
	repo        FeeRepository
	instituteID uuid.UUID
	studentID   uuid.UUID
	context     context.Context
}

func (suite *FeeRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewFeeRepo(mock)
	suite.instituteID = uuid.New()
	suite.studentID = uuid.New()
	suite.context = context.Background()
}

func (suite *FeeRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestFeeRepoTestSuite(t *testing.T) {
	suite.Run(t, new(FeeRepoTestSuite))
}

func (suite *FeeRepoTestSuite) TestMarkOverdue_ReturnsRowsAffected() {
	asOf := time.Now()

	suite.mock.ExpectExec(`(?s)UPDATE fee_payments\s+SET status = 'overdue', updated_at = NOW\(\)\s+WHERE institute_id = \$1 AND status = 'pending' AND due_date < \$2`).
		WithArgs(suite.instituteID, asOf).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	updated, err := suite.repo.MarkOverdue(suite.context, suite.instituteID, asOf)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(3), updated)
}

func (suite *FeeRepoTestSuite) TestMarkOverdue_NothingPending() {
	asOf := time.Now()

	suite.mock.ExpectExec(`(?s)UPDATE fee_payments\s+SET status = 'overdue'`).
		WithArgs(suite.instituteID, asOf).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	updated, err := suite.repo.MarkOverdue(suite.context, suite.instituteID, asOf)
	assert.NoError(suite.T(), err)
	assert.Zero(suite.T(), updated)
}

func (suite *FeeRepoTestSuite) TestSummaryByStudent_ScopedToInstitute() {
	suite.mock.ExpectQuery(`(?s)SELECT COALESCE\(SUM\(amount\), 0\),.+FROM fee_payments\s+WHERE institute_id = \$1 AND student_id = \$2`).
		WithArgs(suite.instituteID, suite.studentID).
		WillReturnRows(pgxmock.NewRows([]string{"total", "paid", "pending", "overdue"}).
			AddRow(5000.0, 3000.0, 1500.0, 500.0))

	summary, err := suite.repo.SummaryByStudent(suite.context, suite.instituteID, suite.studentID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 5000.0, summary.Total)
	assert.Equal(suite.T(), 500.0, summary.Overdue)
}
