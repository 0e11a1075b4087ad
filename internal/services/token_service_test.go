package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/models"
)

type TokenServiceTestSuite struct {
	suite.Suite
	mockCache *MockCacheService
	service   TokenService
}

func (suite *TokenServiceTestSuite) SetupTest() {
	suite.mockCache = &MockCacheService{}
	suite.service = NewTokenService(suite.mockCache, "test-secret", 3600, 7*24*3600)
}

func (suite *TokenServiceTestSuite) TearDownTest() {
	suite.mockCache.AssertExpectations(suite.T())
}

func TestTokenServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TokenServiceTestSuite))
}

func (suite *TokenServiceTestSuite) TestGenerateTokens_RefreshRoundTrip() {
	ctx := context.Background()
	userID := uuid.New()
	session := &models.Session{
		UserID: userID,
		Role:   models.RoleCoachingAdmin,
	}

	var storedKey, storedValue string
	suite.mockCache.On("SetString", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("string"), 7*24*time.Hour).
		Return(nil).
		Run(func(args mock.Arguments) {
			storedKey = args.String(1)
			storedValue = args.String(2)
		})

	tokens, err := suite.service.GenerateTokens(ctx, session)
	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), tokens.AccessToken)
	assert.NotEmpty(suite.T(), tokens.RefreshToken)
	assert.Equal(suite.T(), "Bearer", tokens.TokenType)
	assert.True(suite.T(), strings.HasPrefix(storedKey, "refresh_token:"))
	// Stored payload is userID:hash:expiry.
	assert.Len(suite.T(), strings.Split(storedValue, ":"), 3)

	suite.mockCache.On("GetString", ctx, storedKey).Return(storedValue, nil)

	resolved, err := suite.service.RefreshToken(ctx, tokens.RefreshToken)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), userID, resolved)
}

func (suite *TokenServiceTestSuite) TestGenerateTokens_DistinctRefreshTokens() {
	ctx := context.Background()
	session := &models.Session{UserID: uuid.New(), Role: models.RoleStudent}

	suite.mockCache.On("SetString", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("string"), 7*24*time.Hour).
		Return(nil).Times(2)

	first, err := suite.service.GenerateTokens(ctx, session)
	assert.NoError(suite.T(), err)
	second, err := suite.service.GenerateTokens(ctx, session)
	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), first.RefreshToken, second.RefreshToken)
}

func (suite *TokenServiceTestSuite) TestRefreshToken_ExpiredIsRejectedAndDropped() {
	ctx := context.Background()
	userID := uuid.New()

	past := time.Now().Add(-time.Hour).Unix()
	suite.mockCache.On("GetString", ctx, mock.AnythingOfType("string")).
		Return(fmt.Sprintf("%s:somehash:%d", userID, past), nil)
	suite.mockCache.On("Delete", ctx, mock.AnythingOfType("string")).Return(nil)

	resolved, err := suite.service.RefreshToken(ctx, "stale-refresh-token")
	assert.Equal(suite.T(), uuid.Nil, resolved)
	assert.Error(suite.T(), err)
	suite.mockCache.AssertCalled(suite.T(), "Delete", ctx, mock.AnythingOfType("string"))
}

func (suite *TokenServiceTestSuite) TestRefreshToken_UnknownTokenRejected() {
	ctx := context.Background()

	suite.mockCache.On("GetString", ctx, mock.AnythingOfType("string")).
		Return("", errors.New("redis: nil"))

	resolved, err := suite.service.RefreshToken(ctx, "never-issued")
	assert.Equal(suite.T(), uuid.Nil, resolved)
	assert.Error(suite.T(), err)
}

func (suite *TokenServiceTestSuite) TestValidateToken_RoundTrip() {
	ctx := context.Background()
	userID := uuid.New()
	session := &models.Session{UserID: userID, Role: models.RoleSuperAdmin}

	suite.mockCache.On("SetString", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("string"), 7*24*time.Hour).
		Return(nil)

	tokens, err := suite.service.GenerateTokens(ctx, session)
	assert.NoError(suite.T(), err)

	claims, err := suite.service.ValidateToken(ctx, tokens.AccessToken)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), userID.String(), claims.Subject)
	assert.Equal(suite.T(), string(models.RoleSuperAdmin), claims.Role)
}

func (suite *TokenServiceTestSuite) TestValidateToken_WrongSecretRejected() {
	ctx := context.Background()
	session := &models.Session{UserID: uuid.New(), Role: models.RoleStudent}

	suite.mockCache.On("SetString", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("string"), 7*24*time.Hour).
		Return(nil)

	tokens, err := suite.service.GenerateTokens(ctx, session)
	assert.NoError(suite.T(), err)

	other := NewTokenService(suite.mockCache, "different-secret", 3600, 7*24*3600)
	claims, err := other.ValidateToken(ctx, tokens.AccessToken)
	assert.Nil(suite.T(), claims)
	assert.Error(suite.T(), err)
}

func (suite *TokenServiceTestSuite) TestRevokeRefreshToken() {
	ctx := context.Background()

	suite.mockCache.On("Delete", ctx, mock.AnythingOfType("string")).Return(nil)

	assert.NoError(suite.T(), suite.service.RevokeRefreshToken(ctx, "issued-refresh-token"))
}
