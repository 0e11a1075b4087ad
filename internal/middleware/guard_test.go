package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/common"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/models"
)

func newRequestWithSession(t *testing.T, session *models.Session) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if session != nil {
		req = req.WithContext(common.WithSession(req.Context(), session))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRequireRole_AllowsMatchingRole(t *testing.T) {
	instituteID := uuid.New()
	session := &models.Session{
		UserID:      uuid.New(),
		Role:        models.RoleCoachingAdmin,
		InstituteID: &instituteID,
	}
	c, rec := newRequestWithSession(t, session)

	err := RequireRole(models.RoleCoachingAdmin)(okHandler)(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole_RejectsOtherRole(t *testing.T) {
	instituteID := uuid.New()
	session := &models.Session{
		UserID:      uuid.New(),
		Role:        models.RoleStudent,
		InstituteID: &instituteID,
	}
	c, _ := newRequestWithSession(t, session)

	err := RequireRole(models.RoleCoachingAdmin)(okHandler)(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
}

func TestRequireRole_NoSessionIsUnauthorized(t *testing.T) {
	c, _ := newRequestWithSession(t, nil)

	err := RequireRole(models.RoleSuperAdmin)(okHandler)(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestRequireRole_MultipleRoles(t *testing.T) {
	session := &models.Session{
		UserID: uuid.New(),
		Role:   models.RoleSuperAdmin,
	}
	c, rec := newRequestWithSession(t, session)

	err := RequireRole(models.RoleSuperAdmin, models.RoleCoachingAdmin)(okHandler)(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireTenant_RejectsUnboundSession(t *testing.T) {
	session := &models.Session{
		UserID: uuid.New(),
		Role:   models.RoleSuperAdmin,
	}
	c, _ := newRequestWithSession(t, session)

	err := RequireTenant()(okHandler)(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
}

func TestRequireTenant_AllowsBoundSession(t *testing.T) {
	instituteID := uuid.New()
	session := &models.Session{
		UserID:      uuid.New(),
		Role:        models.RoleStudent,
		InstituteID: &instituteID,
	}
	c, rec := newRequestWithSession(t, session)

	err := RequireTenant()(okHandler)(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}
