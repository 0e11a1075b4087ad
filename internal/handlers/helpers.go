package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/common"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/models"
)

func intQueryParam(c echo.Context, name string) int {
	value, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return value
}

// sessionInstituteID returns the caller's institute binding. Handlers
// under RequireTenant can rely on it; everything they touch is scoped
// to this id.
func sessionInstituteID(c echo.Context) (uuid.UUID, *models.Session, error) {
	session, ok := common.GetSessionFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, nil, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	if session.InstituteID == nil {
		return uuid.Nil, nil, echo.NewHTTPError(http.StatusForbidden, "No institute binding")
	}
	return *session.InstituteID, session, nil
}
