package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/common"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/models"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/services"
)

// RequireRole gates a route group to the listed roles. It assumes
// ResolveSession already ran; a missing session is a 401, a role
// mismatch a 403.
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, ok := common.GetSessionFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}

			for _, role := range roles {
				if session.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
		}
	}
}

// RequireTenant rejects sessions without an institute binding. Routes
// under it can safely dereference session.InstituteID.
func RequireTenant() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, ok := common.GetSessionFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			if session.InstituteID == nil {
				return echo.NewHTTPError(http.StatusForbidden, "No institute binding")
			}
			return next(c)
		}
	}
}

// RequireWritableInstitute blocks mutating requests for suspended or
// expired institutes. Reads pass through.
func RequireWritableInstitute(instituteSvc services.InstituteService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			method := c.Request().Method
			if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
				return next(c)
			}

			session, ok := common.GetSessionFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			if session.InstituteID == nil {
				return next(c)
			}

			if err := instituteSvc.EnsureWritable(c.Request().Context(), *session.InstituteID); err != nil {
				return echo.NewHTTPError(http.StatusForbidden, "Institute subscription does not permit changes")
			}
			return next(c)
		}
	}
}
