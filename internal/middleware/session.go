package middleware

import (
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/common"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/services"
)

// JWTConfig returns the echo-jwt configuration for protected routes.
// It only verifies the signature; role and institute come from the
// directory, never from token claims.
func JWTConfig(jwtSecret string) echojwt.Config {
	return echojwt.Config{
		SigningKey: []byte(jwtSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return &services.TokenClaims{}
		},
	}
}

// ResolveSession turns a verified token into a resolved session on the
// request context. Any failure is a 401; there is no fallback role.
func ResolveSession(sessionSvc services.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}

			claims, ok := token.Claims.(*services.TokenClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid claims")
			}

			identityID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid subject in token")
			}

			session, err := sessionSvc.Resolve(c.Request().Context(), identityID)
			if err != nil {
				if errors.Is(err, services.ErrAccountDisabled) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Account is disabled")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Session could not be resolved")
			}

			ctx := common.WithSession(c.Request().Context(), session)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
