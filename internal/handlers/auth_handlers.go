package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/common"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/credstore"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/services"
)

// AuthHandlers handles login, token refresh and sign-out.
type AuthHandlers struct {
	credStore  credstore.CredentialStore
	sessionSvc services.SessionService
	tokenSvc   services.TokenService
}

func NewAuthHandlers(credStore credstore.CredentialStore, sessionSvc services.SessionService, tokenSvc services.TokenService) *AuthHandlers {
	return &AuthHandlers{
		credStore:  credStore,
		sessionSvc: sessionSvc,
		tokenSvc:   tokenSvc,
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials, resolves the directory binding and
// issues a token pair. A valid password with no directory record is
// still a failed login.
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	ctx := c.Request().Context()

	identityID, err := h.credStore.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	session, err := h.sessionSvc.Resolve(ctx, identityID)
	if err != nil {
		if errors.Is(err, services.ErrAccountDisabled) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Account is disabled")
		}
		return echo.NewHTTPError(http.StatusUnauthorized, "Account could not be resolved")
	}

	tokens, err := h.tokenSvc.GenerateTokens(ctx, session)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to issue tokens")
	}

	return c.JSON(http.StatusOK, tokens)
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh rotates a refresh token into a new pair. The session is
// re-resolved so a disabled account cannot refresh its way back in.
func (h *AuthHandlers) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.RefreshToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Refresh token is required")
	}

	ctx := c.Request().Context()

	identityID, err := h.tokenSvc.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}

	session, err := h.sessionSvc.Resolve(ctx, identityID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Account could not be resolved")
	}

	if err := h.tokenSvc.RevokeRefreshToken(ctx, req.RefreshToken); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to rotate refresh token")
	}

	tokens, err := h.tokenSvc.GenerateTokens(ctx, session)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to issue tokens")
	}

	return c.JSON(http.StatusOK, tokens)
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Logout revokes the refresh token and purges the cached session so
// the next request re-reads the directory.
func (h *AuthHandlers) Logout(c echo.Context) error {
	session, ok := common.GetSessionFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req LogoutRequest
	if err := c.Bind(&req); err == nil && req.RefreshToken != "" {
		_ = h.tokenSvc.RevokeRefreshToken(c.Request().Context(), req.RefreshToken)
	}

	if err := h.sessionSvc.Purge(c.Request().Context(), session.UserID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to end session")
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "signed_out"})
}

// Me returns the resolved session for the calling user.
func (h *AuthHandlers) Me(c echo.Context) error {
	session, ok := common.GetSessionFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	return c.JSON(http.StatusOK, session)
}
