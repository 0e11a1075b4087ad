package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/common"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/credstore"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/services"
)

// ProvisioningHandlers handles account lifecycle endpoints.
type ProvisioningHandlers struct {
	provisioningSvc services.ProvisioningService
}

func NewProvisioningHandlers(provisioningSvc services.ProvisioningService) *ProvisioningHandlers {
	return &ProvisioningHandlers{provisioningSvc: provisioningSvc}
}

// CreateCoachingAdmin provisions an admin account for an institute.
// Super admin only.
func (h *ProvisioningHandlers) CreateCoachingAdmin(c echo.Context) error {
	var req services.CreateCoachingAdminRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	user, err := h.provisioningSvc.CreateCoachingAdmin(c.Request().Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInstituteNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Institute not found")
		case errors.Is(err, credstore.ErrEmailTaken):
			return echo.NewHTTPError(http.StatusConflict, "Email already registered")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create admin account")
		}
	}
	return c.JSON(http.StatusCreated, user)
}

// ListCoachingAdmins returns every coaching admin account across
// institutes. Super admin only.
func (h *ProvisioningHandlers) ListCoachingAdmins(c echo.Context) error {
	limit, offset := common.ValidatePaginationParams(
		intQueryParam(c, "limit"), intQueryParam(c, "offset"))

	admins, err := h.provisioningSvc.ListCoachingAdmins(c.Request().Context(), limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list coaching admins")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"admins": admins,
		"limit":  limit,
		"offset": offset,
	})
}

// DeleteCoachingAdmin removes a coaching admin account. Super admin only.
func (h *ProvisioningHandlers) DeleteCoachingAdmin(c echo.Context) error {
	userID, err := common.ValidateUUID(c.Param("id"), "admin id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.provisioningSvc.DeleteCoachingAdmin(c.Request().Context(), userID); err != nil {
		if errors.Is(err, services.ErrAdminNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Coaching admin not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete coaching admin")
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateStudent provisions a student account with generated credentials
// inside the caller's institute.
func (h *ProvisioningHandlers) CreateStudent(c echo.Context) error {
	instituteID, _, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	var req services.CreateStudentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.FirstName == "" || req.LastName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "First and last name are required")
	}

	provisioned, err := h.provisioningSvc.CreateStudent(c.Request().Context(), instituteID, &req)
	if err != nil {
		var partial *services.PartialProvisioningFailure
		switch {
		case errors.As(err, &partial):
			// The account exists; report success with a warning.
			return c.JSON(http.StatusCreated, map[string]interface{}{
				"student":  provisioned.Student,
				"email":    provisioned.Email,
				"password": provisioned.Password,
				"warning":  "account created but batch enrollment failed",
			})
		case errors.Is(err, services.ErrStudentLimit):
			return echo.NewHTTPError(http.StatusForbidden, "Student limit reached for this institute")
		case errors.Is(err, services.ErrSubscriptionClosed):
			return echo.NewHTTPError(http.StatusForbidden, "Institute subscription does not permit changes")
		case errors.Is(err, credstore.ErrEmailTaken):
			return echo.NewHTTPError(http.StatusConflict, "A student with this name already exists")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create student account")
		}
	}

	return c.JSON(http.StatusCreated, provisioned)
}

func (h *ProvisioningHandlers) UpdateStudent(c echo.Context) error {
	instituteID, _, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	studentID, err := common.ValidateUUID(c.Param("id"), "student id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req services.UpdateStudentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	student, err := h.provisioningSvc.UpdateStudent(c.Request().Context(), instituteID, studentID, &req)
	if err != nil {
		if errors.Is(err, services.ErrStudentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Student not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update student")
	}
	return c.JSON(http.StatusOK, student)
}

type UpdatePasswordRequest struct {
	NewPassword string `json:"new_password"`
}

func (h *ProvisioningHandlers) UpdateStudentPassword(c echo.Context) error {
	instituteID, _, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	studentID, err := common.ValidateUUID(c.Param("id"), "student id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req UpdatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if len(req.NewPassword) < 8 {
		return echo.NewHTTPError(http.StatusBadRequest, "Password must be at least 8 characters")
	}

	if err := h.provisioningSvc.UpdateStudentPassword(c.Request().Context(), instituteID, studentID, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrStudentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Student not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update password")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "password_updated"})
}

func (h *ProvisioningHandlers) DeleteStudent(c echo.Context) error {
	instituteID, _, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	studentID, err := common.ValidateUUID(c.Param("id"), "student id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.provisioningSvc.DeleteStudent(c.Request().Context(), instituteID, studentID); err != nil {
		if errors.Is(err, services.ErrStudentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Student not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete student")
	}
	return c.NoContent(http.StatusNoContent)
}
