package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/common"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/services"
)

// InstituteHandlers handles institute management. Routes are guarded
// to super_admin.
type InstituteHandlers struct {
	instituteSvc services.InstituteService
}

func NewInstituteHandlers(instituteSvc services.InstituteService) *InstituteHandlers {
	return &InstituteHandlers{instituteSvc: instituteSvc}
}

func (h *InstituteHandlers) CreateInstitute(c echo.Context) error {
	var req services.CreateInstituteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Institute name is required")
	}

	institute, err := h.instituteSvc.CreateInstitute(c.Request().Context(), &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create institute")
	}
	return c.JSON(http.StatusCreated, institute)
}

func (h *InstituteHandlers) GetInstitute(c echo.Context) error {
	instituteID, err := common.ValidateUUID(c.Param("id"), "institute id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	institute, err := h.instituteSvc.GetInstitute(c.Request().Context(), instituteID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Institute not found")
	}
	return c.JSON(http.StatusOK, institute)
}

func (h *InstituteHandlers) UpdateInstitute(c echo.Context) error {
	instituteID, err := common.ValidateUUID(c.Param("id"), "institute id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req services.UpdateInstituteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	institute, err := h.instituteSvc.UpdateInstitute(c.Request().Context(), instituteID, &req)
	if err != nil {
		if err == services.ErrInstituteNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Institute not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update institute")
	}
	return c.JSON(http.StatusOK, institute)
}

type UpdateSubscriptionRequest struct {
	Status    string  `json:"status"`
	ExpiresAt *string `json:"expires_at"`
}

func (h *InstituteHandlers) UpdateSubscription(c echo.Context) error {
	instituteID, err := common.ValidateUUID(c.Param("id"), "institute id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req UpdateSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil && *req.ExpiresAt != "" {
		parsed, parseErr := time.Parse("2006-01-02", *req.ExpiresAt)
		if parseErr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid expires_at date")
		}
		expiresAt = &parsed
	}

	if err := h.instituteSvc.UpdateSubscriptionStatus(c.Request().Context(), instituteID, req.Status, expiresAt); err != nil {
		if err == services.ErrInstituteNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Institute not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": req.Status})
}

func (h *InstituteHandlers) DeleteInstitute(c echo.Context) error {
	instituteID, err := common.ValidateUUID(c.Param("id"), "institute id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.instituteSvc.DeleteInstitute(c.Request().Context(), instituteID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete institute")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *InstituteHandlers) ListInstitutes(c echo.Context) error {
	limit, offset := common.ValidatePaginationParams(
		intQueryParam(c, "limit"), intQueryParam(c, "offset"))

	institutes, err := h.instituteSvc.ListInstitutes(c.Request().Context(), limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list institutes")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"institutes": institutes,
		"limit":      limit,
		"offset":     offset,
	})
}

// ListMembers returns the user accounts bound to an institute.
func (h *InstituteHandlers) ListMembers(c echo.Context) error {
	instituteID, err := common.ValidateUUID(c.Param("id"), "institute id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	limit, offset := common.ValidatePaginationParams(
		intQueryParam(c, "limit"), intQueryParam(c, "offset"))

	members, err := h.instituteSvc.ListMembers(c.Request().Context(), instituteID, limit, offset)
	if err != nil {
		if err == services.ErrInstituteNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Institute not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list members")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"users":  members,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *InstituteHandlers) GetStats(c echo.Context) error {
	stats, err := h.instituteSvc.GetStats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to compute stats")
	}
	return c.JSON(http.StatusOK, stats)
}
