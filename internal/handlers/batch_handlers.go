package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/common"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/services"
)

// BatchHandlers handles batch management inside an institute.
type BatchHandlers struct {
	batchSvc services.BatchService
}

func NewBatchHandlers(batchSvc services.BatchService) *BatchHandlers {
	return &BatchHandlers{batchSvc: batchSvc}
}

func (h *BatchHandlers) CreateBatch(c echo.Context) error {
	instituteID, _, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	var req services.CreateBatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Name == "" || req.StartDate == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name and start_date are required")
	}

	batch, err := h.batchSvc.CreateBatch(c.Request().Context(), instituteID, &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, batch)
}

func (h *BatchHandlers) GetBatch(c echo.Context) error {
	instituteID, _, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	batchID, err := common.ValidateUUID(c.Param("id"), "batch id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	batch, err := h.batchSvc.GetBatch(c.Request().Context(), instituteID, batchID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Batch not found")
	}
	return c.JSON(http.StatusOK, batch)
}

func (h *BatchHandlers) UpdateBatch(c echo.Context) error {
	instituteID, _, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	batchID, err := common.ValidateUUID(c.Param("id"), "batch id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req services.UpdateBatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	batch, err := h.batchSvc.UpdateBatch(c.Request().Context(), instituteID, batchID, &req)
	if err != nil {
		if errors.Is(err, services.ErrBatchNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Batch not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, batch)
}

func (h *BatchHandlers) DeleteBatch(c echo.Context) error {
	instituteID, _, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	batchID, err := common.ValidateUUID(c.Param("id"), "batch id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.batchSvc.DeleteBatch(c.Request().Context(), instituteID, batchID); err != nil {
		if errors.Is(err, services.ErrBatchNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Batch not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete batch")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *BatchHandlers) ListBatches(c echo.Context) error {
	instituteID, _, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	limit, offset := common.ValidatePaginationParams(
		intQueryParam(c, "limit"), intQueryParam(c, "offset"))

	batches, err := h.batchSvc.ListBatches(c.Request().Context(), instituteID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list batches")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"batches": batches,
		"limit":   limit,
		"offset":  offset,
	})
}

type EnrollStudentRequest struct {
	StudentID string `json:"student_id"`
}

func (h *BatchHandlers) EnrollStudent(c echo.Context) error {
	instituteID, _, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	batchID, err := common.ValidateUUID(c.Param("id"), "batch id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req EnrollStudentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	studentID, err := common.ValidateUUID(req.StudentID, "student id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.batchSvc.EnrollStudent(c.Request().Context(), instituteID, batchID, studentID); err != nil {
		switch {
		case errors.Is(err, services.ErrBatchNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Batch not found")
		case errors.Is(err, services.ErrStudentNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Student not found")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to enroll student")
		}
	}
	return c.JSON(http.StatusCreated, map[string]string{"status": "enrolled"})
}
