package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/common"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/services"
)

// AttendanceHandlers handles attendance marking and reporting.
type AttendanceHandlers struct {
	attendanceSvc services.AttendanceService
}

func NewAttendanceHandlers(attendanceSvc services.AttendanceService) *AttendanceHandlers {
	return &AttendanceHandlers{attendanceSvc: attendanceSvc}
}

func (h *AttendanceHandlers) MarkAttendance(c echo.Context) error {
	instituteID, _, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	var req services.MarkAttendanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	record, err := h.attendanceSvc.MarkAttendance(c.Request().Context(), instituteID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBatchNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Batch not found")
		case errors.Is(err, services.ErrStudentNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Student not found")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, record)
}

func (h *AttendanceHandlers) BulkMarkAttendance(c echo.Context) error {
	instituteID, _, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	var req services.BulkMarkAttendanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if len(req.Entries) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "At least one entry is required")
	}

	marked, err := h.attendanceSvc.BulkMarkAttendance(c.Request().Context(), instituteID, &req)
	if err != nil {
		if errors.Is(err, services.ErrBatchNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Batch not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"marked": marked})
}

func (h *AttendanceHandlers) ListByBatchDate(c echo.Context) error {
	instituteID, _, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	batchID, err := common.ValidateUUID(c.Param("id"), "batch id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	date := c.QueryParam("date")
	if date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date query parameter is required")
	}

	records, err := h.attendanceSvc.ListByBatchDate(c.Request().Context(), instituteID, batchID, date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"attendance": records})
}

func (h *AttendanceHandlers) StudentReport(c echo.Context) error {
	instituteID, _, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	studentID, err := common.ValidateUUID(c.Param("id"), "student id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	limit, offset := common.ValidatePaginationParams(
		intQueryParam(c, "limit"), intQueryParam(c, "offset"))

	report, err := h.attendanceSvc.StudentReport(c.Request().Context(), instituteID, studentID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to build attendance report")
	}
	return c.JSON(http.StatusOK, report)
}
