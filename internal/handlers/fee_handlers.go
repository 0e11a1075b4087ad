package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/common"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/services"
)

// FeeHandlers handles fee payment tracking.
type FeeHandlers struct {
	feeSvc services.FeeService
}

func NewFeeHandlers(feeSvc services.FeeService) *FeeHandlers {
	return &FeeHandlers{feeSvc: feeSvc}
}

func (h *FeeHandlers) CreateFeePayment(c echo.Context) error {
	instituteID, _, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	var req services.CreateFeePaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	payment, err := h.feeSvc.CreateFeePayment(c.Request().Context(), instituteID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrStudentNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Student not found")
		case errors.Is(err, services.ErrBatchNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Batch not found")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, payment)
}

func (h *FeeHandlers) RecordPayment(c echo.Context) error {
	instituteID, _, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	paymentID, err := common.ValidateUUID(c.Param("id"), "payment id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req services.RecordPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	payment, err := h.feeSvc.RecordPayment(c.Request().Context(), instituteID, paymentID, &req)
	if err != nil {
		if errors.Is(err, services.ErrPaymentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Fee payment not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, payment)
}

func (h *FeeHandlers) ListFeePayments(c echo.Context) error {
	instituteID, _, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	limit, offset := common.ValidatePaginationParams(
		intQueryParam(c, "limit"), intQueryParam(c, "offset"))

	payments, err := h.feeSvc.ListFeePayments(c.Request().Context(), instituteID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list fee payments")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"payments": payments,
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *FeeHandlers) StudentReport(c echo.Context) error {
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

	report, err := h.feeSvc.StudentReport(c.Request().Context(), instituteID, studentID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to build fee report")
	}
	return c.JSON(http.StatusOK, report)
}

// MarkOverdue runs the overdue sweep on demand for the caller's
// institute. The scheduler runs the same sweep nightly.
func (h *FeeHandlers) MarkOverdue(c echo.Context) error {
	instituteID, _, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	updated, err := h.feeSvc.MarkOverdue(c.Request().Context(), instituteID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to mark overdue payments")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"updated": updated})
}
