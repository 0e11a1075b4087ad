package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/common"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/services"
)

// StudentHandlers handles student directory reads for institute admins.
type StudentHandlers struct {
	studentSvc services.StudentService
}

func NewStudentHandlers(studentSvc services.StudentService) *StudentHandlers {
	return &StudentHandlers{studentSvc: studentSvc}
}

func (h *StudentHandlers) ListStudents(c echo.Context) error {
	instituteID, _, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	limit, offset := common.ValidatePaginationParams(
		intQueryParam(c, "limit"), intQueryParam(c, "offset"))

	students, err := h.studentSvc.ListStudents(c.Request().Context(), instituteID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list students")
	}

	count, err := h.studentSvc.CountStudents(c.Request().Context(), instituteID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count students")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"students": students,
		"total":    count,
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *StudentHandlers) GetStudent(c echo.Context) error {
	instituteID, _, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	studentID, err := common.ValidateUUID(c.Param("id"), "student id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	student, err := h.studentSvc.GetStudent(c.Request().Context(), instituteID, studentID)
	if err != nil {
		if errors.Is(err, services.ErrStudentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Student not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load student")
	}
	return c.JSON(http.StatusOK, student)
}
