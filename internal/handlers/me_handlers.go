package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/common"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/services"
)

// MeHandlers serves a student's own data. Every lookup is keyed by the
// session's user id, so a student can never address another record.
type MeHandlers struct {
	studentSvc      services.StudentService
	batchSvc        services.BatchService
	attendanceSvc   services.AttendanceService
	feeSvc          services.FeeService
	notificationSvc services.NotificationService
}

func NewMeHandlers(
	studentSvc services.StudentService,
	batchSvc services.BatchService,
	attendanceSvc services.AttendanceService,
	feeSvc services.FeeService,
	notificationSvc services.NotificationService,
) *MeHandlers {
	return &MeHandlers{
		studentSvc:      studentSvc,
		batchSvc:        batchSvc,
		attendanceSvc:   attendanceSvc,
		feeSvc:          feeSvc,
		notificationSvc: notificationSvc,
	}
}

// Profile returns the calling student's record.
func (h *MeHandlers) Profile(c echo.Context) error {
	instituteID, session, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	student, err := h.studentSvc.GetStudentByUser(c.Request().Context(), instituteID, session.UserID)
	if err != nil {
		if errors.Is(err, services.ErrStudentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Student record not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load profile")
	}
	return c.JSON(http.StatusOK, student)
}

// Batches returns the batches the calling student is enrolled in.
func (h *MeHandlers) Batches(c echo.Context) error {
	instituteID, session, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	student, err := h.studentSvc.GetStudentByUser(c.Request().Context(), instituteID, session.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Student record not found")
	}

	batches, err := h.batchSvc.ListBatchesByStudent(c.Request().Context(), instituteID, student.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list batches")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"batches": batches})
}

// Attendance returns the calling student's attendance history and
// summary.
func (h *MeHandlers) Attendance(c echo.Context) error {
	instituteID, session, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	student, err := h.studentSvc.GetStudentByUser(c.Request().Context(), instituteID, session.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Student record not found")
	}

	limit, offset := common.ValidatePaginationParams(
		intQueryParam(c, "limit"), intQueryParam(c, "offset"))

	report, err := h.attendanceSvc.StudentReport(c.Request().Context(), instituteID, student.ID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to build attendance report")
	}
	return c.JSON(http.StatusOK, report)
}

// Fees returns the calling student's fee history and summary.
func (h *MeHandlers) Fees(c echo.Context) error {
	instituteID, session, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	student, err := h.studentSvc.GetStudentByUser(c.Request().Context(), instituteID, session.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Student record not found")
	}

	limit, offset := common.ValidatePaginationParams(
		intQueryParam(c, "limit"), intQueryParam(c, "offset"))

	report, err := h.feeSvc.StudentReport(c.Request().Context(), instituteID, student.ID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to build fee report")
	}
	return c.JSON(http.StatusOK, report)
}

// Notifications returns notifications addressed to the calling user.
func (h *MeHandlers) Notifications(c echo.Context) error {
	instituteID, session, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	limit, offset := common.ValidatePaginationParams(
		intQueryParam(c, "limit"), intQueryParam(c, "offset"))

	notifications, err := h.notificationSvc.ListForUser(c.Request().Context(), instituteID, session.UserID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list notifications")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"notifications": notifications})
}
