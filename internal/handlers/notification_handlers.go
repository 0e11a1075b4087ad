package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/common"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/services"
)

// NotificationHandlers handles announcements and reminders.
type NotificationHandlers struct {
	notificationSvc services.NotificationService
}

func NewNotificationHandlers(notificationSvc services.NotificationService) *NotificationHandlers {
	return &NotificationHandlers{notificationSvc: notificationSvc}
}

func (h *NotificationHandlers) CreateNotification(c echo.Context) error {
	instituteID, _, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	var req services.CreateNotificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Title is required")
	}

	notification, err := h.notificationSvc.CreateNotification(c.Request().Context(), instituteID, &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create notification")
	}
	return c.JSON(http.StatusCreated, notification)
}

func (h *NotificationHandlers) ListNotifications(c echo.Context) error {
	instituteID, _, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	limit, offset := common.ValidatePaginationParams(
		intQueryParam(c, "limit"), intQueryParam(c, "offset"))

	notifications, err := h.notificationSvc.ListForInstitute(c.Request().Context(), instituteID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list notifications")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"limit":         limit,
		"offset":        offset,
	})
}

func (h *NotificationHandlers) SendPending(c echo.Context) error {
	instituteID, _, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	sent, err := h.notificationSvc.SendPending(c.Request().Context(), instituteID, 100)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to send notifications")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"sent": sent})
}

func (h *NotificationHandlers) SendFeeReminders(c echo.Context) error {
	instituteID, _, err := sessionInstituteID(c)
	if err != nil {
		return err
	}

	queued, err := h.notificationSvc.SendFeeReminders(c.Request().Context(), instituteID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to queue fee reminders")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"queued": queued})
}
