package handler

import (
	"errors"
	"net/http"

	"dojo-admin/internal/middleware"
	"dojo-admin/internal/usecase/notification"
	"dojo-admin/internal/usecase/reminder"
	"dojo-admin/pkg/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	service   *notification.Service
	reminders *reminder.Job
}

func NewNotificationHandler(service *notification.Service, reminders *reminder.Job) *NotificationHandler {
	return &NotificationHandler{
		service:   service,
		reminders: reminders,
	}
}

func (h *NotificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	notifications := router.Group("/notifications")
	{
		notifications.GET("", h.ListMine)
		notifications.PUT("/:id/read", h.MarkRead)
		notifications.POST("", middleware.StaffOnly(), h.Send)
		notifications.GET("/metrics", middleware.AdminOnly(), h.Metrics)
	}

	admin := router.Group("/admin", middleware.AdminOnly())
	{
		admin.POST("/reminders/run", h.RunReminders)
	}
}

func (h *NotificationHandler) ListMine(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	items, err := h.service.ListMine(c.Request.Context(), identity.UserID, limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Notifications retrieved successfully", items)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	notificationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), identity.UserID, notificationID); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Notification marked as read", nil)
}

func (h *NotificationHandler) Send(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req notification.SendRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.Send(c.Request.Context(), identity.UserID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Notification sent", result)
}

func (h *NotificationHandler) Metrics(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Dispatcher metrics retrieved successfully", h.service.Metrics())
}

// RunReminders sends the monthly tuition reminder now, outside the schedule
// and without taking the period lock.
func (h *NotificationHandler) RunReminders(c *gin.Context) {
	result, err := h.reminders.RunOnce(c.Request.Context())
	if err != nil && !errors.Is(err, notification.ErrNoRecipients) {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Reminders dispatched", notification.SendResponse{
		Attempted: result.Attempted,
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
	})
}
