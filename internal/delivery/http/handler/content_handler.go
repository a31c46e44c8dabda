package handler

import (
	"net/http"
	"strconv"
	"time"

	domainEvent "dojo-admin/internal/domain/event"
	"dojo-admin/internal/middleware"
	"dojo-admin/internal/usecase/activity"
	"dojo-admin/internal/usecase/announcement"
	"dojo-admin/internal/usecase/tracking"
	"dojo-admin/pkg/utils"

	"github.com/gin-gonic/gin"
)

type AnnouncementHandler struct {
	service *announcement.Service
}

func NewAnnouncementHandler(service *announcement.Service) *AnnouncementHandler {
	return &AnnouncementHandler{service: service}
}

func (h *AnnouncementHandler) RegisterRoutes(router *gin.RouterGroup) {
	announcements := router.Group("/announcements")
	{
		announcements.GET("", h.List)
		announcements.POST("", middleware.StaffOnly(), h.Publish)
	}
}

func (h *AnnouncementHandler) List(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	items, err := h.service.List(c.Request.Context(), limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Announcements retrieved successfully", items)
}

func (h *AnnouncementHandler) Publish(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req announcement.PublishRequest
	if !bindJSON(c, &req) {
		return
	}

	published, err := h.service.Publish(c.Request.Context(), identity.UserID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Announcement published successfully", published)
}

type ActivityHandler struct {
	service *activity.Service
}

func NewActivityHandler(service *activity.Service) *ActivityHandler {
	return &ActivityHandler{service: service}
}

func (h *ActivityHandler) RegisterRoutes(router *gin.RouterGroup) {
	activities := router.Group("/activities")
	{
		activities.GET("", h.List)
		activities.POST("", middleware.StaffOnly(), h.Create)
		activities.DELETE("/:id", middleware.StaffOnly(), h.Delete)
	}
}

// List accepts an optional RFC 3339 "from" bound.
func (h *ActivityHandler) List(c *gin.Context) {
	var from *time.Time
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid from parameter, expected RFC 3339")
			return
		}
		from = &parsed
	}

	items, err := h.service.List(c.Request.Context(), from)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Activities retrieved successfully", items)
}

func (h *ActivityHandler) Create(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req activity.CreateActivityRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.service.Create(c.Request.Context(), identity.UserID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Activity created successfully", created)
}

func (h *ActivityHandler) Delete(c *gin.Context) {
	activityID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), activityID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type TrackingHandler struct {
	service *tracking.Service
}

func NewTrackingHandler(service *tracking.Service) *TrackingHandler {
	return &TrackingHandler{service: service}
}

func (h *TrackingHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/tracking")
	{
		group.POST("/exams", middleware.StaffOnly(), h.record(domainEvent.TypeExam))
		group.POST("/tournaments", middleware.StaffOnly(), h.record(domainEvent.TypeTournament))
		group.POST("/seminars", middleware.StaffOnly(), h.record(domainEvent.TypeSeminar))
		group.GET("/users/:id", h.ListForUser)
	}
}

func (h *TrackingHandler) record(eventType domainEvent.Type) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := currentIdentity(c)
		if !ok {
			return
		}

		var req tracking.RecordEventRequest
		if !bindJSON(c, &req) {
			return
		}

		recorded, err := h.service.Record(c.Request.Context(), identity.UserID, eventType, &req)
		if err != nil {
			respondWithError(c, err)
			return
		}

		utils.SuccessResponse(c, http.StatusCreated, "Event recorded successfully", recorded)
	}
}

func (h *TrackingHandler) ListForUser(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	events, err := h.service.ListForUser(c.Request.Context(), identity, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Events retrieved successfully", events)
}

// queryLimit reads ?limit; zero means the service default.
func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid limit parameter")
		return 0, false
	}
	return limit, true
}
