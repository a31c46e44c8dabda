package handler

import (
	"net/http"

	"dojo-admin/internal/middleware"
	"dojo-admin/internal/usecase/payment"
	"dojo-admin/pkg/utils"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	service *payment.Service
}

func NewPaymentHandler(service *payment.Service) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	payments := router.Group("/payments")
	{
		payments.GET("/mine", h.ListMine)
		payments.GET("", middleware.StaffOnly(), h.List)
		payments.POST("", middleware.StaffOnly(), h.Create)
		payments.PUT("/:id", middleware.StaffOnly(), h.UpdateStatus)
		payments.DELETE("/:id", middleware.StaffOnly(), h.Delete)
	}
}

func (h *PaymentHandler) List(c *gin.Context) {
	payments, err := h.service.List(c.Request.Context(), c.Query("estatus"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Payments retrieved successfully", payments)
}

func (h *PaymentHandler) ListMine(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	payments, err := h.service.ListForUser(c.Request.Context(), identity.UserID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Payments retrieved successfully", payments)
}

func (h *PaymentHandler) Create(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req payment.CreatePaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.service.Create(c.Request.Context(), identity.UserID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Payment created successfully", created)
}

// UpdateStatus answers with the stored payment; notification problems never
// change the status code.
func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	paymentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req payment.UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.service.UpdateStatus(c.Request.Context(), paymentID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Payment updated successfully", updated)
}

func (h *PaymentHandler) Delete(c *gin.Context) {
	paymentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), paymentID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
