package handler

import (
	"errors"
	"net/http"

	domainActivity "dojo-admin/internal/domain/activity"
	domainDocument "dojo-admin/internal/domain/document"
	domainNotification "dojo-admin/internal/domain/notification"
	domainPayment "dojo-admin/internal/domain/payment"
	domainUser "dojo-admin/internal/domain/user"
	"dojo-admin/internal/logger"
	"dojo-admin/internal/middleware"
	documentUsecase "dojo-admin/internal/usecase/document"
	appErrors "dojo-admin/pkg/errors"
	"dojo-admin/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// respondWithError maps service errors to HTTP statuses. Anything it does
// not recognise is logged and reported as an opaque 500.
func respondWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case appErrors.CodeValidation, appErrors.CodeWeakPassword:
			utils.ErrorResponse(c, http.StatusBadRequest, appErr.Error())
		case appErrors.CodeNotFound:
			utils.ErrorResponse(c, http.StatusNotFound, appErr.Message)
		case appErrors.CodeForbidden:
			utils.ErrorResponse(c, http.StatusForbidden, appErr.Message)
		case appErrors.CodeConflict, appErrors.CodeTransition:
			utils.ErrorResponse(c, http.StatusConflict, appErr.Message)
		default:
			utils.ErrorResponse(c, http.StatusBadRequest, appErr.Message)
		}
		return
	}

	switch {
	case errors.Is(err, appErrors.ErrUserAlreadyExists):
		utils.ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, appErrors.ErrInvalidCredentials),
		errors.Is(err, appErrors.ErrInvalidToken),
		errors.Is(err, appErrors.ErrUnauthorized):
		utils.ErrorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, appErrors.ErrInsufficientPermissions):
		utils.ErrorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, appErrors.ErrResetTokenInvalid):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domainUser.ErrUserNotFound),
		errors.Is(err, domainPayment.ErrPaymentNotFound),
		errors.Is(err, domainDocument.ErrRequestNotFound),
		errors.Is(err, domainActivity.ErrActivityNotFound),
		errors.Is(err, domainNotification.ErrNotificationNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domainPayment.ErrStatusChanged),
		errors.Is(err, domainDocument.ErrAlreadyReviewed):
		utils.ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, documentUsecase.ErrStorageUnavailable):
		utils.ErrorResponse(c, http.StatusServiceUnavailable, err.Error())
	default:
		logger.Error("Internal server error",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}

// currentIdentity writes a 401 and returns false when the gate did not run.
func currentIdentity(c *gin.Context) (domainUser.Identity, bool) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, appErrors.ErrUnauthorized.Error())
		return domainUser.Identity{}, false
	}
	return identity, true
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
