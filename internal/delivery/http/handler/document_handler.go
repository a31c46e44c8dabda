package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"dojo-admin/internal/middleware"
	"dojo-admin/internal/usecase/document"
	"dojo-admin/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	photoField = "foto"
	curpField  = "curp"
)

type DocumentHandler struct {
	service *document.Service
}

func NewDocumentHandler(service *document.Service) *DocumentHandler {
	return &DocumentHandler{service: service}
}

func (h *DocumentHandler) RegisterRoutes(router *gin.RouterGroup) {
	renade := router.Group("/documents/renade")
	{
		renade.POST("", h.Upload)
		renade.GET("/mine", h.Mine)
		renade.GET("/pending", middleware.StaffOnly(), h.ListPending)
		renade.PUT("/:id", middleware.StaffOnly(), h.Review)
	}
}

// Upload expects a multipart form with a "foto" and a "curp" file.
func (h *DocumentHandler) Upload(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	photo, photoErr := c.FormFile(photoField)
	curp, curpErr := c.FormFile(curpField)
	if photoErr != nil || curpErr != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(photoErr, &maxBytesErr) || errors.As(curpErr, &maxBytesErr) {
			utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		utils.ErrorResponse(c, http.StatusBadRequest, "Both photo and CURP files are required")
		return
	}

	photoFile, err := openFormFile(photo)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Unreadable photo file")
		return
	}
	defer photoFile.Close()

	curpFile, err := openFormFile(curp)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Unreadable CURP file")
		return
	}
	defer curpFile.Close()

	created, err := h.service.Upload(c.Request.Context(), identity.UserID,
		toUploadFile(photo, photoFile),
		toUploadFile(curp, curpFile),
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Documents uploaded successfully", created)
}

func openFormFile(header *multipart.FileHeader) (multipart.File, error) {
	return header.Open()
}

func toUploadFile(header *multipart.FileHeader, body multipart.File) *document.File {
	return &document.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        body,
	}
}

func (h *DocumentHandler) Mine(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}

	status, err := h.service.Mine(c.Request.Context(), identity.UserID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Document status retrieved successfully", status)
}

func (h *DocumentHandler) ListPending(c *gin.Context) {
	pending, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Pending requests retrieved successfully", pending)
}

func (h *DocumentHandler) Review(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		return
	}
	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req document.ReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	reviewed, err := h.service.Review(c.Request.Context(), identity.UserID, requestID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Request reviewed successfully", reviewed)
}
