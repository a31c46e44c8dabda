package document

import (
	"io"
	"time"

	domainDocument "dojo-admin/internal/domain/document"

	"github.com/google/uuid"
)

// File is one uploaded part of a submission.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type ReviewRequest struct {
	Status string  `json:"nuevoEstado" validate:"required"`
	Reason *string `json:"motivoRechazo" validate:"omitempty,max=500"`
}

type DocumentResponse struct {
	ID              *uuid.UUID `json:"id,omitempty"`
	UserID          *uuid.UUID `json:"id_usuario,omitempty"`
	PhotoURL        string     `json:"url_foto,omitempty"`
	CURPURL         string     `json:"url_curp,omitempty"`
	Status          string     `json:"estatus_validacion"`
	RejectionReason *string    `json:"motivo_rechazo,omitempty"`
	UploadedAt      *time.Time `json:"fecha_subida,omitempty"`
	ReviewedAt      *time.Time `json:"fecha_validacion,omitempty"`
}

type PendingDocumentResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	StudentName string    `json:"studentName"`
	PhotoURL    string    `json:"url_foto"`
	CURPURL     string    `json:"url_curp"`
	UploadedAt  time.Time `json:"fecha_subida"`
}

func ToDocumentResponse(r *domainDocument.Request) *DocumentResponse {
	if r == nil {
		return nil
	}
	id, userID, uploadedAt := r.ID, r.UserID, r.UploadedAt
	return &DocumentResponse{
		ID:              &id,
		UserID:          &userID,
		PhotoURL:        r.PhotoURL,
		CURPURL:         r.CURPURL,
		Status:          string(r.Status),
		RejectionReason: r.RejectionReason,
		UploadedAt:      &uploadedAt,
		ReviewedAt:      r.ReviewedAt,
	}
}

func notSubmittedResponse() *DocumentResponse {
	return &DocumentResponse{Status: string(domainDocument.StatusNotSubmitted)}
}

func ToPendingDocumentResponse(l *domainDocument.PendingListing) *PendingDocumentResponse {
	return &PendingDocumentResponse{
		ID:          l.ID,
		UserID:      l.UserID,
		StudentName: l.StudentName,
		PhotoURL:    l.PhotoURL,
		CURPURL:     l.CURPURL,
		UploadedAt:  l.UploadedAt,
	}
}
