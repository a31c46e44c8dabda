package document

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "Pendiente"
	StatusValidated Status = "Validado"
	StatusRejected  Status = "Rechazado"

	// StatusNotSubmitted is reported for members without any request. It is
	// never stored.
	StatusNotSubmitted Status = "Sin enviar"
)

// IsReviewOutcome reports whether s may be set by a reviewer.
func (s Status) IsReviewOutcome() bool {
	return s == StatusValidated || s == StatusRejected
}

// Request is a federation registration (RENADE) document submission: a
// photo and a CURP scan awaiting staff review.
type Request struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	PhotoURL        string
	CURPURL         string
	Status          Status
	RejectionReason *string
	UploadedAt      time.Time
	ReviewedAt      *time.Time
	ReviewedBy      *uuid.UUID
}

type PendingListing struct {
	Request
	StudentName string
}

// Review is a staff decision on a pending request.
type Review struct {
	Status     Status
	Reason     *string
	ReviewerID uuid.UUID
	ReviewedAt time.Time
}
