package document

import "errors"

var (
	ErrRequestNotFound = errors.New("document request not found")
	ErrAlreadyReviewed = errors.New("document request has already been reviewed")
	ErrMissingFile     = errors.New("both photo and CURP files are required")
	ErrReasonRequired  = errors.New("a rejection reason is required")
	ErrInvalidDecision = errors.New("status must be Validado or Rechazado")
)
