package document

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, request *Request) error
	GetByID(ctx context.Context, requestID uuid.UUID) (*Request, error)
	// LatestForUser returns ErrRequestNotFound when the member never uploaded.
	LatestForUser(ctx context.Context, userID uuid.UUID) (*Request, error)
	ListPending(ctx context.Context) ([]*PendingListing, error)
	// ApplyReview only touches requests still pending and returns
	// ErrAlreadyReviewed otherwise. An unknown id is ErrRequestNotFound.
	ApplyReview(ctx context.Context, requestID uuid.UUID, review Review) (*Request, error)
}
