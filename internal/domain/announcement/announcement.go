package announcement

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Announcement is a message from a teacher to every student. Message is
// markdown.
type Announcement struct {
	ID        uuid.UUID
	AuthorID  uuid.UUID
	Message   string
	CreatedAt time.Time
}

type Listing struct {
	Announcement
	AuthorName string
}

type Repository interface {
	Create(ctx context.Context, announcement *Announcement) error
	List(ctx context.Context, limit int) ([]*Listing, error)
}
