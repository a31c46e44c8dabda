package activity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrActivityNotFound = errors.New("activity not found")

// Activity is an entry on the dojo calendar.
type Activity struct {
	ID          uuid.UUID
	Title       string
	StartsAt    time.Time
	Type        string
	Description *string
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
}

type Repository interface {
	Create(ctx context.Context, activity *Activity) error
	List(ctx context.Context, from *time.Time) ([]*Activity, error)
	Delete(ctx context.Context, activityID uuid.UUID) error
}
