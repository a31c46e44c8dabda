package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeExam       Type = "Examen"
	TypeTournament Type = "Torneo"
	TypeSeminar    Type = "Seminario"
)

// SportEvent records a member's participation in an exam, tournament or
// seminar.
type SportEvent struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Type        Type
	Description string
	Category    *string
	Date        time.Time
	Result      *string
	Score       *float64
	Speaker     *string
	RecordedBy  uuid.UUID
	CreatedAt   time.Time
}

type Repository interface {
	Create(ctx context.Context, event *SportEvent) error
	// ListByUser returns the member's events, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*SportEvent, error)
}
