package tracking

import (
	"time"

	domainEvent "dojo-admin/internal/domain/event"

	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

// RecordEventRequest is shared by exams, tournaments and seminars. Fields
// that do not apply to the event type are dropped.
type RecordEventRequest struct {
	UserID      uuid.UUID `json:"id_usuario" validate:"required"`
	Description string    `json:"descripcion" validate:"required,max=255"`
	Date        string    `json:"fecha" validate:"required,datetime=2006-01-02"`
	Category    *string   `json:"categoria" validate:"omitempty,max=100"`
	Result      *string   `json:"resultado" validate:"omitempty,max=100"`
	Score       *float64  `json:"puntuacion" validate:"omitempty,gte=0,lte=100"`
	Speaker     *string   `json:"ponente" validate:"omitempty,max=150"`
}

type EventResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"id_usuario"`
	Type        string    `json:"tipo_evento"`
	Description string    `json:"descripcion"`
	Category    *string   `json:"categoria,omitempty"`
	Date        string    `json:"fecha"`
	Result      *string   `json:"resultado,omitempty"`
	Score       *float64  `json:"puntuacion,omitempty"`
	Speaker     *string   `json:"ponente,omitempty"`
	CreatedAt   time.Time `json:"fecha_registro"`
}

func ToEventResponse(e *domainEvent.SportEvent) *EventResponse {
	if e == nil {
		return nil
	}
	return &EventResponse{
		ID:          e.ID,
		UserID:      e.UserID,
		Type:        string(e.Type),
		Description: e.Description,
		Category:    e.Category,
		Date:        e.Date.Format(DateLayout),
		Result:      e.Result,
		Score:       e.Score,
		Speaker:     e.Speaker,
		CreatedAt:   e.CreatedAt,
	}
}
