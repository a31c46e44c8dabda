package announcement

import (
	"time"

	domainAnnouncement "dojo-admin/internal/domain/announcement"

	"github.com/google/uuid"
)

type PublishRequest struct {
	Message   string `json:"mensaje" validate:"required,min=1,max=5000"`
	SendEmail bool   `json:"send_email"`
}

type AnnouncementResponse struct {
	ID          uuid.UUID `json:"id"`
	AuthorID    uuid.UUID `json:"id_profesor"`
	AuthorName  string    `json:"nombre_profesor,omitempty"`
	Message     string    `json:"mensaje"`
	PublishedAt time.Time `json:"fecha_publicacion"`
}

func ToAnnouncementResponse(a *domainAnnouncement.Announcement, authorName string) *AnnouncementResponse {
	return &AnnouncementResponse{
		ID:          a.ID,
		AuthorID:    a.AuthorID,
		AuthorName:  authorName,
		Message:     a.Message,
		PublishedAt: a.CreatedAt,
	}
}
