package notification

import (
	"time"

	domainNotification "dojo-admin/internal/domain/notification"

	"github.com/google/uuid"
)

type SendRequest struct {
	UserID    uuid.UUID `json:"user_id" validate:"required"`
	Message   string    `json:"message" validate:"required,max=1000"`
	SendEmail bool      `json:"send_email"`
}

type NotificationResponse struct {
	ID        uuid.UUID `json:"id"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type SendResponse struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

func ToNotificationResponse(n *domainNotification.Notification) *NotificationResponse {
	return &NotificationResponse{
		ID:        n.ID,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
