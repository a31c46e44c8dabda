package notification

import (
	"context"
	"html"
	"strings"

	domainNotification "dojo-admin/internal/domain/notification"
	domainUser "dojo-admin/internal/domain/user"
	"dojo-admin/internal/logger"
	appErrors "dojo-admin/pkg/errors"
	"dojo-admin/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// Service exposes a member's in-app history and direct staff messages.
type Service struct {
	notifications domainNotification.Repository
	users         domainUser.Repository
	dispatcher    *Dispatcher
}

func NewService(notifications domainNotification.Repository, users domainUser.Repository, dispatcher *Dispatcher) *Service {
	return &Service{
		notifications: notifications,
		users:         users,
		dispatcher:    dispatcher,
	}
}

func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, limit int) ([]*NotificationResponse, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	items, err := s.notifications.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*NotificationResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, ToNotificationResponse(item))
	}
	return responses, nil
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return s.notifications.MarkRead(ctx, userID, notificationID)
}

// Send delivers a staff message to one member right away.
func (s *Service) Send(ctx context.Context, senderID uuid.UUID, req *SendRequest) (*SendResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	recipient, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	channels := ChannelInApp
	if req.SendEmail {
		channels |= ChannelEmail
	}

	message := strings.TrimSpace(req.Message)
	result, err := s.dispatcher.Dispatch(ctx, Request{
		Event:      "direct_message",
		Channels:   channels,
		Recipients: []Recipient{RecipientFromUser(recipient)},
		Message: Message{
			Text:    message,
			Subject: "Nuevo mensaje - Dojo Bunkai",
			HTML:    "<p>" + html.EscapeString(message) + "</p>",
		},
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Direct notification sent",
		zap.String("sender_id", senderID.String()),
		zap.String("user_id", recipient.ID.String()),
		zap.Int("failed", result.Failed),
		zap.String("event", "direct_notification_sent"),
	)

	return &SendResponse{
		Attempted: result.Attempted,
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
	}, nil
}

func (s *Service) Metrics() DispatchMetrics {
	return s.dispatcher.Metrics()
}

// RecipientFromUser addresses a member on every channel.
func RecipientFromUser(u *domainUser.User) Recipient {
	return Recipient{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
	}
}

// StudentsResolver returns a resolver listing every student at dispatch time.
func StudentsResolver(users domainUser.Repository) func(ctx context.Context) ([]Recipient, error) {
	return func(ctx context.Context) ([]Recipient, error) {
		role := domainUser.RoleStudent
		students, err := users.List(ctx, domainUser.Filter{Role: &role})
		if err != nil {
			return nil, err
		}
		recipients := make([]Recipient, 0, len(students))
		for _, student := range students {
			recipients = append(recipients, RecipientFromUser(student))
		}
		return recipients, nil
	}
}
