package announcement

import (
	"context"
	"strings"

	domainAnnouncement "dojo-admin/internal/domain/announcement"
	domainUser "dojo-admin/internal/domain/user"
	"dojo-admin/internal/logger"
	"dojo-admin/internal/usecase/notification"
	appErrors "dojo-admin/pkg/errors"
	"dojo-admin/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type Service struct {
	announcementRepo domainAnnouncement.Repository
	userRepo         domainUser.Repository
	notifier         notification.Notifier
}

func NewService(announcementRepo domainAnnouncement.Repository, userRepo domainUser.Repository, notifier notification.Notifier) *Service {
	return &Service{
		announcementRepo: announcementRepo,
		userRepo:         userRepo,
		notifier:         notifier,
	}
}

func (s *Service) List(ctx context.Context, limit int) ([]*AnnouncementResponse, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	listings, err := s.announcementRepo.List(ctx, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*AnnouncementResponse, 0, len(listings))
	for _, listing := range listings {
		responses = append(responses, ToAnnouncementResponse(&listing.Announcement, listing.AuthorName))
	}
	return responses, nil
}

// Publish stores an announcement and broadcasts it to every student. The
// message is markdown; email recipients get it rendered as HTML.
func (s *Service) Publish(ctx context.Context, authorID uuid.UUID, req *PublishRequest) (*AnnouncementResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	body := strings.TrimSpace(req.Message)
	if body == "" {
		return nil, appErrors.Validation("Message is required", appErrors.ErrInvalidInput)
	}

	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	a := &domainAnnouncement.Announcement{
		AuthorID: author.ID,
		Message:  body,
	}
	if err := s.announcementRepo.Create(ctx, a); err != nil {
		return nil, err
	}

	authorName := author.FullName()
	logger.Info("Announcement published",
		zap.String("announcement_id", a.ID.String()),
		zap.String("author_id", author.ID.String()),
		zap.Bool("send_email", req.SendEmail),
		zap.String("event", "announcement_published"),
	)

	channels := notification.ChannelInApp
	if req.SendEmail {
		channels |= notification.ChannelEmail
	}

	s.notifier.Go(notification.Request{
		Event:    "announcement",
		Channels: channels,
		Resolve:  notification.StudentsResolver(s.userRepo),
		Render: func(r notification.Recipient) notification.Message {
			return notification.AnnouncementMessage(r, authorName, body)
		},
	})

	return ToAnnouncementResponse(a, authorName), nil
}
