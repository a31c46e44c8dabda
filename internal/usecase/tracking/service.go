package tracking

import (
	"context"
	"errors"
	"time"

	domainEvent "dojo-admin/internal/domain/event"
	domainUser "dojo-admin/internal/domain/user"
	"dojo-admin/internal/logger"
	appErrors "dojo-admin/pkg/errors"
	"dojo-admin/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrInvalidEventType = errors.New("event type must be Examen, Torneo or Seminario")

// Service records exam, tournament and seminar results for members.
type Service struct {
	eventRepo domainEvent.Repository
	userRepo  domainUser.Repository
}

func NewService(eventRepo domainEvent.Repository, userRepo domainUser.Repository) *Service {
	return &Service{
		eventRepo: eventRepo,
		userRepo:  userRepo,
	}
}

func (s *Service) Record(ctx context.Context, recorderID uuid.UUID, eventType domainEvent.Type, req *RecordEventRequest) (*EventResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	date, err := time.Parse(DateLayout, req.Date)
	if err != nil {
		return nil, appErrors.Validation("Invalid date, expected YYYY-MM-DD", err)
	}

	if _, err := s.userRepo.GetByID(ctx, req.UserID); err != nil {
		return nil, err
	}

	e := &domainEvent.SportEvent{
		UserID:      req.UserID,
		Type:        eventType,
		Description: utils.SanitizeString(req.Description),
		Date:        date,
		RecordedBy:  recorderID,
	}

	switch eventType {
	case domainEvent.TypeExam:
		e.Result = utils.SanitizeOptional(req.Result)
		e.Score = req.Score
	case domainEvent.TypeTournament:
		e.Category = utils.SanitizeOptional(req.Category)
		e.Result = utils.SanitizeOptional(req.Result)
	case domainEvent.TypeSeminar:
		e.Speaker = utils.SanitizeOptional(req.Speaker)
	default:
		return nil, appErrors.Validation("Invalid event type", ErrInvalidEventType)
	}

	if err := s.eventRepo.Create(ctx, e); err != nil {
		return nil, err
	}

	logger.Info("Sport event recorded",
		zap.String("event_id", e.ID.String()),
		zap.String("user_id", e.UserID.String()),
		zap.String("type", string(e.Type)),
		zap.String("recorded_by", recorderID.String()),
		zap.String("event", "sport_event_recorded"),
	)

	return ToEventResponse(e), nil
}

func (s *Service) ListForUser(ctx context.Context, actor domainUser.Identity, userID uuid.UUID) ([]*EventResponse, error) {
	if !actor.CanAccess(userID) {
		return nil, appErrors.Forbidden("You can only view your own history")
	}

	events, err := s.eventRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*EventResponse, 0, len(events))
	for _, e := range events {
		responses = append(responses, ToEventResponse(e))
	}
	return responses, nil
}
