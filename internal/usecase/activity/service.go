package activity

import (
	"context"
	"time"

	domainActivity "dojo-admin/internal/domain/activity"
	"dojo-admin/internal/logger"
	appErrors "dojo-admin/pkg/errors"
	"dojo-admin/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateActivityRequest struct {
	Title       string    `json:"titulo" validate:"required,min=2,max=200"`
	StartsAt    time.Time `json:"fecha_inicio" validate:"required"`
	Type        string    `json:"tipo" validate:"required,max=50"`
	Description *string   `json:"descripcion" validate:"omitempty,max=1000"`
}

type ActivityResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"titulo"`
	StartsAt    time.Time `json:"fecha_inicio"`
	Type        string    `json:"tipo"`
	Description *string   `json:"descripcion"`
	CreatedBy   uuid.UUID `json:"creado_por"`
	CreatedAt   time.Time `json:"fecha_registro"`
}

func ToActivityResponse(a *domainActivity.Activity) *ActivityResponse {
	return &ActivityResponse{
		ID:          a.ID,
		Title:       a.Title,
		StartsAt:    a.StartsAt,
		Type:        a.Type,
		Description: a.Description,
		CreatedBy:   a.CreatedBy,
		CreatedAt:   a.CreatedAt,
	}
}

// Service maintains the dojo calendar.
type Service struct {
	activityRepo domainActivity.Repository
}

func NewService(activityRepo domainActivity.Repository) *Service {
	return &Service{activityRepo: activityRepo}
}

// List returns activities newest first, only those starting at or after
// from when it is set.
func (s *Service) List(ctx context.Context, from *time.Time) ([]*ActivityResponse, error) {
	activities, err := s.activityRepo.List(ctx, from)
	if err != nil {
		return nil, err
	}

	responses := make([]*ActivityResponse, 0, len(activities))
	for _, a := range activities {
		responses = append(responses, ToActivityResponse(a))
	}
	return responses, nil
}

func (s *Service) Create(ctx context.Context, creatorID uuid.UUID, req *CreateActivityRequest) (*ActivityResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	a := &domainActivity.Activity{
		Title:       utils.SanitizeString(req.Title),
		StartsAt:    req.StartsAt.UTC(),
		Type:        utils.SanitizeString(req.Type),
		Description: utils.SanitizeOptional(req.Description),
		CreatedBy:   creatorID,
	}
	if err := s.activityRepo.Create(ctx, a); err != nil {
		return nil, err
	}

	logger.Info("Activity created",
		zap.String("activity_id", a.ID.String()),
		zap.String("created_by", creatorID.String()),
		zap.String("event", "activity_created"),
	)

	return ToActivityResponse(a), nil
}

func (s *Service) Delete(ctx context.Context, activityID uuid.UUID) error {
	if err := s.activityRepo.Delete(ctx, activityID); err != nil {
		return err
	}

	logger.Info("Activity deleted",
		zap.String("activity_id", activityID.String()),
		zap.String("event", "activity_deleted"),
	)

	return nil
}
