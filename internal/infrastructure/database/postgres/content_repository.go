package postgres

import (
	"context"
	"fmt"
	"time"

	"dojo-admin/internal/domain/activity"
	"dojo-admin/internal/domain/announcement"
	"dojo-admin/internal/domain/event"
	"dojo-admin/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
)

type AnnouncementRepository struct {
	db *DB
}

func NewAnnouncementRepository(db *DB) announcement.Repository {
	return &AnnouncementRepository{db: db}
}

type announcementRow struct {
	models.AnnouncementModel
	AuthorName string
}

func (r *AnnouncementRepository) Create(ctx context.Context, a *announcement.Announcement) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()

	dbModel := &models.AnnouncementModel{
		ID:        a.ID,
		AuthorID:  a.AuthorID,
		Message:   a.Message,
		CreatedAt: a.CreatedAt,
	}
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create announcement: %w", err)
	}

	return nil
}

func (r *AnnouncementRepository) List(ctx context.Context, limit int) ([]*announcement.Listing, error) {
	query := r.db.DB.WithContext(ctx).
		Table("announcements AS a").
		Select("a.*, " + displayName + " AS author_name").
		Joins("JOIN users AS u ON u.id = a.author_id").
		Order("a.created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []announcementRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}

	listings := make([]*announcement.Listing, len(rows))
	for i, row := range rows {
		listings[i] = &announcement.Listing{
			Announcement: announcement.Announcement{
				ID:        row.ID,
				AuthorID:  row.AuthorID,
				Message:   row.Message,
				CreatedAt: row.CreatedAt,
			},
			AuthorName: row.AuthorName,
		}
	}

	return listings, nil
}

type ActivityRepository struct {
	db *DB
}

func NewActivityRepository(db *DB) activity.Repository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, a *activity.Activity) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()

	dbModel := &models.ActivityModel{
		ID:          a.ID,
		Title:       a.Title,
		StartsAt:    a.StartsAt,
		Type:        a.Type,
		Description: a.Description,
		CreatedBy:   a.CreatedBy,
		CreatedAt:   a.CreatedAt,
	}
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}

	return nil
}

func (r *ActivityRepository) List(ctx context.Context, from *time.Time) ([]*activity.Activity, error) {
	query := r.db.DB.WithContext(ctx).Model(&models.ActivityModel{})
	if from != nil {
		query = query.Where("starts_at >= ?", from.UTC())
	}

	var dbModels []models.ActivityModel
	if err := query.Order("starts_at ASC").Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	activities := make([]*activity.Activity, len(dbModels))
	for i, m := range dbModels {
		activities[i] = &activity.Activity{
			ID:          m.ID,
			Title:       m.Title,
			StartsAt:    m.StartsAt,
			Type:        m.Type,
			Description: m.Description,
			CreatedBy:   m.CreatedBy,
			CreatedAt:   m.CreatedAt,
		}
	}

	return activities, nil
}

func (r *ActivityRepository) Delete(ctx context.Context, activityID uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).Delete(&models.ActivityModel{}, "id = ?", activityID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete activity: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return activity.ErrActivityNotFound
	}

	return nil
}

type SportEventRepository struct {
	db *DB
}

func NewSportEventRepository(db *DB) event.Repository {
	return &SportEventRepository{db: db}
}

func (r *SportEventRepository) Create(ctx context.Context, e *event.SportEvent) error {
	e.ID = uuid.New()
	e.CreatedAt = time.Now().UTC()

	dbModel := &models.SportEventModel{
		ID:          e.ID,
		UserID:      e.UserID,
		Type:        string(e.Type),
		Description: e.Description,
		Category:    e.Category,
		Date:        e.Date,
		Result:      e.Result,
		Score:       e.Score,
		Speaker:     e.Speaker,
		RecordedBy:  e.RecordedBy,
		CreatedAt:   e.CreatedAt,
	}
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to record sport event: %w", err)
	}

	return nil
}

func (r *SportEventRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*event.SportEvent, error) {
	var dbModels []models.SportEventModel
	err := r.db.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sport events: %w", err)
	}

	events := make([]*event.SportEvent, len(dbModels))
	for i, m := range dbModels {
		events[i] = &event.SportEvent{
			ID:          m.ID,
			UserID:      m.UserID,
			Type:        event.Type(m.Type),
			Description: m.Description,
			Category:    m.Category,
			Date:        m.Date,
			Result:      m.Result,
			Score:       m.Score,
			Speaker:     m.Speaker,
			RecordedBy:  m.RecordedBy,
			CreatedAt:   m.CreatedAt,
		}
	}

	return events, nil
}
