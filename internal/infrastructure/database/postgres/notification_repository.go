package postgres

import (
	"context"
	"fmt"
	"time"

	"dojo-admin/internal/domain/notification"
	"dojo-admin/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
)

type NotificationRepository struct {
	db *DB
}

func NewNotificationRepository(db *DB) notification.Repository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	n.ID = uuid.New()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	dbModel := &models.NotificationModel{
		ID:        n.ID,
		UserID:    n.UserID,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*notification.Notification, error) {
	query := r.db.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var dbModels []models.NotificationModel
	if err := query.Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	notifications := make([]*notification.Notification, len(dbModels))
	for i, m := range dbModels {
		notifications[i] = &notification.Notification{
			ID:        m.ID,
			UserID:    m.UserID,
			Message:   m.Message,
			Read:      m.Read,
			CreatedAt: m.CreatedAt,
		}
	}

	return notifications, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)

	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return notification.ErrNotificationNotFound
	}

	return nil
}
