package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dojo-admin/internal/domain/document"
	"dojo-admin/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentRepository struct {
	db *DB
}

func NewDocumentRepository(db *DB) document.Repository {
	return &DocumentRepository{db: db}
}

type pendingDocumentRow struct {
	models.DocumentRequestModel
	StudentName string
}

func (r *DocumentRepository) Create(ctx context.Context, req *document.Request) error {
	req.ID = uuid.New()
	req.UploadedAt = time.Now().UTC()

	if err := r.db.DB.WithContext(ctx).Create(toDocumentModel(req)).Error; err != nil {
		return fmt.Errorf("failed to create document request: %w", err)
	}

	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, requestID uuid.UUID) (*document.Request, error) {
	var dbModel models.DocumentRequestModel
	err := r.db.DB.WithContext(ctx).First(&dbModel, "id = ?", requestID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, document.ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document request: %w", err)
	}

	return toDocumentEntity(&dbModel), nil
}

func (r *DocumentRepository) LatestForUser(ctx context.Context, userID uuid.UUID) (*document.Request, error) {
	var dbModel models.DocumentRequestModel
	err := r.db.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("uploaded_at DESC").
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, document.ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest document request: %w", err)
	}

	return toDocumentEntity(&dbModel), nil
}

func (r *DocumentRepository) ListPending(ctx context.Context) ([]*document.PendingListing, error) {
	var rows []pendingDocumentRow
	err := r.db.DB.WithContext(ctx).
		Table("document_requests AS d").
		Select("d.*, " + displayName + " AS student_name").
		Joins("JOIN users AS u ON u.id = d.user_id").
		Where("d.status = ?", string(document.StatusPending)).
		Order("d.uploaded_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending document requests: %w", err)
	}

	listings := make([]*document.PendingListing, len(rows))
	for i := range rows {
		listings[i] = &document.PendingListing{
			Request:     *toDocumentEntity(&rows[i].DocumentRequestModel),
			StudentName: rows[i].StudentName,
		}
	}

	return listings, nil
}

func (r *DocumentRepository) ApplyReview(ctx context.Context, requestID uuid.UUID, review document.Review) (*document.Request, error) {
	var updated models.DocumentRequestModel
	result := r.db.DB.WithContext(ctx).Model(&updated).
		Clauses(returningAll).
		Where("id = ? AND status = ?", requestID, string(document.StatusPending)).
		Updates(map[string]interface{}{
			"status":           string(review.Status),
			"rejection_reason": review.Reason,
			"reviewed_at":      review.ReviewedAt.UTC(),
			"reviewed_by":      review.ReviewerID,
		})

	if result.Error != nil {
		return nil, fmt.Errorf("failed to review document request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		exists, err := r.db.rowExists(ctx, &models.DocumentRequestModel{}, requestID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, document.ErrRequestNotFound
		}
		return nil, document.ErrAlreadyReviewed
	}

	return toDocumentEntity(&updated), nil
}

func toDocumentModel(d *document.Request) *models.DocumentRequestModel {
	return &models.DocumentRequestModel{
		ID:              d.ID,
		UserID:          d.UserID,
		PhotoURL:        d.PhotoURL,
		CURPURL:         d.CURPURL,
		Status:          string(d.Status),
		RejectionReason: d.RejectionReason,
		UploadedAt:      d.UploadedAt,
		ReviewedAt:      d.ReviewedAt,
		ReviewedBy:      d.ReviewedBy,
	}
}

func toDocumentEntity(m *models.DocumentRequestModel) *document.Request {
	return &document.Request{
		ID:              m.ID,
		UserID:          m.UserID,
		PhotoURL:        m.PhotoURL,
		CURPURL:         m.CURPURL,
		Status:          document.Status(m.Status),
		RejectionReason: m.RejectionReason,
		UploadedAt:      m.UploadedAt,
		ReviewedAt:      m.ReviewedAt,
		ReviewedBy:      m.ReviewedBy,
	}
}
