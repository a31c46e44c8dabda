package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dojo-admin/internal/domain/payment"
	"dojo-admin/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *DB
}

func NewPaymentRepository(db *DB) payment.Repository {
	return &PaymentRepository{db: db}
}

type paymentListingRow struct {
	models.PaymentModel
	StudentName string
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	now := time.Now().UTC()
	p.ID = uuid.New()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := r.db.DB.WithContext(ctx).Create(toPaymentModel(p)).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, paymentID uuid.UUID) (*payment.Payment, error) {
	var dbModel models.PaymentModel
	err := r.db.DB.WithContext(ctx).First(&dbModel, "id = ?", paymentID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, payment.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return toPaymentEntity(&dbModel), nil
}

func (r *PaymentRepository) List(ctx context.Context, filter payment.Filter) ([]*payment.Listing, error) {
	query := r.db.DB.WithContext(ctx).
		Table("payments AS p").
		Select("p.*, " + displayName + " AS student_name").
		Joins("JOIN users AS u ON u.id = p.user_id")

	if filter.UserID != nil {
		query = query.Where("p.user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("p.status = ?", string(*filter.Status))
	}

	var rows []paymentListingRow
	if err := query.Order("p.due_date DESC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	listings := make([]*payment.Listing, len(rows))
	for i := range rows {
		listings[i] = &payment.Listing{
			Payment:     *toPaymentEntity(&rows[i].PaymentModel),
			StudentName: rows[i].StudentName,
		}
	}

	return listings, nil
}

func (r *PaymentRepository) UpdateStatus(ctx context.Context, paymentID uuid.UUID, from, to payment.Status, paidAt *time.Time) (*payment.Payment, error) {
	var updated models.PaymentModel
	result := r.db.DB.WithContext(ctx).Model(&updated).
		Clauses(returningAll).
		Where("id = ? AND status = ?", paymentID, string(from)).
		Updates(map[string]interface{}{
			"status":     string(to),
			"paid_at":    paidAt,
			"updated_at": time.Now().UTC(),
		})

	if result.Error != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		exists, err := r.db.rowExists(ctx, &models.PaymentModel{}, paymentID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, payment.ErrStatusChanged
	}

	return toPaymentEntity(&updated), nil
}

func (r *PaymentRepository) Delete(ctx context.Context, paymentID uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).Delete(&models.PaymentModel{}, "id = ?", paymentID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return payment.ErrPaymentNotFound
	}

	return nil
}

func toPaymentModel(p *payment.Payment) *models.PaymentModel {
	return &models.PaymentModel{
		ID:          p.ID,
		UserID:      p.UserID,
		Amount:      p.Amount,
		Concept:     p.Concept,
		Status:      string(p.Status),
		DueDate:     p.DueDate,
		PaidAt:      p.PaidAt,
		PaymentType: p.PaymentType,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toPaymentEntity(m *models.PaymentModel) *payment.Payment {
	return &payment.Payment{
		ID:          m.ID,
		UserID:      m.UserID,
		Amount:      m.Amount,
		Concept:     m.Concept,
		Status:      payment.Status(m.Status),
		DueDate:     m.DueDate,
		PaidAt:      m.PaidAt,
		PaymentType: m.PaymentType,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
