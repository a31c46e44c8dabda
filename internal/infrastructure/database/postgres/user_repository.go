package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dojo-admin/internal/domain/user"
	"dojo-admin/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository implements user.Repository on the users table
type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	now := time.Now().UTC()
	u.ID = uuid.New()
	u.Email = strings.ToLower(u.Email)
	u.CreatedAt = now
	u.UpdatedAt = now

	dbModel := toUserModel(u)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		if isUniqueViolation(err) {
			return user.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var dbModel models.UserModel
	err := r.db.DB.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toUserEntity(&dbModel), nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	var dbModel models.UserModel
	err := r.db.DB.WithContext(ctx).First(&dbModel, "id = ?", userID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toUserEntity(&dbModel), nil
}

func (r *UserRepository) List(ctx context.Context, filter user.Filter) ([]*user.User, error) {
	query := r.db.DB.WithContext(ctx).Model(&models.UserModel{})
	if filter.Role != nil {
		query = query.Where("role = ?", string(*filter.Role))
	}

	var dbModels []models.UserModel
	if err := query.Order("created_at DESC").Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*user.User, len(dbModels))
	for i := range dbModels {
		users[i] = toUserEntity(&dbModels[i])
	}

	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	u.UpdatedAt = time.Now().UTC()
	u.Email = strings.ToLower(u.Email)

	result := r.db.DB.WithContext(ctx).Model(&models.UserModel{}).
		Where("id = ?", u.ID).
		Updates(map[string]interface{}{
			"name":             u.Name,
			"paternal_surname": u.PaternalSurname,
			"maternal_surname": u.MaternalSurname,
			"email":            u.Email,
			"phone":            u.Phone,
			"curp":             u.CURP,
			"birth_date":       u.BirthDate,
			"blood_type":       u.BloodType,
			"allergies":        u.Allergies,
			"grade":            u.Grade,
			"updated_at":       u.UpdatedAt,
		})

	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return user.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}

	return nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, userID uuid.UUID, role user.Role) error {
	return r.updateColumns(ctx, userID, map[string]interface{}{
		"role": string(role),
	})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	return r.updateColumns(ctx, userID, map[string]interface{}{
		"password_hash": passwordHash,
	})
}

func (r *UserRepository) SetResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	return r.updateColumns(ctx, userID, map[string]interface{}{
		"reset_token":         token,
		"reset_token_expires": expiresAt.UTC(),
	})
}

func (r *UserRepository) updateColumns(ctx context.Context, userID uuid.UUID, columns map[string]interface{}) error {
	columns["updated_at"] = time.Now().UTC()

	result := r.db.DB.WithContext(ctx).Model(&models.UserModel{}).
		Where("id = ?", userID).
		Updates(columns)

	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}

	return nil
}

func (r *UserRepository) GetByResetToken(ctx context.Context, token string, now time.Time) (*user.User, error) {
	var dbModel models.UserModel
	err := r.db.DB.WithContext(ctx).
		Where("reset_token = ? AND reset_token_expires > ?", token, now.UTC()).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, user.ErrResetTokenInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by reset token: %w", err)
	}

	return toUserEntity(&dbModel), nil
}

func (r *UserRepository) RedeemResetToken(ctx context.Context, token, passwordHash string, now time.Time) (uuid.UUID, error) {
	var redeemed models.UserModel
	result := r.db.DB.WithContext(ctx).Model(&redeemed).
		Clauses(returningID).
		Where("reset_token = ? AND reset_token_expires > ?", token, now.UTC()).
		Updates(map[string]interface{}{
			"password_hash":       passwordHash,
			"reset_token":         nil,
			"reset_token_expires": nil,
			"updated_at":          now.UTC(),
		})

	if result.Error != nil {
		return uuid.Nil, fmt.Errorf("failed to redeem reset token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return uuid.Nil, user.ErrResetTokenInvalid
	}

	return redeemed.ID, nil
}

func (r *UserRepository) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.DB.WithContext(ctx).Model(&models.UserModel{}).
		Where("reset_token IS NOT NULL AND reset_token_expires <= ?", now.UTC()).
		Updates(map[string]interface{}{
			"reset_token":         nil,
			"reset_token_expires": nil,
		})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to clear expired reset tokens: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func (r *UserRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).Delete(&models.UserModel{}, "id = ?", userID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}

	return nil
}

// Helper functions to convert between domain entities and database models

func toUserModel(u *user.User) *models.UserModel {
	return &models.UserModel{
		ID:                u.ID,
		Name:              u.Name,
		PaternalSurname:   u.PaternalSurname,
		MaternalSurname:   u.MaternalSurname,
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		Role:              string(u.Role),
		Grade:             u.Grade,
		Phone:             u.Phone,
		CURP:              u.CURP,
		BirthDate:         u.BirthDate,
		BloodType:         u.BloodType,
		Allergies:         u.Allergies,
		ResetToken:        u.ResetToken,
		ResetTokenExpires: u.ResetTokenExpires,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func toUserEntity(m *models.UserModel) *user.User {
	return &user.User{
		ID:                m.ID,
		Name:              m.Name,
		PaternalSurname:   m.PaternalSurname,
		MaternalSurname:   m.MaternalSurname,
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		Role:              user.Role(m.Role),
		Grade:             m.Grade,
		Phone:             m.Phone,
		CURP:              m.CURP,
		BirthDate:         m.BirthDate,
		BloodType:         m.BloodType,
		Allergies:         m.Allergies,
		ResetToken:        m.ResetToken,
		ResetTokenExpires: m.ResetTokenExpires,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
