package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter narrows List results. Zero value lists everyone.
type Filter struct {
	Role *Role
}

// Repository defines the interface for user repository operations
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	List(ctx context.Context, filter Filter) ([]*User, error)
	Update(ctx context.Context, user *User) error
	UpdateRole(ctx context.Context, userID uuid.UUID, role Role) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	Delete(ctx context.Context, userID uuid.UUID) error

	// SetResetToken stores token and expiry together, replacing any
	// previous pending token.
	SetResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	// GetByResetToken matches only tokens whose expiry is after now.
	GetByResetToken(ctx context.Context, token string, now time.Time) (*User, error)
	// RedeemResetToken installs passwordHash and clears the token in one
	// conditional write. It returns ErrResetTokenInvalid when the token no
	// longer matches or has expired, so at most one caller wins.
	RedeemResetToken(ctx context.Context, token, passwordHash string, now time.Time) (uuid.UUID, error)
	// ClearExpiredResetTokens nulls tokens that expired before now.
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}
