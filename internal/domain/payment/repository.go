package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Filter struct {
	UserID *uuid.UUID
	Status *Status
}

type Repository interface {
	Create(ctx context.Context, payment *Payment) error
	GetByID(ctx context.Context, paymentID uuid.UUID) (*Payment, error)
	List(ctx context.Context, filter Filter) ([]*Listing, error)
	// UpdateStatus writes status and paidAt only if the row is still in
	// from, returning ErrStatusChanged otherwise and ErrPaymentNotFound when
	// there is no such payment.
	UpdateStatus(ctx context.Context, paymentID uuid.UUID, from, to Status, paidAt *time.Time) (*Payment, error)
	Delete(ctx context.Context, paymentID uuid.UUID) error
}
