package payment

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending Status = "Pendiente"
	StatusPaid    Status = "Pagado"
	StatusOverdue Status = "Vencido"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// Payment is a fee owed by a member.
type Payment struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Amount      float64
	Concept     string
	Status      Status
	DueDate     time.Time
	PaidAt      *time.Time
	PaymentType *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Listing is a payment joined with the owner's display name.
type Listing struct {
	Payment
	StudentName string
}
