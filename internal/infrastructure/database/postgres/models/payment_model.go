package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	User        *UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Amount      float64    `gorm:"type:numeric(10,2);not null"`
	Concept     string     `gorm:"type:varchar(255);not null"`
	Status      string     `gorm:"type:varchar(20);not null;default:'Pendiente';index"`
	DueDate     time.Time  `gorm:"type:date;not null"`
	PaidAt      *time.Time
	PaymentType *string   `gorm:"type:varchar(50)"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (PaymentModel) TableName() string {
	return "payments"
}
