package models

import (
	"time"

	"github.com/google/uuid"
)

// UserModel represents the database model for User
type UserModel struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name              string     `gorm:"type:varchar(100);not null"`
	PaternalSurname   string     `gorm:"type:varchar(100);not null"`
	MaternalSurname   *string    `gorm:"type:varchar(100)"`
	Email             string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash      string     `gorm:"type:varchar(255);not null"`
	Role              string     `gorm:"type:varchar(20);not null;default:'student';index"`
	Grade             *string    `gorm:"type:varchar(50)"`
	Phone             *string    `gorm:"type:varchar(20)"`
	CURP              *string    `gorm:"column:curp;type:varchar(18)"`
	BirthDate         *time.Time `gorm:"type:date"`
	BloodType         *string    `gorm:"type:varchar(3)"`
	Allergies         *string    `gorm:"type:text"`
	ResetToken        *string    `gorm:"type:varchar(64);uniqueIndex"`
	ResetTokenExpires *time.Time `gorm:"index"`
	CreatedAt         time.Time  `gorm:"not null;index"`
	UpdatedAt         time.Time  `gorm:"not null"`
}

func (UserModel) TableName() string {
	return "users"
}
