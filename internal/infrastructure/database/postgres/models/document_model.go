package models

import (
	"time"

	"github.com/google/uuid"
)

type DocumentRequestModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	User            *UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	PhotoURL        string     `gorm:"type:text;not null"`
	CURPURL         string     `gorm:"column:curp_url;type:text;not null"`
	Status          string     `gorm:"type:varchar(20);not null;default:'Pendiente';index"`
	RejectionReason *string    `gorm:"type:text"`
	UploadedAt      time.Time  `gorm:"not null;index"`
	ReviewedAt      *time.Time
	ReviewedBy      *uuid.UUID `gorm:"type:uuid"`
}

func (DocumentRequestModel) TableName() string {
	return "document_requests"
}
