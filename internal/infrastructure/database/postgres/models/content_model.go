package models

import (
	"time"

	"github.com/google/uuid"
)

type AnnouncementModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	AuthorID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	Author    *UserModel `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Message   string     `gorm:"type:text;not null"`
	CreatedAt time.Time  `gorm:"not null;index"`
}

func (AnnouncementModel) TableName() string {
	return "announcements"
}

type ActivityModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"type:varchar(255);not null"`
	StartsAt    time.Time `gorm:"not null;index"`
	Type        string    `gorm:"type:varchar(50);not null"`
	Description *string   `gorm:"type:text"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (ActivityModel) TableName() string {
	return "activities"
}

type SportEventModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	User        *UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Type        string     `gorm:"type:varchar(20);not null;index"`
	Description string     `gorm:"type:text;not null"`
	Category    *string    `gorm:"type:varchar(100)"`
	Date        time.Time  `gorm:"type:date;not null"`
	Result      *string    `gorm:"type:varchar(100)"`
	Score       *float64   `gorm:"type:numeric(6,2)"`
	Speaker     *string    `gorm:"type:varchar(255)"`
	RecordedBy  uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt   time.Time  `gorm:"not null"`
}

func (SportEventModel) TableName() string {
	return "sport_events"
}

type NotificationModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_notifications_user_created,priority:1"`
	User      *UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Message   string     `gorm:"type:text;not null"`
	Read      bool       `gorm:"not null;default:false"`
	CreatedAt time.Time  `gorm:"not null;index:idx_notifications_user_created,priority:2"`
}

func (NotificationModel) TableName() string {
	return "notifications"
}

// All lists every model in dependency order for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&UserModel{},
		&PaymentModel{},
		&DocumentRequestModel{},
		&AnnouncementModel{},
		&ActivityModel{},
		&SportEventModel{},
		&NotificationModel{},
	}
}
