package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// IsStaff reports whether the role may manage other members' records.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleTeacher
}

// User is a dojo member together with its credentials.
type User struct {
	ID              uuid.UUID
	Name            string
	PaternalSurname string
	MaternalSurname *string
	Email           string
	PasswordHash    string
	Role            Role
	Grade           *string
	Phone           *string
	CURP            *string
	BirthDate       *time.Time
	BloodType       *string
	Allergies       *string

	// ResetToken and ResetTokenExpires are both nil or both set.
	ResetToken        *string
	ResetTokenExpires *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) FullName() string {
	parts := []string{u.Name, u.PaternalSurname}
	if u.MaternalSurname != nil {
		parts = append(parts, *u.MaternalSurname)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// Age returns completed years at now, or nil without a birth date.
func (u *User) Age(now time.Time) *int {
	if u.BirthDate == nil {
		return nil
	}
	years := now.Year() - u.BirthDate.Year()
	born := *u.BirthDate
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		years--
	}
	return &years
}

// HasPendingReset reports whether a reset token is outstanding at now.
func (u *User) HasPendingReset(now time.Time) bool {
	return u.ResetToken != nil && u.ResetTokenExpires != nil && u.ResetTokenExpires.After(now)
}
