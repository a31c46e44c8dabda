package user

import (
	"time"

	domainUser "dojo-admin/internal/domain/user"
	paymentUsecase "dojo-admin/internal/usecase/payment"
	trackingUsecase "dojo-admin/internal/usecase/tracking"

	"github.com/google/uuid"
)

// DateLayout is the wire format of calendar dates such as birth dates.
const DateLayout = "2006-01-02"

type RegisterRequest struct {
	Name            string  `json:"nombre" validate:"required,min=2,max=100"`
	PaternalSurname string  `json:"apellido_paterno" validate:"omitempty,max=100"`
	MaternalSurname *string `json:"apellido_materno" validate:"omitempty,max=100"`
	Email           string  `json:"correo_electronico" validate:"required,email"`
	Password        string  `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"correo_electronico" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"correo_electronico" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"password_actual" validate:"required"`
	NewPassword     string `json:"password_nuevo" validate:"required"`
	ConfirmPassword string `json:"confirmar_password" validate:"required,eqfield=NewPassword"`
}

// CreateUserRequest is a staff-created member. Password falls back to the
// configured default and Role to teacher.
type CreateUserRequest struct {
	Name            string  `json:"nombre" validate:"required,min=2,max=100"`
	PaternalSurname string  `json:"apellido_paterno" validate:"omitempty,max=100"`
	MaternalSurname *string `json:"apellido_materno" validate:"omitempty,max=100"`
	Email           string  `json:"correo_electronico" validate:"required,email"`
	Password        string  `json:"password"`
	Role            string  `json:"rol" validate:"omitempty,oneof=admin teacher student"`
	Grade           *string `json:"grado" validate:"omitempty,max=50"`
	Phone           *string `json:"telefono" validate:"omitempty,phone"`
	CURP            *string `json:"curp" validate:"omitempty,curp"`
	BirthDate       *string `json:"fecha_nacimiento" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateUserRequest changes profile fields only. Nil fields are left as is.
type UpdateUserRequest struct {
	Name            *string `json:"nombre" validate:"omitempty,min=2,max=100"`
	PaternalSurname *string `json:"apellido_paterno" validate:"omitempty,max=100"`
	MaternalSurname *string `json:"apellido_materno" validate:"omitempty,max=100"`
	Email           *string `json:"correo_electronico" validate:"omitempty,email"`
	Phone           *string `json:"telefono" validate:"omitempty,phone"`
	CURP            *string `json:"curp" validate:"omitempty,curp"`
	BirthDate       *string `json:"fecha_nacimiento" validate:"omitempty,datetime=2006-01-02"`
	BloodType       *string `json:"grupo_sanguineo" validate:"omitempty,blood_type"`
	Allergies       *string `json:"alergias" validate:"omitempty,max=500"`
	Grade           *string `json:"grado" validate:"omitempty,max=50"`
}

type UpdateRoleRequest struct {
	Role string `json:"rol" validate:"required,oneof=admin teacher student"`
}

type UserResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"nombre"`
	PaternalSurname string    `json:"apellido_paterno"`
	MaternalSurname *string   `json:"apellido_materno"`
	Email           string    `json:"correo_electronico"`
	Role            string    `json:"rol"`
	Grade           *string   `json:"grado"`
	Phone           *string   `json:"telefono"`
	CURP            *string   `json:"curp"`
	BirthDate       *string   `json:"fecha_nacimiento"`
	Age             *int      `json:"edad"`
	BloodType       *string   `json:"grupo_sanguineo"`
	Allergies       *string   `json:"alergias"`
	CreatedAt       time.Time `json:"fecha_registro"`
}

type AuthResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *UserResponse `json:"user"`
}

// ProfileResponse is a member with payment and event history.
type ProfileResponse struct {
	*UserResponse
	Payments    []*paymentUsecase.PaymentResponse `json:"pagos"`
	Exams       []*trackingUsecase.EventResponse  `json:"examenes"`
	Tournaments []*trackingUsecase.EventResponse  `json:"torneos"`
	Seminars    []*trackingUsecase.EventResponse  `json:"seminarios"`
}

func ToUserResponse(u *domainUser.User, now time.Time) *UserResponse {
	if u == nil {
		return nil
	}

	var birthDate *string
	if u.BirthDate != nil {
		formatted := u.BirthDate.Format(DateLayout)
		birthDate = &formatted
	}

	return &UserResponse{
		ID:              u.ID,
		Name:            u.Name,
		PaternalSurname: u.PaternalSurname,
		MaternalSurname: u.MaternalSurname,
		Email:           u.Email,
		Role:            string(u.Role),
		Grade:           u.Grade,
		Phone:           u.Phone,
		CURP:            u.CURP,
		BirthDate:       birthDate,
		Age:             u.Age(now),
		BloodType:       u.BloodType,
		Allergies:       u.Allergies,
		CreatedAt:       u.CreatedAt,
	}
}
