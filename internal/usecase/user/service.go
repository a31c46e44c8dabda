package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dojo-admin/internal/config"
	domainEvent "dojo-admin/internal/domain/event"
	domainPayment "dojo-admin/internal/domain/payment"
	domainUser "dojo-admin/internal/domain/user"
	"dojo-admin/internal/logger"
	"dojo-admin/internal/usecase/notification"
	appErrors "dojo-admin/pkg/errors"
	"dojo-admin/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// placeholderSurname fills the required surname column when a member signs
// up without one.
const placeholderSurname = "N/A"

// Service implements account, session and member use cases
type Service struct {
	userRepo    domainUser.Repository
	paymentRepo domainPayment.Repository
	eventRepo   domainEvent.Repository
	tokens      *utils.TokenManager
	notifier    notification.Notifier
	config      *config.Config
	now         func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now for reset-token expiry and ages.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(
	userRepo domainUser.Repository,
	paymentRepo domainPayment.Repository,
	eventRepo domainEvent.Repository,
	tokens *utils.TokenManager,
	notifier notification.Notifier,
	cfg *config.Config,
	opts ...Option,
) *Service {
	s := &Service{
		userRepo:    userRepo,
		paymentRepo: paymentRepo,
		eventRepo:   eventRepo,
		tokens:      tokens,
		notifier:    notifier,
		config:      cfg,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register signs up a student.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*UserResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	if err := utils.ValidatePassword(req.Password); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeWeakPassword, err.Error(), nil)
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	surname := utils.SanitizeString(req.PaternalSurname)
	if surname == "" {
		surname = placeholderSurname
	}

	user := &domainUser.User{
		Name:            utils.SanitizeString(req.Name),
		PaternalSurname: surname,
		MaternalSurname: utils.SanitizeOptional(req.MaternalSurname),
		Email:           utils.SanitizeEmail(req.Email),
		PasswordHash:    hashedPassword,
		Role:            domainUser.RoleStudent,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domainUser.ErrUserAlreadyExists) {
			logger.Warn("Registration attempt with existing email",
				zap.String("email", user.Email),
				zap.String("event", "registration_failed_duplicate_email"),
			)
		}
		return nil, err
	}

	logger.Info("User registered successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)),
		zap.String("event", "user_registered"),
	)

	return ToUserResponse(user, s.now()), nil
}

// Login verifies credentials and issues a session token. An unknown email
// is reported as ErrUserNotFound, a wrong password as ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	email := utils.SanitizeEmail(req.Email)
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			logger.Warn("Login attempt with non-existent email",
				zap.String("email", email),
				zap.String("event", "user_not_found"),
			)
		}
		return nil, err
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		logger.Warn("Login attempt with invalid password",
			zap.String("user_id", user.ID.String()),
			zap.String("email", user.Email),
			zap.String("event", "login_failed_invalid_password"),
		)
		return nil, appErrors.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	logger.Info("User logged in successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
		zap.String("event", "login_success"),
	)

	return &AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      ToUserResponse(user, s.now()),
	}, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return appErrors.Validation("Invalid input", err)
	}

	if err := utils.ValidatePassword(req.NewPassword); err != nil {
		return appErrors.NewAppError(appErrors.CodeWeakPassword, err.Error(), nil)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		logger.Warn("Password change attempt with invalid current password",
			zap.String("user_id", user.ID.String()),
			zap.String("event", "password_change_failed_invalid_old_password"),
		)
		return appErrors.ErrInvalidCredentials
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return err
	}

	logger.Info("Password changed successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("event", "password_change_success"),
	)

	return nil
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return ToUserResponse(user, s.now()), nil
}

func (s *Service) resetLink(token string) string {
	return strings.TrimRight(s.config.App.FrontendURL, "/") + "/reset-password/" + token
}
