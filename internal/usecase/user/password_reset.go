package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainUser "dojo-admin/internal/domain/user"
	"dojo-admin/internal/logger"
	"dojo-admin/internal/usecase/notification"
	appErrors "dojo-admin/pkg/errors"
	"dojo-admin/pkg/utils"

	"go.uber.org/zap"
)

// ForgotPassword starts a reset for the account behind req.Email. The
// outcome looks the same whether or not the account exists.
func (s *Service) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return appErrors.Validation("Invalid input", err)
	}

	email := utils.SanitizeEmail(req.Email)
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			logger.Info("Password reset requested for non-existent email",
				zap.String("email", email),
				zap.String("event", "password_reset_requested_non_existent_email"),
			)
			return nil
		}
		return fmt.Errorf("failed to retrieve user: %w", err)
	}

	token, err := utils.GenerateResetToken()
	if err != nil {
		return err
	}

	ttl := s.config.App.ResetTokenTTL
	expiresAt := s.now().Add(ttl)
	if err := s.userRepo.SetResetToken(ctx, user.ID, token, expiresAt); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	logger.Info("Password reset token generated",
		zap.String("user_id", user.ID.String()),
		zap.Time("expires_at", expiresAt),
		zap.String("event", "password_reset_token_generated"),
	)

	link := s.resetLink(token)
	s.notifier.Go(notification.Request{
		Event:      "password_reset",
		Channels:   notification.ChannelEmail,
		Recipients: []notification.Recipient{notification.RecipientFromUser(user)},
		Render: func(r notification.Recipient) notification.Message {
			return notification.ResetPasswordMessage(r, link, ttl)
		},
	})

	return nil
}

// ResetPassword redeems token. Unknown, expired and already used tokens
// all return ErrResetTokenInvalid.
func (s *Service) ResetPassword(ctx context.Context, token string, req *ResetPasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return appErrors.Validation("Invalid input", err)
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return domainUser.ErrResetTokenInvalid
	}

	if err := utils.ValidatePassword(req.Password); err != nil {
		return appErrors.NewAppError(appErrors.CodeWeakPassword, err.Error(), nil)
	}

	now := s.now()
	if _, err := s.userRepo.GetByResetToken(ctx, token, now); err != nil {
		if errors.Is(err, domainUser.ErrResetTokenInvalid) {
			logger.Warn("Password reset attempt with invalid token",
				zap.String("event", "password_reset_failed_invalid_token"),
			)
		}
		return err
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.userRepo.RedeemResetToken(ctx, token, hashedPassword, now)
	if err != nil {
		if errors.Is(err, domainUser.ErrResetTokenInvalid) {
			logger.Warn("Reset token redeemed concurrently",
				zap.String("event", "password_reset_failed_token_consumed"),
			)
		}
		return err
	}

	logger.Info("Password reset successfully",
		zap.String("user_id", userID.String()),
		zap.String("event", "password_reset_success"),
	)

	return nil
}
