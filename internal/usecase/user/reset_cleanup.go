package user

import (
	"context"
	"time"

	"dojo-admin/internal/logger"

	"go.uber.org/zap"
)

// StartResetCleanupJob clears expired reset tokens every interval until ctx
// is cancelled.
func (s *Service) StartResetCleanupJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Reset token cleanup job started",
		zap.Duration("interval", interval),
	)

	s.cleanupExpiredResetTokens(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Reset token cleanup job stopped")
			return
		case <-ticker.C:
			s.cleanupExpiredResetTokens(ctx)
		}
	}
}

func (s *Service) cleanupExpiredResetTokens(ctx context.Context) {
	cleared, err := s.userRepo.ClearExpiredResetTokens(ctx, s.now())
	if err != nil {
		logger.Error("Failed to clear expired reset tokens", zap.Error(err))
		return
	}

	logger.Debug("Expired reset tokens cleared",
		zap.Int64("cleared", cleared),
	)
}
