// Package app wires repositories, infrastructure and use cases together for
// the HTTP server and the admin CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dojo-admin/internal/config"
	"dojo-admin/internal/infrastructure/database/postgres"
	"dojo-admin/internal/infrastructure/lock"
	"dojo-admin/internal/infrastructure/mail"
	"dojo-admin/internal/infrastructure/storage"
	"dojo-admin/internal/logger"
	"dojo-admin/internal/usecase/activity"
	"dojo-admin/internal/usecase/announcement"
	"dojo-admin/internal/usecase/document"
	"dojo-admin/internal/usecase/notification"
	"dojo-admin/internal/usecase/payment"
	"dojo-admin/internal/usecase/reminder"
	"dojo-admin/internal/usecase/tracking"
	"dojo-admin/internal/usecase/user"
	"dojo-admin/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisPingTimeout = 5 * time.Second

type App struct {
	Config     *config.Config
	DB         *postgres.DB
	Tokens     *utils.TokenManager
	Dispatcher *notification.Dispatcher
	Location   *time.Location

	Users         *user.Service
	Payments      *payment.Service
	Documents     *document.Service
	Announcements *announcement.Service
	Activities    *activity.Service
	Tracking      *tracking.Service
	Notifications *notification.Service
	Reminders     *reminder.Job

	redis *redis.Client
}

func New(ctx context.Context, cfg *config.Config, db *postgres.DB) (*App, error) {
	tokens, err := utils.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL())
	if err != nil {
		return nil, err
	}

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler timezone %q: %w", cfg.Scheduler.Timezone, err)
	}

	userRepository := postgres.NewUserRepository(db)
	paymentRepository := postgres.NewPaymentRepository(db)
	documentRepository := postgres.NewDocumentRepository(db)
	announcementRepository := postgres.NewAnnouncementRepository(db)
	activityRepository := postgres.NewActivityRepository(db)
	eventRepository := postgres.NewSportEventRepository(db)
	notificationRepository := postgres.NewNotificationRepository(db)

	dispatcher := notification.NewDispatcher(notificationRepository, newEmailSender(cfg),
		notification.WithWorkers(cfg.Notification.Workers),
		notification.WithTimeout(cfg.Notification.Timeout),
	)

	store, err := newObjectStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:     cfg,
		DB:         db,
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Location:   location,
	}

	a.Users = user.NewService(userRepository, paymentRepository, eventRepository, tokens, dispatcher, cfg)
	a.Payments = payment.NewService(paymentRepository, userRepository, dispatcher)
	a.Documents = document.NewService(documentRepository, userRepository, store, dispatcher, cfg.Storage.Prefix)
	a.Announcements = announcement.NewService(announcementRepository, userRepository, dispatcher)
	a.Activities = activity.NewService(activityRepository)
	a.Tracking = tracking.NewService(eventRepository, userRepository)
	a.Notifications = notification.NewService(notificationRepository, userRepository, dispatcher)
	a.Reminders = reminder.NewJob(userRepository, dispatcher, a.newLocker(ctx), location, cfg.Scheduler.ReminderDueDay)

	return a, nil
}

func newEmailSender(cfg *config.Config) notification.EmailSender {
	if cfg.SMTP.Host == "" {
		logger.Warn("SMTP_HOST not set, emails will only be logged")
		return mail.LogSender{}
	}
	return mail.NewSMTPSender(cfg.SMTP)
}

// newObjectStore returns a nil store, not an error, when no bucket is set.
func newObjectStore(ctx context.Context, cfg *config.Config) (document.ObjectStore, error) {
	s3Store, err := storage.NewS3Store(ctx, cfg.Storage)
	if errors.Is(err, storage.ErrNotConfigured) {
		logger.Warn("AWS_BUCKET_NAME not set, document uploads are disabled")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s3Store, nil
}

func (a *App) newLocker(ctx context.Context) reminder.Locker {
	if a.Config.Redis.Addr == "" {
		return lock.NewLocalLock()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.Config.Redis.Addr,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unreachable, reminder lock is process-local",
			zap.String("addr", a.Config.Redis.Addr),
			zap.Error(err),
		)
		_ = client.Close()
		return lock.NewLocalLock()
	}

	a.redis = client
	return lock.NewRedisLock(client)
}

// Close waits for background notifications and releases connections.
// The database is owned by the caller.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.Dispatcher.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}
