package reminder

import (
	"context"
	"fmt"
	"time"

	domainUser "dojo-admin/internal/domain/user"
	"dojo-admin/internal/logger"
	"dojo-admin/internal/usecase/notification"

	"go.uber.org/zap"
)

const (
	periodLayout = "2006-01"
	// lockTTL outlives the period so a late replica cannot claim it again.
	lockTTL = 32 * 24 * time.Hour
)

//go:generate mockgen -destination=../../mocks/mock_locker.go -package=mocks dojo-admin/internal/usecase/reminder Locker

// Locker claims a key for ttl. It reports false when someone else holds it.
// Release gives up a claim this process holds.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Job emails the monthly tuition reminder to every student.
type Job struct {
	userRepo domainUser.Repository
	notifier notification.Notifier
	lock     Locker
	location *time.Location
	dueDay   int
	now      func() time.Time
}

func NewJob(userRepo domainUser.Repository, notifier notification.Notifier, lock Locker, location *time.Location, dueDay int) *Job {
	if location == nil {
		location = time.UTC
	}
	return &Job{
		userRepo: userRepo,
		notifier: notifier,
		lock:     lock,
		location: location,
		dueDay:   dueDay,
		now:      time.Now,
	}
}

func (j *Job) WithClock(now func() time.Time) *Job {
	j.now = now
	return j
}

// RunOnce sends the reminder right away. Running it twice sends twice.
func (j *Job) RunOnce(ctx context.Context) (notification.Result, error) {
	dueDay := j.dueDay
	result, err := j.notifier.Dispatch(ctx, notification.Request{
		Event:    "monthly_reminder",
		Channels: notification.ChannelEmail,
		Resolve:  notification.StudentsResolver(j.userRepo),
		Render: func(r notification.Recipient) notification.Message {
			return notification.MonthlyReminderMessage(r, dueDay)
		},
	})
	if err != nil {
		return result, fmt.Errorf("monthly reminder: %w", err)
	}

	logger.Info("Monthly reminder sent",
		zap.Int("attempted", result.Attempted),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.String("event", "monthly_reminder_sent"),
	)
	return result, nil
}

// RunScheduled runs the reminder at most once per calendar month across
// every process sharing the lock.
func (j *Job) RunScheduled(ctx context.Context) {
	key := "reminder:" + j.now().In(j.location).Format(periodLayout)

	if j.lock != nil {
		acquired, err := j.lock.Acquire(ctx, key, lockTTL)
		if err != nil {
			logger.Error("Failed to acquire reminder lock",
				zap.String("key", key),
				zap.Error(err),
			)
			return
		}
		if !acquired {
			logger.Info("Monthly reminder already claimed for period",
				zap.String("key", key),
				zap.String("event", "monthly_reminder_skipped"),
			)
			return
		}
	}

	result, err := j.RunOnce(ctx)
	if err == nil && (result.Attempted == 0 || result.Succeeded > 0) {
		return
	}
	if err == nil {
		err = fmt.Errorf("monthly reminder: all %d deliveries failed", result.Attempted)
	}
	logger.Error("Monthly reminder failed",
		zap.String("key", key),
		zap.Error(err),
	)

	// A failed period stays open for the next run.
	if j.lock != nil {
		if releaseErr := j.lock.Release(context.WithoutCancel(ctx), key); releaseErr != nil {
			logger.Error("Failed to release reminder lock",
				zap.String("key", key),
				zap.Error(releaseErr),
			)
		}
	}
}
