package reminder

import (
	"context"
	"fmt"
	"time"

	"dojo-admin/internal/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler triggers the Job on a cron expression.
type Scheduler struct {
	cron    *cron.Cron
	job     *Job
	timeout time.Duration
}

// NewScheduler parses expr (five fields, minute first) in location.
func NewScheduler(job *Job, expr string, location *time.Location, timeout time.Duration) (*Scheduler, error) {
	if location == nil {
		location = time.UTC
	}
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger.Logger.Named("cron")))

	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(location),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		job:     job,
		timeout: timeout,
	}

	if _, err := s.cron.AddFunc(expr, s.run); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", expr, err)
	}

	return s, nil
}

func (s *Scheduler) run() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.job.RunScheduled(ctx)
}

func (s *Scheduler) Start() {
	s.cron.Start()

	for _, entry := range s.cron.Entries() {
		logger.Info("Reminder scheduler started",
			zap.Time("next_run", entry.Next),
		)
	}
}

// Stop prevents new runs and waits for a running one, up to ctx's deadline.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
