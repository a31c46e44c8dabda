package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domainNotification "dojo-admin/internal/domain/notification"
	"dojo-admin/internal/logger"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

const (
	DefaultWorkers = 8
	DefaultTimeout = 30 * time.Second
)

var (
	// ErrNoRecipients is returned when the resolved recipient set is empty.
	ErrNoRecipients = errors.New("notification has no recipients")
	// ErrRecipientsUnresolved wraps a failure to compute the recipient set.
	ErrRecipientsUnresolved = errors.New("notification recipients could not be resolved")
	ErrNoChannel            = errors.New("notification has no delivery channel")
	ErrDispatcherClosed     = errors.New("dispatcher is shut down")
	errMissingAddress       = errors.New("recipient has no email address")
	errMissingUser          = errors.New("recipient has no user id")
)

//go:generate mockgen -destination=../../mocks/mock_email_sender.go -package=mocks dojo-admin/internal/usecase/notification EmailSender

// EmailSender delivers a single HTML email.
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Channel is a bit set of delivery targets.
type Channel uint8

const (
	ChannelInApp Channel = 1 << iota
	ChannelEmail

	ChannelAll = ChannelInApp | ChannelEmail
)

func (c Channel) Has(other Channel) bool {
	return c&other != 0
}

func (c Channel) String() string {
	switch c {
	case ChannelInApp:
		return "in_app"
	case ChannelEmail:
		return "email"
	case ChannelAll:
		return "in_app+email"
	}
	return fmt.Sprintf("channel(%d)", uint8(c))
}

type Recipient struct {
	UserID uuid.UUID
	Email  string
	Name   string
}

// Message is what one recipient receives. Text becomes the in-app
// notification; Subject and HTML make up the email.
type Message struct {
	Text    string
	Subject string
	HTML    string
}

type Request struct {
	// Event names the trigger in logs and metrics, e.g. "payment_confirmed".
	Event    string
	Channels Channel

	// Recipients is used as-is unless Resolve is set.
	Recipients []Recipient
	Resolve    func(ctx context.Context) ([]Recipient, error)

	// Render builds a per-recipient message. When nil, Message is shared.
	Message Message
	Render  func(Recipient) Message
}

type Result struct {
	Attempted int
	Succeeded int
	Failed    int
}

// Notifier is the part of the Dispatcher that business services trigger.
type Notifier interface {
	Dispatch(ctx context.Context, req Request) (Result, error)
	Go(req Request)
}

// Dispatcher fans a notification out to many recipients. Each recipient is
// delivered independently: an error or panic for one is logged and counted
// and never stops the others or reaches the caller.
type Dispatcher struct {
	notifications domainNotification.Repository
	email         EmailSender
	workers       int
	timeout       time.Duration
	metrics       *MetricsTracker
	now           func() time.Time

	mu       sync.Mutex
	closed   bool
	inFlight sync.WaitGroup
}

type Option func(*Dispatcher)

func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

func NewDispatcher(notifications domainNotification.Repository, email EmailSender, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		notifications: notifications,
		email:         email,
		workers:       DefaultWorkers,
		timeout:       DefaultTimeout,
		metrics:       NewMetricsTracker(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch delivers req and waits for every recipient. It only fails when
// the recipient set cannot be determined; per-recipient failures are
// reported through Result.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (Result, error) {
	if req.Channels == 0 {
		return Result{}, ErrNoChannel
	}

	recipients, err := d.resolve(ctx, req)
	if err != nil {
		d.metrics.Update(func(m *DispatchMetrics) {
			m.Unresolved++
		})
		return Result{}, err
	}

	start := d.now()
	var (
		mu     sync.Mutex
		result = Result{Attempted: len(recipients)}
	)

	p := pool.New().WithMaxGoroutines(d.workers)
	for _, recipient := range recipients {
		p.Go(func() {
			ok := d.deliverIsolated(ctx, req, recipient)

			mu.Lock()
			defer mu.Unlock()
			if ok {
				result.Succeeded++
			} else {
				result.Failed++
			}
		})
	}
	p.Wait()

	elapsed := d.now().Sub(start)
	observeDispatch(req.Event, elapsed)
	d.metrics.Update(func(m *DispatchMetrics) {
		m.Dispatches++
		m.RecipientsAttempted += int64(result.Attempted)
		m.RecipientsSucceeded += int64(result.Succeeded)
		m.RecipientsFailed += int64(result.Failed)
		m.LastDispatchAt = d.now()
		if m.AverageDuration == 0 {
			m.AverageDuration = elapsed
		} else {
			m.AverageDuration = (m.AverageDuration + elapsed) / 2
		}
	})

	logger.Info("Notification dispatched",
		zap.String("event", req.Event),
		zap.String("channels", req.Channels.String()),
		zap.Int("attempted", result.Attempted),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", elapsed),
	)

	return result, nil
}

// Go runs req in the background on its own context, detached from the
// caller. Resolution and each recipient are bounded by the dispatcher
// timeout. Its outcome is only logged.
func (d *Dispatcher) Go(req Request) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		logger.Warn("Notification dropped after shutdown",
			zap.String("event", req.Event),
			zap.Error(ErrDispatcherClosed),
		)
		return
	}
	d.inFlight.Add(1)
	d.mu.Unlock()

	d.metrics.Update(func(m *DispatchMetrics) {
		m.InFlight++
	})

	go func() {
		defer d.inFlight.Done()
		defer d.metrics.Update(func(m *DispatchMetrics) {
			m.InFlight--
		})

		var catcher panics.Catcher
		catcher.Try(func() {
			if _, err := d.Dispatch(context.Background(), req); err != nil {
				logger.Warn("Background notification not dispatched",
					zap.String("event", req.Event),
					zap.Error(err),
				)
			}
		})
		if recovered := catcher.Recovered(); recovered != nil {
			logger.Error("Background notification panicked",
				zap.String("event", req.Event),
				zap.Error(recovered.AsError()),
			)
		}
	}()
}

// Wait blocks until every detached dispatch has finished.
func (d *Dispatcher) Wait() {
	d.inFlight.Wait()
}

// Shutdown stops accepting detached work and waits for what is running,
// up to ctx's deadline.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.inFlight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for notifications: %w", ctx.Err())
	}
}

func (d *Dispatcher) Metrics() DispatchMetrics {
	return d.metrics.Snapshot()
}

func (d *Dispatcher) resolve(ctx context.Context, req Request) ([]Recipient, error) {
	recipients := req.Recipients
	if req.Resolve != nil {
		ctx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()

		var err error
		recipients, err = req.Resolve(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRecipientsUnresolved, err)
		}
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}
	return recipients, nil
}

// deliverIsolated bounds each recipient by the dispatcher timeout on its own.
func (d *Dispatcher) deliverIsolated(ctx context.Context, req Request, recipient Recipient) bool {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var err error
	var catcher panics.Catcher
	catcher.Try(func() {
		err = d.deliver(ctx, req, recipient)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		d.metrics.Update(func(m *DispatchMetrics) {
			m.Panics++
		})
		err = recovered.AsError()
	}

	if err != nil {
		logger.Warn("Notification delivery failed",
			zap.String("event", req.Event),
			zap.String("user_id", recipient.UserID.String()),
			zap.Error(err),
		)
		return false
	}
	return true
}

// deliver attempts every requested channel; one channel failing does not
// skip the other.
func (d *Dispatcher) deliver(ctx context.Context, req Request, recipient Recipient) error {
	msg := req.Message
	if req.Render != nil {
		msg = req.Render(recipient)
	}

	var errs []error

	if req.Channels.Has(ChannelInApp) {
		err := d.persist(ctx, recipient, msg)
		recordDelivery(ChannelInApp, err)
		if err != nil {
			errs = append(errs, fmt.Errorf("in-app: %w", err))
		}
	}

	if req.Channels.Has(ChannelEmail) {
		err := d.sendEmail(ctx, recipient, msg)
		recordDelivery(ChannelEmail, err)
		if err != nil {
			errs = append(errs, fmt.Errorf("email: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (d *Dispatcher) persist(ctx context.Context, recipient Recipient, msg Message) error {
	if recipient.UserID == uuid.Nil {
		return errMissingUser
	}
	text := msg.Text
	if text == "" {
		text = msg.Subject
	}
	return d.notifications.Create(ctx, &domainNotification.Notification{
		UserID:    recipient.UserID,
		Message:   text,
		CreatedAt: d.now().UTC(),
	})
}

func (d *Dispatcher) sendEmail(ctx context.Context, recipient Recipient, msg Message) error {
	if recipient.Email == "" {
		return errMissingAddress
	}
	return d.email.Send(ctx, recipient.Email, msg.Subject, msg.HTML)
}
