package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dojo-admin/internal/config"
	"dojo-admin/internal/logger"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const sendTimeout = 20 * time.Second

var ErrInvalidRecipient = errors.New("invalid email recipient")

// SMTPSender delivers HTML email through an SMTP relay. Sends are throttled
// so a large fan-out does not trip the relay's rate limits.
type SMTPSender struct {
	cfg     config.SMTPConfig
	limiter *rate.Limiter
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	return &SMTPSender{
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg, err := s.buildMessage(to, subject, htmlBody)
	if err != nil {
		return err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("mail throttle: %w", err)
	}

	client, err := gomail.NewClient(s.cfg.Host,
		gomail.WithPort(s.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.cfg.User),
		gomail.WithPassword(s.cfg.Password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(sendTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.Debug("Email sent",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("event", "email_sent"),
	)
	return nil
}

func (s *SMTPSender) buildMessage(to, subject, htmlBody string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()

	from := s.cfg.From
	if from == "" {
		from = s.cfg.User
	}
	if err := msg.FromFormat(s.cfg.FromName, from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecipient, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	return msg, nil
}

// LogSender writes emails to the log instead of sending them. It is used
// when no SMTP host is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, to, subject, _ string) error {
	logger.Info("Email delivery disabled, message logged only",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("event", "email_skipped"),
	)
	return nil
}
