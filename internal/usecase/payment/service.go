package payment

import (
	"context"
	"fmt"
	"time"

	domainPayment "dojo-admin/internal/domain/payment"
	domainUser "dojo-admin/internal/domain/user"
	"dojo-admin/internal/logger"
	"dojo-admin/internal/usecase/notification"
	appErrors "dojo-admin/pkg/errors"
	"dojo-admin/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service manages member payments. Status changes that concern the member
// are announced through the notifier after the write has been committed.
type Service struct {
	paymentRepo domainPayment.Repository
	userRepo    domainUser.Repository
	notifier    notification.Notifier
	now         func() time.Time
}

func NewService(paymentRepo domainPayment.Repository, userRepo domainUser.Repository, notifier notification.Notifier) *Service {
	return &Service{
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		now:         time.Now,
	}
}

// WithClock sets the clock used for paid dates.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) List(ctx context.Context, status string) ([]*PaymentListingResponse, error) {
	var filter domainPayment.Filter
	if status != "" {
		st := domainPayment.Status(status)
		if !st.IsValid() {
			return nil, appErrors.Validation("Invalid status filter", domainPayment.ErrInvalidStatus)
		}
		filter.Status = &st
	}
	return s.list(ctx, filter)
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*PaymentListingResponse, error) {
	return s.list(ctx, domainPayment.Filter{UserID: &userID})
}

func (s *Service) list(ctx context.Context, filter domainPayment.Filter) ([]*PaymentListingResponse, error) {
	listings, err := s.paymentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]*PaymentListingResponse, 0, len(listings))
	for _, listing := range listings {
		responses = append(responses, ToPaymentListingResponse(listing))
	}
	return responses, nil
}

func (s *Service) Create(ctx context.Context, actorID uuid.UUID, req *CreatePaymentRequest) (*PaymentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	dueDate, err := time.Parse(DateLayout, req.DueDate)
	if err != nil {
		return nil, appErrors.Validation("Invalid due date, expected YYYY-MM-DD", err)
	}

	owner, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	status := domainPayment.StatusPending
	if req.Status != "" {
		status = domainPayment.Status(req.Status)
	}

	p := &domainPayment.Payment{
		UserID:      owner.ID,
		Amount:      req.Amount,
		Concept:     utils.SanitizeString(req.Concept),
		Status:      status,
		DueDate:     dueDate,
		PaymentType: utils.SanitizeOptional(req.PaymentType),
	}
	if status == domainPayment.StatusPaid {
		paidAt := s.now().UTC()
		p.PaidAt = &paidAt
	}

	if err := s.paymentRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	logger.Info("Payment created",
		zap.String("payment_id", p.ID.String()),
		zap.String("user_id", p.UserID.String()),
		zap.String("created_by", actorID.String()),
		zap.String("status", string(p.Status)),
		zap.String("event", "payment_created"),
	)

	if p.Status == domainPayment.StatusPending {
		concept, amount, due := p.Concept, p.Amount, p.DueDate
		s.notifier.Go(notification.Request{
			Event:      "payment_pending",
			Channels:   notification.ChannelAll,
			Recipients: []notification.Recipient{notification.RecipientFromUser(owner)},
			Render: func(r notification.Recipient) notification.Message {
				return notification.PaymentPendingMessage(r, concept, amount, due)
			},
		})
	}

	return ToPaymentResponse(p), nil
}

// UpdateStatus moves a payment along the allowed transitions. Marking it
// Pagado stamps the paid date and tells the member; any other target clears
// the paid date. The response never depends on the notification.
func (s *Service) UpdateStatus(ctx context.Context, paymentID uuid.UUID, req *UpdateStatusRequest) (*PaymentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	current, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	next := domainPayment.Status(req.Status)
	if current.Status == next {
		return ToPaymentResponse(current), nil
	}

	if err := domainPayment.ValidateStatusTransition(current.Status, next); err != nil {
		return nil, err
	}

	var paidAt *time.Time
	if next == domainPayment.StatusPaid {
		now := s.now().UTC()
		paidAt = &now
	}

	updated, err := s.paymentRepo.UpdateStatus(ctx, paymentID, current.Status, next, paidAt)
	if err != nil {
		return nil, err
	}

	logger.Info("Payment status updated",
		zap.String("payment_id", updated.ID.String()),
		zap.String("from", string(current.Status)),
		zap.String("to", string(updated.Status)),
		zap.String("event", "payment_status_updated"),
	)

	if updated.Status == domainPayment.StatusPaid {
		s.notifyConfirmed(updated)
	}

	return ToPaymentResponse(updated), nil
}

func (s *Service) notifyConfirmed(p *domainPayment.Payment) {
	ownerID, concept := p.UserID, p.Concept
	s.notifier.Go(notification.Request{
		Event:    "payment_confirmed",
		Channels: notification.ChannelAll,
		Resolve: func(ctx context.Context) ([]notification.Recipient, error) {
			owner, err := s.userRepo.GetByID(ctx, ownerID)
			if err != nil {
				return nil, fmt.Errorf("payment owner %s: %w", ownerID, err)
			}
			return []notification.Recipient{notification.RecipientFromUser(owner)}, nil
		},
		Render: func(r notification.Recipient) notification.Message {
			return notification.PaymentConfirmedMessage(r, concept)
		},
	})
}

func (s *Service) Delete(ctx context.Context, paymentID uuid.UUID) error {
	if err := s.paymentRepo.Delete(ctx, paymentID); err != nil {
		return err
	}

	logger.Info("Payment deleted",
		zap.String("payment_id", paymentID.String()),
		zap.String("event", "payment_deleted"),
	)

	return nil
}
