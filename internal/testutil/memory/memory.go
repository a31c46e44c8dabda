// Package memory holds map-backed repositories for service and handler
// tests. They follow the same contracts as the postgres adapters, including
// the conditional writes.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domainDocument "dojo-admin/internal/domain/document"
	domainEvent "dojo-admin/internal/domain/event"
	domainNotification "dojo-admin/internal/domain/notification"
	domainPayment "dojo-admin/internal/domain/payment"
	domainUser "dojo-admin/internal/domain/user"

	"github.com/google/uuid"
)

type Users struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domainUser.User
}

func NewUsers(seed ...*domainUser.User) *Users {
	u := &Users{users: make(map[uuid.UUID]*domainUser.User)}
	for _, user := range seed {
		if user.ID == uuid.Nil {
			user.ID = uuid.New()
		}
		copied := *user
		u.users[user.ID] = &copied
	}
	return u
}

func (u *Users) Create(_ context.Context, user *domainUser.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	user.Email = strings.ToLower(user.Email)
	for _, existing := range u.users {
		if existing.Email == user.Email {
			return domainUser.ErrUserAlreadyExists
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt

	copied := *user
	u.users[user.ID] = &copied
	return nil
}

func (u *Users) GetByEmail(_ context.Context, email string) (*domainUser.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	for _, existing := range u.users {
		if existing.Email == strings.ToLower(email) {
			copied := *existing
			return &copied, nil
		}
	}
	return nil, domainUser.ErrUserNotFound
}

func (u *Users) GetByID(_ context.Context, userID uuid.UUID) (*domainUser.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	existing, ok := u.users[userID]
	if !ok {
		return nil, domainUser.ErrUserNotFound
	}
	copied := *existing
	return &copied, nil
}

func (u *Users) List(_ context.Context, filter domainUser.Filter) ([]*domainUser.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	var users []*domainUser.User
	for _, existing := range u.users {
		if filter.Role != nil && existing.Role != *filter.Role {
			continue
		}
		copied := *existing
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (u *Users) Update(_ context.Context, user *domainUser.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	existing, ok := u.users[user.ID]
	if !ok {
		return domainUser.ErrUserNotFound
	}
	for id, other := range u.users {
		if id != user.ID && other.Email == strings.ToLower(user.Email) {
			return domainUser.ErrUserAlreadyExists
		}
	}
	copied := *user
	copied.Email = strings.ToLower(user.Email)
	copied.PasswordHash = existing.PasswordHash
	copied.Role = existing.Role
	copied.ResetToken = existing.ResetToken
	copied.ResetTokenExpires = existing.ResetTokenExpires
	u.users[user.ID] = &copied
	return nil
}

func (u *Users) UpdateRole(_ context.Context, userID uuid.UUID, role domainUser.Role) error {
	return u.mutate(userID, func(user *domainUser.User) {
		user.Role = role
	})
}

func (u *Users) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string) error {
	return u.mutate(userID, func(user *domainUser.User) {
		user.PasswordHash = passwordHash
	})
}

func (u *Users) Delete(_ context.Context, userID uuid.UUID) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, ok := u.users[userID]; !ok {
		return domainUser.ErrUserNotFound
	}
	delete(u.users, userID)
	return nil
}

func (u *Users) SetResetToken(_ context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	return u.mutate(userID, func(user *domainUser.User) {
		user.ResetToken = &token
		user.ResetTokenExpires = &expiresAt
	})
}

func (u *Users) GetByResetToken(_ context.Context, token string, now time.Time) (*domainUser.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	for _, existing := range u.users {
		if matchesReset(existing, token, now) {
			copied := *existing
			return &copied, nil
		}
	}
	return nil, domainUser.ErrResetTokenInvalid
}

func (u *Users) RedeemResetToken(_ context.Context, token, passwordHash string, now time.Time) (uuid.UUID, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	for _, existing := range u.users {
		if matchesReset(existing, token, now) {
			existing.PasswordHash = passwordHash
			existing.ResetToken = nil
			existing.ResetTokenExpires = nil
			return existing.ID, nil
		}
	}
	return uuid.Nil, domainUser.ErrResetTokenInvalid
}

func (u *Users) ClearExpiredResetTokens(_ context.Context, now time.Time) (int64, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	var cleared int64
	for _, existing := range u.users {
		if existing.ResetToken != nil && existing.ResetTokenExpires != nil && !existing.ResetTokenExpires.After(now) {
			existing.ResetToken = nil
			existing.ResetTokenExpires = nil
			cleared++
		}
	}
	return cleared, nil
}

func (u *Users) mutate(userID uuid.UUID, fn func(*domainUser.User)) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	existing, ok := u.users[userID]
	if !ok {
		return domainUser.ErrUserNotFound
	}
	fn(existing)
	return nil
}

func matchesReset(user *domainUser.User, token string, now time.Time) bool {
	return user.ResetToken != nil && *user.ResetToken == token &&
		user.ResetTokenExpires != nil && user.ResetTokenExpires.After(now)
}

// Payments needs Users to fill in listing names.
type Payments struct {
	mu       sync.Mutex
	users    *Users
	payments map[uuid.UUID]*domainPayment.Payment
}

func NewPayments(users *Users) *Payments {
	return &Payments{users: users, payments: make(map[uuid.UUID]*domainPayment.Payment)}
}

func (p *Payments) Create(_ context.Context, payment *domainPayment.Payment) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	payment.ID = uuid.New()
	payment.CreatedAt = time.Now().UTC()
	payment.UpdatedAt = payment.CreatedAt
	copied := *payment
	p.payments[payment.ID] = &copied
	return nil
}

func (p *Payments) GetByID(_ context.Context, paymentID uuid.UUID) (*domainPayment.Payment, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	existing, ok := p.payments[paymentID]
	if !ok {
		return nil, domainPayment.ErrPaymentNotFound
	}
	copied := *existing
	return &copied, nil
}

func (p *Payments) List(ctx context.Context, filter domainPayment.Filter) ([]*domainPayment.Listing, error) {
	p.mu.Lock()
	var payments []domainPayment.Payment
	for _, existing := range p.payments {
		if filter.UserID != nil && existing.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && existing.Status != *filter.Status {
			continue
		}
		payments = append(payments, *existing)
	}
	p.mu.Unlock()

	sort.Slice(payments, func(i, j int) bool {
		return payments[i].DueDate.After(payments[j].DueDate)
	})

	listings := make([]*domainPayment.Listing, 0, len(payments))
	for _, payment := range payments {
		listing := &domainPayment.Listing{Payment: payment}
		if owner, err := p.users.GetByID(ctx, payment.UserID); err == nil {
			listing.StudentName = owner.FullName()
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

func (p *Payments) UpdateStatus(_ context.Context, paymentID uuid.UUID, from, to domainPayment.Status, paidAt *time.Time) (*domainPayment.Payment, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	existing, ok := p.payments[paymentID]
	if !ok {
		return nil, domainPayment.ErrPaymentNotFound
	}
	if existing.Status != from {
		return nil, domainPayment.ErrStatusChanged
	}
	existing.Status = to
	existing.PaidAt = paidAt
	existing.UpdatedAt = time.Now().UTC()
	copied := *existing
	return &copied, nil
}

func (p *Payments) Delete(_ context.Context, paymentID uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.payments[paymentID]; !ok {
		return domainPayment.ErrPaymentNotFound
	}
	delete(p.payments, paymentID)
	return nil
}

type Notifications struct {
	mu    sync.Mutex
	items []*domainNotification.Notification
	// FailFor makes Create fail for the listed users.
	FailFor map[uuid.UUID]error
}

func NewNotifications() *Notifications {
	return &Notifications{FailFor: make(map[uuid.UUID]error)}
}

func (n *Notifications) Create(_ context.Context, notification *domainNotification.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.FailFor[notification.UserID]; err != nil {
		return err
	}
	notification.ID = uuid.New()
	copied := *notification
	n.items = append(n.items, &copied)
	return nil
}

func (n *Notifications) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]*domainNotification.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	var items []*domainNotification.Notification
	for i := len(n.items) - 1; i >= 0 && len(items) < limit; i-- {
		if n.items[i].UserID == userID {
			copied := *n.items[i]
			items = append(items, &copied)
		}
	}
	return items, nil
}

func (n *Notifications) MarkRead(_ context.Context, userID, notificationID uuid.UUID) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, item := range n.items {
		if item.ID == notificationID && item.UserID == userID {
			item.Read = true
			return nil
		}
	}
	return domainNotification.ErrNotificationNotFound
}

// All returns every stored notification, oldest first.
func (n *Notifications) All() []domainNotification.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	items := make([]domainNotification.Notification, 0, len(n.items))
	for _, item := range n.items {
		items = append(items, *item)
	}
	return items
}

type Events struct {
	mu     sync.Mutex
	events []*domainEvent.SportEvent
}

func NewEvents() *Events {
	return &Events{}
}

func (e *Events) Create(_ context.Context, event *domainEvent.SportEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	event.ID = uuid.New()
	event.CreatedAt = time.Now().UTC()
	copied := *event
	e.events = append(e.events, &copied)
	return nil
}

func (e *Events) ListByUser(_ context.Context, userID uuid.UUID) ([]*domainEvent.SportEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var events []*domainEvent.SportEvent
	for _, event := range e.events {
		if event.UserID == userID {
			copied := *event
			events = append(events, &copied)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Date.After(events[j].Date)
	})
	return events, nil
}

type Documents struct {
	mu       sync.Mutex
	users    *Users
	requests []*domainDocument.Request
}

func NewDocuments(users *Users) *Documents {
	return &Documents{users: users}
}

func (d *Documents) Create(_ context.Context, request *domainDocument.Request) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	request.ID = uuid.New()
	copied := *request
	d.requests = append(d.requests, &copied)
	return nil
}

func (d *Documents) GetByID(_ context.Context, requestID uuid.UUID) (*domainDocument.Request, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, request := range d.requests {
		if request.ID == requestID {
			copied := *request
			return &copied, nil
		}
	}
	return nil, domainDocument.ErrRequestNotFound
}

func (d *Documents) LatestForUser(_ context.Context, userID uuid.UUID) (*domainDocument.Request, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := len(d.requests) - 1; i >= 0; i-- {
		if d.requests[i].UserID == userID {
			copied := *d.requests[i]
			return &copied, nil
		}
	}
	return nil, domainDocument.ErrRequestNotFound
}

func (d *Documents) ListPending(ctx context.Context) ([]*domainDocument.PendingListing, error) {
	d.mu.Lock()
	var pending []domainDocument.Request
	for _, request := range d.requests {
		if request.Status == domainDocument.StatusPending {
			pending = append(pending, *request)
		}
	}
	d.mu.Unlock()

	listings := make([]*domainDocument.PendingListing, 0, len(pending))
	for _, request := range pending {
		listing := &domainDocument.PendingListing{Request: request}
		if owner, err := d.users.GetByID(ctx, request.UserID); err == nil {
			listing.StudentName = owner.FullName()
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

func (d *Documents) ApplyReview(_ context.Context, requestID uuid.UUID, review domainDocument.Review) (*domainDocument.Request, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, request := range d.requests {
		if request.ID != requestID {
			continue
		}
		if request.Status != domainDocument.StatusPending {
			return nil, domainDocument.ErrAlreadyReviewed
		}
		reviewedAt := review.ReviewedAt
		reviewer := review.ReviewerID
		request.Status = review.Status
		request.RejectionReason = review.Reason
		request.ReviewedAt = &reviewedAt
		request.ReviewedBy = &reviewer
		copied := *request
		return &copied, nil
	}
	return nil, domainDocument.ErrRequestNotFound
}
