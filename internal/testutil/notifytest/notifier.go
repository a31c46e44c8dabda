// Package notifytest provides a Notifier that records requests instead of
// delivering them.
package notifytest

import (
	"context"
	"sync"

	"dojo-admin/internal/usecase/notification"
)

// Recorder captures every request. Detached requests are resolved and
// rendered synchronously so tests can inspect the messages.
type Recorder struct {
	mu       sync.Mutex
	requests []notification.Request
	messages []Delivered
	// ResolveErr, when set, is returned from Dispatch instead of resolving.
	ResolveErr error
}

// Delivered is one rendered message with its recipient.
type Delivered struct {
	Event     string
	Channels  notification.Channel
	Recipient notification.Recipient
	Message   notification.Message
}

func (r *Recorder) Dispatch(ctx context.Context, req notification.Request) (notification.Result, error) {
	r.mu.Lock()
	r.requests = append(r.requests, req)
	r.mu.Unlock()

	if r.ResolveErr != nil {
		return notification.Result{}, r.ResolveErr
	}

	recipients := req.Recipients
	if req.Resolve != nil {
		var err error
		recipients, err = req.Resolve(ctx)
		if err != nil {
			return notification.Result{}, err
		}
	}
	if len(recipients) == 0 {
		return notification.Result{}, notification.ErrNoRecipients
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, recipient := range recipients {
		msg := req.Message
		if req.Render != nil {
			msg = req.Render(recipient)
		}
		r.messages = append(r.messages, Delivered{
			Event:     req.Event,
			Channels:  req.Channels,
			Recipient: recipient,
			Message:   msg,
		})
	}
	return notification.Result{Attempted: len(recipients), Succeeded: len(recipients)}, nil
}

func (r *Recorder) Go(req notification.Request) {
	_, _ = r.Dispatch(context.Background(), req)
}

func (r *Recorder) Requests() []notification.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification.Request(nil), r.requests...)
}

func (r *Recorder) Delivered() []Delivered {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Delivered(nil), r.messages...)
}
