package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"dojo-admin/internal/mocks"
	"dojo-admin/internal/testutil/memory"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"
	"golang.org/x/time/rate"
)

func recipients(names ...string) []Recipient {
	list := make([]Recipient, 0, len(names))
	for _, name := range names {
		list = append(list, Recipient{
			UserID: uuid.New(),
			Email:  name + "@dojo.mx",
			Name:   name,
		})
	}
	return list
}

func TestDispatchIsolatesFailingRecipient(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockEmailSender(ctrl)
	store := memory.NewNotifications()

	sender.EXPECT().Send(gomock.Any(), "ana@dojo.mx", "Aviso", gomock.Any()).Return(nil)
	sender.EXPECT().Send(gomock.Any(), "beto@dojo.mx", "Aviso", gomock.Any()).Return(errors.New("smtp down"))
	sender.EXPECT().Send(gomock.Any(), "carla@dojo.mx", "Aviso", gomock.Any()).Return(nil)

	d := NewDispatcher(store, sender, WithWorkers(2))
	result, err := d.Dispatch(context.Background(), Request{
		Event:      "test",
		Channels:   ChannelAll,
		Recipients: recipients("ana", "beto", "carla"),
		Message:    Message{Text: "Hola", Subject: "Aviso", HTML: "<p>Hola</p>"},
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if result.Attempted != 3 || result.Succeeded != 2 || result.Failed != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if got := len(store.All()); got != 3 {
		t.Fatalf("expected in-app entry for every recipient, got %d", got)
	}

	metrics := d.Metrics()
	if metrics.Dispatches != 1 || metrics.RecipientsFailed != 1 {
		t.Fatalf("unexpected metrics %+v", metrics)
	}
}

func TestDispatchRecoversRecipientPanic(t *testing.T) {
	store := memory.NewNotifications()
	d := NewDispatcher(store, nil)

	list := recipients("ana", "beto")
	result, err := d.Dispatch(context.Background(), Request{
		Event:      "test",
		Channels:   ChannelInApp,
		Recipients: list,
		Render: func(r Recipient) Message {
			if r.Name == "beto" {
				panic("template exploded")
			}
			return Message{Text: "Hola " + r.Name}
		},
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if result.Succeeded != 1 || result.Failed != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if d.Metrics().Panics != 1 {
		t.Fatalf("expected one recorded panic, got %d", d.Metrics().Panics)
	}

	stored := store.All()
	if len(stored) != 1 || stored[0].UserID != list[0].UserID || stored[0].Message != "Hola ana" {
		t.Fatalf("unexpected stored notifications %+v", stored)
	}
}

func TestDispatchInAppFailureStillSendsEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockEmailSender(ctrl)
	store := memory.NewNotifications()

	list := recipients("ana")
	store.FailFor[list[0].UserID] = errors.New("db unavailable")
	sender.EXPECT().Send(gomock.Any(), "ana@dojo.mx", gomock.Any(), gomock.Any()).Return(nil)

	d := NewDispatcher(store, sender)
	result, err := d.Dispatch(context.Background(), Request{
		Event:      "test",
		Channels:   ChannelAll,
		Recipients: list,
		Message:    Message{Text: "Hola", Subject: "Aviso"},
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.Failed != 1 {
		t.Fatalf("expected the recipient to count as failed, got %+v", result)
	}
}

func TestDispatchUnresolvedRecipients(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockEmailSender(ctrl)
	d := NewDispatcher(memory.NewNotifications(), sender)

	_, err := d.Dispatch(context.Background(), Request{
		Event:    "test",
		Channels: ChannelEmail,
		Resolve: func(context.Context) ([]Recipient, error) {
			return nil, errors.New("query failed")
		},
	})
	if !errors.Is(err, ErrRecipientsUnresolved) {
		t.Fatalf("expected ErrRecipientsUnresolved, got %v", err)
	}
	if d.Metrics().Unresolved != 1 {
		t.Fatalf("expected unresolved counter, got %+v", d.Metrics())
	}
}

func TestDispatchRequiresRecipientsAndChannel(t *testing.T) {
	d := NewDispatcher(memory.NewNotifications(), nil)

	if _, err := d.Dispatch(context.Background(), Request{Channels: ChannelInApp}); !errors.Is(err, ErrNoRecipients) {
		t.Fatalf("expected ErrNoRecipients, got %v", err)
	}
	if _, err := d.Dispatch(context.Background(), Request{Recipients: recipients("ana")}); !errors.Is(err, ErrNoChannel) {
		t.Fatalf("expected ErrNoChannel, got %v", err)
	}
}

func TestDispatchRecipientWithoutEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockEmailSender(ctrl)
	d := NewDispatcher(memory.NewNotifications(), sender)

	result, err := d.Dispatch(context.Background(), Request{
		Channels:   ChannelEmail,
		Recipients: []Recipient{{UserID: uuid.New(), Name: "sin correo"}},
		Message:    Message{Subject: "Aviso"},
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.Failed != 1 {
		t.Fatalf("expected missing address to fail, got %+v", result)
	}
}

func TestGoDetachesFromCaller(t *testing.T) {
	store := memory.NewNotifications()
	d := NewDispatcher(store, nil)

	list := recipients("ana", "beto")
	d.Go(Request{
		Event:      "test",
		Channels:   ChannelInApp,
		Recipients: list,
		Message:    Message{Text: "Hola"},
	})
	d.Wait()

	if got := len(store.All()); got != 2 {
		t.Fatalf("expected 2 stored notifications, got %d", got)
	}
	if d.Metrics().InFlight != 0 {
		t.Fatalf("expected nothing in flight, got %d", d.Metrics().InFlight)
	}
}

func TestGoSurvivesResolverPanic(t *testing.T) {
	d := NewDispatcher(memory.NewNotifications(), nil)

	d.Go(Request{
		Event:    "test",
		Channels: ChannelInApp,
		Resolve: func(context.Context) ([]Recipient, error) {
			panic("resolver exploded")
		},
	})
	d.Wait()
}

func TestShutdownDropsNewWork(t *testing.T) {
	store := memory.NewNotifications()
	d := NewDispatcher(store, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	d.Go(Request{Channels: ChannelInApp, Recipients: recipients("ana"), Message: Message{Text: "tarde"}})
	d.Wait()

	if got := len(store.All()); got != 0 {
		t.Fatalf("expected no deliveries after shutdown, got %d", got)
	}
}

func TestInAppTextFallsBackToSubject(t *testing.T) {
	store := memory.NewNotifications()
	d := NewDispatcher(store, nil)

	_, err := d.Dispatch(context.Background(), Request{
		Channels:   ChannelInApp,
		Recipients: recipients("ana"),
		Message:    Message{Subject: "Solo asunto"},
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if stored := store.All(); len(stored) != 1 || !strings.Contains(stored[0].Message, "Solo asunto") {
		t.Fatalf("unexpected stored notifications %+v", stored)
	}
}

type throttledSender struct {
	limiter *rate.Limiter
	sent    atomic.Int32
}

func (s *throttledSender) Send(ctx context.Context, _, _, _ string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	s.sent.Add(1)
	return nil
}

func TestDispatchTimeoutAppliesPerRecipient(t *testing.T) {
	// 50 sends at 100/s take about half a second, well past the timeout,
	// while no single send waits longer than a couple of intervals.
	sender := &throttledSender{limiter: rate.NewLimiter(100, 1)}
	d := NewDispatcher(memory.NewNotifications(), sender, WithWorkers(2), WithTimeout(200*time.Millisecond))

	names := make([]string, 50)
	for i := range names {
		names[i] = fmt.Sprintf("alumno%02d", i)
	}

	result, err := d.Dispatch(context.Background(), Request{
		Event:      "test",
		Channels:   ChannelEmail,
		Recipients: recipients(names...),
		Message:    Message{Subject: "Aviso", HTML: "<p>Hola</p>"},
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.Succeeded != 50 || result.Failed != 0 {
		t.Fatalf("expected every recipient delivered, got %+v", result)
	}
	if got := sender.sent.Load(); got != 50 {
		t.Fatalf("expected 50 sends, got %d", got)
	}
}
