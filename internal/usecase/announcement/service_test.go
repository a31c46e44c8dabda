package announcement

import (
	"context"
	"sync"
	"testing"
	"time"

	domainAnnouncement "dojo-admin/internal/domain/announcement"
	domainUser "dojo-admin/internal/domain/user"
	"dojo-admin/internal/testutil/memory"
	"dojo-admin/internal/testutil/notifytest"
	"dojo-admin/internal/usecase/notification"

	"github.com/google/uuid"
)

type announcementStore struct {
	mu    sync.Mutex
	users *memory.Users
	items []domainAnnouncement.Announcement
}

func (s *announcementStore) Create(_ context.Context, a *domainAnnouncement.Announcement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
	s.items = append(s.items, *a)
	return nil
}

func (s *announcementStore) List(ctx context.Context, limit int) ([]*domainAnnouncement.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var listings []*domainAnnouncement.Listing
	for i := len(s.items) - 1; i >= 0 && len(listings) < limit; i-- {
		listing := &domainAnnouncement.Listing{Announcement: s.items[i]}
		if author, err := s.users.GetByID(ctx, s.items[i].AuthorID); err == nil {
			listing.AuthorName = author.FullName()
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

func seed(t *testing.T, users *memory.Users, role domainUser.Role, email string) *domainUser.User {
	t.Helper()
	u := &domainUser.User{Name: email[:3], PaternalSurname: "Test", Email: email, Role: role}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return u
}

func TestPublishBroadcastsToStudents(t *testing.T) {
	users := memory.NewUsers()
	teacher := seed(t, users, domainUser.RoleTeacher, "hiro@dojo.mx")
	seed(t, users, domainUser.RoleStudent, "ana@dojo.mx")
	seed(t, users, domainUser.RoleStudent, "beto@dojo.mx")

	recorder := &notifytest.Recorder{}
	svc := NewService(&announcementStore{users: users}, users, recorder)

	published, err := svc.Publish(context.Background(), teacher.ID, &PublishRequest{
		Message:   "  **No hay clase** el lunes  ",
		SendEmail: true,
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if published.Message != "**No hay clase** el lunes" || published.AuthorName != "hir Test" {
		t.Fatalf("unexpected announcement %+v", published)
	}

	delivered := recorder.Delivered()
	if len(delivered) != 2 {
		t.Fatalf("expected both students, got %d", len(delivered))
	}
	for _, d := range delivered {
		if d.Recipient.Email == "hiro@dojo.mx" {
			t.Fatal("teacher must not receive the broadcast")
		}
		if d.Channels != notification.ChannelAll {
			t.Fatalf("expected in-app and email, got %v", d.Channels)
		}
	}

	listed, err := svc.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 1 || listed[0].AuthorName != "hir Test" {
		t.Fatalf("unexpected listing %+v", listed)
	}
}

func TestPublishInAppOnlyAndBlankMessage(t *testing.T) {
	users := memory.NewUsers()
	teacher := seed(t, users, domainUser.RoleTeacher, "hiro@dojo.mx")
	seed(t, users, domainUser.RoleStudent, "ana@dojo.mx")

	recorder := &notifytest.Recorder{}
	svc := NewService(&announcementStore{users: users}, users, recorder)

	if _, err := svc.Publish(context.Background(), teacher.ID, &PublishRequest{Message: "   "}); err == nil {
		t.Fatal("expected blank message to fail")
	}

	if _, err := svc.Publish(context.Background(), teacher.ID, &PublishRequest{Message: "Hola"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if delivered := recorder.Delivered(); len(delivered) != 1 || delivered[0].Channels != notification.ChannelInApp {
		t.Fatalf("expected in-app only delivery, got %+v", delivered)
	}
}
