package activity

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	domainActivity "dojo-admin/internal/domain/activity"

	"github.com/google/uuid"
)

type activityStore struct {
	mu         sync.Mutex
	activities map[uuid.UUID]domainActivity.Activity
}

func newActivityStore() *activityStore {
	return &activityStore{activities: make(map[uuid.UUID]domainActivity.Activity)}
}

func (s *activityStore) Create(_ context.Context, a *domainActivity.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
	s.activities[a.ID] = *a
	return nil
}

func (s *activityStore) List(_ context.Context, from *time.Time) ([]*domainActivity.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domainActivity.Activity
	for _, a := range s.activities {
		if from != nil && a.StartsAt.Before(*from) {
			continue
		}
		copied := a
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.After(out[j].StartsAt) })
	return out, nil
}

func (s *activityStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.activities[id]; !ok {
		return domainActivity.ErrActivityNotFound
	}
	delete(s.activities, id)
	return nil
}

func TestCreateListDelete(t *testing.T) {
	svc := NewService(newActivityStore())
	ctx := context.Background()
	creator := uuid.New()

	march := time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC)
	june := time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)

	first, err := svc.Create(ctx, creator, &CreateActivityRequest{Title: "Examen de grados", StartsAt: march, Type: "Examen"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, creator, &CreateActivityRequest{Title: "Torneo <regional>", StartsAt: june, Type: "Torneo"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	all, err := svc.List(ctx, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || !all[0].StartsAt.Equal(june) {
		t.Fatalf("expected newest first, got %+v", all)
	}
	if all[0].Title != "Torneo &lt;regional&gt;" {
		t.Fatalf("expected escaped title, got %q", all[0].Title)
	}

	from := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	upcoming, err := svc.List(ctx, &from)
	if err != nil {
		t.Fatalf("List from: %v", err)
	}
	if len(upcoming) != 1 || !upcoming[0].StartsAt.Equal(june) {
		t.Fatalf("expected only the June activity, got %+v", upcoming)
	}

	if err := svc.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, first.ID); !errors.Is(err, domainActivity.ErrActivityNotFound) {
		t.Fatalf("expected ErrActivityNotFound, got %v", err)
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	svc := NewService(newActivityStore())
	_, err := svc.Create(context.Background(), uuid.New(), &CreateActivityRequest{StartsAt: time.Now(), Type: "Clase"})
	if err == nil {
		t.Fatal("expected missing title to fail")
	}
}
