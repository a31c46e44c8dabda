package tracking

import (
	"context"
	"errors"
	"testing"

	domainEvent "dojo-admin/internal/domain/event"
	domainUser "dojo-admin/internal/domain/user"
	"dojo-admin/internal/testutil/memory"
	appErrors "dojo-admin/pkg/errors"

	"github.com/google/uuid"
)

func newTestService(t *testing.T) (*Service, *domainUser.User) {
	t.Helper()
	users := memory.NewUsers()
	student := &domainUser.User{Name: "Ana", Email: "ana@dojo.mx", Role: domainUser.RoleStudent}
	if err := users.Create(context.Background(), student); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return NewService(memory.NewEvents(), users), student
}

func TestRecordKeepsFieldsForType(t *testing.T) {
	svc, student := newTestService(t)
	score := 92.5
	req := &RecordEventRequest{
		UserID:      student.ID,
		Description: "Examen cinta verde",
		Date:        "2025-02-15",
		Category:    strPtr("Kata"),
		Result:      strPtr("Aprobado"),
		Score:       &score,
		Speaker:     strPtr("Sensei Hiro"),
	}

	exam, err := svc.Record(context.Background(), uuid.New(), domainEvent.TypeExam, req)
	if err != nil {
		t.Fatalf("Record exam: %v", err)
	}
	if exam.Score == nil || *exam.Score != 92.5 || exam.Result == nil || exam.Category != nil || exam.Speaker != nil {
		t.Fatalf("unexpected exam fields %+v", exam)
	}

	tournament, err := svc.Record(context.Background(), uuid.New(), domainEvent.TypeTournament, req)
	if err != nil {
		t.Fatalf("Record tournament: %v", err)
	}
	if tournament.Category == nil || tournament.Result == nil || tournament.Score != nil || tournament.Speaker != nil {
		t.Fatalf("unexpected tournament fields %+v", tournament)
	}

	seminar, err := svc.Record(context.Background(), uuid.New(), domainEvent.TypeSeminar, req)
	if err != nil {
		t.Fatalf("Record seminar: %v", err)
	}
	if seminar.Speaker == nil || seminar.Category != nil || seminar.Result != nil || seminar.Score != nil {
		t.Fatalf("unexpected seminar fields %+v", seminar)
	}
	if seminar.Type != "Seminario" || seminar.Date != "2025-02-15" {
		t.Fatalf("unexpected seminar %+v", seminar)
	}
}

func TestRecordValidation(t *testing.T) {
	svc, student := newTestService(t)

	score := 120.0
	_, err := svc.Record(context.Background(), uuid.New(), domainEvent.TypeExam, &RecordEventRequest{
		UserID:      student.ID,
		Description: "Examen",
		Date:        "2025-02-15",
		Score:       &score,
	})
	var appErr *appErrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != appErrors.CodeValidation {
		t.Fatalf("expected score out of range to fail, got %v", err)
	}

	_, err = svc.Record(context.Background(), uuid.New(), domainEvent.TypeExam, &RecordEventRequest{
		UserID:      uuid.New(),
		Description: "Examen",
		Date:        "2025-02-15",
	})
	if !errors.Is(err, domainUser.ErrUserNotFound) {
		t.Fatalf("expected unknown member to fail, got %v", err)
	}

	_, err = svc.Record(context.Background(), uuid.New(), domainEvent.Type("Clase"), &RecordEventRequest{
		UserID:      student.ID,
		Description: "Clase",
		Date:        "2025-02-15",
	})
	if !errors.Is(err, ErrInvalidEventType) {
		t.Fatalf("expected ErrInvalidEventType, got %v", err)
	}
}

func TestListForUserAccess(t *testing.T) {
	svc, student := newTestService(t)
	for _, date := range []string{"2024-11-02", "2025-02-15"} {
		if _, err := svc.Record(context.Background(), uuid.New(), domainEvent.TypeSeminar, &RecordEventRequest{
			UserID: student.ID, Description: "Seminario", Date: date,
		}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	other := domainUser.Identity{UserID: uuid.New(), Role: domainUser.RoleStudent}
	if _, err := svc.ListForUser(context.Background(), other, student.ID); err == nil {
		t.Fatal("expected another student to be refused")
	}

	self := domainUser.Identity{UserID: student.ID, Role: domainUser.RoleStudent}
	events, err := svc.ListForUser(context.Background(), self, student.ID)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(events) != 2 || events[0].Date != "2025-02-15" {
		t.Fatalf("expected newest first, got %+v", events)
	}
}

func strPtr(s string) *string {
	return &s
}
