package notification

import (
	"context"
	"errors"
	"testing"

	domainNotification "dojo-admin/internal/domain/notification"
	domainUser "dojo-admin/internal/domain/user"
	"dojo-admin/internal/mocks"
	"dojo-admin/internal/testutil/memory"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"
)

func TestSendDirectMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockEmailSender(ctrl)
	store := memory.NewNotifications()
	student := &domainUser.User{ID: uuid.New(), Name: "Ana", Email: "ana@dojo.mx", Role: domainUser.RoleStudent}
	users := memory.NewUsers(student)

	sender.EXPECT().Send(gomock.Any(), "ana@dojo.mx", "Nuevo mensaje - Dojo Bunkai", "<p>Trae tu &lt;gi&gt;</p>").Return(nil)

	svc := NewService(store, users, NewDispatcher(store, sender))
	result, err := svc.Send(context.Background(), uuid.New(), &SendRequest{
		UserID:    student.ID,
		Message:   "  Trae tu <gi>  ",
		SendEmail: true,
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if result.Succeeded != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	history, err := svc.ListMine(context.Background(), student.ID, 0)
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if len(history) != 1 || history[0].Message != "Trae tu <gi>" || history[0].Read {
		t.Fatalf("unexpected history %+v", history)
	}
}

func TestSendUnknownMember(t *testing.T) {
	store := memory.NewNotifications()
	svc := NewService(store, memory.NewUsers(), NewDispatcher(store, nil))

	_, err := svc.Send(context.Background(), uuid.New(), &SendRequest{UserID: uuid.New(), Message: "hola"})
	if !errors.Is(err, domainUser.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestMarkReadOnlyOwnNotifications(t *testing.T) {
	store := memory.NewNotifications()
	owner := uuid.New()
	if err := store.Create(context.Background(), &domainNotification.Notification{UserID: owner, Message: "hola"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	id := store.All()[0].ID

	svc := NewService(store, memory.NewUsers(), NewDispatcher(store, nil))

	if err := svc.MarkRead(context.Background(), uuid.New(), id); !errors.Is(err, domainNotification.ErrNotificationNotFound) {
		t.Fatalf("expected another member to get not found, got %v", err)
	}
	if err := svc.MarkRead(context.Background(), owner, id); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if !store.All()[0].Read {
		t.Fatal("expected notification to be read")
	}
}

func TestStudentsResolverOnlyStudents(t *testing.T) {
	users := memory.NewUsers(
		&domainUser.User{Name: "Ana", Email: "ana@dojo.mx", Role: domainUser.RoleStudent},
		&domainUser.User{Name: "Hiro", Email: "hiro@dojo.mx", Role: domainUser.RoleTeacher},
	)

	resolved, err := StudentsResolver(users)(context.Background())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(resolved) != 1 || resolved[0].Email != "ana@dojo.mx" {
		t.Fatalf("unexpected recipients %+v", resolved)
	}
}
