package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	domainPayment "dojo-admin/internal/domain/payment"
	domainUser "dojo-admin/internal/domain/user"
	"dojo-admin/internal/mocks"
	"dojo-admin/internal/testutil/memory"
	"dojo-admin/internal/testutil/notifytest"
	"dojo-admin/internal/usecase/notification"
	appErrors "dojo-admin/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2025, 3, 5, 9, 30, 0, 0, time.UTC)

func seedStudent(users *memory.Users) *domainUser.User {
	student := &domainUser.User{Name: "Ana", PaternalSurname: "García", Email: "ana@dojo.mx", Role: domainUser.RoleStudent}
	_ = users.Create(context.Background(), student)
	return student
}

func newTestService(notifier notification.Notifier) (*Service, *memory.Users) {
	users := memory.NewUsers()
	svc := NewService(memory.NewPayments(users), users, notifier).WithClock(func() time.Time { return fixedNow })
	return svc, users
}

func TestCreatePendingNotifiesOwner(t *testing.T) {
	recorder := &notifytest.Recorder{}
	svc, users := newTestService(recorder)
	student := seedStudent(users)

	created, err := svc.Create(context.Background(), uuid.New(), &CreatePaymentRequest{
		UserID:  student.ID,
		Amount:  650,
		Concept: "Mensualidad marzo",
		DueDate: "2025-03-11",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != string(domainPayment.StatusPending) || created.PaidAt != nil {
		t.Fatalf("unexpected payment %+v", created)
	}
	if created.DueDate != "2025-03-11" {
		t.Fatalf("expected date-only due date, got %q", created.DueDate)
	}

	delivered := recorder.Delivered()
	if len(delivered) != 1 {
		t.Fatalf("expected one notification, got %d", len(delivered))
	}
	if delivered[0].Channels != notification.ChannelAll || delivered[0].Recipient.UserID != student.ID {
		t.Fatalf("unexpected delivery %+v", delivered[0])
	}
	if delivered[0].Message.Text != "Se ha registrado un nuevo pago pendiente: Mensualidad marzo (Vence: 11/03/2025)." {
		t.Fatalf("unexpected text %q", delivered[0].Message.Text)
	}
}

func TestCreatePaidStampsDateWithoutNotifying(t *testing.T) {
	recorder := &notifytest.Recorder{}
	svc, users := newTestService(recorder)
	student := seedStudent(users)

	created, err := svc.Create(context.Background(), uuid.New(), &CreatePaymentRequest{
		UserID:  student.ID,
		Amount:  300,
		Concept: "Examen de grado",
		Status:  "Pagado",
		DueDate: "2025-03-11",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.PaidAt == nil || !created.PaidAt.Equal(fixedNow) {
		t.Fatalf("expected paid date %v, got %v", fixedNow, created.PaidAt)
	}
	if len(recorder.Requests()) != 0 {
		t.Fatal("expected no notification for a payment created as paid")
	}
}

func TestCreateForUnknownMember(t *testing.T) {
	svc, _ := newTestService(&notifytest.Recorder{})

	_, err := svc.Create(context.Background(), uuid.New(), &CreatePaymentRequest{
		UserID:  uuid.New(),
		Amount:  100,
		Concept: "Cuota",
		DueDate: "2025-03-11",
	})
	if !errors.Is(err, domainUser.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestCreateValidatesInput(t *testing.T) {
	svc, users := newTestService(&notifytest.Recorder{})
	student := seedStudent(users)

	_, err := svc.Create(context.Background(), uuid.New(), &CreatePaymentRequest{
		UserID:  student.ID,
		Amount:  0,
		Concept: "Cuota",
		DueDate: "11/03/2025",
	})
	var appErr *appErrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != appErrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func createPending(t *testing.T, svc *Service, userID uuid.UUID) *PaymentResponse {
	t.Helper()
	created, err := svc.Create(context.Background(), uuid.New(), &CreatePaymentRequest{
		UserID:  userID,
		Amount:  650,
		Concept: "Mensualidad",
		DueDate: "2025-03-11",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return created
}

func TestUpdateStatusTransitions(t *testing.T) {
	recorder := &notifytest.Recorder{}
	svc, users := newTestService(recorder)
	student := seedStudent(users)
	created := createPending(t, svc, student.ID)
	ctx := context.Background()

	paid, err := svc.UpdateStatus(ctx, created.ID, &UpdateStatusRequest{Status: "Pagado"})
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if paid.PaidAt == nil || !paid.PaidAt.Equal(fixedNow) {
		t.Fatalf("expected paid date, got %v", paid.PaidAt)
	}

	delivered := recorder.Delivered()
	last := delivered[len(delivered)-1]
	if last.Event != "payment_confirmed" || last.Message.Text != "¡Tu pago de \"Mensualidad\" ha sido confirmado! Gracias." {
		t.Fatalf("unexpected confirmation %+v", last)
	}

	again, err := svc.UpdateStatus(ctx, created.ID, &UpdateStatusRequest{Status: "Pagado"})
	if err != nil {
		t.Fatalf("repeat UpdateStatus: %v", err)
	}
	if !again.PaidAt.Equal(*paid.PaidAt) || len(recorder.Delivered()) != len(delivered) {
		t.Fatal("expected same-status update to be a no-op")
	}

	_, err = svc.UpdateStatus(ctx, created.ID, &UpdateStatusRequest{Status: "Vencido"})
	var appErr *appErrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != appErrors.CodeTransition {
		t.Fatalf("expected Pagado -> Vencido to be refused, got %v", err)
	}

	reverted, err := svc.UpdateStatus(ctx, created.ID, &UpdateStatusRequest{Status: "Pendiente"})
	if err != nil {
		t.Fatalf("revert: %v", err)
	}
	if reverted.PaidAt != nil {
		t.Fatalf("expected paid date cleared, got %v", reverted.PaidAt)
	}
}

func TestUpdateStatusUnknownPayment(t *testing.T) {
	svc, _ := newTestService(&notifytest.Recorder{})

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), &UpdateStatusRequest{Status: "Pagado"})
	if !errors.Is(err, domainPayment.ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestConfirmationEmailFailureDoesNotFailUpdate(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockEmailSender(ctrl)
	sender.EXPECT().Send(gomock.Any(), "ana@dojo.mx", gomock.Any(), gomock.Any()).
		Return(errors.New("smtp down")).AnyTimes()

	store := memory.NewNotifications()
	dispatcher := notification.NewDispatcher(store, sender)
	svc, users := newTestService(dispatcher)
	student := seedStudent(users)
	created := createPending(t, svc, student.ID)

	paid, err := svc.UpdateStatus(context.Background(), created.ID, &UpdateStatusRequest{Status: "Pagado"})
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if paid.Status != "Pagado" || paid.PaidAt == nil {
		t.Fatalf("unexpected payment %+v", paid)
	}

	dispatcher.Wait()
	if got := len(store.All()); got != 2 {
		t.Fatalf("expected in-app entries for pending and confirmed, got %d", got)
	}
}

func TestListFiltersByStatusAndOwner(t *testing.T) {
	svc, users := newTestService(&notifytest.Recorder{})
	ana := seedStudent(users)
	beto := &domainUser.User{Name: "Beto", PaternalSurname: "Luna", Email: "beto@dojo.mx", Role: domainUser.RoleStudent}
	_ = users.Create(context.Background(), beto)

	first := createPending(t, svc, ana.ID)
	createPending(t, svc, beto.ID)
	if _, err := svc.UpdateStatus(context.Background(), first.ID, &UpdateStatusRequest{Status: "Pagado"}); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	pending, err := svc.List(context.Background(), "Pendiente")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(pending) != 1 || pending[0].StudentName != "Beto Luna" {
		t.Fatalf("unexpected pending list %+v", pending)
	}

	mine, err := svc.ListForUser(context.Background(), ana.ID)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(mine) != 1 || mine[0].Status != "Pagado" {
		t.Fatalf("unexpected own payments %+v", mine)
	}

	if _, err := svc.List(context.Background(), "Cancelado"); err == nil {
		t.Fatal("expected unknown status filter to fail")
	}
}

func TestDeletePayment(t *testing.T) {
	svc, users := newTestService(&notifytest.Recorder{})
	created := createPending(t, svc, seedStudent(users).ID)

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID); !errors.Is(err, domainPayment.ErrPaymentNotFound) {
		t.Fatalf("expected second delete to be not found, got %v", err)
	}
}
