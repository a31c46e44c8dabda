package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dojo-admin/internal/config"
	domainDocument "dojo-admin/internal/domain/document"
	domainPayment "dojo-admin/internal/domain/payment"
	domainUser "dojo-admin/internal/domain/user"
	"dojo-admin/internal/middleware"
	"dojo-admin/internal/mocks"
	"dojo-admin/internal/testutil/memory"
	"dojo-admin/internal/testutil/notifytest"
	documentUsecase "dojo-admin/internal/usecase/document"
	"dojo-admin/internal/usecase/notification"
	"dojo-admin/internal/usecase/payment"
	"dojo-admin/internal/usecase/user"
	appErrors "dojo-admin/pkg/errors"
	"dojo-admin/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var body envelope
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return body
}

func newTokens(t *testing.T) *utils.TokenManager {
	t.Helper()
	tokens, err := utils.NewTokenManager("handler-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return tokens
}

func bearer(t *testing.T, tokens *utils.TokenManager, role domainUser.Role) string {
	t.Helper()
	token, _, err := tokens.Generate(uuid.New(), "staff@dojo.mx", string(role))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return "Bearer " + token
}

func send(r http.Handler, method, path, auth string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMarkPaidSucceedsWhenEmailFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := mocks.NewMockEmailSender(ctrl)
	sender.EXPECT().Send(gomock.Any(), "ana@dojo.mx", gomock.Any(), gomock.Any()).
		Return(errors.New("smtp down"))

	users := memory.NewUsers()
	student := &domainUser.User{Name: "Ana", Email: "ana@dojo.mx", Role: domainUser.RoleStudent}
	if err := users.Create(context.Background(), student); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	payments := memory.NewPayments(users)
	pending := &domainPayment.Payment{
		UserID:  student.ID,
		Amount:  650,
		Concept: "Mensualidad marzo",
		Status:  domainPayment.StatusPending,
		DueDate: time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
	}
	if err := payments.Create(context.Background(), pending); err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	dispatcher := notification.NewDispatcher(memory.NewNotifications(), sender)
	tokens := newTokens(t)

	r := gin.New()
	api := r.Group("/api/v1", middleware.AuthMiddleware(tokens))
	NewPaymentHandler(payment.NewService(payments, users, dispatcher)).RegisterRoutes(api)

	path := "/api/v1/payments/" + pending.ID.String()
	body := map[string]string{"estatus_pago": "Pagado"}

	if w := send(r, http.MethodPut, path, bearer(t, tokens, domainUser.RoleStudent), body); w.Code != http.StatusForbidden {
		t.Fatalf("expected students to be refused, got %d", w.Code)
	}

	w := send(r, http.MethodPut, path, bearer(t, tokens, domainUser.RoleTeacher), body)
	dispatcher.Wait()

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	var paid payment.PaymentResponse
	if err := json.Unmarshal(resp.Data, &paid); err != nil {
		t.Fatalf("decode payment: %v", err)
	}
	if paid.Status != "Pagado" || paid.PaidAt == nil {
		t.Fatalf("unexpected payment %+v", paid)
	}

	if w := send(r, http.MethodPut, "/api/v1/payments/not-a-uuid", bearer(t, tokens, domainUser.RoleAdmin), body); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", w.Code)
	}
}

func TestForgotPasswordIsUniform(t *testing.T) {
	users := memory.NewUsers()
	if err := users.Create(context.Background(), &domainUser.User{Name: "Ana", Email: "ana@dojo.mx", Role: domainUser.RoleStudent}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	recorder := &notifytest.Recorder{}
	cfg := &config.Config{App: config.AppConfig{FrontendURL: "http://localhost:3000", ResetTokenTTL: time.Hour}}
	svc := user.NewService(users, memory.NewPayments(users), memory.NewEvents(), newTokens(t), recorder, cfg)

	r := gin.New()
	NewUserHandler(svc).RegisterAuthRoutes(r.Group("/api/v1"))

	known := send(r, http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]string{"correo_electronico": "ana@dojo.mx"})
	unknown := send(r, http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]string{"correo_electronico": "nadie@dojo.mx"})

	if known.Code != http.StatusOK || unknown.Code != http.StatusOK {
		t.Fatalf("expected 200 for both, got %d and %d", known.Code, unknown.Code)
	}
	if known.Body.String() != unknown.Body.String() {
		t.Fatalf("responses differ: %s vs %s", known.Body.String(), unknown.Body.String())
	}
	if got := len(recorder.Delivered()); got != 1 {
		t.Fatalf("expected a single reset email, got %d", got)
	}

	if w := send(r, http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]string{"correo_electronico": "not-an-email"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid email, got %d", w.Code)
	}
}

func TestRespondWithErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{appErrors.Validation("Invalid input", nil), http.StatusBadRequest},
		{appErrors.NewAppError(appErrors.CodeWeakPassword, "too short", nil), http.StatusBadRequest},
		{appErrors.NotFound("missing"), http.StatusNotFound},
		{appErrors.Forbidden("nope"), http.StatusForbidden},
		{appErrors.NewAppError(appErrors.CodeTransition, "bad transition", nil), http.StatusConflict},
		{appErrors.ErrUserAlreadyExists, http.StatusConflict},
		{appErrors.ErrInvalidCredentials, http.StatusUnauthorized},
		{appErrors.ErrResetTokenInvalid, http.StatusBadRequest},
		{fmt.Errorf("lookup: %w", domainUser.ErrUserNotFound), http.StatusNotFound},
		{domainPayment.ErrStatusChanged, http.StatusConflict},
		{domainDocument.ErrAlreadyReviewed, http.StatusConflict},
		{documentUsecase.ErrStorageUnavailable, http.StatusServiceUnavailable},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondWithError(c, tt.err)

			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
			body := decode(t, w)
			if body.Success || body.Error == "" {
				t.Fatalf("expected error envelope, got %+v", body)
			}
			if tt.want == http.StatusInternalServerError && body.Error != "Internal server error" {
				t.Fatalf("internal errors must stay opaque, got %q", body.Error)
			}
		})
	}
}
