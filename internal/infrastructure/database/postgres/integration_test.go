package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"dojo-admin/internal/domain/document"
	"dojo-admin/internal/domain/payment"
	"dojo-admin/internal/domain/user"

	"github.com/google/uuid"
	gormLogger "gorm.io/gorm/logger"
)

// openTestDB connects to DOJO_TEST_DATABASE_URL and migrates it. Tests are
// skipped when the variable is unset.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("DOJO_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("DOJO_TEST_DATABASE_URL not set")
	}

	db, err := Open(dsn, gormLogger.Silent)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func createUser(t *testing.T, repo user.Repository) *user.User {
	t.Helper()
	u := &user.User{
		Name:            "Ana",
		PaternalSurname: "García",
		Email:           "ana+" + uuid.NewString()[:8] + "@dojo.mx",
		PasswordHash:    "hash",
		Role:            user.RoleStudent,
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { _ = repo.Delete(context.Background(), u.ID) })
	return u
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	u := createUser(t, repo)

	dup := &user.User{Name: "Otra", Email: u.Email, PasswordHash: "hash", Role: user.RoleStudent}
	if err := repo.Create(context.Background(), dup); !errors.Is(err, user.ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}
}

func TestRedeemResetTokenSingleUse(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	u := createUser(t, repo)
	ctx := context.Background()
	now := time.Now().UTC()

	token := uuid.NewString()
	if err := repo.SetResetToken(ctx, u.ID, token, now.Add(time.Hour)); err != nil {
		t.Fatalf("SetResetToken: %v", err)
	}

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := repo.RedeemResetToken(ctx, token, "new-hash", now)
			if err == nil {
				if id != u.ID {
					t.Errorf("redeemed for %s, want %s", id, u.ID)
				}
				successes.Add(1)
			} else if !errors.Is(err, user.ErrResetTokenInvalid) {
				t.Errorf("unexpected error %v", err)
			}
		}()
	}
	wg.Wait()

	if got := successes.Load(); got != 1 {
		t.Fatalf("expected exactly one redemption, got %d", got)
	}

	stored, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.PasswordHash != "new-hash" || stored.ResetToken != nil || stored.ResetTokenExpires != nil {
		t.Fatalf("unexpected user after redeem %+v", stored)
	}
}

func TestRedeemExpiredResetToken(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	u := createUser(t, repo)
	ctx := context.Background()
	now := time.Now().UTC()

	token := uuid.NewString()
	if err := repo.SetResetToken(ctx, u.ID, token, now.Add(-time.Minute)); err != nil {
		t.Fatalf("SetResetToken: %v", err)
	}
	if _, err := repo.RedeemResetToken(ctx, token, "new-hash", now); !errors.Is(err, user.ErrResetTokenInvalid) {
		t.Fatalf("expected ErrResetTokenInvalid, got %v", err)
	}

	cleared, err := repo.ClearExpiredResetTokens(ctx, now)
	if err != nil {
		t.Fatalf("ClearExpiredResetTokens: %v", err)
	}
	if cleared < 1 {
		t.Fatalf("expected the expired token to be cleared, got %d", cleared)
	}
}

func TestPaymentUpdateStatusIsConditional(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	payments := NewPaymentRepository(db)
	owner := createUser(t, users)
	ctx := context.Background()

	p := &payment.Payment{
		UserID:  owner.ID,
		Amount:  650,
		Concept: "Mensualidad",
		Status:  payment.StatusPending,
		DueDate: time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
	}
	if err := payments.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { _ = payments.Delete(context.Background(), p.ID) })

	paidAt := time.Now().UTC()
	updated, err := payments.UpdateStatus(ctx, p.ID, payment.StatusPending, payment.StatusPaid, &paidAt)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != payment.StatusPaid || updated.PaidAt == nil {
		t.Fatalf("unexpected payment %+v", updated)
	}

	if _, err := payments.UpdateStatus(ctx, p.ID, payment.StatusPending, payment.StatusOverdue, nil); !errors.Is(err, payment.ErrStatusChanged) {
		t.Fatalf("expected ErrStatusChanged on stale update, got %v", err)
	}
	if _, err := payments.UpdateStatus(ctx, uuid.New(), payment.StatusPending, payment.StatusPaid, &paidAt); !errors.Is(err, payment.ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound for unknown id, got %v", err)
	}

	listings, err := payments.List(ctx, payment.Filter{UserID: &owner.ID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listings) != 1 || listings[0].StudentName != "Ana García" {
		t.Fatalf("unexpected listings %+v", listings)
	}
}

func TestDocumentApplyReviewDistinguishesMissingFromReviewed(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	documents := NewDocumentRepository(db)
	owner := createUser(t, users)
	ctx := context.Background()

	req := &document.Request{
		UserID:   owner.ID,
		PhotoURL: "https://files.dojo.mx/foto.jpg",
		CURPURL:  "https://files.dojo.mx/curp.pdf",
		Status:   document.StatusPending,
	}
	if err := documents.Create(ctx, req); err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() {
		_ = db.DB.Exec("DELETE FROM document_requests WHERE id = ?", req.ID).Error
	})

	review := document.Review{Status: document.StatusValidated, ReviewerID: owner.ID, ReviewedAt: time.Now().UTC()}

	if _, err := documents.ApplyReview(ctx, uuid.New(), review); !errors.Is(err, document.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound for unknown id, got %v", err)
	}

	reviewed, err := documents.ApplyReview(ctx, req.ID, review)
	if err != nil {
		t.Fatalf("ApplyReview: %v", err)
	}
	if reviewed.Status != document.StatusValidated || reviewed.ReviewedBy == nil {
		t.Fatalf("unexpected request %+v", reviewed)
	}

	if _, err := documents.ApplyReview(ctx, req.ID, review); !errors.Is(err, document.ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed on second review, got %v", err)
	}
}
