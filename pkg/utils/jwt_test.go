package utils

import (
	"errors"
	"strings"
	"testing"
	"time"

	appErrors "dojo-admin/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestTokenRoundTrip(t *testing.T) {
	manager, err := NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	userID := uuid.New()
	token, expiresAt, err := manager.Generate(userID, "ana@dojo.mx", "student")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if time.Until(expiresAt) <= 59*time.Minute {
		t.Fatalf("expected expiry about an hour out, got %v", expiresAt)
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != userID || claims.Email != "ana@dojo.mx" || claims.Role != "student" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenExpires(t *testing.T) {
	issued := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	manager, err := NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	token, _, err := manager.WithClock(func() time.Time { return issued }).Generate(uuid.New(), "a@b.mx", "admin")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	stillValid := manager.WithClock(func() time.Time { return issued.Add(59 * time.Minute) })
	if _, err := stillValid.Validate(token); err != nil {
		t.Fatalf("expected token valid before expiry: %v", err)
	}

	expired := manager.WithClock(func() time.Time { return issued.Add(61 * time.Minute) })
	if _, err := expired.Validate(token); !errors.Is(err, appErrors.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after expiry, got %v", err)
	}
}

func TestTokenRejectsTamperingAndForeignKeys(t *testing.T) {
	manager, _ := NewTokenManager("test-secret", time.Hour)
	other, _ := NewTokenManager("other-secret", time.Hour)

	token, _, err := manager.Generate(uuid.New(), "a@b.mx", "student")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if _, err := other.Validate(token); !errors.Is(err, appErrors.ErrInvalidToken) {
		t.Fatalf("expected foreign secret to fail, got %v", err)
	}

	parts := strings.Split(token, ".")
	parts[1] = parts[1][:len(parts[1])-2] + "xx"
	if _, err := manager.Validate(strings.Join(parts, ".")); !errors.Is(err, appErrors.ErrInvalidToken) {
		t.Fatalf("expected tampered payload to fail, got %v", err)
	}

	sig := strings.Split(token, ".")
	for _, idx := range []int{0, len(sig[2]) / 2, len(sig[2]) - 1} {
		for bit := 0; bit < 8; bit++ {
			flipped := []byte(sig[2])
			flipped[idx] ^= 1 << bit
			candidate := sig[0] + "." + sig[1] + "." + string(flipped)
			if candidate == token {
				continue
			}
			if _, err := manager.Validate(candidate); !errors.Is(err, appErrors.ErrInvalidToken) {
				t.Fatalf("expected signature with bit %d of char %d flipped to fail, got %v", bit, idx, err)
			}
		}
	}

	if _, err := manager.Validate("not-a-token"); !errors.Is(err, appErrors.ErrInvalidToken) {
		t.Fatalf("expected garbage to fail, got %v", err)
	}
}

func TestTokenRejectsOtherAlgorithms(t *testing.T) {
	manager, _ := NewTokenManager("test-secret", time.Hour)

	claims := Claims{
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := manager.Validate(unsigned); !errors.Is(err, appErrors.ErrInvalidToken) {
		t.Fatalf("expected alg=none to fail, got %v", err)
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign hs512: %v", err)
	}
	if _, err := manager.Validate(hs512); !errors.Is(err, appErrors.ErrInvalidToken) {
		t.Fatalf("expected HS512 to fail, got %v", err)
	}
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	if _, err := NewTokenManager("", time.Hour); err == nil {
		t.Fatal("expected empty secret to be rejected")
	}
}
