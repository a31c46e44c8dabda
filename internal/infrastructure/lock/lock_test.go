package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLocalLockHoldsUntilExpiry(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	l := NewLocalLock()
	l.now = func() time.Time { return now }
	ctx := context.Background()

	if ok, _ := l.Acquire(ctx, "reminder:2025-03", time.Hour); !ok {
		t.Fatal("first acquire should succeed")
	}
	if ok, _ := l.Acquire(ctx, "reminder:2025-03", time.Hour); ok {
		t.Fatal("held key must not be acquired again")
	}
	if ok, _ := l.Acquire(ctx, "reminder:2025-04", time.Hour); !ok {
		t.Fatal("other keys are independent")
	}

	now = now.Add(time.Hour)
	if ok, _ := l.Acquire(ctx, "reminder:2025-03", time.Hour); !ok {
		t.Fatal("expired key should be acquirable")
	}
}

func TestLocalLockRelease(t *testing.T) {
	l := NewLocalLock()
	ctx := context.Background()

	if ok, _ := l.Acquire(ctx, "reminder:2025-03", time.Hour); !ok {
		t.Fatal("first acquire should succeed")
	}
	if err := l.Release(ctx, "reminder:2025-03"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if ok, _ := l.Acquire(ctx, "reminder:2025-03", time.Hour); !ok {
		t.Fatal("released key should be acquirable again")
	}
	if err := l.Release(ctx, "never-held"); err != nil {
		t.Fatalf("releasing an unknown key: %v", err)
	}
}

func TestLocalLockSingleWinner(t *testing.T) {
	l := NewLocalLock()
	var winners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Acquire(context.Background(), "k", time.Minute); ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := winners.Load(); got != 1 {
		t.Fatalf("expected exactly one winner, got %d", got)
	}
}
