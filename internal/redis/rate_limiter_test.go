package redis

import (
	"context"
	"testing"
	"time"
)

func TestLocalLimiter_Window(t *testing.T) {
	l := NewLocalLimiter()
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "login:1.2.3.4", 3, time.Minute)
		if err != nil {
			t.Fatalf("Allow failed: %v", err)
		}
		if !ok {
			t.Fatalf("attempt %d unexpectedly blocked", i+1)
		}
	}

	ok, err := l.Allow(ctx, "login:1.2.3.4", 3, time.Minute)
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if ok {
		t.Fatal("fourth attempt must be blocked")
	}

	// Другой ключ считается отдельно.
	ok, _ = l.Allow(ctx, "login:5.6.7.8", 3, time.Minute)
	if !ok {
		t.Fatal("different key must not be affected")
	}

	// Окно истекло — счётчик сбрасывается.
	now = now.Add(2 * time.Minute)
	ok, _ = l.Allow(ctx, "login:1.2.3.4", 3, time.Minute)
	if !ok {
		t.Fatal("expired window must reset the counter")
	}
}
