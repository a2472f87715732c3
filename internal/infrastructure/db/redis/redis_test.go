package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestConnect(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}

	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("Connect error: %v", err)
	}
	_ = client.Close()

	addr := mr.Addr()
	mr.Close()
	if _, err := Connect(context.Background(), Config{Addr: addr, Timeout: 200 * time.Millisecond}); err == nil {
		t.Fatalf("expected ping failure against a stopped server")
	}
}

func TestResetLedger_Consume(t *testing.T) {
	client, mr := newTestClient(t)
	ledger := NewResetLedger(client)
	ctx := context.Background()

	first, err := ledger.Consume(ctx, "jti-1", time.Minute)
	if err != nil || !first {
		t.Fatalf("expected first use, got %v %v", first, err)
	}
	again, err := ledger.Consume(ctx, "jti-1", time.Minute)
	if err != nil || again {
		t.Fatalf("expected replay to be detected, got %v %v", again, err)
	}
	if other, _ := ledger.Consume(ctx, "jti-2", time.Minute); !other {
		t.Fatalf("different token ids are independent")
	}

	mr.FastForward(2 * time.Minute)
	if after, _ := ledger.Consume(ctx, "jti-1", time.Minute); !after {
		t.Fatalf("expected mark to expire with the token")
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	client, _ := newTestClient(t)
	limiter := NewRateLimiter(client, 3, time.Minute)
	base := time.Date(2026, 1, 1, 10, 0, 5, 0, time.UTC)
	limiter.now = func() time.Time { return base }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "10.0.0.1")
		if err != nil || !ok {
			t.Fatalf("request %d: expected allow, got %v %v", i, ok, err)
		}
	}
	if ok, _ := limiter.Allow(ctx, "10.0.0.1"); ok {
		t.Fatalf("expected fourth request to be limited")
	}
	if ok, _ := limiter.Allow(ctx, "10.0.0.2"); !ok {
		t.Fatalf("other clients have their own window")
	}

	limiter.now = func() time.Time { return base.Add(time.Minute) }
	if ok, _ := limiter.Allow(ctx, "10.0.0.1"); !ok {
		t.Fatalf("expected a new window to reset the count")
	}
}
