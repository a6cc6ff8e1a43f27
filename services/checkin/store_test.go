package checkin

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func newTestStore(t *testing.T) (*RedisKVStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisKVStore(client), mr
}

func TestRedisIncrAppliesTTLWithFirstIncrement(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	key := "rate:qr_gen:user-1"

	n, err := store.Incr(ctx, key, time.Minute)
	if err != nil {
		t.Fatalf("Incr failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected counter 1, got %d", n)
	}
	if mr.TTL(key) <= 0 {
		t.Fatal("counter must carry the window TTL from its first increment")
	}

	n, err = store.Incr(ctx, key, time.Minute)
	if err != nil {
		t.Fatalf("second Incr failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected counter 2, got %d", n)
	}
	if mr.TTL(key) <= 0 {
		t.Fatal("TTL must survive subsequent increments")
	}
}

func TestRedisIncrWindowResets(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	key := "rate:qr_val:scanner-1"

	if _, err := store.Incr(ctx, key, time.Minute); err != nil {
		t.Fatalf("Incr failed: %v", err)
	}
	mr.FastForward(time.Minute + time.Second)

	n, err := store.Incr(ctx, key, time.Minute)
	if err != nil {
		t.Fatalf("Incr after window failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected a fresh window counter of 1, got %d", n)
	}
	if mr.TTL(key) <= 0 {
		t.Error("fresh window must carry a TTL again")
	}
}

func TestRedisSetNXFirstWriterWins(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	key := "token_validated:jti-1"

	first, err := store.SetNX(ctx, key, time.Minute)
	if err != nil {
		t.Fatalf("SetNX failed: %v", err)
	}
	if !first {
		t.Fatal("first writer must win")
	}

	second, err := store.SetNX(ctx, key, time.Minute)
	if err != nil {
		t.Fatalf("second SetNX failed: %v", err)
	}
	if second {
		t.Error("second writer must lose")
	}
}
