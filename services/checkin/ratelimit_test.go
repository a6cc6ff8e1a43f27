package checkin

import (
	"context"
	"testing"
)

func TestRateLimiterAllow(t *testing.T) {
	limiter := NewRateLimiter(newFakeKV())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "qr_gen:user-1", 3)
		if err != nil {
			t.Fatalf("Allow failed: %v", err)
		}
		if !ok {
			t.Fatalf("request %d should be within the limit", i+1)
		}
	}

	ok, err := limiter.Allow(ctx, "qr_gen:user-1", 3)
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if ok {
		t.Error("fourth request should exceed the limit")
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	limiter := NewRateLimiter(newFakeKV())
	ctx := context.Background()

	if ok, _ := limiter.Allow(ctx, "qr_gen:user-1", 1); !ok {
		t.Fatal("first request for user-1 should pass")
	}
	if ok, _ := limiter.Allow(ctx, "qr_gen:user-1", 1); ok {
		t.Error("second request for user-1 should be throttled")
	}

	// Same actor, different operation.
	if ok, _ := limiter.Allow(ctx, "qr_val:user-1", 1); !ok {
		t.Error("validation budget should be separate from generation")
	}
	// Different actor.
	if ok, _ := limiter.Allow(ctx, "qr_gen:user-2", 1); !ok {
		t.Error("user-2 should have an untouched budget")
	}
}
