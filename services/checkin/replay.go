package checkin

import (
	"context"
	"time"
)

const (
	issuedKeyPrefix    = "token_issued:"
	validatedKeyPrefix = "token_validated:"
)

// ReplayGuard tracks which token IDs have been issued and which have
// been validated, so a token can be accepted at most once. TTLs are
// anchored at issuance time, twice the validity window, which outlives
// the grace period by a wide margin.
type ReplayGuard struct {
	store KVStore
	ttl   time.Duration
}

// NewReplayGuard creates a replay guard with the given retention TTL.
func NewReplayGuard(store KVStore, ttl time.Duration) *ReplayGuard {
	return &ReplayGuard{store: store, ttl: ttl}
}

// MarkIssued records a freshly issued token ID.
func (g *ReplayGuard) MarkIssued(ctx context.Context, jti string) error {
	return g.store.Set(ctx, issuedKeyPrefix+jti, g.ttl)
}

// MarkValidated atomically marks a token ID as used and reports whether
// this caller was first. Only the first caller may proceed to the
// check-in rules; everyone else short-circuits to a replay rejection.
func (g *ReplayGuard) MarkValidated(ctx context.Context, jti string) (bool, error) {
	return g.store.SetNX(ctx, validatedKeyPrefix+jti, g.ttl)
}
