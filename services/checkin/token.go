package checkin

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

// Config carries the server-held secret and the token windows. It is
// constructed once in main and injected; there is no hidden global state.
type Config struct {
	Secret            []byte
	ValiditySeconds   int
	GraceSeconds      int
	MaxIssuePerMinute int
	MaxScansPerMinute int
}

// IssuedToken is the result of a successful token issuance.
type IssuedToken struct {
	Token        string    `json:"token"`
	ExpiresAt    time.Time `json:"expiresAt"`
	ValidSeconds int       `json:"validSeconds"`
}

// Codec creates and parses the signed, short-lived QR tokens. A token
// carries only an opaque ticket reference and timing claims; the real
// authorization decision is deferred to the check-in validator, so a
// leaked token only identifies which ticket to re-evaluate.
type Codec struct {
	cfg     Config
	limiter *RateLimiter
	replay  *ReplayGuard

	// Now is swappable for expiry tests.
	Now func() time.Time
}

// NewCodec builds a token codec over the shared KV store.
func NewCodec(cfg Config, store KVStore) *Codec {
	validity := time.Duration(cfg.ValiditySeconds) * time.Second
	return &Codec{
		cfg:     cfg,
		limiter: NewRateLimiter(store),
		replay:  NewReplayGuard(store, 2*validity),
		Now:     time.Now,
	}
}

// newTokenID returns a random URL-safe token ID of 16 bytes entropy.
func newTokenID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Issue generates a time-limited HS256 token for QR display. The claims
// hold only the ticket reference, the timing window and a unique token
// ID recorded with the replay guard.
func (c *Codec) Issue(ctx context.Context, ticketID, requestingUserID string) (*IssuedToken, error) {
	ok, err := c.limiter.Allow(ctx, "qr_gen:"+requestingUserID, c.cfg.MaxIssuePerMinute)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewError(CodeRateLimitExceeded, "QR generation rate limit exceeded, please wait")
	}

	now := c.Now().UTC()
	expiresAt := now.Add(time.Duration(c.cfg.ValiditySeconds) * time.Second)

	jti, err := newTokenID()
	if err != nil {
		return nil, err
	}

	claims := jwt.MapClaims{
		"ticket_id": ticketID,
		"iat":       now.Unix(),
		"exp":       expiresAt.Unix(),
		"jti":       jti,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	if err := c.replay.MarkIssued(ctx, jti); err != nil {
		return nil, err
	}

	return &IssuedToken{
		Token:        signed,
		ExpiresAt:    expiresAt,
		ValidSeconds: c.cfg.ValiditySeconds,
	}, nil
}

// Validate verifies a scanned token and returns the embedded ticket ID.
// The token ID is marked used before any further checks, so of two
// racing scans of the same token at most one reaches the check-in rules.
func (c *Codec) Validate(ctx context.Context, rawToken, scannerUserID string) (string, error) {
	ok, err := c.limiter.Allow(ctx, "qr_val:"+scannerUserID, c.cfg.MaxScansPerMinute)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", NewError(CodeScannerRateLimitExceeded, "Scanner rate limit exceeded")
	}

	// Expiry is checked manually below so the grace period applies.
	parser := &jwt.Parser{
		ValidMethods:         []string{jwt.SigningMethodHS256.Alg()},
		SkipClaimsValidation: true,
	}
	token, err := parser.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.cfg.Secret, nil
	})
	if err != nil || !token.Valid {
		return "", NewError(CodeInvalidToken, "Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", NewError(CodeInvalidToken, "Invalid token")
	}
	jti, ok := claims["jti"].(string)
	if !ok || jti == "" {
		return "", NewError(CodeInvalidToken, "Invalid token format")
	}

	first, err := c.replay.MarkValidated(ctx, jti)
	if err != nil {
		return "", err
	}
	if !first {
		return "", NewError(CodeTokenAlreadyUsed, "Token already used")
	}

	expUnix, ok := claims["exp"].(float64)
	if !ok {
		return "", NewError(CodeInvalidToken, "Invalid token format")
	}
	graceExp := time.Unix(int64(expUnix), 0).Add(time.Duration(c.cfg.GraceSeconds) * time.Second)
	if c.Now().After(graceExp) {
		return "", NewError(CodeTokenExpired, "Token expired")
	}

	ticketID, ok := claims["ticket_id"].(string)
	if !ok || ticketID == "" {
		return "", NewError(CodeInvalidToken, "Invalid token format")
	}
	return ticketID, nil
}
