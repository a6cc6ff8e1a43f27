package checkin

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
)

func testCodec(store KVStore) *Codec {
	return NewCodec(Config{
		Secret:            []byte("test-secret-32-bytes-long-enough"),
		ValiditySeconds:   30,
		GraceSeconds:      5,
		MaxIssuePerMinute: 60,
		MaxScansPerMinute: 100,
	}, store)
}

func TestIssueValidateRoundTrip(t *testing.T) {
	codec := testCodec(newFakeKV())
	ctx := context.Background()

	issued, err := codec.Issue(ctx, "ticket-1", "user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if issued.Token == "" {
		t.Fatal("expected a non-empty token")
	}
	if issued.ValidSeconds != 30 {
		t.Errorf("expected ValidSeconds 30, got %d", issued.ValidSeconds)
	}

	ticketID, err := codec.Validate(ctx, issued.Token, "scanner-1")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if ticketID != "ticket-1" {
		t.Errorf("expected ticket-1, got %s", ticketID)
	}
}

func TestValidateTamperedToken(t *testing.T) {
	codec := testCodec(newFakeKV())
	ctx := context.Background()

	issued, err := codec.Issue(ctx, "ticket-1", "user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Flip one character of the signature segment.
	parts := strings.Split(issued.Token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = codec.Validate(ctx, tampered, "scanner-1")
	if CodeOf(err) != CodeInvalidToken {
		t.Errorf("expected invalid_token for tampered signature, got %v", err)
	}
}

func TestValidateGarbageToken(t *testing.T) {
	codec := testCodec(newFakeKV())

	_, err := codec.Validate(context.Background(), "not-a-token", "scanner-1")
	if CodeOf(err) != CodeInvalidToken {
		t.Errorf("expected invalid_token for garbage input, got %v", err)
	}
}

func TestValidateRejectsUnsignedToken(t *testing.T) {
	codec := testCodec(newFakeKV())

	claims := jwt.MapClaims{
		"ticket_id": "ticket-1",
		"iat":       time.Now().Unix(),
		"exp":       time.Now().Add(30 * time.Second).Unix(),
		"jti":       "forged-jti",
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build unsigned token: %v", err)
	}

	_, err = codec.Validate(context.Background(), unsigned, "scanner-1")
	if CodeOf(err) != CodeInvalidToken {
		t.Errorf("expected invalid_token for alg=none, got %v", err)
	}
}

func TestValidateReplayedToken(t *testing.T) {
	codec := testCodec(newFakeKV())
	ctx := context.Background()

	issued, err := codec.Issue(ctx, "ticket-1", "user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := codec.Validate(ctx, issued.Token, "scanner-1"); err != nil {
		t.Fatalf("first validation failed: %v", err)
	}

	_, err = codec.Validate(ctx, issued.Token, "scanner-2")
	if CodeOf(err) != CodeTokenAlreadyUsed {
		t.Errorf("expected token_already_used on replay, got %v", err)
	}
}

func TestValidateExpiryWithGrace(t *testing.T) {
	ctx := context.Background()
	base := time.Now().UTC()

	cases := []struct {
		name     string
		elapsed  time.Duration
		wantCode Code
		wantOK   bool
	}{
		{name: "fresh", elapsed: time.Second, wantOK: true},
		{name: "at expiry", elapsed: 30 * time.Second, wantOK: true},
		{name: "inside grace", elapsed: 34 * time.Second, wantOK: true},
		{name: "past grace", elapsed: 36 * time.Second, wantCode: CodeTokenExpired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			codec := testCodec(newFakeKV())
			codec.Now = func() time.Time { return base }

			issued, err := codec.Issue(ctx, "ticket-1", "user-1")
			if err != nil {
				t.Fatalf("Issue failed: %v", err)
			}

			codec.Now = func() time.Time { return base.Add(tc.elapsed) }
			_, err = codec.Validate(ctx, issued.Token, "scanner-1")
			if tc.wantOK {
				if err != nil {
					t.Fatalf("expected success after %v, got %v", tc.elapsed, err)
				}
				return
			}
			if CodeOf(err) != tc.wantCode {
				t.Errorf("expected %s after %v, got %v", tc.wantCode, tc.elapsed, err)
			}
		})
	}
}

func TestIssueRateLimit(t *testing.T) {
	codec := NewCodec(Config{
		Secret:            []byte("test-secret"),
		ValiditySeconds:   30,
		GraceSeconds:      5,
		MaxIssuePerMinute: 2,
		MaxScansPerMinute: 100,
	}, newFakeKV())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := codec.Issue(ctx, "ticket-1", "user-1"); err != nil {
			t.Fatalf("issue %d failed: %v", i+1, err)
		}
	}

	_, err := codec.Issue(ctx, "ticket-1", "user-1")
	if CodeOf(err) != CodeRateLimitExceeded {
		t.Errorf("expected rate_limit_exceeded on third issue, got %v", err)
	}

	// A different user still has a full budget.
	if _, err := codec.Issue(ctx, "ticket-2", "user-2"); err != nil {
		t.Errorf("other user should not be throttled, got %v", err)
	}
}

func TestValidateScannerRateLimit(t *testing.T) {
	codec := NewCodec(Config{
		Secret:            []byte("test-secret"),
		ValiditySeconds:   30,
		GraceSeconds:      5,
		MaxIssuePerMinute: 60,
		MaxScansPerMinute: 1,
	}, newFakeKV())
	ctx := context.Background()

	issued, err := codec.Issue(ctx, "ticket-1", "user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := codec.Validate(ctx, issued.Token, "scanner-1"); err != nil {
		t.Fatalf("first validation failed: %v", err)
	}

	_, err = codec.Validate(ctx, issued.Token, "scanner-1")
	if CodeOf(err) != CodeScannerRateLimitExceeded {
		t.Errorf("expected scanner_rate_limit_exceeded, got %v", err)
	}
}
