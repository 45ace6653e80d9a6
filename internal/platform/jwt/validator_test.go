package jwtmw

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func issue(t *testing.T, cfg Config, now time.Time) string {
	t.Helper()
	gen, err := NewGenerator(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gen.now = func() time.Time { return now }
	tok, _, err := gen.GenerateToken("user-1", "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return tok
}

func TestNewValidator_EmptySecret(t *testing.T) {
	_, err := NewValidator(Config{})
	if !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

// TestValidator_ParseToken は署名・有効期限・発行者・対象者の検証を確認します。
func TestValidator_ParseToken(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	otherSecret := testConfig()
	otherSecret.Secret = "other-secret"
	otherIssuer := testConfig()
	otherIssuer.Issuer = "someone-else"
	otherAudience := testConfig()
	otherAudience.Audience = "another-client"

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-1",
		"exp": now.Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name    string
		token   string
		at      time.Time
		wantErr bool
	}{
		{"valid token", issue(t, testConfig(), now), now.Add(time.Minute), false},
		{"just before expiry", issue(t, testConfig(), now), now.Add(3*time.Hour - time.Second), false},
		{"expired", issue(t, testConfig(), now), now.Add(3*time.Hour + time.Second), true},
		{"wrong secret", issue(t, otherSecret, now), now, true},
		{"wrong issuer", issue(t, otherIssuer, now), now, true},
		{"wrong audience", issue(t, otherAudience, now), now, true},
		{"alg none", noneToken, now, true},
		{"garbage", "not.a.jwt", now, true},
		{"empty", "", now, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, err := NewValidator(testConfig())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			at := tt.at
			v.now = func() time.Time { return at }

			claims, err := v.ParseToken(tt.token)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidToken) {
					t.Fatalf("expected ErrInvalidToken, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if claims.Subject != "user-1" || claims.Name != "alice" {
				t.Errorf("unexpected claims: sub=%q name=%q", claims.Subject, claims.Name)
			}
		})
	}
}
