package auth

import (
	"errors"
	"testing"
	"time"

	"quizbank-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("secret", "quizbank", time.Hour)
	token, issued, err := svc.Issue(domain.User{ID: 7, Username: "ali", Role: domain.RolePupil})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	identity, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if identity.UserID != 7 || identity.Username != "ali" || identity.Role != domain.RolePupil {
		t.Fatalf("unexpected identity %+v", identity)
	}
	if identity.TokenID == "" || identity.TokenID != issued.TokenID {
		t.Fatalf("expected token id %q, got %q", issued.TokenID, identity.TokenID)
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	token, _, err := NewTokenService("one", "quizbank", time.Hour).Issue(domain.User{ID: 1, Username: "x", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	_, err = NewTokenService("two", "quizbank", time.Hour).Verify(token)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc := NewTokenService("secret", "quizbank", time.Minute)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := svc.Issue(domain.User{ID: 1, Username: "x", Role: domain.RolePupil})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	svc.now = time.Now
	if _, err := svc.Verify(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for expired token, got %v", err)
	}
}

func TestVerifyRejectsEmptyAndGarbage(t *testing.T) {
	svc := NewTokenService("secret", "quizbank", time.Hour)
	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := svc.Verify(raw); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("expected unauthorized for %q, got %v", raw, err)
		}
	}
}
