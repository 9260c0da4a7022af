package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	hashed, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hashed == "s3cret-pass" {
		t.Fatalf("HashPassword() returned plaintext")
	}
	if !VerifyPassword("s3cret-pass", hashed) {
		t.Fatalf("VerifyPassword() = false, want true for correct password")
	}
	if VerifyPassword("wrong-pass", hashed) {
		t.Fatalf("VerifyPassword() = true, want false for wrong password")
	}
}

func TestTokenIssuer_IssueParseRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("unit-test-secret", time.Hour)
	userID := uuid.New()

	token, err := issuer.Issue(userID, "alice", time.Now())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	gotID, gotName, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if gotID != userID {
		t.Fatalf("Parse() userID = %v, want %v", gotID, userID)
	}
	if gotName != "alice" {
		t.Fatalf("Parse() username = %q, want %q", gotName, "alice")
	}
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer("unit-test-secret", time.Minute)

	token, err := issuer.Issue(uuid.New(), "bob", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, _, err := issuer.Parse(token); err == nil {
		t.Fatalf("Parse() error = nil, want error for expired token")
	}
}

func TestTokenIssuer_RejectsWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("unit-test-secret", time.Hour)
	other := NewTokenIssuer("another-secret", time.Hour)

	token, err := issuer.Issue(uuid.New(), "carol", time.Now())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, _, err := other.Parse(token); err == nil {
		t.Fatalf("Parse() error = nil, want error for token signed with another secret")
	}
}

func TestTokenIssuer_RejectsGarbage(t *testing.T) {
	issuer := NewTokenIssuer("unit-test-secret", time.Hour)
	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, _, err := issuer.Parse(raw); err == nil {
			t.Fatalf("Parse(%q) error = nil, want error", raw)
		}
	}
}
