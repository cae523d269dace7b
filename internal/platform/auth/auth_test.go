package auth_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/roamio/tours-api/internal/apperr"
	"github.com/roamio/tours-api/internal/platform/auth"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue(42)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if token == "" {
		t.Fatal("Expected a non-empty token")
	}

	session, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if session.UserID != 42 {
		t.Fatalf("Expected user 42, got %d", session.UserID)
	}
	if time.Since(session.IssuedAt) > time.Minute {
		t.Fatalf("IssuedAt too far in the past: %v", session.IssuedAt)
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Issue(1)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = issuer.Verify(token)
	if err == nil {
		t.Fatal("Expected expired token to fail verification")
	}
	appErr := apperr.From(err)
	if appErr.Code != apperr.CodeExpiredToken {
		t.Fatalf("Expected EXPIRED_TOKEN, got %s", appErr.Code)
	}
	if appErr.Status != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", appErr.Status)
	}
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	issuer := auth.NewTokenIssuer("secret-a", time.Hour)
	other := auth.NewTokenIssuer("secret-b", time.Hour)

	token, err := issuer.Issue(7)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = other.Verify(token)
	if err == nil {
		t.Fatal("Expected verification with the wrong secret to fail")
	}
	if apperr.From(err).Code != apperr.CodeInvalidToken {
		t.Fatalf("Expected INVALID_TOKEN, got %s", apperr.From(err).Code)
	}
}

func TestTokenIssuer_Garbage(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := issuer.Verify(token); err == nil {
			t.Fatalf("Expected %q to fail verification", token)
		}
	}
}

func TestHashPassword_NeverStoresPlaintext(t *testing.T) {
	hash, err := auth.HashPassword("pass1234")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "pass1234" {
		t.Fatal("Hash equals the plaintext")
	}

	if !auth.CheckPassword("pass1234", hash) {
		t.Fatal("Correct password rejected")
	}
	if auth.CheckPassword("wrong-pass", hash) {
		t.Fatal("Wrong password accepted")
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	a, err := auth.HashPassword("pass1234")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	b, err := auth.HashPassword("pass1234")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if a == b {
		t.Fatal("Two hashes of the same password match; salt missing")
	}
}

func TestResetToken(t *testing.T) {
	raw, hash := auth.NewResetToken()
	if raw == "" || hash == "" {
		t.Fatal("Expected non-empty token and hash")
	}
	if raw == hash {
		t.Fatal("Stored hash equals the raw token")
	}
	if auth.HashResetToken(raw) != hash {
		t.Fatal("Re-hashing the raw token does not match the stored hash")
	}

	raw2, hash2 := auth.NewResetToken()
	if raw2 == raw || hash2 == hash {
		t.Fatal("Two reset tokens collided")
	}
}
