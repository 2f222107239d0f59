package helpers

import (
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	token, exp, err := m.GenerateToken("u1", "Ada", "ada@example.com", "https://img.example/a.png")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if time.Until(exp) < 59*time.Minute {
		t.Fatalf("expiry too soon: %v", exp)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "u1" || claims.Name != "Ada" || claims.Email != "ada@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.AvatarURL != "https://img.example/a.png" {
		t.Fatalf("avatar not carried: %q", claims.AvatarURL)
	}
}

func TestJWTExpiredToken(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	token, _, err := m.GenerateTokenTTL("u1", "Ada", "ada@example.com", "", -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := m.ParseToken(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestJWTWrongSecret(t *testing.T) {
	m := NewJWTManager("secret-a", time.Hour)
	token, _, err := m.GenerateToken("u1", "Ada", "ada@example.com", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	other := NewJWTManager("secret-b", time.Hour)
	if _, err := other.ParseToken(token); err == nil {
		t.Fatal("expected token signed with another secret to be rejected")
	}
}

func TestJWTCustomTTLShorterThanDefault(t *testing.T) {
	m := NewJWTManager("test-secret", 168*time.Hour)
	_, exp, err := m.GenerateTokenTTL("u1", "Ada", "ada@example.com", "", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if time.Until(exp) > 61*time.Minute {
		t.Fatalf("login-link TTL not honored, expiry %v", exp)
	}
}
