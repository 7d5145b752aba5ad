package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dmriver/taskhub/internal/auth"
	"github.com/dmriver/taskhub/internal/domain/user"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	raw, err := m.GenerateAccessToken("user-1", "a@example.com", user.RoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.VerifyAccessToken(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", claims.UserID)
	}
	if claims.Email != "a@example.com" {
		t.Errorf("Email = %q", claims.Email)
	}
	if claims.Role != string(user.RoleAdmin) {
		t.Errorf("Role = %q, want admin", claims.Role)
	}
	if claims.JTI == "" {
		t.Error("JTI is empty")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	m := auth.NewManager("test-secret", -time.Minute)

	raw, err := m.GenerateAccessToken("user-1", "a@example.com", user.RoleUser)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	_, err = m.VerifyAccessToken(raw)
	if !errors.Is(err, auth.ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	issuer := auth.NewManager("secret-a", time.Hour)
	verifier := auth.NewManager("secret-b", time.Hour)

	raw, err := issuer.GenerateAccessToken("user-1", "a@example.com", user.RoleUser)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	_, err = verifier.VerifyAccessToken(raw)
	if !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	_, err := m.VerifyAccessToken("not-a-jwt")
	if !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}
