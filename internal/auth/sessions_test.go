package auth_test

import (
	"errors"
	"testing"

	"github.com/kidtunes/kidtunes/internal/auth"
)

func TestSessions_IssueAndVerify(t *testing.T) {
	sessions := auth.NewSessions(auth.SessionsConfig{SigningKey: "test-signing-key"})

	token, err := sessions.Issue("acct1", "DEVICE1")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	session, err := sessions.Verify(token)
	if err != nil {
		t.Fatalf("failed to verify token: %v", err)
	}

	if session.AccountID != "acct1" {
		t.Errorf("expected account acct1, got %q", session.AccountID)
	}
	if session.DeviceID != "DEVICE1" {
		t.Errorf("expected device DEVICE1, got %q", session.DeviceID)
	}
}

func TestSessions_Verify_WrongKey(t *testing.T) {
	sessions := auth.NewSessions(auth.SessionsConfig{SigningKey: "test-signing-key"})
	other := auth.NewSessions(auth.SessionsConfig{SigningKey: "different-key"})

	token, err := sessions.Issue("acct1", "DEVICE1")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	if _, err := other.Verify(token); !errors.Is(err, auth.ErrInvalidSessionToken) {
		t.Errorf("expected ErrInvalidSessionToken, got %v", err)
	}
}

func TestSessions_Verify_Garbage(t *testing.T) {
	sessions := auth.NewSessions(auth.SessionsConfig{SigningKey: "test-signing-key"})

	if _, err := sessions.Verify("not-a-token"); !errors.Is(err, auth.ErrInvalidSessionToken) {
		t.Errorf("expected ErrInvalidSessionToken, got %v", err)
	}
}
