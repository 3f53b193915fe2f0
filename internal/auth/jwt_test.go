package auth

import (
	"testing"
	"time"

	"voicera-console/internal/config"
)

func TestIssueAndVerifySessionToken(t *testing.T) {
	m, err := NewManager(config.SessionConfig{Secret: "secret", Issuer: "issuer", TTL: time.Hour})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}

	now := time.Unix(1700000000, 0).UTC()
	tok, err := m.Issue(now, "sess-1", "org-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := m.Verify(tok, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.SessionID != "sess-1" || claims.OrgID != "org-1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejectsExpiredAndForeign(t *testing.T) {
	m, _ := NewManager(config.SessionConfig{Secret: "secret", TTL: time.Minute})
	now := time.Unix(1700000000, 0).UTC()
	tok, err := m.Issue(now, "s", "o")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(tok, now.Add(time.Hour)); err == nil {
		t.Fatalf("expected expired token to fail")
	}

	other, _ := NewManager(config.SessionConfig{Secret: "other", TTL: time.Minute})
	if _, err := other.Verify(tok, now); err == nil {
		t.Fatalf("expected signature mismatch")
	}
}

func TestNewManagerRequiresSecret(t *testing.T) {
	if _, err := NewManager(config.SessionConfig{}); err == nil {
		t.Fatalf("expected error without secret")
	}
}
