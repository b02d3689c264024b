package infra

import (
	"testing"
	"time"

	"middleware-loja/middleware/ratelimit/domain"
)

func TestLoginTracker_EscalatesToBlockAfterMaxFailures(t *testing.T) {
	blocks := NewBlockList(10, time.Minute)
	var counters domain.Counters
	tr := NewLoginTracker(blocks, &counters)

	for i := 0; i < 5; i++ {
		tr.RecordAttempt("1.2.3.4", "a@b.com", false)
	}

	key := domain.LoginEscalationKey("1.2.3.4", "a@b.com")
	rec, ok := blocks.IsBlocked(key)
	if !ok {
		t.Fatalf("expected pair blocked after 5 failures")
	}
	if rec.Reason != domain.ReasonTooManyLoginFailures {
		t.Fatalf("expected reason %q, got %q", domain.ReasonTooManyLoginFailures, rec.Reason)
	}

	// outro email do mesmo endereço não é atingido
	other := domain.LoginEscalationKey("1.2.3.4", "c@d.com")
	if _, ok := blocks.IsBlocked(other); ok {
		t.Fatalf("expected different email unaffected")
	}
	if counters.FailedLogins.Load() != 5 {
		t.Fatalf("expected 5 failed logins counted, got %d", counters.FailedLogins.Load())
	}
}

func TestLoginTracker_SuccessResetsFailureCount(t *testing.T) {
	blocks := NewBlockList(10, time.Minute)
	var counters domain.Counters
	tr := NewLoginTracker(blocks, &counters)

	for i := 0; i < 4; i++ {
		tr.RecordAttempt("1.2.3.4", "a@b.com", false)
	}
	tr.RecordAttempt("1.2.3.4", "a@b.com", true)

	// a contagem recomeça do 1, não do 5: mais 4 falhas não bloqueiam
	for i := 0; i < 4; i++ {
		tr.RecordAttempt("1.2.3.4", "a@b.com", false)
	}
	key := domain.LoginEscalationKey("1.2.3.4", "a@b.com")
	if _, ok := blocks.IsBlocked(key); ok {
		t.Fatalf("expected no block after success reset the counter")
	}

	tr.RecordAttempt("1.2.3.4", "a@b.com", false)
	if _, ok := blocks.IsBlocked(key); !ok {
		t.Fatalf("expected block on the 5th consecutive failure")
	}
	if counters.SuccessfulLogins.Load() != 1 {
		t.Fatalf("expected 1 successful login counted, got %d", counters.SuccessfulLogins.Load())
	}
}

func TestLoginTracker_SuccessGrantsTrust(t *testing.T) {
	blocks := NewBlockList(10, time.Minute)
	tr := NewLoginTracker(blocks, nil)

	if tr.IsTrusted("1.2.3.4", "") {
		t.Fatalf("expected untrusted before any success")
	}
	tr.RecordAttempt("1.2.3.4", "a@b.com", true)
	if !tr.IsTrusted("1.2.3.4", "") {
		t.Fatalf("expected address trusted after success")
	}

	tr.Trust("", "user-9")
	if !tr.IsTrusted("", "user-9") {
		t.Fatalf("expected userId trusted after explicit grant")
	}
	if tr.IsTrusted("9.9.9.9", "user-x") {
		t.Fatalf("expected unrelated requester untrusted")
	}
}
