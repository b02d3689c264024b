package infra

import (
	"testing"
	"time"

	"middleware-loja/middleware/ratelimit/domain"
)

func TestBlockList_ZeroDurationIsNoOp(t *testing.T) {
	b := NewBlockList(10, time.Minute)

	b.Block("1.2.3.4", 0, domain.ReasonExcessiveRequests)
	if _, ok := b.IsBlocked("1.2.3.4"); ok {
		t.Fatalf("expected zero-duration block to never report blocked")
	}
}

func TestBlockList_ActiveBlockThenLazyExpiry(t *testing.T) {
	b := NewBlockList(10, time.Minute)

	b.Block("1.2.3.4", 40*time.Millisecond, domain.ReasonBruteForce)

	rec, ok := b.IsBlocked("1.2.3.4")
	if !ok {
		t.Fatalf("expected active block")
	}
	if rec.Reason != domain.ReasonBruteForce {
		t.Fatalf("expected reason %q, got %q", domain.ReasonBruteForce, rec.Reason)
	}
	if rec.Occurrences != 1 {
		t.Fatalf("expected first occurrence, got %d", rec.Occurrences)
	}

	time.Sleep(60 * time.Millisecond)
	if _, ok := b.IsBlocked("1.2.3.4"); ok {
		t.Fatalf("expected block expired")
	}
	// leitura de registro inativo remove (GC preguiçoso)
	if _, ok := b.records.Peek("1.2.3.4"); ok {
		t.Fatalf("expected lazy expiry to delete the record")
	}
}

func TestBlockList_OccurrencesCarryFromExpiredRecord(t *testing.T) {
	b := NewBlockList(10, time.Minute)

	b.Block("1.2.3.4", 10*time.Millisecond, domain.ReasonExcessiveRequests)
	time.Sleep(20 * time.Millisecond)
	// registro expirado mas não varrido ainda conta como histórico
	b.Block("1.2.3.4", time.Minute, domain.ReasonBruteForce)

	rec, ok := b.IsBlocked("1.2.3.4")
	if !ok {
		t.Fatalf("expected active block")
	}
	if rec.Occurrences != 2 {
		t.Fatalf("expected occurrence count 2 for repeat offender, got %d", rec.Occurrences)
	}
	if rec.Reason != domain.ReasonBruteForce {
		t.Fatalf("expected latest reason to win, got %q", rec.Reason)
	}
}

func TestBlockList_Unblock(t *testing.T) {
	b := NewBlockList(10, time.Minute)

	b.Block("1.2.3.4", time.Minute, domain.ReasonExcessiveRequests)
	if !b.Unblock("1.2.3.4") {
		t.Fatalf("expected unblock to report a removed record")
	}
	if _, ok := b.IsBlocked("1.2.3.4"); ok {
		t.Fatalf("expected address free after unblock")
	}
	if b.Unblock("1.2.3.4") {
		t.Fatalf("expected second unblock to report nothing removed")
	}
}
