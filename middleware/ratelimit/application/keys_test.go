package application

import (
	"testing"

	"middleware-loja/middleware/ratelimit/domain"
)

func TestDeriveKey_ByIP(t *testing.T) {
	sig := domain.Signals{Address: "1.2.3.4"}
	if got := DeriveKey(domain.KeyByIP, domain.ActionPublicRead, sig); got != "rl:public_read:ip:1.2.3.4" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestDeriveKey_ByUserFallsBackToAnonymous(t *testing.T) {
	sig := domain.Signals{Address: "1.2.3.4"}
	if got := DeriveKey(domain.KeyByUser, domain.ActionWrite, sig); got != "rl:write:user:anonymous" {
		t.Fatalf("unexpected key %q", got)
	}

	sig.UserID = "u-7"
	if got := DeriveKey(domain.KeyByUser, domain.ActionWrite, sig); got != "rl:write:user:u-7" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestDeriveKey_IPEmailCombinesBothSegments(t *testing.T) {
	sig := domain.Signals{Address: "1.2.3.4", Email: "a@b.com"}
	if got := DeriveKey(domain.KeyByIPEmail, domain.ActionLoginFailure, sig); got != "rl:login_failure:ip:1.2.3.4:email:a@b.com" {
		t.Fatalf("unexpected key %q", got)
	}

	sig.Email = ""
	if got := DeriveKey(domain.KeyByIPEmail, domain.ActionLoginFailure, sig); got != "rl:login_failure:ip:1.2.3.4:email:unknown" {
		t.Fatalf("expected email placeholder, got %q", got)
	}
}

func TestDeriveKey_IPUser(t *testing.T) {
	sig := domain.Signals{Address: "1.2.3.4", UserID: "u-7"}
	if got := DeriveKey(domain.KeyByIPUser, domain.ActionWrite, sig); got != "rl:write:ip:1.2.3.4:user:u-7" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestDeriveKey_SessionFallsBackToAddress(t *testing.T) {
	sig := domain.Signals{Address: "1.2.3.4", SessionID: "s-1"}
	if got := DeriveKey(domain.KeyBySession, domain.ActionCartAdd, sig); got != "rl:add:session:s-1" {
		t.Fatalf("unexpected key %q", got)
	}

	sig.SessionID = ""
	if got := DeriveKey(domain.KeyBySession, domain.ActionCartAdd, sig); got != "rl:add:session:1.2.3.4" {
		t.Fatalf("expected address fallback, got %q", got)
	}
}

func TestDeriveKey_UnknownStrategyFallsBackToIP(t *testing.T) {
	sig := domain.Signals{Address: "1.2.3.4"}
	if got := DeriveKey(domain.KeyStrategy("whatever"), domain.ActionSearch, sig); got != "rl:search:ip:1.2.3.4" {
		t.Fatalf("unexpected key %q", got)
	}
}
