package ratelimit

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"middleware-loja/middleware/ratelimit/domain"
	"middleware-loja/middleware/ratelimit/infra"
)

func okHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			*calls++
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, "ok")
	})
}

func cartRequest(session string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "http://loja/cart/add", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	r.AddCookie(&http.Cookie{Name: "session_id", Value: session})
	return r
}

func TestMiddleware_CartQuotaThenRejectsWithoutBlocking(t *testing.T) {
	l := New(Options{AddRateLimitHeaders: true})

	calls := 0
	h := l.Require(
		domain.CategoryCart, domain.ActionCartAdd,
		WithPolicy(domain.Policy{Points: 3, Window: time.Minute, Keys: domain.KeyBySession}),
	)(okHandler(&calls))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, cartRequest("s-1"))
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201 on add %d, got %d", i+1, w.Code)
		}
		if got := w.Header().Get("X-RateLimit-Remaining"); got != strconv.Itoa(3-(i+1)) {
			t.Fatalf("expected remaining %d, got %q", 3-(i+1), got)
		}
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, cartRequest("s-1"))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 over quota, got %d", w.Code)
	}
	retry, err := strconv.Atoi(w.Header().Get("Retry-After"))
	if err != nil || retry <= 0 {
		t.Fatalf("expected positive Retry-After, got %q", w.Header().Get("Retry-After"))
	}
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("expected JSON body: %v", err)
	}
	if body["error"] != string(domain.ReasonRateLimited) {
		t.Fatalf("expected rate_limited error code, got %v", body["error"])
	}

	// carrinho tem BlockFor 0: abusar nunca cria bloqueio
	if size := l.Stats().CacheSizes["blocks"]; size != 0 {
		t.Fatalf("expected no block record for cart abuse, got %d", size)
	}
	if calls != 3 {
		t.Fatalf("expected handler called 3 times, got %d", calls)
	}

	// outra sessão tem cota própria
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, cartRequest("s-2"))
	if w2.Code != http.StatusCreated {
		t.Fatalf("expected fresh session admitted, got %d", w2.Code)
	}
}

func TestMiddleware_LoginFailureEscalationBlocksPair(t *testing.T) {
	l := New(Options{})

	report := httptest.NewRequest(http.MethodPost, "http://loja/login", nil)
	report.RemoteAddr = "1.2.3.4:5555"
	for i := 0; i < 5; i++ {
		l.ReportLogin(report, "a@b.com", "", false)
	}

	extractor := func(email string) IdentityResolver {
		return func(*http.Request) (UserInfo, bool) {
			return UserInfo{Email: email}, true
		}
	}

	samePair := l.Require(domain.CategoryAuth, domain.ActionLoginFailure, WithUserExtractor(extractor("a@b.com")))(okHandler(nil))
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "http://loja/login", nil)
	r.RemoteAddr = "1.2.3.4:5555"
	samePair.ServeHTTP(w, r)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 6th attempt denied before any password check, got %d", w.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("expected JSON body: %v", err)
	}
	if body["error"] != string(domain.ReasonTooManyLoginFailures) {
		t.Fatalf("expected too_many_login_failures, got %v", body["error"])
	}
	retry, _ := strconv.Atoi(w.Header().Get("Retry-After"))
	if retry < 1700 || retry > 1800 {
		t.Fatalf("expected Retry-After around 1800s, got %d", retry)
	}

	// mesmo IP, outro email: isolamento da estratégia de chave
	otherPair := l.Require(domain.CategoryAuth, domain.ActionLoginFailure, WithUserExtractor(extractor("c@d.com")))(okHandler(nil))
	w2 := httptest.NewRecorder()
	r2 := httptest.NewRequest(http.MethodPost, "http://loja/login", nil)
	r2.RemoteAddr = "1.2.3.4:5555"
	otherPair.ServeHTTP(w2, r2)
	if w2.Code != http.StatusCreated {
		t.Fatalf("expected different email unaffected, got %d", w2.Code)
	}
}

func TestMiddleware_RequireAuthWithoutIdentityIs401(t *testing.T) {
	l := New(Options{})

	h := l.Require(domain.CategoryAPI, domain.ActionWrite)(okHandler(nil))
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "http://loja/api/products", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	h.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "" {
		t.Fatalf("expected no Retry-After on auth denial, got %q", got)
	}
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("expected JSON body: %v", err)
	}
	if body["error"] != string(domain.ReasonAuthRequired) {
		t.Fatalf("expected auth_required, got %v", body["error"])
	}
}

func TestMiddleware_TrustedAddressGetsDoubledQuota(t *testing.T) {
	l := New(Options{})

	report := httptest.NewRequest(http.MethodPost, "http://loja/login", nil)
	report.RemoteAddr = "7.7.7.7:1"
	l.ReportLogin(report, "a@b.com", "u-1", true)

	h := l.Require(
		domain.CategoryAPI, domain.ActionPublicRead,
		WithPolicy(domain.Policy{Points: 2, Window: time.Minute, Keys: domain.KeyByIP}),
	)(okHandler(nil))

	// pontos dobram de 2 para 4 para o endereço confiável
	for i := 0; i < 4; i++ {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "http://loja/products", nil)
		r.RemoteAddr = "7.7.7.7:1"
		h.ServeHTTP(w, r)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected request %d admitted for trusted address, got %d", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "http://loja/products", nil)
	r.RemoteAddr = "7.7.7.7:1"
	h.ServeHTTP(w, r)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 5th request denied even when trusted, got %d", w.Code)
	}
}

func TestMiddleware_HooksFire(t *testing.T) {
	l := New(Options{})

	var allowed, denied int
	h := l.Require(
		domain.CategoryAPI, domain.ActionPublicRead,
		WithPolicy(domain.Policy{Points: 1, Window: time.Minute, Keys: domain.KeyByIP}),
		WithOnAllow(func(UserInfo) { allowed++ }),
		WithOnDeny(func(UserInfo) { denied++ }),
	)(okHandler(nil))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "http://loja/products", nil)
		r.RemoteAddr = "10.0.0.1:1"
		h.ServeHTTP(w, r)
	}

	if allowed != 1 || denied != 1 {
		t.Fatalf("expected one allow and one deny hook call, got %d/%d", allowed, denied)
	}
}

func TestMiddleware_RecordsStats(t *testing.T) {
	stats := infra.NewMemoryStatsStore()
	l := New(Options{Stats: stats})

	h := l.Require(
		domain.CategoryAPI, domain.ActionPublicRead,
		WithPolicy(domain.Policy{Points: 1, Window: time.Minute, Keys: domain.KeyByIP}),
	)(okHandler(nil))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "http://loja/products", nil)
		r.RemoteAddr = "10.0.0.1:1"
		h.ServeHTTP(w, r)
	}

	total := stats.Total()
	if total.Allowed != 1 || total.Denied != 1 {
		t.Fatalf("expected 1 allowed / 1 denied recorded, got %+v", total)
	}
	if stats.ByReason()[domain.ReasonRateLimited] != 1 {
		t.Fatalf("expected denial reason recorded, got %v", stats.ByReason())
	}
}

func TestLimiter_UnblockAndStats(t *testing.T) {
	l := New(Options{})

	report := httptest.NewRequest(http.MethodPost, "http://loja/login", nil)
	report.RemoteAddr = "6.6.6.6:1"
	// 11 falhas no minuto disparam o detector de força bruta, que bloqueia o
	// endereço inteiro
	for i := 0; i < 11; i++ {
		l.ReportLogin(report, "x@y.com", "", false)
	}

	if !l.Unblock("6.6.6.6") {
		t.Fatalf("expected an address block to remove")
	}
	if l.Unblock("6.6.6.6") {
		t.Fatalf("expected nothing left to remove")
	}

	snap := l.Stats()
	if snap.FailedLogins != 11 {
		t.Fatalf("expected 11 failed logins, got %d", snap.FailedLogins)
	}
	if _, ok := snap.CacheSizes["requests"]; !ok {
		t.Fatalf("expected cache sizes in snapshot, got %v", snap.CacheSizes)
	}
}
