package infra

import (
	"sync"
	"time"

	"middleware-loja/middleware/ratelimit/domain"
)

// LoginTracker acompanha o desfecho de autenticações por (endereço, email).
//
// Falhas consecutivas escalonam para bloqueio do endereço; sucesso zera o
// contador do par e promove o requisitante ao conjunto confiável (cota
// dobrada, bloqueio pela metade — quem aplica é o orquestrador).
type LoginTracker struct {
	mu       sync.Mutex
	failures *TTLCache[int]
	trusted  *TTLCache[time.Time]
	blocks   domain.BlockRegistry
	counters *domain.Counters

	maxFailures int
	blockFor    time.Duration
}

type LoginTrackerOption func(*LoginTracker)

func WithMaxFailures(n int) LoginTrackerOption {
	return func(t *LoginTracker) { t.maxFailures = n }
}

func WithFailureBlock(d time.Duration) LoginTrackerOption {
	return func(t *LoginTracker) { t.blockFor = d }
}

// NewLoginTracker dimensiona os caches do core: falhas 1000 / 30min,
// confiáveis 500 / 24h. O escalonamento padrão é 5 falhas → bloqueio de
// 30min do endereço.
func NewLoginTracker(blocks domain.BlockRegistry, counters *domain.Counters, opts ...LoginTrackerOption) *LoginTracker {
	t := &LoginTracker{
		failures:    NewTTLCache[int](1000, 30*time.Minute),
		trusted:     NewTTLCache[time.Time](500, 24*time.Hour),
		blocks:      blocks,
		counters:    counters,
		maxFailures: 5,
		blockFor:    30 * time.Minute,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RecordAttempt implementa domain.LoginTracker.
//
// Este é o único lugar onde contadores de falha e concessões de confiança
// mutam; o orquestrador só chama para ações classificadas como desfecho de
// login (ele não infere sucesso/falha de respostas de negócio).
func (t *LoginTracker) RecordAttempt(address, email string, success bool) {
	key := domain.LoginEscalationKey(address, email)

	t.mu.Lock()
	defer t.mu.Unlock()

	if success {
		t.failures.Delete(key)
		if t.counters != nil {
			t.counters.SuccessfulLogins.Add(1)
		}
		t.trusted.Set(address, time.Now())
		return
	}

	count, _ := t.failures.Get(key)
	count++
	t.failures.Set(key, count)
	if t.counters != nil {
		t.counters.FailedLogins.Add(1)
	}

	if count >= t.maxFailures && t.blocks != nil {
		t.blocks.Block(key, t.blockFor, domain.ReasonTooManyLoginFailures)
	}
}

// Trust promove explicitamente um endereço e/ou userId (o userId normalmente
// só aparece depois que o colaborador resolve a sessão).
func (t *LoginTracker) Trust(address, userID string) {
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	if address != "" {
		t.trusted.Set(address, now)
	}
	if userID != "" {
		t.trusted.Set(userID, now)
	}
}

// IsTrusted implementa domain.LoginTracker.
func (t *LoginTracker) IsTrusted(address, userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if address != "" {
		if _, ok := t.trusted.Get(address); ok {
			return true
		}
	}
	if userID != "" {
		if _, ok := t.trusted.Get(userID); ok {
			return true
		}
	}
	return false
}

func (t *LoginTracker) FailureLen() int { return t.failures.Len() }
func (t *LoginTracker) TrustedLen() int { return t.trusted.Len() }

func (t *LoginTracker) Cleanup() {
	t.failures.Cleanup()
	t.trusted.Cleanup()
}
