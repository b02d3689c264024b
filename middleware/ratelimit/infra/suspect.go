package infra

import (
	"sync"
	"time"

	"middleware-loja/middleware/ratelimit/domain"
)

// Detector mantém o log rolante de ações por endereço e sinaliza padrões de
// abuso no último minuto: volume excessivo ou tentativa de força bruta.
//
// Não usa TTLCache: é um map próprio podado pela varredura periódica quando
// o firstSeen do endereço passa de maxAge (1h por padrão).
type Detector struct {
	mu   sync.Mutex
	logs map[string]*activityLog

	maxEntries    int
	interval      time.Duration
	maxTotal      int
	maxLoginFails int
	maxAge        time.Duration
}

type activityLog struct {
	entries   []activityEntry
	firstSeen time.Time
}

type activityEntry struct {
	action domain.Action
	at     time.Time
}

type DetectorOption func(*Detector)

// WithDetectorMaxAge controla a idade (desde firstSeen) a partir da qual a
// varredura descarta o log de um endereço.
func WithDetectorMaxAge(d time.Duration) DetectorOption {
	return func(det *Detector) { det.maxAge = d }
}

func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{
		logs:          make(map[string]*activityLog),
		maxEntries:    100,
		interval:      time.Minute,
		maxTotal:      100,
		maxLoginFails: 10,
		maxAge:        time.Hour,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Record implementa domain.ActivityDetector: anexa (ação, agora) ao log do
// endereço e devolve o padrão detectado ("" quando limpo).
//
// As métricas são computadas depois do append e antes do corte para as 100
// entradas mais recentes, então o limiar "mais de 100 no minuto" é
// alcançável.
func (d *Detector) Record(address string, action domain.Action) domain.Reason {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	lg, ok := d.logs[address]
	if !ok {
		lg = &activityLog{firstSeen: now}
		d.logs[address] = lg
	}
	lg.entries = append(lg.entries, activityEntry{action: action, at: now})

	total := 0
	loginFails := 0
	cutoff := now.Add(-d.interval)
	for _, e := range lg.entries {
		if e.at.Before(cutoff) {
			continue
		}
		total++
		if e.action == domain.ActionLoginFailure {
			loginFails++
		}
	}

	if len(lg.entries) > d.maxEntries {
		lg.entries = lg.entries[len(lg.entries)-d.maxEntries:]
	}

	if total > d.maxTotal {
		return domain.ReasonExcessiveRequests
	}
	if loginFails > d.maxLoginFails {
		return domain.ReasonBruteForce
	}
	return ""
}

func (d *Detector) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.logs)
}

// Cleanup descarta logs de endereços vistos pela primeira vez há mais de
// maxAge. Snapshot-then-mutate para não segurar o lock durante a iteração
// completa em mapas grandes.
func (d *Detector) Cleanup() {
	cutoff := time.Now().Add(-d.maxAge)

	d.mu.Lock()
	stale := make([]string, 0)
	for addr, lg := range d.logs {
		if lg.firstSeen.Before(cutoff) {
			stale = append(stale, addr)
		}
	}
	d.mu.Unlock()

	for _, addr := range stale {
		d.mu.Lock()
		if lg, ok := d.logs[addr]; ok && lg.firstSeen.Before(cutoff) {
			delete(d.logs, addr)
		}
		d.mu.Unlock()
	}
}
