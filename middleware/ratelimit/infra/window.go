package infra

import (
	"sync"
	"time"

	"middleware-loja/middleware/ratelimit/domain"
)

// WindowCounter implementa a janela deslizante por chave sobre um TTLCache
// de sequências de timestamps.
//
// Janela deslizante de verdade (não bucket fixo): vale exatamente Points
// eventos em qualquer intervalo de duração Window terminando agora. Rajadas
// cruzando fronteira de bucket não são contadas em dobro nem de menos.
type WindowCounter struct {
	mu   sync.Mutex
	logs *TTLCache[[]time.Time]
}

// NewWindowCounter dimensiona o cache de logs de request (padrão do core:
// 3000 entradas / TTL 1h).
func NewWindowCounter(max int, ttl time.Duration) *WindowCounter {
	return &WindowCounter{logs: NewTTLCache[[]time.Time](max, ttl)}
}

// Check implementa domain.WindowCounter.
//
// Request negado não consome cota: o timestamp atual só é anexado quando a
// contagem filtrada ainda cabe em points.
func (w *WindowCounter) Check(key string, points int, window time.Duration) domain.WindowResult {
	now := time.Now()
	windowStart := now.Add(-window)

	// mutex próprio do componente: Get+Set precisam ser atômicos para não
	// perder timestamps entre requests concorrentes da mesma chave.
	w.mu.Lock()
	defer w.mu.Unlock()

	stored, _ := w.logs.Get(key)

	valid := make([]time.Time, 0, len(stored)+1)
	for _, ts := range stored {
		if ts.After(windowStart) {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= points {
		// vaga nova só abre quando o timestamp mais antigo sai da janela.
		oldest := valid[0]
		retry := oldest.Add(window).Sub(now)
		if retry < 0 {
			retry = 0
		}
		return domain.WindowResult{
			Limited:    true,
			Remaining:  0,
			ResetAt:    oldest.Add(window),
			RetryAfter: ceilSeconds(retry),
		}
	}

	valid = append(valid, now)
	w.logs.Set(key, valid)

	return domain.WindowResult{
		Remaining: points - len(valid),
		ResetAt:   windowStart.Add(window),
	}
}

func (w *WindowCounter) Len() int { return w.logs.Len() }
func (w *WindowCounter) Cleanup() { w.logs.Cleanup() }

// ceilSeconds arredonda para cima em segundos inteiros, como o header
// Retry-After espera.
func ceilSeconds(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	secs := d / time.Second
	if d%time.Second != 0 {
		secs++
	}
	return secs * time.Second
}
