package ratelimit

import (
	"net/http"

	"middleware-loja/middleware/ratelimit/infra"
)

// ThroughputOptions configura o teto global de vazão do processo.
type ThroughputOptions struct {
	// RPS e Burst dimensionam o token bucket compartilhado. RPS <= 0
	// desliga o teto.
	RPS   float64
	Burst int
	// RetryAfter vai no header homônimo quando o teto corta. 0 usa 1s.
	RetryAfterSeconds int
}

// ThroughputMiddleware aplica o teto global antes de qualquer lógica por
// chave: um único bucket para o processo inteiro, barato de consultar, que
// segura volume agregado mesmo quando cada chave individual está dentro da
// cota.
func ThroughputMiddleware(opts ThroughputOptions) func(next http.Handler) http.Handler {
	if opts.RPS <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.Burst <= 0 {
		opts.Burst = int(opts.RPS)
		if opts.Burst < 1 {
			opts.Burst = 1
		}
	}
	if opts.RetryAfterSeconds <= 0 {
		opts.RetryAfterSeconds = 1
	}

	ceiling := infra.NewCeiling(opts.RPS, opts.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ceiling.Allow() {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.Header().Set("Retry-After", formatInt(opts.RetryAfterSeconds))
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate_limited"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
