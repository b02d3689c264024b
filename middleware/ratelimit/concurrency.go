package ratelimit

import (
	"net/http"
	"time"

	"middleware-loja/middleware/ratelimit/application"
	"middleware-loja/middleware/ratelimit/infra"
)

// ConcurrencyOptions limita requests em voo rumo ao upstream da loja.
type ConcurrencyOptions struct {
	Max            int
	AcquireTimeout time.Duration
	// OnShed é chamado a cada request descartado por falta de vaga.
	OnShed func()
}

// ConcurrencyMiddleware responde 503 quando não há vaga dentro do timeout.
// Max <= 0 desliga o limite.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	svc := application.ConcurrencyService{
		Pool:           infra.NewChanPool(opts.Max),
		AcquireTimeout: opts.AcquireTimeout,
		OnShed:         opts.OnShed,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, ok := svc.Acquire(r.Context())
			if !ok {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"error":"overloaded"}` + "\n"))
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
