// utilitário pequeno para formatação rápida/consistente de valores numéricos
// em headers. Evita puxar fmt (que é mais "pesado" e genérico) só para isso.

package ratelimit

import (
	"strconv"
	"time"
)

func formatInt(v int) string { return strconv.Itoa(v) }

// formatSeconds arredonda a duração para segundos inteiros, como Retry-After
// espera.
func formatSeconds(d time.Duration) string {
	return strconv.Itoa(int(d.Seconds()))
}

// formatUnix formata o instante como epoch em segundos (X-RateLimit-Reset).
func formatUnix(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}
