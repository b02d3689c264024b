package ratelimit

import "middleware-loja/middleware/ratelimit/domain"

// Superfície administrativa do limiter: override manual de bloqueio e foto
// dos contadores (exposta como JSON pelo listener admin do gateway).

// Unblock remove o bloqueio de um endereço. Retorna se havia registro.
func (l *Limiter) Unblock(address string) bool {
	return l.svc.Unblock(address)
}

// Stats devolve os contadores do processo e o tamanho atual de cada
// estrutura interna.
func (l *Limiter) Stats() domain.Snapshot {
	return l.counters.Snapshot(map[string]int{
		"requests": l.windows.Len(),
		"failures": l.logins.FailureLen(),
		"trusted":  l.logins.TrustedLen(),
		"blocks":   l.blocks.Len(),
		"suspects": l.suspects.Len(),
	})
}
