package infra

import (
	"context"
	"sync/atomic"
)

// ChanPool é um pool simples baseado em channel; satisfaz domain.SlotPool.
type ChanPool struct {
	sem      chan struct{}
	inFlight atomic.Int64
}

// NewChanPool cria um pool com capacidade `max`.
func NewChanPool(max int) *ChanPool {
	return &ChanPool{sem: make(chan struct{}, max)}
}

func (p *ChanPool) Acquire(ctx context.Context) (func(), bool) {
	select {
	case p.sem <- struct{}{}:
		p.inFlight.Add(1)
		return func() {
			p.inFlight.Add(-1)
			<-p.sem
		}, true
	case <-ctx.Done():
		return nil, false
	}
}

// InFlight expõe quantas vagas estão ocupadas agora (gauge best-effort).
func (p *ChanPool) InFlight() int64 { return p.inFlight.Load() }
