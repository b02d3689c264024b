package domain

import (
	"context"
	"sync/atomic"
	"time"
)

// StatsEvent representa uma decisão do limiter.
//
// Ele é propositalmente "agnóstico de HTTP": Action/Reason são strings
// genéricas e servem igualmente para web, gRPC, etc.
//
// Observação: cuidado com cardinalidade — gravar Key sem controle pode
// explodir o número de chaves em uma base como Redis.
type StatsEvent struct {
	Key     string
	Action  Action
	Allowed bool
	Reason  Reason

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas de decisão.
//
// Implementações podem armazenar em Redis, memória, etc.
// O middleware trata erro como best-effort (não derruba request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}

// Counters são os contadores globais do processo. Incrementos vêm de
// goroutines concorrentes, daí os atomics.
type Counters struct {
	Total            atomic.Int64
	Denied           atomic.Int64
	FailedLogins     atomic.Int64
	SuccessfulLogins atomic.Int64
}

// Snapshot é a foto dos contadores + tamanho das estruturas internas,
// exposta pela superfície administrativa.
type Snapshot struct {
	TotalRequests    int64          `json:"totalRequests"`
	BlockedRequests  int64          `json:"blockedRequests"`
	FailedLogins     int64          `json:"failedLogins"`
	SuccessfulLogins int64          `json:"successfulLogins"`
	CacheSizes       map[string]int `json:"cacheSizes"`
}

func (c *Counters) Snapshot(sizes map[string]int) Snapshot {
	return Snapshot{
		TotalRequests:    c.Total.Load(),
		BlockedRequests:  c.Denied.Load(),
		FailedLogins:     c.FailedLogins.Load(),
		SuccessfulLogins: c.SuccessfulLogins.Load(),
		CacheSizes:       sizes,
	}
}
