package infra

import (
	"context"
	"sync"

	"middleware-loja/middleware/ratelimit/domain"
)

type DecisionCounters struct {
	Allowed int64
	Denied  int64
}

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes e desenvolvimento.
//
// Não faz expiração e não é indicada para produção.
type MemoryStatsStore struct {
	mu       sync.Mutex
	total    DecisionCounters
	byAction map[domain.Action]DecisionCounters
	byReason map[domain.Reason]int64
	byKey    map[string]DecisionCounters

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byAction: make(map[domain.Action]DecisionCounters),
		byReason: make(map[domain.Reason]int64),
		byKey:    make(map[string]DecisionCounters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.byAction[ev.Action]
	if ev.Allowed {
		s.total.Allowed++
		c.Allowed++
	} else {
		s.total.Denied++
		c.Denied++
		if ev.Reason != "" {
			s.byReason[ev.Reason]++
		}
	}
	s.byAction[ev.Action] = c

	if s.trackKeys && ev.Key != "" {
		k := s.byKey[ev.Key]
		if ev.Allowed {
			k.Allowed++
		} else {
			k.Denied++
		}
		s.byKey[ev.Key] = k
	}
	return nil
}

func (s *MemoryStatsStore) Total() DecisionCounters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByAction() map[domain.Action]DecisionCounters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[domain.Action]DecisionCounters, len(s.byAction))
	for k, v := range s.byAction {
		out[k] = v
	}
	return out
}

func (s *MemoryStatsStore) ByReason() map[domain.Reason]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[domain.Reason]int64, len(s.byReason))
	for k, v := range s.byReason {
		out[k] = v
	}
	return out
}

func (s *MemoryStatsStore) ByKey() map[string]DecisionCounters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]DecisionCounters, len(s.byKey))
	for k, v := range s.byKey {
		out[k] = v
	}
	return out
}
