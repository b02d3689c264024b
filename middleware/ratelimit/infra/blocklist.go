package infra

import (
	"sync"
	"time"

	"middleware-loja/middleware/ratelimit/domain"
)

// BlockList é a deny-list explícita por endereço/identidade.
//
// Um registro é ativo sse now < Until; leitura de registro inativo o remove
// (GC preguiçoso) e responde "não bloqueado". Occurrences carrega histórico
// de reincidência, inclusive de registros expirados que a varredura ainda
// não removeu.
type BlockList struct {
	mu      sync.Mutex
	records *TTLCache[domain.BlockRecord]
}

// NewBlockList dimensiona o cache de bloqueios (padrão do core: 500 / 30min).
func NewBlockList(max int, ttl time.Duration) *BlockList {
	return &BlockList{records: NewTTLCache[domain.BlockRecord](max, ttl)}
}

// Block implementa domain.BlockRegistry. d == 0 é no-op: políticas como as
// do carrinho declaram explicitamente que nunca geram bloqueio.
func (b *BlockList) Block(key string, d time.Duration, reason domain.Reason) {
	if d <= 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	occurrences := 1
	if prev, ok := b.records.Peek(key); ok {
		occurrences = prev.Occurrences + 1
	}
	b.records.Set(key, domain.BlockRecord{
		Until:       time.Now().Add(d),
		Reason:      reason,
		Occurrences: occurrences,
	})
}

// IsBlocked implementa domain.BlockRegistry.
func (b *BlockList) IsBlocked(key string) (domain.BlockRecord, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.records.Get(key)
	if !ok {
		return domain.BlockRecord{}, false
	}
	if !time.Now().Before(rec.Until) {
		b.records.Delete(key)
		return domain.BlockRecord{}, false
	}
	return rec, true
}

// Unblock remove manualmente um bloqueio (override administrativo).
// Retorna se havia registro.
func (b *BlockList) Unblock(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.records.Peek(key)
	if ok {
		b.records.Delete(key)
	}
	return ok
}

func (b *BlockList) Len() int { return b.records.Len() }
func (b *BlockList) Cleanup() { b.records.Cleanup() }
