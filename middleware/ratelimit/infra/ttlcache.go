package infra

import (
	"container/list"
	"sync"
	"time"
)

// TTLCache é um cache chave→valor limitado em tamanho, com expiração por TTL
// e eviction da entrada mais antiga quando cheio.
//
// A ordem de eviction é "primeira inserção de todos os tempos": Set em chave
// existente atualiza valor e relógio de TTL, mas a posição na fila de
// eviction não muda. A ordem é mantida por uma lista duplamente ligada
// intrusiva + índice por hash, sem depender de ordem de iteração de map.
//
// Expiração é preguiçosa no Get; Cleanup faz a varredura O(n) e deve ser
// chamado periodicamente (ver Sweeper), não a cada operação.
type TTLCache[V any] struct {
	mu    sync.Mutex
	max   int
	ttl   time.Duration
	items map[string]*list.Element
	order *list.List // Front = mais antigo
}

type cacheEntry[V any] struct {
	key        string
	value      V
	insertedAt time.Time
}

func NewTTLCache[V any](max int, ttl time.Duration) *TTLCache[V] {
	if max < 1 {
		max = 1
	}
	return &TTLCache[V]{
		max:   max,
		ttl:   ttl,
		items: make(map[string]*list.Element),
		order: list.New(),
	}
}

// Set insere ou sobrescreve. Chave nova com cache cheio evita a entrada mais
// antiga antes de inserir.
func (c *TTLCache[V]) Set(key string, value V) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		ent := el.Value.(*cacheEntry[V])
		ent.value = value
		ent.insertedAt = now
		return
	}

	if len(c.items) >= c.max {
		if oldest := c.order.Front(); oldest != nil {
			c.removeLocked(oldest)
		}
	}

	el := c.order.PushBack(&cacheEntry[V]{key: key, value: value, insertedAt: now})
	c.items[key] = el
}

// Get retorna o valor, a menos que a idade exceda o TTL — nesse caso remove a
// entrada e responde como ausente.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	var zero V

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return zero, false
	}
	ent := el.Value.(*cacheEntry[V])
	if c.ttl > 0 && time.Since(ent.insertedAt) > c.ttl {
		c.removeLocked(el)
		return zero, false
	}
	return ent.value, true
}

// Peek retorna o valor cru, ignorando TTL e sem remover nada. Serve para
// quem precisa enxergar histórico expirado-mas-não-varrido (ex: contagem de
// reincidência no BlockList).
func (c *TTLCache[V]) Peek(key string) (V, bool) {
	var zero V

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return zero, false
	}
	return el.Value.(*cacheEntry[V]).value, true
}

// Delete remove incondicionalmente.
func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeLocked(el)
	}
}

func (c *TTLCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Cleanup remove todas as entradas mais velhas que o TTL.
func (c *TTLCache[V]) Cleanup() {
	if c.ttl <= 0 {
		return
	}
	cutoff := time.Now().Add(-c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if el.Value.(*cacheEntry[V]).insertedAt.Before(cutoff) {
			c.removeLocked(el)
		}
		el = next
	}
}

func (c *TTLCache[V]) removeLocked(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*cacheEntry[V]).key)
}
