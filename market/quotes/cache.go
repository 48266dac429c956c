package quotes

import (
	"context"
	"sync"
	"time"
)

// Cache holds recently fetched prices.
type Cache interface {
	Get(ctx context.Context, key string) (float64, bool)
	Set(ctx context.Context, key string, value float64, ttl time.Duration) error
}

type memoryItem struct {
	value    float64
	expireAt time.Time
}

// MemoryCache is a process-local TTL cache.
type MemoryCache struct {
	mu   sync.Mutex
	data map[string]memoryItem
	now  func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]memoryItem),
		now:  time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.data[key]
	if !ok {
		return 0, false
	}
	if m.now().After(item.expireAt) {
		delete(m.data, key)
		return 0, false
	}
	return item.value, true
}

func (m *MemoryCache) Set(_ context.Context, key string, value float64, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = memoryItem{value: value, expireAt: m.now().Add(ttl)}
	return nil
}

// Flush drops every entry so the next refresh goes to the network.
func (m *MemoryCache) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]memoryItem)
}
