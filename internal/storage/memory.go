package storage

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process KV. It backs the "memory" storage backend and tests.
type Memory struct {
	mu       sync.Mutex
	data     map[string][]byte
	counters map[string]counter
	now      func() time.Time
}

type counter struct {
	value     int64
	expiresAt time.Time
}

func NewMemory() *Memory {
	return &Memory{
		data:     make(map[string][]byte),
		counters: make(map[string]counter),
		now:      time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

// CheckRateLimit counts one hit for key and reports whether the limit is now exceeded.
// The window starts on the first hit.
func (m *Memory) CheckRateLimit(_ context.Context, key string, limit int64, window time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	c, ok := m.counters[key]
	if !ok || !now.Before(c.expiresAt) {
		c = counter{expiresAt: now.Add(window)}
	}
	c.value++
	m.counters[key] = c

	return c.value > limit, nil
}
