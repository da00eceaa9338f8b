package tursokv

import (
	"context"
	"strings"
	"sync"
	"time"
)

type entry struct {
	value  string
	expire time.Time
}

// Memory implements Driver with thread-safe in-memory storage.
type Memory struct {
	keys keyspace

	mu       sync.RWMutex
	data     map[string]entry
	disposed bool
}

// NewMemory creates an in-memory Driver scoped to base.
func NewMemory(base string) *Memory {
	return &Memory{keys: keyspace{base: base}, data: make(map[string]entry)}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Flags() Flags { return Flags{TTL: true} }

func (m *Memory) SetItem(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return ErrDisposed
	}
	m.data[m.keys.physical(key)] = entry{value: value, expire: expiry(ttl)}
	return nil
}

func (m *Memory) GetItem(ctx context.Context, key string) (string, bool, error) {
	pk := m.keys.physical(key)

	// Fast path: optimistic read with RLock.
	m.mu.RLock()
	e, ok := m.data[pk]
	disposed := m.disposed
	m.mu.RUnlock()

	if disposed {
		return "", false, ErrDisposed
	}
	if !ok {
		return "", false, nil
	}
	if !e.expired() {
		return e.value, true, nil
	}

	// Slow path: entry expired, need write lock to delete.
	m.mu.Lock()
	defer m.mu.Unlock()

	// Re-check after acquiring write lock (double-check pattern).
	if m.disposed {
		return "", false, ErrDisposed
	}
	e, ok = m.data[pk]
	if !ok {
		return "", false, nil
	}
	if e.expired() {
		delete(m.data, pk)
		return "", false, nil
	}
	return e.value, true, nil
}

func (m *Memory) HasItem(ctx context.Context, key string) (bool, error) {
	_, ok, err := m.GetItem(ctx, key)
	return ok, err
}

func (m *Memory) RemoveItem(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return ErrDisposed
	}
	delete(m.data, m.keys.physical(key))
	return nil
}

// GetKeys returns live keys under subPrefix.
func (m *Memory) GetKeys(ctx context.Context, subPrefix string) ([]string, error) {
	prefix := m.keys.prefix(subPrefix)

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.disposed {
		return nil, ErrDisposed
	}

	result := make([]string, 0)
	for pk, e := range m.data {
		if !strings.HasPrefix(pk, prefix) || e.expired() {
			continue
		}
		if key, ok := m.keys.logical(pk); ok {
			result = append(result, key)
		}
	}
	return result, nil
}

// Clear removes all keys under subPrefix.
func (m *Memory) Clear(ctx context.Context, subPrefix string) error {
	prefix := m.keys.prefix(subPrefix)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return ErrDisposed
	}

	for pk := range m.data {
		if strings.HasPrefix(pk, prefix) {
			delete(m.data, pk)
		}
	}
	return nil
}

// Dispose drops all data held by this driver. Later calls fail with
// ErrDisposed.
func (m *Memory) Dispose() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disposed = true
	m.data = nil
	return nil
}

func (e entry) expired() bool {
	if e.expire.IsZero() {
		return false
	}
	return time.Now().After(e.expire)
}

func expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}

// type check
var _ Driver = (*Memory)(nil)
