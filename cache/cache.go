// Package cache stores upstream API responses for a bounded time.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Store is a time-boxed byte cache shared by all page renders.
type Store interface {
	// Get returns ErrCacheMiss when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

type entry struct {
	value   []byte
	expires time.Time
}

// Memory is a process-local Store.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
	maxSize int
}

// NewMemory creates a Memory store holding at most maxSize entries; 0 means
// 4096.
func NewMemory(maxSize int) *Memory {
	if maxSize <= 0 {
		maxSize = 4096
	}
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
		maxSize: maxSize,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrCacheMiss
	}
	if !m.now().Before(e.expires) {
		m.mu.Lock()
		if cur, ok := m.entries[key]; ok && !m.now().Before(cur.expires) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, ErrCacheMiss
	}
	return e.value, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" || ttl <= 0 {
		return fmt.Errorf("%w: key and positive ttl required", ErrInvalidInput)
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.maxSize {
		m.evictLocked(now)
	}
	m.entries[key] = entry{value: append([]byte(nil), value...), expires: now.Add(ttl)}
	return nil
}

// evictLocked drops expired entries, then the entry closest to expiry if the
// store is still full.
func (m *Memory) evictLocked(now time.Time) {
	var (
		oldestKey string
		oldest    time.Time
	)
	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
			continue
		}
		if oldestKey == "" || e.expires.Before(oldest) {
			oldestKey, oldest = k, e.expires
		}
	}
	if len(m.entries) >= m.maxSize && oldestKey != "" {
		delete(m.entries, oldestKey)
	}
}

// Len reports the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.entries = make(map[string]entry)
	m.mu.Unlock()
	return nil
}
