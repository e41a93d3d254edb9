package kv

import (
	"context"
	"sync"
)

// Memory is an in-process Backend. Values live as long as the process.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]string // namespace -> key -> value
}

func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]map[string]string),
	}
}

func (m *Memory) Get(_ context.Context, namespace, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.data[namespace] == nil {
		return "", false, nil
	}
	v, ok := m.data[namespace][key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, namespace, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data[namespace] == nil {
		m.data[namespace] = make(map[string]string)
	}
	m.data[namespace][key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data[namespace] == nil {
		return nil
	}
	delete(m.data[namespace], key)
	if len(m.data[namespace]) == 0 {
		delete(m.data, namespace)
	}
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }
