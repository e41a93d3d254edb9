package mocks

import (
	"context"
	"sync"
)

// MockBackend is an in-memory kv.Backend that records calls and can be told to fail.
type MockBackend struct {
	mu   sync.RWMutex
	data map[string]map[string]string // namespace -> key -> value

	// For tracking calls in tests
	GetCalls    []KeyCall
	SetCalls    []SetCall
	DeleteCalls []KeyCall

	GetErr    error
	SetErr    error
	PingErr   error
	DeleteErr map[string]error // key -> error
}

// KeyCall records parameters passed to Get or Delete
type KeyCall struct {
	Namespace string
	Key       string
}

// SetCall records parameters passed to Set
type SetCall struct {
	Namespace string
	Key       string
	Value     string
}

func NewMockBackend() *MockBackend {
	return &MockBackend{
		data:      make(map[string]map[string]string),
		DeleteErr: make(map[string]error),
	}
}

// Seed stores a value without recording a call.
func (m *MockBackend) Seed(namespace, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data[namespace] == nil {
		m.data[namespace] = make(map[string]string)
	}
	m.data[namespace][key] = value
}

// Value reads a stored value without recording a call.
func (m *MockBackend) Value(namespace, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[namespace][key]
	return v, ok
}

func (m *MockBackend) Get(_ context.Context, namespace, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls = append(m.GetCalls, KeyCall{Namespace: namespace, Key: key})
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	v, ok := m.data[namespace][key]
	return v, ok, nil
}

func (m *MockBackend) Set(_ context.Context, namespace, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetCalls = append(m.SetCalls, SetCall{Namespace: namespace, Key: key, Value: value})
	if m.SetErr != nil {
		return m.SetErr
	}
	if m.data[namespace] == nil {
		m.data[namespace] = make(map[string]string)
	}
	m.data[namespace][key] = value
	return nil
}

func (m *MockBackend) Delete(_ context.Context, namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, KeyCall{Namespace: namespace, Key: key})
	if err := m.DeleteErr[key]; err != nil {
		return err
	}
	delete(m.data[namespace], key)
	return nil
}

func (m *MockBackend) Ping(context.Context) error {
	return m.PingErr
}

// DeletedKeys lists the keys passed to Delete, in call order.
func (m *MockBackend) DeletedKeys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, len(m.DeleteCalls))
	for i, c := range m.DeleteCalls {
		keys[i] = c.Key
	}
	return keys
}
