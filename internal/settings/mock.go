package settings

import "sync"

var _ Store = (*MockStore)(nil)

// MockStore is an in-memory Store implementation for testing. It is safe
// for concurrent use.
type MockStore struct {
	mu     sync.Mutex
	values map[string]string

	// Spies for method calls
	SetFunc    func(key, value string) error
	DeleteFunc func(key string) error

	// Call records
	SetCalls    []string
	DeleteCalls []string
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{values: make(map[string]string)}
}

func (m *MockStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	return value, ok
}

func (m *MockStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls = append(m.SetCalls, key)
	if m.SetFunc != nil {
		return m.SetFunc(key, value)
	}
	m.values[key] = value
	return nil
}

func (m *MockStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls = append(m.DeleteCalls, key)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(key)
	}
	delete(m.values, key)
	return nil
}

// Seed stores a value without recording a call.
func (m *MockStore) Seed(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}
