package bans

import (
	"sync"
	"time"
)

var _ BanStore = (*MockStore)(nil)

// MockStore is a mock implementation of the BanStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	BanFunc      func(playerID string, duration time.Duration) error
	UnbanFunc    func(playerID string) error
	IsBannedFunc func(playerID string) bool
	ListFunc     func() []Ban

	// Call records
	BanCalls []struct {
		PlayerID string
		Duration time.Duration
	}
	UnbanCalls    []string
	IsBannedCalls []string
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) Ban(playerID string, duration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BanCalls = append(m.BanCalls, struct {
		PlayerID string
		Duration time.Duration
	}{playerID, duration})
	if m.BanFunc != nil {
		return m.BanFunc(playerID, duration)
	}
	return nil
}

func (m *MockStore) Unban(playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UnbanCalls = append(m.UnbanCalls, playerID)
	if m.UnbanFunc != nil {
		return m.UnbanFunc(playerID)
	}
	return nil
}

func (m *MockStore) IsBanned(playerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IsBannedCalls = append(m.IsBannedCalls, playerID)
	if m.IsBannedFunc != nil {
		return m.IsBannedFunc(playerID)
	}
	return false
}

func (m *MockStore) List() []Ban {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListFunc != nil {
		return m.ListFunc()
	}
	return nil
}
