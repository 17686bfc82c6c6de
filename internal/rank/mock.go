package rank

import (
	"sync"

	"github.com/tenman-bot/tenman/internal/player"
)

var _ RankStore = (*MockStore)(nil)

// MockStore is a mock implementation of the RankStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	RecordFunc      func(winners, losers []player.Player) error
	ScoreFunc       func(playerID string) int
	ScoresFunc      func(playerIDs []string) map[string]int
	LeaderboardFunc func(limit int) []PlayerStats
	ResetAllFunc    func() error

	// Call records
	RecordCalls []struct {
		Winners []player.Player
		Losers  []player.Player
	}
	ResetAllCalls int
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) Record(winners, losers []player.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordCalls = append(m.RecordCalls, struct {
		Winners []player.Player
		Losers  []player.Player
	}{winners, losers})
	if m.RecordFunc != nil {
		return m.RecordFunc(winners, losers)
	}
	return nil
}

func (m *MockStore) Score(playerID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ScoreFunc != nil {
		return m.ScoreFunc(playerID)
	}
	return 0
}

func (m *MockStore) Scores(playerIDs []string) map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ScoresFunc != nil {
		return m.ScoresFunc(playerIDs)
	}
	scores := make(map[string]int, len(playerIDs))
	for _, id := range playerIDs {
		scores[id] = 0
	}
	return scores
}

func (m *MockStore) Leaderboard(limit int) []PlayerStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc(limit)
	}
	return nil
}

func (m *MockStore) ResetAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResetAllCalls++
	if m.ResetAllFunc != nil {
		return m.ResetAllFunc()
	}
	return nil
}
