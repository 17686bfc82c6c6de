package engine

import (
	"sync"

	"github.com/tenman-bot/tenman/internal/bans"
	"github.com/tenman-bot/tenman/internal/match"
	"github.com/tenman-bot/tenman/internal/player"
	"github.com/tenman-bot/tenman/internal/rank"
)

var _ Engine = (*MockEngine)(nil)

// MockEngine is a mock implementation of the Engine interface for testing.
// It is safe for concurrent use.
type MockEngine struct {
	mu sync.Mutex

	// Spies for method calls
	JoinFunc         func(userID string) (int, error)
	LeaveFunc        func(userID string) bool
	QueueStatusFunc  func() []player.Player
	CheckInFunc      func(userID string) error
	ReportFunc       func(userID string, winner match.Team) error
	CurrentMatchFunc func() (match.View, bool)
	TimeoutFunc      func(actorID, targetID string, days, hours, minutes int) error
	UntimeoutFunc    func(actorID, targetID string) error
	BansFunc         func() []bans.Ban
	ForceMatchFunc   func(actorID, channelID string) error
	LeaderboardFunc  func(limit int) []rank.PlayerStats
	ResetStatsFunc   func(actorID string) error
	ReconcileFunc    func() error

	// Call records
	JoinCalls    []string
	LeaveCalls   []string
	CheckInCalls []string
	ReportCalls  []struct {
		UserID string
		Winner match.Team
	}
	TimeoutCalls []struct {
		ActorID, TargetID    string
		Days, Hours, Minutes int
	}
	UntimeoutCalls []struct {
		ActorID, TargetID string
	}
	ForceMatchCalls []struct {
		ActorID, ChannelID string
	}
	ResetStatsCalls []string
	ReconcileCalls  int
}

// NewMock creates a new mock instance.
func NewMock() *MockEngine {
	return &MockEngine{}
}

func (m *MockEngine) Join(userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.JoinCalls = append(m.JoinCalls, userID)
	if m.JoinFunc != nil {
		return m.JoinFunc(userID)
	}
	return 1, nil
}

func (m *MockEngine) Leave(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LeaveCalls = append(m.LeaveCalls, userID)
	if m.LeaveFunc != nil {
		return m.LeaveFunc(userID)
	}
	return true
}

func (m *MockEngine) QueueStatus() []player.Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.QueueStatusFunc != nil {
		return m.QueueStatusFunc()
	}
	return nil
}

func (m *MockEngine) CheckIn(userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckInCalls = append(m.CheckInCalls, userID)
	if m.CheckInFunc != nil {
		return m.CheckInFunc(userID)
	}
	return nil
}

func (m *MockEngine) Report(userID string, winner match.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReportCalls = append(m.ReportCalls, struct {
		UserID string
		Winner match.Team
	}{userID, winner})
	if m.ReportFunc != nil {
		return m.ReportFunc(userID, winner)
	}
	return nil
}

func (m *MockEngine) CurrentMatch() (match.View, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CurrentMatchFunc != nil {
		return m.CurrentMatchFunc()
	}
	return match.View{}, false
}

func (m *MockEngine) Timeout(actorID, targetID string, days, hours, minutes int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TimeoutCalls = append(m.TimeoutCalls, struct {
		ActorID, TargetID    string
		Days, Hours, Minutes int
	}{actorID, targetID, days, hours, minutes})
	if m.TimeoutFunc != nil {
		return m.TimeoutFunc(actorID, targetID, days, hours, minutes)
	}
	return nil
}

func (m *MockEngine) Untimeout(actorID, targetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UntimeoutCalls = append(m.UntimeoutCalls, struct {
		ActorID, TargetID string
	}{actorID, targetID})
	if m.UntimeoutFunc != nil {
		return m.UntimeoutFunc(actorID, targetID)
	}
	return nil
}

func (m *MockEngine) Bans() []bans.Ban {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BansFunc != nil {
		return m.BansFunc()
	}
	return nil
}

func (m *MockEngine) ForceMatch(actorID, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ForceMatchCalls = append(m.ForceMatchCalls, struct {
		ActorID, ChannelID string
	}{actorID, channelID})
	if m.ForceMatchFunc != nil {
		return m.ForceMatchFunc(actorID, channelID)
	}
	return nil
}

func (m *MockEngine) Leaderboard(limit int) []rank.PlayerStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc(limit)
	}
	return nil
}

func (m *MockEngine) ResetStats(actorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResetStatsCalls = append(m.ResetStatsCalls, actorID)
	if m.ResetStatsFunc != nil {
		return m.ResetStatsFunc(actorID)
	}
	return nil
}

func (m *MockEngine) Reconcile() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReconcileCalls++
	if m.ReconcileFunc != nil {
		return m.ReconcileFunc()
	}
	return nil
}
