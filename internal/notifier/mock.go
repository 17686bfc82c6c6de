package notifier

import (
	"sync"
	"time"

	"github.com/tenman-bot/tenman/internal/player"
	"github.com/tenman-bot/tenman/internal/rank"
)

var _ Notifier = (*MockNotifier)(nil)

// MockNotifier is a mock implementation of the Notifier interface for
// testing. It is safe for concurrent use. Stubbed behavior runs outside the
// mock's lock, so a stub may call back into the component under test.
type MockNotifier struct {
	mu sync.Mutex

	// Spies for method calls
	PublishQueueStatusFunc   func(players []player.Player) (MessageRef, error)
	UpdateQueueStatusFunc    func(ref MessageRef, players []player.Player) error
	DeleteMessageFunc        func(ref MessageRef) error
	SendDirectMessageFunc    func(userID, text string) error
	SendCountdownFunc        func(userID string, remaining time.Duration) (MessageRef, error)
	UpdateCountdownFunc      func(ref MessageRef, remaining time.Duration) error
	CreateMatchChannelFunc   func(name string, members []player.Player) (string, error)
	ArchiveMatchChannelFunc  func(channelID string) error
	PublishTeamsFunc         func(channelID string, teamA, teamB []player.Player) error
	PublishCheckInStatusFunc func(channelID string, checkedIn, waiting []player.Player) error
	PublishMatchReadyFunc    func(channelID string) error
	PublishCancellationFunc  func(channelID string) error
	PublishResultFunc        func(channelID string, winners, losers []player.Player) error
	ResolvePlayerFunc        func(userID string) (player.Player, error)
	ChannelMembersFunc       func(channelID string) ([]player.Player, error)

	// Call records
	PublishQueueStatusCalls [][]player.Player
	UpdateQueueStatusCalls  [][]player.Player
	DeleteMessageCalls      []MessageRef
	DirectMessageCalls      []struct {
		UserID string
		Text   string
	}
	SendCountdownCalls []struct {
		UserID    string
		Remaining time.Duration
	}
	UpdateCountdownCalls []struct {
		Ref       MessageRef
		Remaining time.Duration
	}
	CreateMatchChannelCalls [][]player.Player
	ArchiveChannelCalls     []string
	PublishTeamsCalls       []struct {
		ChannelID    string
		TeamA, TeamB []player.Player
	}
	CheckInStatusCalls []struct {
		ChannelID          string
		CheckedIn, Waiting []player.Player
	}
	MatchReadyCalls   []string
	CancellationCalls []string
	PublishResultCalls []struct {
		ChannelID       string
		Winners, Losers []player.Player
	}
}

// NewMock creates a new mock instance.
func NewMock() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) PublishQueueStatus(players []player.Player) (MessageRef, error) {
	m.mu.Lock()
	m.PublishQueueStatusCalls = append(m.PublishQueueStatusCalls, players)
	fn := m.PublishQueueStatusFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(players)
	}
	return MessageRef{Channel: "C-mock", Timestamp: "1.0"}, nil
}

func (m *MockNotifier) UpdateQueueStatus(ref MessageRef, players []player.Player) error {
	m.mu.Lock()
	m.UpdateQueueStatusCalls = append(m.UpdateQueueStatusCalls, players)
	fn := m.UpdateQueueStatusFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ref, players)
	}
	return nil
}

func (m *MockNotifier) DeleteMessage(ref MessageRef) error {
	m.mu.Lock()
	m.DeleteMessageCalls = append(m.DeleteMessageCalls, ref)
	fn := m.DeleteMessageFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ref)
	}
	return nil
}

func (m *MockNotifier) SendDirectMessage(userID, text string) error {
	m.mu.Lock()
	m.DirectMessageCalls = append(m.DirectMessageCalls, struct {
		UserID string
		Text   string
	}{userID, text})
	fn := m.SendDirectMessageFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(userID, text)
	}
	return nil
}

func (m *MockNotifier) SendCountdown(userID string, remaining time.Duration) (MessageRef, error) {
	m.mu.Lock()
	m.SendCountdownCalls = append(m.SendCountdownCalls, struct {
		UserID    string
		Remaining time.Duration
	}{userID, remaining})
	fn := m.SendCountdownFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(userID, remaining)
	}
	return MessageRef{Channel: "D-" + userID, Timestamp: "1.0"}, nil
}

func (m *MockNotifier) UpdateCountdown(ref MessageRef, remaining time.Duration) error {
	m.mu.Lock()
	m.UpdateCountdownCalls = append(m.UpdateCountdownCalls, struct {
		Ref       MessageRef
		Remaining time.Duration
	}{ref, remaining})
	fn := m.UpdateCountdownFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ref, remaining)
	}
	return nil
}

func (m *MockNotifier) CreateMatchChannel(name string, members []player.Player) (string, error) {
	m.mu.Lock()
	m.CreateMatchChannelCalls = append(m.CreateMatchChannelCalls, members)
	fn := m.CreateMatchChannelFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(name, members)
	}
	return "C-match", nil
}

func (m *MockNotifier) ArchiveMatchChannel(channelID string) error {
	m.mu.Lock()
	m.ArchiveChannelCalls = append(m.ArchiveChannelCalls, channelID)
	fn := m.ArchiveMatchChannelFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(channelID)
	}
	return nil
}

func (m *MockNotifier) PublishTeams(channelID string, teamA, teamB []player.Player) error {
	m.mu.Lock()
	m.PublishTeamsCalls = append(m.PublishTeamsCalls, struct {
		ChannelID    string
		TeamA, TeamB []player.Player
	}{channelID, teamA, teamB})
	fn := m.PublishTeamsFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(channelID, teamA, teamB)
	}
	return nil
}

func (m *MockNotifier) PublishCheckInStatus(channelID string, checkedIn, waiting []player.Player) error {
	m.mu.Lock()
	m.CheckInStatusCalls = append(m.CheckInStatusCalls, struct {
		ChannelID          string
		CheckedIn, Waiting []player.Player
	}{channelID, checkedIn, waiting})
	fn := m.PublishCheckInStatusFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(channelID, checkedIn, waiting)
	}
	return nil
}

func (m *MockNotifier) PublishMatchReady(channelID string) error {
	m.mu.Lock()
	m.MatchReadyCalls = append(m.MatchReadyCalls, channelID)
	fn := m.PublishMatchReadyFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(channelID)
	}
	return nil
}

func (m *MockNotifier) PublishCancellation(channelID string) error {
	m.mu.Lock()
	m.CancellationCalls = append(m.CancellationCalls, channelID)
	fn := m.PublishCancellationFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(channelID)
	}
	return nil
}

func (m *MockNotifier) PublishResult(channelID string, winners, losers []player.Player) error {
	m.mu.Lock()
	m.PublishResultCalls = append(m.PublishResultCalls, struct {
		ChannelID       string
		Winners, Losers []player.Player
	}{channelID, winners, losers})
	fn := m.PublishResultFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(channelID, winners, losers)
	}
	return nil
}

func (m *MockNotifier) ResolvePlayer(userID string) (player.Player, error) {
	m.mu.Lock()
	fn := m.ResolvePlayerFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(userID)
	}
	return player.Player{ID: userID, Name: userID}, nil
}

func (m *MockNotifier) ChannelMembers(channelID string) ([]player.Player, error) {
	m.mu.Lock()
	fn := m.ChannelMembersFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(channelID)
	}
	return nil, nil
}

func (m *MockNotifier) FormatLeaderboardResponse(stats []rank.PlayerStats) (any, error) {
	return stats, nil
}

func (m *MockNotifier) FormatQueueResponse(players []player.Player) (any, error) {
	return players, nil
}
