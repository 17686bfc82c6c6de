package metrics

import "sync"

var _ Metrics = (*MockMetrics)(nil)

// MockMetrics is a mock implementation of the Metrics interface for testing.
// It simply counts calls and is safe for concurrent use.
type MockMetrics struct {
	mu sync.Mutex

	QueueJoinsCalls       int
	QueueLeavesCalls      int
	IdleEvictionsCalls    int
	QueueSizeValues       []int
	MatchesFormedCalls    int
	MatchesCancelledCalls int
	MatchesReportedCalls  int
	CheckInsCalls         int
	SlackNotifSentCalls   int
	SlackNotifFailedCalls int
	StartupTimeValues     []float64
}

// NewMock creates a new mock instance.
func NewMock() *MockMetrics {
	return &MockMetrics{}
}

func (m *MockMetrics) IncQueueJoins() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueueJoinsCalls++
}

func (m *MockMetrics) IncQueueLeaves() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueueLeavesCalls++
}

func (m *MockMetrics) IncIdleEvictions() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IdleEvictionsCalls++
}

func (m *MockMetrics) SetQueueSize(size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueueSizeValues = append(m.QueueSizeValues, size)
}

func (m *MockMetrics) IncMatchesFormed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MatchesFormedCalls++
}

func (m *MockMetrics) IncMatchesCancelled() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MatchesCancelledCalls++
}

func (m *MockMetrics) IncMatchesReported() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MatchesReportedCalls++
}

func (m *MockMetrics) IncCheckIns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckInsCalls++
}

func (m *MockMetrics) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SlackNotifSentCalls++
}

func (m *MockMetrics) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SlackNotifFailedCalls++
}

func (m *MockMetrics) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartupTimeValues = append(m.StartupTimeValues, duration)
}
