package metrics

import "sync"

// Mock is a no-op Metrics implementation recording call counts for tests.
type Mock struct {
	mu sync.Mutex

	BookingsConfirmedCalls int
	BookingConflictsCalls  int
	BookingsCancelledCalls int
	ResultsRecordedCalls   int
	OverrideToggleCalls    map[string]int
	ReconcileObservations  []float64
	SlackSentCalls         int
	SlackFailedCalls       int
}

var _ Metrics = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		OverrideToggleCalls: make(map[string]int),
	}
}

func (m *Mock) IncBookingsConfirmed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BookingsConfirmedCalls++
}

func (m *Mock) IncBookingConflicts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BookingConflictsCalls++
}

func (m *Mock) IncBookingsCancelled() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BookingsCancelledCalls++
}

func (m *Mock) IncResultsRecorded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResultsRecordedCalls++
}

func (m *Mock) IncOverrideToggles(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OverrideToggleCalls[kind]++
}

func (m *Mock) ObserveReconcileDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReconcileObservations = append(m.ReconcileObservations, duration)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SlackSentCalls++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SlackFailedCalls++
}

func (m *Mock) SetStartupTime(duration float64) {}
