package notifier

import (
	"sync"

	"github.com/mauv0809/courtside/internal/event"
	"github.com/mauv0809/courtside/internal/slots"
)

// Mock is a mock implementation of the Notifier interface for testing.
type Mock struct {
	mu sync.Mutex

	SendBookingConfirmationFunc func(match *event.Match, slot slots.TimeSlot, players []event.Player, dryRun bool) error
	SendBookingCancelledFunc    func(match *event.Match, players []event.Player, dryRun bool) error
	SendResultRecordedFunc      func(match *event.Match, players []event.Player, dryRun bool) error
	SendScheduleDigestFunc      func(dates []string, free []slots.TimeSlot, dryRun bool) error

	SendBookingConfirmationCalls []struct {
		Match *event.Match
		Slot  slots.TimeSlot
	}
	SendBookingCancelledCalls []*event.Match
	SendResultRecordedCalls   []*event.Match
	SendScheduleDigestCalls   [][]string
}

var _ Notifier = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) SendBookingConfirmation(match *event.Match, slot slots.TimeSlot, players []event.Player, dryRun bool) error {
	m.mu.Lock()
	m.SendBookingConfirmationCalls = append(m.SendBookingConfirmationCalls, struct {
		Match *event.Match
		Slot  slots.TimeSlot
	}{match, slot})
	m.mu.Unlock()
	if m.SendBookingConfirmationFunc != nil {
		return m.SendBookingConfirmationFunc(match, slot, players, dryRun)
	}
	return nil
}

func (m *Mock) SendBookingCancelled(match *event.Match, players []event.Player, dryRun bool) error {
	m.mu.Lock()
	m.SendBookingCancelledCalls = append(m.SendBookingCancelledCalls, match)
	m.mu.Unlock()
	if m.SendBookingCancelledFunc != nil {
		return m.SendBookingCancelledFunc(match, players, dryRun)
	}
	return nil
}

func (m *Mock) SendResultRecorded(match *event.Match, players []event.Player, dryRun bool) error {
	m.mu.Lock()
	m.SendResultRecordedCalls = append(m.SendResultRecordedCalls, match)
	m.mu.Unlock()
	if m.SendResultRecordedFunc != nil {
		return m.SendResultRecordedFunc(match, players, dryRun)
	}
	return nil
}

func (m *Mock) SendScheduleDigest(dates []string, free []slots.TimeSlot, dryRun bool) error {
	m.mu.Lock()
	m.SendScheduleDigestCalls = append(m.SendScheduleDigestCalls, dates)
	m.mu.Unlock()
	if m.SendScheduleDigestFunc != nil {
		return m.SendScheduleDigestFunc(dates, free, dryRun)
	}
	return nil
}
