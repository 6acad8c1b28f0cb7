package notifier

import (
	"github.com/mauv0809/courtside/internal/event"
	"github.com/mauv0809/courtside/internal/slots"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For freshly booked matches
	SendBookingConfirmation(match *event.Match, slot slots.TimeSlot, players []event.Player, dryRun bool) error
	// For cancelled bookings
	SendBookingCancelled(match *event.Match, players []event.Player, dryRun bool) error
	// For completed matches
	SendResultRecorded(match *event.Match, players []event.Player, dryRun bool) error
	// For the admin schedule digest
	SendScheduleDigest(dates []string, free []slots.TimeSlot, dryRun bool) error
}
