package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventSlotBooked       EventType = "slot-booked"
	EventBookingCancelled EventType = "booking-cancelled"
	EventResultEntered    EventType = "result-entered"
	EventResultDeleted    EventType = "result-deleted"
	EventOverrideToggled  EventType = "override-toggled"
)

// BookingEvent is the payload published for booking lifecycle events.
type BookingEvent struct {
	MatchID string `msgpack:"match_id"`
	SlotID  string `msgpack:"slot_id,omitempty"`
	Score1  *int   `msgpack:"score1,omitempty"`
	Score2  *int   `msgpack:"score2,omitempty"`
}

// OverrideEvent is the payload published when a player toggles an override.
type OverrideEvent struct {
	PlayerID string `msgpack:"player_id"`
	Kind     string `msgpack:"kind"` // global | date | slot
	Key      string `msgpack:"key"`
	Value    bool   `msgpack:"value"`
}
