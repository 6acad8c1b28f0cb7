package reconcile

import "github.com/mauv0809/courtside/internal/event"

// MatchSource is the slice of the event store the reconciler reads.
type MatchSource interface {
	GetRawSlots() ([]event.RawSlotRecord, error)
	GetAllMatches() ([]*event.Match, error)
	GetMatch(matchID string) (*event.Match, error)
	IsKnownPlayer(playerID string) bool
}
