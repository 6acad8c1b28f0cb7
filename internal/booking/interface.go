package booking

import (
	"github.com/mauv0809/courtside/internal/event"
)

// Store defines the persistence operations required by the engine.
type Store interface {
	GetMatch(matchID string) (*event.Match, error)
	GetAllMatches() ([]*event.Match, error)
	GetPlayers(playerIDs []string) ([]event.Player, error)
	GetRawSlots() ([]event.RawSlotRecord, error)
	ScheduleMatch(matchID, slotID string, startMs int64, location, field string, prevSlotID string) error
	ClearSchedule(matchID string) error
	SetResult(matchID string, score1, score2 int) error
	ClearResult(matchID string) error
}
