package event

// EventStore defines the interface for interacting with the event's data:
// players, tournaments/groups/matches and raw slot documents.
type EventStore interface {
	UpsertPlayers(players []Player) error
	GetAllPlayers() ([]Player, error)
	GetPlayers(playerIDs []string) ([]Player, error)
	IsKnownPlayer(playerID string) bool

	AddTournament(t *Tournament) error
	AddGroup(tournamentID string, g *Group) error
	GetTournaments() ([]*Tournament, error)

	UpsertMatch(m *Match) error
	GetMatch(matchID string) (*Match, error)
	GetAllMatches() ([]*Match, error)

	// ScheduleMatch books the match into the slot. A slot claim row is
	// inserted in the same transaction as the match update; a conflicting
	// claim surfaces as ErrSlotClaimed. prevSlotID, when non-empty, is the
	// match's previous claim and is released in the same transaction
	// (reschedule).
	ScheduleMatch(matchID, slotID string, startMs int64, location, field string, prevSlotID string) error
	// ClearSchedule cancels the booking: releases the claim row and resets
	// the match's scheduling fields and status.
	ClearSchedule(matchID string) error
	SetResult(matchID string, score1, score2 int) error
	// ClearResult deletes a recorded result and resets the match to
	// pending, releasing any claim (result deletion is a full reset).
	ClearResult(matchID string) error
	ClaimedSlotIDs() (map[string]string, error)

	AddRawSlot(scope SlotScope, tournamentID string, raw []byte) error
	GetRawSlots() ([]RawSlotRecord, error)
	DeleteRawSlot(rowID int64) error

	Clear()
}
