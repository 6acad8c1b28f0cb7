package event

// MatchStatus defines the scheduling state of a match.
type MatchStatus string

const (
	StatusPending   MatchStatus = "PENDING"
	StatusScheduled MatchStatus = "SCHEDULED"
	StatusCompleted MatchStatus = "COMPLETED"
	// StatusFinished is a legacy synonym for StatusCompleted found in
	// imported match data. New writes always use StatusCompleted.
	StatusFinished MatchStatus = "FINISHED"
)

// Player represents a registered participant.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Match represents a single match inside a group.
type Match struct {
	ID        string      `json:"id"`
	GroupID   string      `json:"group_id"`
	Player1ID string      `json:"player1_id"`
	Player2ID string      `json:"player2_id"`
	Status    MatchStatus `json:"status"`

	// Set iff the match is completed.
	Score1 *int `json:"score1,omitempty"`
	Score2 *int `json:"score2,omitempty"`

	// Set iff the match is booked into a slot. ScheduledTime is epoch ms.
	SlotID        *string `json:"slot_id,omitempty"`
	ScheduledTime *int64  `json:"scheduled_time,omitempty"`
	Location      *string `json:"location,omitempty"`
	Field         *string `json:"field,omitempty"`
}

// IsCompleted reports whether the match has a recorded result,
// accepting the legacy FINISHED synonym.
func (m *Match) IsCompleted() bool {
	return m.Status == StatusCompleted || m.Status == StatusFinished
}

// Involves reports whether the given player takes part in the match.
func (m *Match) Involves(playerID string) bool {
	return m.Player1ID == playerID || m.Player2ID == playerID
}

// Group is a tournament subdivision with its own roster and match list.
type Group struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	PlayerIDs []string `json:"player_ids"`
	Matches   []*Match `json:"matches"`
}

// HasPlayer reports whether the player is assigned to the group.
func (g *Group) HasPlayer(playerID string) bool {
	for _, id := range g.PlayerIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

// Tournament groups a set of groups and optionally carries its own slots.
type Tournament struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Groups []*Group `json:"groups"`
}

// SlotScope tells which source list a raw slot record came from.
type SlotScope string

const (
	ScopeTournament SlotScope = "TOURNAMENT"
	ScopeEvent      SlotScope = "EVENT"
)

// RawSlotRecord is an unparsed slot document as persisted. The payload is
// kept verbatim; normalization happens in the slots package on read.
type RawSlotRecord struct {
	RowID        int64     `json:"row_id"`
	Scope        SlotScope `json:"scope"`
	TournamentID string    `json:"tournament_id,omitempty"`
	Raw          []byte    `json:"raw"`
}
