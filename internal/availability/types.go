package availability

// DateKey identifies one player's unavailability override for one
// calendar date. Keys are structured rather than concatenated strings so
// equality is never a formatting concern.
type DateKey struct {
	PlayerID string `json:"player_id"`
	Date     string `json:"date"` // YYYY-MM-DD
}

// SlotKey identifies one player's preference override for one slot.
type SlotKey struct {
	PlayerID string `json:"player_id"`
	SlotID   string `json:"slot_id"`
}

// DateUnavailability is a per-date override record. Absence of a record
// means the player is available on that date.
type DateUnavailability struct {
	PlayerID    string `json:"player_id"`
	Date        string `json:"date"`
	Unavailable bool   `json:"unavailable"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

// SlotPreference is a per-slot interest record. Absence of a record means
// no interest expressed.
type SlotPreference struct {
	PlayerID  string `json:"player_id"`
	SlotID    string `json:"slot_id"`
	Preferred bool   `json:"is_preferred"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// Snapshot is the full authoritative override state for the covered
// players. Consumers must replace their local state for those players
// wholesale; merging additively would leak stale flags.
type Snapshot struct {
	PlayerIDs        []string             `json:"player_ids"`
	GlobalOff        []string             `json:"global_off"` // players with available=false
	Unavailabilities []DateUnavailability `json:"unavailabilities"`
	Preferences      []SlotPreference     `json:"preferences"`
}
