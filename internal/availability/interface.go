package availability

// Store defines the override operations the reconciliation engine
// depends on. All writes are upserts keyed by the composite key, so at
// most one record exists per key; removal reverts to the default state.
type Store interface {
	SetGlobalAvailability(playerID string, available bool) error
	// GetGlobalAvailability defaults to true when no override exists.
	GetGlobalAvailability(playerID string) (bool, error)
	RemoveGlobalAvailability(playerID string) error

	SetDateUnavailability(key DateKey, unavailable bool) error
	// GetDateUnavailability defaults to false when no override exists.
	GetDateUnavailability(key DateKey) (bool, error)
	RemoveDateUnavailability(key DateKey) error
	// GetDateUnavailabilitiesForPlayers batches lookups, chunking the id
	// list to respect the backing store's IN-predicate limit, and returns
	// the merged result ordered by (player_id, date).
	GetDateUnavailabilitiesForPlayers(playerIDs []string) ([]DateUnavailability, error)

	SetSlotPreference(key SlotKey, preferred bool) error
	// GetSlotPreference defaults to false when no override exists.
	GetSlotPreference(key SlotKey) (bool, error)
	RemoveSlotPreference(key SlotKey) error
	GetSlotPreferencesForPlayers(playerIDs []string) ([]SlotPreference, error)

	// SnapshotForPlayers assembles the full authoritative state for the
	// given players, as published on the feed.
	SnapshotForPlayers(playerIDs []string) (Snapshot, error)
}
