package availability

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// queryChunkSize caps the number of ids per IN predicate. The backing
// query engine rejects larger id lists, so batched lookups are chunked
// and merged.
const queryChunkSize = 10

// store handles all database operations for availability overrides.
type store struct {
	db   *sql.DB
	mu   sync.RWMutex
	feed *Feed
	now  func() time.Time
}

// New creates a new Store. Writes publish full-state snapshots for the
// affected player on the feed, if one is attached.
func New(db *sql.DB, feed *Feed) Store {
	return &store{
		db:   db,
		feed: feed,
		now:  time.Now,
	}
}

func (s *store) publish(playerID string) {
	if s.feed == nil {
		return
	}
	snap, err := s.SnapshotForPlayers([]string{playerID})
	if err != nil {
		return
	}
	s.feed.Publish(snap)
}

func (s *store) SetGlobalAvailability(playerID string, available bool) error {
	s.mu.Lock()
	now := s.now().Unix()
	_, err := s.db.Exec(`
		INSERT INTO availability_settings (player_id, available, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(player_id) DO UPDATE SET
			available = excluded.available,
			updated_at = excluded.updated_at;
	`, playerID, available, now, now)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to set global availability for %s: %w", playerID, err)
	}
	s.publish(playerID)
	return nil
}

func (s *store) GetGlobalAvailability(playerID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var available bool
	err := s.db.QueryRow(
		"SELECT available FROM availability_settings WHERE player_id = ?", playerID,
	).Scan(&available)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return available, nil
}

func (s *store) RemoveGlobalAvailability(playerID string) error {
	s.mu.Lock()
	_, err := s.db.Exec("DELETE FROM availability_settings WHERE player_id = ?", playerID)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(playerID)
	return nil
}

func (s *store) SetDateUnavailability(key DateKey, unavailable bool) error {
	s.mu.Lock()
	now := s.now().Unix()
	_, err := s.db.Exec(`
		INSERT INTO date_unavailabilities (player_id, date, unavailable, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(player_id, date) DO UPDATE SET
			unavailable = excluded.unavailable,
			updated_at = excluded.updated_at;
	`, key.PlayerID, key.Date, unavailable, now, now)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to set date unavailability for %s/%s: %w", key.PlayerID, key.Date, err)
	}
	s.publish(key.PlayerID)
	return nil
}

func (s *store) GetDateUnavailability(key DateKey) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var unavailable bool
	err := s.db.QueryRow(
		"SELECT unavailable FROM date_unavailabilities WHERE player_id = ? AND date = ?",
		key.PlayerID, key.Date,
	).Scan(&unavailable)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return unavailable, nil
}

func (s *store) RemoveDateUnavailability(key DateKey) error {
	s.mu.Lock()
	_, err := s.db.Exec(
		"DELETE FROM date_unavailabilities WHERE player_id = ? AND date = ?",
		key.PlayerID, key.Date,
	)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(key.PlayerID)
	return nil
}

func (s *store) GetDateUnavailabilitiesForPlayers(playerIDs []string) ([]DateUnavailability, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []DateUnavailability{}
	for _, chunk := range chunkIDs(playerIDs, queryChunkSize) {
		query := "SELECT player_id, date, unavailable, created_at, updated_at FROM date_unavailabilities WHERE player_id IN (?" +
			strings.Repeat(",?", len(chunk)-1) + ")"
		rows, err := s.db.Query(query, toArgs(chunk)...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var u DateUnavailability
			if err := rows.Scan(&u.PlayerID, &u.Date, &u.Unavailable, &u.CreatedAt, &u.UpdatedAt); err != nil {
				rows.Close()
				return nil, err
			}
			out = append(out, u)
		}
		rows.Close()
	}

	// Per-chunk results arrive in chunk order; restore a stable global order.
	sortUnavailabilities(out)
	return out, nil
}

func (s *store) SetSlotPreference(key SlotKey, preferred bool) error {
	s.mu.Lock()
	now := s.now().Unix()
	_, err := s.db.Exec(`
		INSERT INTO slot_preferences (player_id, slot_id, is_preferred, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(player_id, slot_id) DO UPDATE SET
			is_preferred = excluded.is_preferred,
			updated_at = excluded.updated_at;
	`, key.PlayerID, key.SlotID, preferred, now, now)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to set slot preference for %s/%s: %w", key.PlayerID, key.SlotID, err)
	}
	s.publish(key.PlayerID)
	return nil
}

func (s *store) GetSlotPreference(key SlotKey) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var preferred bool
	err := s.db.QueryRow(
		"SELECT is_preferred FROM slot_preferences WHERE player_id = ? AND slot_id = ?",
		key.PlayerID, key.SlotID,
	).Scan(&preferred)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return preferred, nil
}

func (s *store) RemoveSlotPreference(key SlotKey) error {
	s.mu.Lock()
	_, err := s.db.Exec(
		"DELETE FROM slot_preferences WHERE player_id = ? AND slot_id = ?",
		key.PlayerID, key.SlotID,
	)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(key.PlayerID)
	return nil
}

func (s *store) GetSlotPreferencesForPlayers(playerIDs []string) ([]SlotPreference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []SlotPreference{}
	for _, chunk := range chunkIDs(playerIDs, queryChunkSize) {
		query := "SELECT player_id, slot_id, is_preferred, created_at, updated_at FROM slot_preferences WHERE player_id IN (?" +
			strings.Repeat(",?", len(chunk)-1) + ")"
		rows, err := s.db.Query(query, toArgs(chunk)...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var p SlotPreference
			if err := rows.Scan(&p.PlayerID, &p.SlotID, &p.Preferred, &p.CreatedAt, &p.UpdatedAt); err != nil {
				rows.Close()
				return nil, err
			}
			out = append(out, p)
		}
		rows.Close()
	}

	sortPreferences(out)
	return out, nil
}

func (s *store) SnapshotForPlayers(playerIDs []string) (Snapshot, error) {
	snap := Snapshot{PlayerIDs: playerIDs}

	unavail, err := s.GetDateUnavailabilitiesForPlayers(playerIDs)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Unavailabilities = unavail

	prefs, err := s.GetSlotPreferencesForPlayers(playerIDs)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Preferences = prefs

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, chunk := range chunkIDs(playerIDs, queryChunkSize) {
		query := "SELECT player_id FROM availability_settings WHERE available = 0 AND player_id IN (?" +
			strings.Repeat(",?", len(chunk)-1) + ")"
		rows, err := s.db.Query(query, toArgs(chunk)...)
		if err != nil {
			return Snapshot{}, err
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return Snapshot{}, err
			}
			snap.GlobalOff = append(snap.GlobalOff, id)
		}
		rows.Close()
	}
	return snap, nil
}

// chunkIDs splits ids into chunks of at most size entries.
func chunkIDs(ids []string, size int) [][]string {
	var chunks [][]string
	for len(ids) > 0 {
		n := size
		if len(ids) < n {
			n = len(ids)
		}
		chunks = append(chunks, ids[:n])
		ids = ids[n:]
	}
	return chunks
}

func toArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func sortUnavailabilities(in []DateUnavailability) {
	sort.Slice(in, func(i, j int) bool {
		if in[i].PlayerID != in[j].PlayerID {
			return in[i].PlayerID < in[j].PlayerID
		}
		return in[i].Date < in[j].Date
	})
}

func sortPreferences(in []SlotPreference) {
	sort.Slice(in, func(i, j int) bool {
		if in[i].PlayerID != in[j].PlayerID {
			return in[i].PlayerID < in[j].PlayerID
		}
		return in[i].SlotID < in[j].SlotID
	})
}
