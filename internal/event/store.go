package event

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// store handles all database operations for the event.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new EventStore.
func New(db *sql.DB) EventStore {
	return &store{
		db: db,
	}
}

// UpsertPlayers inserts or updates players in bulk inside one transaction.
func (s *store) UpsertPlayers(players []Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(players) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO players (id, name, phone)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			phone = excluded.phone;
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, p := range players {
		if _, err := stmt.Exec(p.ID, p.Name, p.Phone); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to upsert player %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

func (s *store) GetAllPlayers() ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name, phone FROM players ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		var p Player
		var name, phone sql.NullString
		if err := rows.Scan(&p.ID, &name, &phone); err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		p.Name = name.String
		p.Phone = phone.String
		players = append(players, p)
	}
	return players, nil
}

func (s *store) GetPlayers(playerIDs []string) ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(playerIDs) == 0 {
		return []Player{}, nil
	}

	query := "SELECT id, name, phone FROM players WHERE id IN (?" + strings.Repeat(",?", len(playerIDs)-1) + ")"
	args := make([]any, len(playerIDs))
	for i, id := range playerIDs {
		args[i] = id
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := []Player{}
	for rows.Next() {
		var p Player
		var name, phone sql.NullString
		if err := rows.Scan(&p.ID, &name, &phone); err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		p.Name = name.String
		p.Phone = phone.String
		players = append(players, p)
	}
	return players, nil
}

func (s *store) IsKnownPlayer(playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var id string
	err := s.db.QueryRow("SELECT id FROM players WHERE id = ?", playerID).Scan(&id)
	return err == nil
}

func (s *store) AddTournament(t *Tournament) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var position int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM tournaments").Scan(&position); err != nil {
		return err
	}
	_, err := s.db.Exec("INSERT INTO tournaments (id, name, position) VALUES (?, ?, ?)", t.ID, t.Name, position)
	return err
}

func (s *store) AddGroup(tournamentID string, g *Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	playerIDsJSON, err := json.Marshal(g.PlayerIDs)
	if err != nil {
		return err
	}

	var position int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM groups WHERE tournament_id = ?", tournamentID).Scan(&position); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		"INSERT INTO groups (id, tournament_id, name, position, player_ids_json) VALUES (?, ?, ?, ?, ?)",
		g.ID, tournamentID, g.Name, position, string(playerIDsJSON),
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to insert group %s: %w", g.ID, err)
	}
	for _, m := range g.Matches {
		if err := upsertMatchTx(tx, m); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert match %s: %w", m.ID, err)
		}
	}
	return tx.Commit()
}

// GetTournaments loads tournaments with their groups and matches, in
// creation order. This iteration order defines a player's assigned group:
// the first group whose roster contains them.
func (s *store) GetTournaments() ([]*Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name FROM tournaments ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tournaments []*Tournament
	for rows.Next() {
		var t Tournament
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			log.Error("Failed to scan tournament row", "error", err)
			continue
		}
		tournaments = append(tournaments, &t)
	}

	for _, t := range tournaments {
		groups, err := s.loadGroups(t.ID)
		if err != nil {
			return nil, err
		}
		t.Groups = groups
	}
	return tournaments, nil
}

func (s *store) loadGroups(tournamentID string) ([]*Group, error) {
	rows, err := s.db.Query(
		"SELECT id, name, player_ids_json FROM groups WHERE tournament_id = ? ORDER BY position",
		tournamentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []*Group
	for rows.Next() {
		var g Group
		var playerIDsJSON sql.NullString
		if err := rows.Scan(&g.ID, &g.Name, &playerIDsJSON); err != nil {
			log.Error("Failed to scan group row", "error", err)
			continue
		}
		if playerIDsJSON.Valid && playerIDsJSON.String != "" {
			if err := json.Unmarshal([]byte(playerIDsJSON.String), &g.PlayerIDs); err != nil {
				log.Error("Failed to unmarshal player_ids_json", "error", err, "groupID", g.ID)
			}
		}
		groups = append(groups, &g)
	}

	for _, g := range groups {
		matches, err := s.loadMatches(g.ID)
		if err != nil {
			return nil, err
		}
		g.Matches = matches
	}
	return groups, nil
}

func (s *store) loadMatches(groupID string) ([]*Match, error) {
	rows, err := s.db.Query(`
		SELECT id, group_id, player1_id, player2_id, status, score1, score2, scheduled_time, slot_id, location, field
		FROM matches
		WHERE group_id = ?
		ORDER BY position
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			log.Error("Failed to scan match row", "error", err)
			continue
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// scanMatch is a helper to scan a single match row.
func scanMatch(scanner interface{ Scan(...any) error }) (*Match, error) {
	var m Match
	var score1, score2 sql.NullInt64
	var scheduledTime sql.NullInt64
	var slotID, location, field sql.NullString

	err := scanner.Scan(
		&m.ID, &m.GroupID, &m.Player1ID, &m.Player2ID, &m.Status,
		&score1, &score2, &scheduledTime, &slotID, &location, &field,
	)
	if err != nil {
		return nil, err
	}

	if score1.Valid {
		v := int(score1.Int64)
		m.Score1 = &v
	}
	if score2.Valid {
		v := int(score2.Int64)
		m.Score2 = &v
	}
	if scheduledTime.Valid {
		v := scheduledTime.Int64
		m.ScheduledTime = &v
	}
	if slotID.Valid {
		m.SlotID = &slotID.String
	}
	if location.Valid {
		m.Location = &location.String
	}
	if field.Valid {
		m.Field = &field.String
	}
	return &m, nil
}

func upsertMatchTx(tx *sql.Tx, m *Match) error {
	var position int
	if err := tx.QueryRow("SELECT COUNT(*) FROM matches WHERE group_id = ?", m.GroupID).Scan(&position); err != nil {
		return err
	}
	_, err := tx.Exec(`
		INSERT INTO matches (id, group_id, player1_id, player2_id, status, score1, score2, scheduled_time, slot_id, location, field, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			group_id = excluded.group_id,
			player1_id = excluded.player1_id,
			player2_id = excluded.player2_id,
			status = excluded.status,
			score1 = excluded.score1,
			score2 = excluded.score2,
			scheduled_time = excluded.scheduled_time,
			slot_id = excluded.slot_id,
			location = excluded.location,
			field = excluded.field;
	`, m.ID, m.GroupID, m.Player1ID, m.Player2ID, m.Status, m.Score1, m.Score2, m.ScheduledTime, m.SlotID, m.Location, m.Field, position)
	return err
}

func (s *store) UpsertMatch(m *Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := upsertMatchTx(tx, m); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *store) GetMatch(matchID string) (*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, group_id, player1_id, player2_id, status, score1, score2, scheduled_time, slot_id, location, field
		FROM matches
		WHERE id = ?
	`, matchID)

	m, err := scanMatch(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("match %s: %w", matchID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get match %s: %w", matchID, err)
	}
	return m, nil
}

func (s *store) GetAllMatches() ([]*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, group_id, player1_id, player2_id, status, score1, score2, scheduled_time, slot_id, location, field
		FROM matches
		ORDER BY group_id, position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			log.Error("Failed to scan match row", "error", err)
			continue
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// ScheduleMatch books the match into a slot. The claim row insert and the
// match update commit or roll back together; the slot_claims primary key
// is what makes two concurrent bookings of the same slot impossible.
func (s *store) ScheduleMatch(matchID, slotID string, startMs int64, location, field string, prevSlotID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	if prevSlotID != "" {
		if _, err := tx.Exec("DELETE FROM slot_claims WHERE slot_id = ? AND match_id = ?", prevSlotID, matchID); err != nil {
			tx.Rollback()
			return err
		}
	}

	res, err := tx.Exec(`
		UPDATE matches
		SET status = ?, slot_id = ?, scheduled_time = ?, location = ?, field = ?
		WHERE id = ?
	`, StatusScheduled, slotID, startMs, location, field, matchID)
	if err != nil {
		tx.Rollback()
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		tx.Rollback()
		return fmt.Errorf("match %s: %w", matchID, ErrNotFound)
	}

	if _, err := tx.Exec("INSERT INTO slot_claims (slot_id, match_id) VALUES (?, ?)", slotID, matchID); err != nil {
		tx.Rollback()
		return fmt.Errorf("slot %s: %w", slotID, ErrSlotClaimed)
	}

	return tx.Commit()
}

func (s *store) ClearSchedule(matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM slot_claims WHERE match_id = ?", matchID); err != nil {
		tx.Rollback()
		return err
	}
	res, err := tx.Exec(`
		UPDATE matches
		SET status = ?, slot_id = NULL, scheduled_time = NULL, location = NULL, field = NULL
		WHERE id = ?
	`, StatusPending, matchID)
	if err != nil {
		tx.Rollback()
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		tx.Rollback()
		return fmt.Errorf("match %s: %w", matchID, ErrNotFound)
	}
	return tx.Commit()
}

func (s *store) SetResult(matchID string, score1, score2 int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		"UPDATE matches SET status = ?, score1 = ?, score2 = ? WHERE id = ?",
		StatusCompleted, score1, score2, matchID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("match %s: %w", matchID, ErrNotFound)
	}
	return nil
}

// ClearResult treats result deletion as a full reset: scores, scheduling
// fields and the slot claim are all released.
func (s *store) ClearResult(matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM slot_claims WHERE match_id = ?", matchID); err != nil {
		tx.Rollback()
		return err
	}
	res, err := tx.Exec(`
		UPDATE matches
		SET status = ?, score1 = NULL, score2 = NULL, slot_id = NULL, scheduled_time = NULL, location = NULL, field = NULL
		WHERE id = ?
	`, StatusPending, matchID)
	if err != nil {
		tx.Rollback()
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		tx.Rollback()
		return fmt.Errorf("match %s: %w", matchID, ErrNotFound)
	}
	return tx.Commit()
}

func (s *store) ClaimedSlotIDs() (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT slot_id, match_id FROM slot_claims")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	claims := make(map[string]string)
	for rows.Next() {
		var slotID, matchID string
		if err := rows.Scan(&slotID, &matchID); err != nil {
			log.Error("Failed to scan slot claim row", "error", err)
			continue
		}
		claims[slotID] = matchID
	}
	return claims, nil
}

func (s *store) AddRawSlot(scope SlotScope, tournamentID string, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT INTO time_slots (scope, tournament_id, raw_json) VALUES (?, ?, ?)",
		scope, tournamentID, string(raw),
	)
	return err
}

func (s *store) GetRawSlots() ([]RawSlotRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT rowid, scope, tournament_id, raw_json FROM time_slots ORDER BY rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []RawSlotRecord
	for rows.Next() {
		var r RawSlotRecord
		var tournamentID, rawJSON sql.NullString
		if err := rows.Scan(&r.RowID, &r.Scope, &tournamentID, &rawJSON); err != nil {
			log.Error("Failed to scan time slot row", "error", err)
			continue
		}
		r.TournamentID = tournamentID.String
		r.Raw = []byte(rawJSON.String)
		records = append(records, r)
	}
	return records, nil
}

func (s *store) DeleteRawSlot(rowID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM time_slots WHERE rowid = ?", rowID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("time slot %d: %w", rowID, ErrNotFound)
	}
	return nil
}

// Clear wipes all event data. Used by the /clear maintenance endpoint and
// in tests.
func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"slot_claims", "matches", "groups", "tournaments", "time_slots", "players"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
		}
	}
}
