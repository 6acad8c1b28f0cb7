package event

import "sync"

// MockStore is a mock implementation of the EventStore interface for
// testing. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	UpsertPlayersFunc   func(players []Player) error
	GetAllPlayersFunc   func() ([]Player, error)
	GetPlayersFunc      func(playerIDs []string) ([]Player, error)
	IsKnownPlayerFunc   func(playerID string) bool
	AddTournamentFunc   func(t *Tournament) error
	AddGroupFunc        func(tournamentID string, g *Group) error
	GetTournamentsFunc  func() ([]*Tournament, error)
	UpsertMatchFunc     func(m *Match) error
	GetMatchFunc        func(matchID string) (*Match, error)
	GetAllMatchesFunc   func() ([]*Match, error)
	ScheduleMatchFunc   func(matchID, slotID string, startMs int64, location, field string, prevSlotID string) error
	ClearScheduleFunc   func(matchID string) error
	SetResultFunc       func(matchID string, score1, score2 int) error
	ClearResultFunc     func(matchID string) error
	ClaimedSlotIDsFunc  func() (map[string]string, error)
	AddRawSlotFunc      func(scope SlotScope, tournamentID string, raw []byte) error
	GetRawSlotsFunc     func() ([]RawSlotRecord, error)
	DeleteRawSlotFunc   func(rowID int64) error

	// Call records
	UpsertPlayersCalls [][]Player
	ScheduleMatchCalls []struct {
		MatchID, SlotID     string
		StartMs             int64
		Location, Field     string
		PrevSlotID          string
	}
	ClearScheduleCalls []string
	SetResultCalls     []struct {
		MatchID        string
		Score1, Score2 int
	}
	ClearResultCalls []string
	AddRawSlotCalls  []struct {
		Scope        SlotScope
		TournamentID string
		Raw          []byte
	}
	DeleteRawSlotCalls []int64
	ClearCalls         int
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertPlayersCalls = nil
	m.ScheduleMatchCalls = nil
	m.ClearScheduleCalls = nil
	m.SetResultCalls = nil
	m.ClearResultCalls = nil
	m.AddRawSlotCalls = nil
	m.DeleteRawSlotCalls = nil
	m.ClearCalls = 0
}

func (m *MockStore) UpsertPlayers(players []Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertPlayersCalls = append(m.UpsertPlayersCalls, players)
	if m.UpsertPlayersFunc != nil {
		return m.UpsertPlayersFunc(players)
	}
	return nil
}

func (m *MockStore) GetAllPlayers() ([]Player, error) {
	if m.GetAllPlayersFunc != nil {
		return m.GetAllPlayersFunc()
	}
	return []Player{}, nil
}

func (m *MockStore) GetPlayers(playerIDs []string) ([]Player, error) {
	if m.GetPlayersFunc != nil {
		return m.GetPlayersFunc(playerIDs)
	}
	return []Player{}, nil
}

func (m *MockStore) IsKnownPlayer(playerID string) bool {
	if m.IsKnownPlayerFunc != nil {
		return m.IsKnownPlayerFunc(playerID)
	}
	return false
}

func (m *MockStore) AddTournament(t *Tournament) error {
	if m.AddTournamentFunc != nil {
		return m.AddTournamentFunc(t)
	}
	return nil
}

func (m *MockStore) AddGroup(tournamentID string, g *Group) error {
	if m.AddGroupFunc != nil {
		return m.AddGroupFunc(tournamentID, g)
	}
	return nil
}

func (m *MockStore) GetTournaments() ([]*Tournament, error) {
	if m.GetTournamentsFunc != nil {
		return m.GetTournamentsFunc()
	}
	return []*Tournament{}, nil
}

func (m *MockStore) UpsertMatch(match *Match) error {
	if m.UpsertMatchFunc != nil {
		return m.UpsertMatchFunc(match)
	}
	return nil
}

func (m *MockStore) GetMatch(matchID string) (*Match, error) {
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(matchID)
	}
	return nil, ErrNotFound
}

func (m *MockStore) GetAllMatches() ([]*Match, error) {
	if m.GetAllMatchesFunc != nil {
		return m.GetAllMatchesFunc()
	}
	return []*Match{}, nil
}

func (m *MockStore) ScheduleMatch(matchID, slotID string, startMs int64, location, field string, prevSlotID string) error {
	m.mu.Lock()
	m.ScheduleMatchCalls = append(m.ScheduleMatchCalls, struct {
		MatchID, SlotID string
		StartMs         int64
		Location, Field string
		PrevSlotID      string
	}{matchID, slotID, startMs, location, field, prevSlotID})
	m.mu.Unlock()
	if m.ScheduleMatchFunc != nil {
		return m.ScheduleMatchFunc(matchID, slotID, startMs, location, field, prevSlotID)
	}
	return nil
}

func (m *MockStore) ClearSchedule(matchID string) error {
	m.mu.Lock()
	m.ClearScheduleCalls = append(m.ClearScheduleCalls, matchID)
	m.mu.Unlock()
	if m.ClearScheduleFunc != nil {
		return m.ClearScheduleFunc(matchID)
	}
	return nil
}

func (m *MockStore) SetResult(matchID string, score1, score2 int) error {
	m.mu.Lock()
	m.SetResultCalls = append(m.SetResultCalls, struct {
		MatchID        string
		Score1, Score2 int
	}{matchID, score1, score2})
	m.mu.Unlock()
	if m.SetResultFunc != nil {
		return m.SetResultFunc(matchID, score1, score2)
	}
	return nil
}

func (m *MockStore) ClearResult(matchID string) error {
	m.mu.Lock()
	m.ClearResultCalls = append(m.ClearResultCalls, matchID)
	m.mu.Unlock()
	if m.ClearResultFunc != nil {
		return m.ClearResultFunc(matchID)
	}
	return nil
}

func (m *MockStore) ClaimedSlotIDs() (map[string]string, error) {
	if m.ClaimedSlotIDsFunc != nil {
		return m.ClaimedSlotIDsFunc()
	}
	return map[string]string{}, nil
}

func (m *MockStore) AddRawSlot(scope SlotScope, tournamentID string, raw []byte) error {
	m.mu.Lock()
	m.AddRawSlotCalls = append(m.AddRawSlotCalls, struct {
		Scope        SlotScope
		TournamentID string
		Raw          []byte
	}{scope, tournamentID, raw})
	m.mu.Unlock()
	if m.AddRawSlotFunc != nil {
		return m.AddRawSlotFunc(scope, tournamentID, raw)
	}
	return nil
}

func (m *MockStore) GetRawSlots() ([]RawSlotRecord, error) {
	if m.GetRawSlotsFunc != nil {
		return m.GetRawSlotsFunc()
	}
	return []RawSlotRecord{}, nil
}

func (m *MockStore) DeleteRawSlot(rowID int64) error {
	m.mu.Lock()
	m.DeleteRawSlotCalls = append(m.DeleteRawSlotCalls, rowID)
	m.mu.Unlock()
	if m.DeleteRawSlotFunc != nil {
		return m.DeleteRawSlotFunc(rowID)
	}
	return nil
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
}
