package availability

import "sync"

// MockStore is an in-memory implementation of the Store interface for
// testing. It honors the default-state semantics of the real store.
type MockStore struct {
	mu        sync.Mutex
	global    map[string]bool
	unavail   map[DateKey]bool
	preferred map[SlotKey]bool

	// Optional spies
	SetSlotPreferenceFunc     func(key SlotKey, preferred bool) error
	SetDateUnavailabilityFunc func(key DateKey, unavailable bool) error

	// Call records
	SetSlotPreferenceCalls    []SlotKey
	RemoveSlotPreferenceCalls []SlotKey
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{
		global:    make(map[string]bool),
		unavail:   make(map[DateKey]bool),
		preferred: make(map[SlotKey]bool),
	}
}

func (m *MockStore) SetGlobalAvailability(playerID string, available bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.global[playerID] = available
	return nil
}

func (m *MockStore) GetGlobalAvailability(playerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.global[playerID]; ok {
		return v, nil
	}
	return true, nil
}

func (m *MockStore) RemoveGlobalAvailability(playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.global, playerID)
	return nil
}

func (m *MockStore) SetDateUnavailability(key DateKey, unavailable bool) error {
	if m.SetDateUnavailabilityFunc != nil {
		if err := m.SetDateUnavailabilityFunc(key, unavailable); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unavail[key] = unavailable
	return nil
}

func (m *MockStore) GetDateUnavailability(key DateKey) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unavail[key], nil
}

func (m *MockStore) RemoveDateUnavailability(key DateKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.unavail, key)
	return nil
}

func (m *MockStore) GetDateUnavailabilitiesForPlayers(playerIDs []string) ([]DateUnavailability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []DateUnavailability{}
	for _, id := range playerIDs {
		for key, v := range m.unavail {
			if key.PlayerID == id {
				out = append(out, DateUnavailability{PlayerID: key.PlayerID, Date: key.Date, Unavailable: v})
			}
		}
	}
	sortUnavailabilities(out)
	return out, nil
}

func (m *MockStore) SetSlotPreference(key SlotKey, preferred bool) error {
	m.mu.Lock()
	m.SetSlotPreferenceCalls = append(m.SetSlotPreferenceCalls, key)
	m.mu.Unlock()
	if m.SetSlotPreferenceFunc != nil {
		if err := m.SetSlotPreferenceFunc(key, preferred); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.preferred[key] = preferred
	return nil
}

func (m *MockStore) GetSlotPreference(key SlotKey) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.preferred[key], nil
}

func (m *MockStore) RemoveSlotPreference(key SlotKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RemoveSlotPreferenceCalls = append(m.RemoveSlotPreferenceCalls, key)
	delete(m.preferred, key)
	return nil
}

func (m *MockStore) GetSlotPreferencesForPlayers(playerIDs []string) ([]SlotPreference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []SlotPreference{}
	for _, id := range playerIDs {
		for key, v := range m.preferred {
			if key.PlayerID == id {
				out = append(out, SlotPreference{PlayerID: key.PlayerID, SlotID: key.SlotID, Preferred: v})
			}
		}
	}
	sortPreferences(out)
	return out, nil
}

func (m *MockStore) SnapshotForPlayers(playerIDs []string) (Snapshot, error) {
	snap := Snapshot{PlayerIDs: playerIDs}
	snap.Unavailabilities, _ = m.GetDateUnavailabilitiesForPlayers(playerIDs)
	snap.Preferences, _ = m.GetSlotPreferencesForPlayers(playerIDs)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range playerIDs {
		if v, ok := m.global[id]; ok && !v {
			snap.GlobalOff = append(snap.GlobalOff, id)
		}
	}
	return snap, nil
}
