package event_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/mauv0809/courtside/internal/database"
	"github.com/mauv0809/courtside/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a temporary in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (event.EventStore, *sql.DB, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	store := event.New(db)
	teardown := func() {
		dbTeardown()
		db.Close()
	}

	return store, db, teardown
}

func seedGroup(t *testing.T, store event.EventStore) {
	t.Helper()
	require.NoError(t, store.UpsertPlayers([]event.Player{
		{ID: "p1", Name: "Alice"},
		{ID: "p2", Name: "Bob"},
		{ID: "p3", Name: "Carol"},
	}))
	require.NoError(t, store.AddTournament(&event.Tournament{ID: "t1", Name: "Open"}))
	require.NoError(t, store.AddGroup("t1", &event.Group{
		ID:        "g1",
		Name:      "Group A",
		PlayerIDs: []string{"p1", "p2", "p3"},
		Matches: []*event.Match{
			{ID: "m1", GroupID: "g1", Player1ID: "p1", Player2ID: "p2", Status: event.StatusPending},
			{ID: "m2", GroupID: "g1", Player1ID: "p1", Player2ID: "p3", Status: event.StatusPending},
		},
	}))
}

func TestUpsertAndGetPlayers(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, store.UpsertPlayers([]event.Player{
		{ID: "p1", Name: "Alice", Phone: "+4511111111"},
		{ID: "p2", Name: "Bob"},
	}))

	assert.True(t, store.IsKnownPlayer("p1"))
	assert.False(t, store.IsKnownPlayer("p3"))

	all, err := store.GetAllPlayers()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Upserting again with a changed name must not duplicate.
	require.NoError(t, store.UpsertPlayers([]event.Player{{ID: "p1", Name: "Alice B"}}))
	all, err = store.GetAllPlayers()
	require.NoError(t, err)
	require.Len(t, all, 2)

	players, err := store.GetPlayers([]string{"p1"})
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "Alice B", players[0].Name)
}

func TestGetTournaments(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	seedGroup(t, store)

	tournaments, err := store.GetTournaments()
	require.NoError(t, err)
	require.Len(t, tournaments, 1)
	require.Len(t, tournaments[0].Groups, 1)

	g := tournaments[0].Groups[0]
	assert.Equal(t, []string{"p1", "p2", "p3"}, g.PlayerIDs)
	require.Len(t, g.Matches, 2)
	assert.Equal(t, "m1", g.Matches[0].ID, "Matches keep their insertion order")
	assert.Equal(t, "m2", g.Matches[1].ID)
}

func TestScheduleMatch(t *testing.T) {
	t.Run("books a slot and records the claim", func(t *testing.T) {
		store, _, teardown := setupTestDB(t)
		defer teardown()
		seedGroup(t, store)

		startMs := time.Now().Add(24 * time.Hour).UnixMilli()
		require.NoError(t, store.ScheduleMatch("m1", "s1", startMs, "Court 1", "A", ""))

		m, err := store.GetMatch("m1")
		require.NoError(t, err)
		assert.Equal(t, event.StatusScheduled, m.Status)
		require.NotNil(t, m.SlotID)
		assert.Equal(t, "s1", *m.SlotID)
		require.NotNil(t, m.ScheduledTime)
		assert.Equal(t, startMs, *m.ScheduledTime)

		claims, err := store.ClaimedSlotIDs()
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"s1": "m1"}, claims)
	})

	t.Run("a second claim on the same slot fails", func(t *testing.T) {
		store, _, teardown := setupTestDB(t)
		defer teardown()
		seedGroup(t, store)

		require.NoError(t, store.ScheduleMatch("m1", "s1", 1, "Court 1", "", ""))
		err := store.ScheduleMatch("m2", "s1", 1, "Court 1", "", "")
		require.ErrorIs(t, err, event.ErrSlotClaimed)

		// The losing match is untouched.
		m, err := store.GetMatch("m2")
		require.NoError(t, err)
		assert.Equal(t, event.StatusPending, m.Status)
	})

	t.Run("rescheduling releases the previous claim", func(t *testing.T) {
		store, _, teardown := setupTestDB(t)
		defer teardown()
		seedGroup(t, store)

		require.NoError(t, store.ScheduleMatch("m1", "s1", 1, "Court 1", "", ""))
		require.NoError(t, store.ScheduleMatch("m1", "s2", 2, "Court 2", "", "s1"))

		claims, err := store.ClaimedSlotIDs()
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"s2": "m1"}, claims)

		// s1 is claimable again.
		require.NoError(t, store.ScheduleMatch("m2", "s1", 1, "Court 1", "", ""))
	})

	t.Run("unknown match", func(t *testing.T) {
		store, _, teardown := setupTestDB(t)
		defer teardown()
		seedGroup(t, store)

		err := store.ScheduleMatch("ghost", "s1", 1, "Court 1", "", "")
		require.ErrorIs(t, err, event.ErrNotFound)
	})
}

func TestClearSchedule(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	seedGroup(t, store)

	require.NoError(t, store.ScheduleMatch("m1", "s1", 1, "Court 1", "", ""))
	require.NoError(t, store.ClearSchedule("m1"))

	m, err := store.GetMatch("m1")
	require.NoError(t, err)
	assert.Equal(t, event.StatusPending, m.Status)
	assert.Nil(t, m.SlotID)
	assert.Nil(t, m.ScheduledTime)
	assert.Nil(t, m.Location)

	claims, err := store.ClaimedSlotIDs()
	require.NoError(t, err)
	assert.Empty(t, claims)
}

func TestSetAndClearResult(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	seedGroup(t, store)

	require.NoError(t, store.ScheduleMatch("m1", "s1", 1, "Court 1", "", ""))
	require.NoError(t, store.SetResult("m1", 3, 1))

	m, err := store.GetMatch("m1")
	require.NoError(t, err)
	assert.Equal(t, event.StatusCompleted, m.Status)
	require.NotNil(t, m.Score1)
	assert.Equal(t, 3, *m.Score1)
	require.NotNil(t, m.SlotID, "The slot reference survives result entry")

	// Clearing the result resets scheduling too and frees the claim.
	require.NoError(t, store.ClearResult("m1"))
	m, err = store.GetMatch("m1")
	require.NoError(t, err)
	assert.Equal(t, event.StatusPending, m.Status)
	assert.Nil(t, m.Score1)
	assert.Nil(t, m.SlotID)

	claims, err := store.ClaimedSlotIDs()
	require.NoError(t, err)
	assert.Empty(t, claims)
}

func TestRawSlots(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, store.AddRawSlot(event.ScopeEvent, "", []byte(`{"id":"s1","start":1}`)))
	require.NoError(t, store.AddRawSlot(event.ScopeTournament, "t1", []byte(`{"id":"s2","start":2}`)))

	records, err := store.GetRawSlots()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, event.ScopeEvent, records[0].Scope)
	assert.Equal(t, "t1", records[1].TournamentID)

	require.NoError(t, store.DeleteRawSlot(records[0].RowID))
	records, err = store.GetRawSlots()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Contains(t, string(records[0].Raw), `"s2"`)
}

func TestClear(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	seedGroup(t, store)

	store.Clear()

	players, err := store.GetAllPlayers()
	require.NoError(t, err)
	assert.Empty(t, players)

	matches, err := store.GetAllMatches()
	require.NoError(t, err)
	assert.Empty(t, matches)
}
