package booking_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/mauv0809/courtside/internal/booking"
	"github.com/mauv0809/courtside/internal/database"
	"github.com/mauv0809/courtside/internal/event"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	engine   *booking.Engine
	store    event.EventStore
	notifier *notifier.Mock
	metrics  *metrics.Mock
	pubsub   *pubsub.MockPubSubClient
	teardown func()
}

// setupEngine seeds one tournament with one group of two matches and two
// future slots.
func setupEngine(t *testing.T) *fixture {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	store := event.New(db)
	require.NoError(t, store.UpsertPlayers([]event.Player{
		{ID: "p1", Name: "Alice"},
		{ID: "p2", Name: "Bob"},
		{ID: "p3", Name: "Carol"},
		{ID: "p4", Name: "Dave"},
	}))
	require.NoError(t, store.AddTournament(&event.Tournament{ID: "t1", Name: "Open"}))
	require.NoError(t, store.AddGroup("t1", &event.Group{
		ID:        "g1",
		Name:      "Group A",
		PlayerIDs: []string{"p1", "p2", "p3", "p4"},
		Matches: []*event.Match{
			{ID: "m1", GroupID: "g1", Player1ID: "p1", Player2ID: "p2", Status: event.StatusPending},
			{ID: "m2", GroupID: "g1", Player1ID: "p3", Player2ID: "p4", Status: event.StatusPending},
		},
	}))

	start1 := time.Now().Add(24 * time.Hour).UnixMilli()
	start2 := time.Now().Add(48 * time.Hour).UnixMilli()
	require.NoError(t, store.AddRawSlot(event.ScopeEvent, "",
		[]byte(fmt.Sprintf(`{"id":"s1","start":%d,"location":"Court 1"}`, start1))))
	require.NoError(t, store.AddRawSlot(event.ScopeEvent, "",
		[]byte(fmt.Sprintf(`{"id":"s2","start":%d,"location":"Court 2"}`, start2))))

	notif := notifier.NewMock()
	metr := metrics.NewMock()
	ps := pubsub.NewMock("TEST")
	return &fixture{
		engine:   booking.New(store, notif, metr, ps),
		store:    store,
		notifier: notif,
		metrics:  metr,
		pubsub:   ps,
		teardown: dbTeardown,
	}
}

func TestBook(t *testing.T) {
	t.Run("books a pending match into a free slot", func(t *testing.T) {
		f := setupEngine(t)
		defer f.teardown()

		m, err := f.engine.Book("m1", "s1", false)
		require.NoError(t, err)
		assert.Equal(t, event.StatusScheduled, m.Status)
		require.NotNil(t, m.SlotID)
		assert.Equal(t, "s1", *m.SlotID)
		require.NotNil(t, m.Location)
		assert.Equal(t, "Court 1", *m.Location)
		require.NotNil(t, m.ScheduledTime)

		assert.Equal(t, 1, f.metrics.BookingsConfirmedCalls)
		require.Len(t, f.notifier.SendBookingConfirmationCalls, 1)
		require.Len(t, f.pubsub.SendMessageCalls, 1)
		assert.Equal(t, string(pubsub.EventSlotBooked), f.pubsub.SendMessageCalls[0].Topic)
	})

	t.Run("rejects a second match competing for the same slot", func(t *testing.T) {
		f := setupEngine(t)
		defer f.teardown()

		_, err := f.engine.Book("m1", "s1", false)
		require.NoError(t, err)

		_, err = f.engine.Book("m2", "s1", false)
		require.Error(t, err)
		var conflict *booking.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "s1", conflict.SlotID)
		assert.Equal(t, 1, f.metrics.BookingConflictsCalls)

		// The losing match is untouched.
		m2, err := f.store.GetMatch("m2")
		require.NoError(t, err)
		assert.Equal(t, event.StatusPending, m2.Status)
		assert.Nil(t, m2.SlotID)
	})

	t.Run("rejects booking without a slot", func(t *testing.T) {
		f := setupEngine(t)
		defer f.teardown()

		_, err := f.engine.Book("m1", "", false)
		var validation *booking.ValidationError
		require.ErrorAs(t, err, &validation)
	})

	t.Run("rejects an unknown slot", func(t *testing.T) {
		f := setupEngine(t)
		defer f.teardown()

		_, err := f.engine.Book("m1", "nope", false)
		var validation *booking.ValidationError
		require.ErrorAs(t, err, &validation)
	})

	t.Run("rejects an unknown match", func(t *testing.T) {
		f := setupEngine(t)
		defer f.teardown()

		_, err := f.engine.Book("mX", "s1", false)
		var notFound *booking.NotFoundError
		require.ErrorAs(t, err, &notFound)
	})

	t.Run("dry run persists nothing", func(t *testing.T) {
		f := setupEngine(t)
		defer f.teardown()

		_, err := f.engine.Book("m1", "s1", true)
		require.NoError(t, err)

		m, err := f.store.GetMatch("m1")
		require.NoError(t, err)
		assert.Equal(t, event.StatusPending, m.Status)
		assert.Equal(t, 0, f.metrics.BookingsConfirmedCalls)
	})
}

func TestReschedule(t *testing.T) {
	t.Run("moves a scheduled match to another free slot", func(t *testing.T) {
		f := setupEngine(t)
		defer f.teardown()

		_, err := f.engine.Book("m1", "s1", false)
		require.NoError(t, err)

		m, err := f.engine.Reschedule("m1", "s2", false)
		require.NoError(t, err)
		assert.Equal(t, "s2", *m.SlotID)
		assert.Equal(t, "Court 2", *m.Location)

		// The previous slot is free again.
		m2, err := f.engine.Book("m2", "s1", false)
		require.NoError(t, err)
		assert.Equal(t, "s1", *m2.SlotID)
	})

	t.Run("own slot is not a conflict", func(t *testing.T) {
		f := setupEngine(t)
		defer f.teardown()

		_, err := f.engine.Book("m1", "s1", false)
		require.NoError(t, err)

		m, err := f.engine.Reschedule("m1", "s1", false)
		require.NoError(t, err)
		assert.Equal(t, "s1", *m.SlotID)
	})

	t.Run("another match's slot is a conflict", func(t *testing.T) {
		f := setupEngine(t)
		defer f.teardown()

		_, err := f.engine.Book("m1", "s1", false)
		require.NoError(t, err)
		_, err = f.engine.Book("m2", "s2", false)
		require.NoError(t, err)

		_, err = f.engine.Reschedule("m1", "s2", false)
		var conflict *booking.ConflictError
		require.ErrorAs(t, err, &conflict)
	})

	t.Run("pending match cannot be rescheduled", func(t *testing.T) {
		f := setupEngine(t)
		defer f.teardown()

		_, err := f.engine.Reschedule("m1", "s1", false)
		var validation *booking.ValidationError
		require.ErrorAs(t, err, &validation)
	})
}

func TestCancelBooking(t *testing.T) {
	f := setupEngine(t)
	defer f.teardown()

	_, err := f.engine.Book("m1", "s1", false)
	require.NoError(t, err)

	m, err := f.engine.CancelBooking("m1", false)
	require.NoError(t, err)
	assert.Equal(t, event.StatusPending, m.Status)
	assert.Nil(t, m.SlotID)
	assert.Nil(t, m.ScheduledTime)
	assert.Nil(t, m.Location)
	assert.Equal(t, 1, f.metrics.BookingsCancelledCalls)
	require.Len(t, f.notifier.SendBookingCancelledCalls, 1)

	// The slot can be claimed again.
	_, err = f.engine.Book("m2", "s1", false)
	require.NoError(t, err)
}

func TestEnterResult(t *testing.T) {
	t.Run("completes a scheduled match and keeps the slot reference", func(t *testing.T) {
		f := setupEngine(t)
		defer f.teardown()

		_, err := f.engine.Book("m1", "s1", false)
		require.NoError(t, err)

		m, err := f.engine.EnterResult("m1", 3, 1, false)
		require.NoError(t, err)
		assert.Equal(t, event.StatusCompleted, m.Status)
		require.NotNil(t, m.Score1)
		require.NotNil(t, m.Score2)
		assert.Equal(t, 3, *m.Score1)
		assert.Equal(t, 1, *m.Score2)
		require.NotNil(t, m.SlotID, "The slot stays referenced as a historical record")
		assert.Equal(t, "s1", *m.SlotID)
		assert.Equal(t, 1, f.metrics.ResultsRecordedCalls)
	})

	t.Run("a completed match still claims its slot", func(t *testing.T) {
		f := setupEngine(t)
		defer f.teardown()

		_, err := f.engine.Book("m1", "s1", false)
		require.NoError(t, err)
		_, err = f.engine.EnterResult("m1", 3, 1, false)
		require.NoError(t, err)

		_, err = f.engine.Book("m2", "s1", false)
		var conflict *booking.ConflictError
		require.ErrorAs(t, err, &conflict)
	})

	t.Run("rejects negative scores", func(t *testing.T) {
		f := setupEngine(t)
		defer f.teardown()

		_, err := f.engine.EnterResult("m1", -1, 2, false)
		var validation *booking.ValidationError
		require.ErrorAs(t, err, &validation)

		m, err := f.store.GetMatch("m1")
		require.NoError(t, err)
		assert.Nil(t, m.Score1, "No partial state may be persisted")
	})

	t.Run("a pending match can be completed directly", func(t *testing.T) {
		f := setupEngine(t)
		defer f.teardown()

		m, err := f.engine.EnterResult("m1", 2, 2, false)
		require.NoError(t, err)
		assert.Equal(t, event.StatusCompleted, m.Status)
		assert.Nil(t, m.SlotID)
	})
}

func TestDeleteResult(t *testing.T) {
	f := setupEngine(t)
	defer f.teardown()

	_, err := f.engine.Book("m1", "s1", false)
	require.NoError(t, err)
	_, err = f.engine.EnterResult("m1", 3, 1, false)
	require.NoError(t, err)

	m, err := f.engine.DeleteResult("m1", false)
	require.NoError(t, err)
	assert.Equal(t, event.StatusPending, m.Status)
	assert.Nil(t, m.Score1)
	assert.Nil(t, m.Score2)
	assert.Nil(t, m.SlotID, "Result deletion is a full reset")

	// The reset released the claim.
	_, err = f.engine.Book("m2", "s1", false)
	require.NoError(t, err)

	// Deleting again has no result to delete.
	_, err = f.engine.DeleteResult("m1", false)
	var validation *booking.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestAvailableSlots(t *testing.T) {
	f := setupEngine(t)
	defer f.teardown()

	free, err := f.engine.AvailableSlots(time.Now())
	require.NoError(t, err)
	require.Len(t, free, 2)

	_, err = f.engine.Book("m1", "s1", false)
	require.NoError(t, err)

	free, err = f.engine.AvailableSlots(time.Now())
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, "s2", free[0].ID)
}
