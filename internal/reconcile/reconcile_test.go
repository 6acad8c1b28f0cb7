package reconcile_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/mauv0809/courtside/internal/availability"
	"github.com/mauv0809/courtside/internal/booking"
	"github.com/mauv0809/courtside/internal/event"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawSlot(id string, start time.Time, location string) event.RawSlotRecord {
	return event.RawSlotRecord{
		Scope: event.ScopeEvent,
		Raw:   []byte(fmt.Sprintf(`{"id":%q,"start":%d,"location":%q}`, id, start.UnixMilli(), location)),
	}
}

type testEnv struct {
	reconciler *reconcile.Reconciler
	source     *event.MockStore
	avail      *availability.MockStore
	metrics    *metrics.Mock
	now        time.Time
	slotStart  time.Time
}

func setupReconciler(t *testing.T) *testEnv {
	t.Helper()

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.Local)
	slotStart := time.Date(2026, 9, 15, 18, 0, 0, 0, time.Local)

	source := event.NewMock()
	source.IsKnownPlayerFunc = func(playerID string) bool {
		return playerID == "p1" || playerID == "p2"
	}
	source.GetRawSlotsFunc = func() ([]event.RawSlotRecord, error) {
		return []event.RawSlotRecord{
			rawSlot("s1", slotStart, "Court 1"),
			rawSlot("s2", slotStart.Add(2*time.Hour), "Court 2"),
		}, nil
	}

	avail := availability.NewMock()
	metr := metrics.NewMock()
	return &testEnv{
		reconciler: reconcile.New(source, avail, metr, pubsub.NewMock("TEST")),
		source:     source,
		avail:      avail,
		metrics:    metr,
		now:        now,
		slotStart:  slotStart,
	}
}

func TestAvailableSlots(t *testing.T) {
	t.Run("excludes claimed slots", func(t *testing.T) {
		env := setupReconciler(t)
		slotID := "s1"
		env.source.GetAllMatchesFunc = func() ([]*event.Match, error) {
			return []*event.Match{
				{ID: "m1", Status: event.StatusScheduled, SlotID: &slotID},
			}, nil
		}

		free, err := env.reconciler.AvailableSlots(env.now)
		require.NoError(t, err)
		require.Len(t, free, 1)
		assert.Equal(t, "s2", free[0].ID)
		assert.Len(t, env.metrics.ReconcileObservations, 1)
	})

	t.Run("collapses the same physical slot listed under two ids", func(t *testing.T) {
		env := setupReconciler(t)
		env.source.GetRawSlotsFunc = func() ([]event.RawSlotRecord, error) {
			return []event.RawSlotRecord{
				rawSlot("s1", env.slotStart, "Court 1"),
				rawSlot("s1-dup", env.slotStart, "Court 1"),
			}, nil
		}

		free, err := env.reconciler.AvailableSlots(env.now)
		require.NoError(t, err)
		require.Len(t, free, 1)
	})
}

func TestCandidateSlotsForMatch(t *testing.T) {
	env := setupReconciler(t)
	env.source.GetMatchFunc = func(matchID string) (*event.Match, error) {
		if matchID != "m1" {
			return nil, event.ErrNotFound
		}
		return &event.Match{ID: "m1", Player1ID: "p1", Player2ID: "p2", Status: event.StatusPending}, nil
	}

	// Opponent overrides never shrink the candidate set.
	require.NoError(t, env.avail.SetDateUnavailability(
		availability.DateKey{PlayerID: "p2", Date: "2026-09-15"}, true))

	candidates, err := env.reconciler.CandidateSlotsForMatch("m1", env.now)
	require.NoError(t, err)
	assert.Len(t, candidates, 2)

	_, err = env.reconciler.CandidateSlotsForMatch("mX", env.now)
	var notFound *booking.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestScheduleDates(t *testing.T) {
	env := setupReconciler(t)

	dates, err := env.reconciler.ScheduleDates(env.now)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-09-15"}, dates)
}

func TestToggleSlotPreference(t *testing.T) {
	t.Run("records and withdraws interest", func(t *testing.T) {
		env := setupReconciler(t)

		preferred, err := env.reconciler.ToggleSlotPreference("p1", "s1")
		require.NoError(t, err)
		assert.True(t, preferred)

		interested, err := env.reconciler.IsInterested("p1", "s1")
		require.NoError(t, err)
		assert.True(t, interested)

		// A second toggle returns to the original state.
		preferred, err = env.reconciler.ToggleSlotPreference("p1", "s1")
		require.NoError(t, err)
		assert.False(t, preferred)

		interested, err = env.reconciler.IsInterested("p1", "s1")
		require.NoError(t, err)
		assert.False(t, interested)

		assert.Equal(t, 2, env.metrics.OverrideToggleCalls["slot"])
	})

	t.Run("is rejected while the slot's date is unavailable", func(t *testing.T) {
		env := setupReconciler(t)

		unavailable, err := env.reconciler.ToggleDateUnavailability("p1", "2026-09-15")
		require.NoError(t, err)
		assert.True(t, unavailable)

		_, err = env.reconciler.ToggleSlotPreference("p1", "s1")
		var validation *booking.ValidationError
		require.ErrorAs(t, err, &validation)

		interested, err := env.reconciler.IsInterested("p1", "s1")
		require.NoError(t, err)
		assert.False(t, interested, "The rejected toggle must leave interest unchanged")
	})

	t.Run("withdrawing stays possible on an unavailable date", func(t *testing.T) {
		env := setupReconciler(t)

		_, err := env.reconciler.ToggleSlotPreference("p1", "s1")
		require.NoError(t, err)
		_, err = env.reconciler.ToggleDateUnavailability("p1", "2026-09-15")
		require.NoError(t, err)

		preferred, err := env.reconciler.ToggleSlotPreference("p1", "s1")
		require.NoError(t, err)
		assert.False(t, preferred)
	})

	t.Run("rejects unknown players and slots", func(t *testing.T) {
		env := setupReconciler(t)

		var notFound *booking.NotFoundError
		_, err := env.reconciler.ToggleSlotPreference("ghost", "s1")
		require.ErrorAs(t, err, &notFound)

		_, err = env.reconciler.ToggleSlotPreference("p1", "sX")
		require.ErrorAs(t, err, &notFound)
	})
}

func TestIsInterested(t *testing.T) {
	t.Run("masks a preference left behind by a later unavailability", func(t *testing.T) {
		env := setupReconciler(t)

		_, err := env.reconciler.ToggleSlotPreference("p1", "s1")
		require.NoError(t, err)
		_, err = env.reconciler.ToggleDateUnavailability("p1", "2026-09-15")
		require.NoError(t, err)

		interested, err := env.reconciler.IsInterested("p1", "s1")
		require.NoError(t, err)
		assert.False(t, interested)

		// Clearing the unavailability lets the stored preference
		// surface again.
		_, err = env.reconciler.ToggleDateUnavailability("p1", "2026-09-15")
		require.NoError(t, err)
		interested, err = env.reconciler.IsInterested("p1", "s1")
		require.NoError(t, err)
		assert.True(t, interested)
	})

	t.Run("masks every preference while globally off", func(t *testing.T) {
		env := setupReconciler(t)

		_, err := env.reconciler.ToggleSlotPreference("p1", "s1")
		require.NoError(t, err)
		require.NoError(t, env.reconciler.SetGlobalAvailability("p1", false))

		interested, err := env.reconciler.IsInterested("p1", "s1")
		require.NoError(t, err)
		assert.False(t, interested)

		require.NoError(t, env.reconciler.SetGlobalAvailability("p1", true))
		interested, err = env.reconciler.IsInterested("p1", "s1")
		require.NoError(t, err)
		assert.True(t, interested)
	})
}

func TestToggleDateUnavailability(t *testing.T) {
	env := setupReconciler(t)

	_, err := env.reconciler.ToggleDateUnavailability("p1", "15/09/2026")
	var validation *booking.ValidationError
	require.ErrorAs(t, err, &validation)

	unavailable, err := env.reconciler.ToggleDateUnavailability("p1", "2026-09-15")
	require.NoError(t, err)
	assert.True(t, unavailable)

	got, err := env.reconciler.IsDateUnavailable("p1", "2026-09-15")
	require.NoError(t, err)
	assert.True(t, got)

	unavailable, err = env.reconciler.ToggleDateUnavailability("p1", "2026-09-15")
	require.NoError(t, err)
	assert.False(t, unavailable)

	got, err = env.reconciler.IsDateUnavailable("p1", "2026-09-15")
	require.NoError(t, err)
	assert.False(t, got)
}
