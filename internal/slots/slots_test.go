package slots_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/mauv0809/courtside/internal/slots"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	startMs := time.Date(2025, 6, 1, 18, 0, 0, 0, time.Local).UnixMilli()

	t.Run("id and start under canonical names", func(t *testing.T) {
		raw := fmt.Sprintf(`{"id":"s1","start":%d,"location":"Center Court","field":"A"}`, startMs)
		slot, ok := slots.Normalize([]byte(raw))
		require.True(t, ok)
		assert.Equal(t, "s1", slot.ID)
		assert.Equal(t, startMs, slot.Start)
		assert.Equal(t, "Center Court", slot.Location)
		assert.Equal(t, "A", slot.Field)
	})

	t.Run("legacy field names", func(t *testing.T) {
		raw := fmt.Sprintf(`{"slotId":"s2","time":%d}`, startMs)
		slot, ok := slots.Normalize([]byte(raw))
		require.True(t, ok)
		assert.Equal(t, "s2", slot.ID)
		assert.Equal(t, startMs, slot.Start)

		raw = fmt.Sprintf(`{"timeSlotId":"s3","date":%d}`, startMs)
		slot, ok = slots.Normalize([]byte(raw))
		require.True(t, ok)
		assert.Equal(t, "s3", slot.ID)
	})

	t.Run("epoch seconds are promoted to milliseconds", func(t *testing.T) {
		raw := fmt.Sprintf(`{"id":"s4","start":%d}`, startMs/1000)
		slot, ok := slots.Normalize([]byte(raw))
		require.True(t, ok)
		assert.Equal(t, startMs, slot.Start)
	})

	t.Run("ISO string start", func(t *testing.T) {
		iso := time.UnixMilli(startMs).Local().Format(time.RFC3339)
		raw := fmt.Sprintf(`{"id":"s5","start":%q}`, iso)
		slot, ok := slots.Normalize([]byte(raw))
		require.True(t, ok)
		assert.Equal(t, startMs, slot.Start)
	})

	t.Run("missing id falls back to composite key", func(t *testing.T) {
		raw := fmt.Sprintf(`{"start":%d,"location":"Court 2"}`, startMs)
		slot, ok := slots.Normalize([]byte(raw))
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("%d|Court 2|", startMs), slot.ID)
	})

	t.Run("unparseable start is dropped", func(t *testing.T) {
		_, ok := slots.Normalize([]byte(`{"id":"s6","start":"whenever"}`))
		assert.False(t, ok)

		_, ok = slots.Normalize([]byte(`{"id":"s7"}`))
		assert.False(t, ok)

		_, ok = slots.Normalize([]byte(`not json`))
		assert.False(t, ok)
	})
}

func TestDedupe(t *testing.T) {
	t.Run("duplicate ids keep the earliest start", func(t *testing.T) {
		in := []slots.TimeSlot{
			{ID: "s1", Start: 2000, Location: "Court 1"},
			{ID: "s1", Start: 1000, Location: "Court 1"},
		}
		out := slots.Dedupe(in)
		require.Len(t, out, 1)
		assert.Equal(t, int64(1000), out[0].Start)
	})

	t.Run("distinct ids with same start and location collapse", func(t *testing.T) {
		// Data-entry error: the same physical slot entered in both the
		// tournament list and the event-global list under different ids.
		in := []slots.TimeSlot{
			{ID: "s1", Start: 1000, Location: "Court 1", Field: "A"},
			{ID: "dup-s1", Start: 1000, Location: "Court 1", Field: "A"},
			{ID: "s2", Start: 2000, Location: "Court 1", Field: "A"},
		}
		out := slots.Dedupe(in)
		require.Len(t, out, 2)
		assert.Equal(t, "s1", out[0].ID)
		assert.Equal(t, "s2", out[1].ID)
	})
}

func TestFutureUnbooked(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	past := now.Add(-time.Hour).UnixMilli()
	future := now.Add(time.Hour).UnixMilli()

	in := []slots.TimeSlot{
		{ID: "past", Start: past},
		{ID: "free", Start: future},
		{ID: "claimed", Start: future + 1000},
		{ID: "legacy-ms", Start: future + 2000},
		{ID: "legacy-iso", Start: future + 3000},
	}
	booked := map[string]struct{}{
		"claimed": {},
		fmt.Sprintf("%d", future+2000): {},
		time.UnixMilli(future + 3000).Local().Format(time.RFC3339): {},
	}

	out := slots.FutureUnbooked(in, booked, now)
	require.Len(t, out, 1)
	assert.Equal(t, "free", out[0].ID)
}

func TestFutureUnbookedSortsByStart(t *testing.T) {
	now := time.Unix(0, 0)
	in := []slots.TimeSlot{
		{ID: "b", Start: 2000},
		{ID: "a", Start: 1000},
		{ID: "c", Start: 3000},
	}
	out := slots.FutureUnbooked(in, nil, now)
	require.Len(t, out, 3)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "c", out[2].ID)
}

func TestScheduleDates(t *testing.T) {
	day1 := time.Date(2025, 6, 1, 18, 0, 0, 0, time.Local)
	day2 := time.Date(2025, 6, 2, 10, 0, 0, 0, time.Local)

	in := []slots.TimeSlot{
		{ID: "s1", Start: day2.UnixMilli()},
		{ID: "s2", Start: day1.UnixMilli()},
		{ID: "s3", Start: day1.Add(2 * time.Hour).UnixMilli()},
	}
	dates := slots.ScheduleDates(in)
	assert.Equal(t, []string{"2025-06-01", "2025-06-02"}, dates)
}
