package booking

import (
	"strconv"

	"github.com/mauv0809/courtside/internal/event"
)

// ClaimedSlotIDs derives the set of slot identifiers currently claimed
// by any scheduled or completed match across the whole event. The set is
// recomputed fresh on every call; it is never cached, so it is correct
// whenever the match collection it was built from is.
//
// Matches booked by older tooling may carry a scheduled time instead of,
// or alongside, a slot reference; the scheduled time is always emitted as
// the epoch-ms string of the start, which the slot registry also checks.
// Imported matches can hold a slot id that no current registry slot uses,
// so the time-based claim must stand on its own.
func ClaimedSlotIDs(matches []*event.Match) map[string]struct{} {
	claimed := make(map[string]struct{})
	for _, m := range matches {
		if m.Status != event.StatusScheduled && !m.IsCompleted() {
			continue
		}
		if m.SlotID != nil && *m.SlotID != "" {
			claimed[*m.SlotID] = struct{}{}
		}
		if m.ScheduledTime != nil {
			claimed[strconv.FormatInt(*m.ScheduledTime, 10)] = struct{}{}
		}
	}
	return claimed
}

// ClaimedExcluding is ClaimedSlotIDs with one match's own claim removed,
// used when rescheduling: a match may always move back into the slot it
// already holds.
func ClaimedExcluding(matches []*event.Match, matchID string) map[string]struct{} {
	kept := make([]*event.Match, 0, len(matches))
	for _, m := range matches {
		if m.ID == matchID {
			continue
		}
		kept = append(kept, m)
	}
	return ClaimedSlotIDs(kept)
}
