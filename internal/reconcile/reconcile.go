package reconcile

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/availability"
	"github.com/mauv0809/courtside/internal/booking"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/slots"
)

// AvailableSlots returns every future slot no match currently claims,
// sorted by start time.
func (r *Reconciler) AvailableSlots(now time.Time) ([]slots.TimeSlot, error) {
	start := time.Now()
	defer func() { r.metrics.ObserveReconcileDuration(time.Since(start).Seconds()) }()

	all, err := r.allSlots()
	if err != nil {
		return nil, err
	}
	matches, err := r.source.GetAllMatches()
	if err != nil {
		return nil, &booking.TransientIOError{Op: "read matches", Err: err}
	}
	return slots.FutureUnbooked(all, booking.ClaimedSlotIDs(matches), now), nil
}

// CandidateSlotsForMatch returns the slots a given match could be booked
// into. Every free slot is a candidate for every match: a participant's
// slot preferences express interest, they never exclude the opponent.
func (r *Reconciler) CandidateSlotsForMatch(matchID string, now time.Time) ([]slots.TimeSlot, error) {
	if _, err := r.source.GetMatch(matchID); err != nil {
		return nil, &booking.NotFoundError{Kind: "match", ID: matchID}
	}
	return r.AvailableSlots(now)
}

// ScheduleDates returns the sorted distinct calendar dates that still
// have free slots, the grouping surface shown to players and organizers.
func (r *Reconciler) ScheduleDates(now time.Time) ([]string, error) {
	free, err := r.AvailableSlots(now)
	if err != nil {
		return nil, err
	}
	return slots.ScheduleDates(free), nil
}

// IsDateUnavailable reports whether the player has marked the date as
// unavailable.
func (r *Reconciler) IsDateUnavailable(playerID, date string) (bool, error) {
	unavailable, err := r.avail.GetDateUnavailability(availability.DateKey{PlayerID: playerID, Date: date})
	if err != nil {
		return false, &booking.TransientIOError{Op: "read date unavailability", Err: err}
	}
	return unavailable, nil
}

// IsInterested reports whether the player has an active preference for
// the slot. A recorded preference is masked whenever the player is
// globally off or the slot's date has since been marked unavailable;
// the stale preference row stays in storage but never surfaces here.
func (r *Reconciler) IsInterested(playerID, slotID string) (bool, error) {
	preferred, err := r.avail.GetSlotPreference(availability.SlotKey{PlayerID: playerID, SlotID: slotID})
	if err != nil {
		return false, &booking.TransientIOError{Op: "read slot preference", Err: err}
	}
	if !preferred {
		return false, nil
	}

	available, err := r.avail.GetGlobalAvailability(playerID)
	if err != nil {
		return false, &booking.TransientIOError{Op: "read global availability", Err: err}
	}
	if !available {
		return false, nil
	}

	slot, found, err := r.findSlot(slotID)
	if err != nil {
		return false, err
	}
	if found {
		unavailable, err := r.IsDateUnavailable(playerID, slot.DateKey())
		if err != nil {
			return false, err
		}
		if unavailable {
			return false, nil
		}
	}
	return true, nil
}

// ToggleSlotPreference flips the player's interest in a slot. Recording
// interest is gated: it is rejected while the player is marked
// unavailable for the slot's date. Withdrawing interest is always
// allowed.
func (r *Reconciler) ToggleSlotPreference(playerID, slotID string) (bool, error) {
	if !r.source.IsKnownPlayer(playerID) {
		return false, &booking.NotFoundError{Kind: "player", ID: playerID}
	}
	slot, found, err := r.findSlot(slotID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, &booking.NotFoundError{Kind: "slot", ID: slotID}
	}

	key := availability.SlotKey{PlayerID: playerID, SlotID: slotID}
	preferred, err := r.avail.GetSlotPreference(key)
	if err != nil {
		return false, &booking.TransientIOError{Op: "read slot preference", Err: err}
	}

	if preferred {
		if err := r.avail.RemoveSlotPreference(key); err != nil {
			return false, &booking.TransientIOError{Op: "remove slot preference", Err: err}
		}
	} else {
		unavailable, err := r.IsDateUnavailable(playerID, slot.DateKey())
		if err != nil {
			return false, err
		}
		if unavailable {
			return false, &booking.ValidationError{Reason: "cannot express interest in a slot on an unavailable date"}
		}
		if err := r.avail.SetSlotPreference(key, true); err != nil {
			return false, &booking.TransientIOError{Op: "set slot preference", Err: err}
		}
	}

	r.metrics.IncOverrideToggles("slot")
	r.pubsub.SendMessage(pubsub.EventOverrideToggled, pubsub.OverrideEvent{
		PlayerID: playerID, Kind: "slot", Key: slotID, Value: !preferred,
	})
	log.Info("Slot preference toggled", "playerID", playerID, "slotID", slotID, "preferred", !preferred)
	return !preferred, nil
}

// ToggleDateUnavailability flips the player's unavailability for a
// calendar date. A preference already recorded for a slot on that date
// is left in place; IsInterested masks it while the date stays
// unavailable.
func (r *Reconciler) ToggleDateUnavailability(playerID, date string) (bool, error) {
	if !r.source.IsKnownPlayer(playerID) {
		return false, &booking.NotFoundError{Kind: "player", ID: playerID}
	}
	if _, err := time.ParseInLocation("2006-01-02", date, time.Local); err != nil {
		return false, &booking.ValidationError{Reason: "date must be formatted YYYY-MM-DD"}
	}

	key := availability.DateKey{PlayerID: playerID, Date: date}
	unavailable, err := r.avail.GetDateUnavailability(key)
	if err != nil {
		return false, &booking.TransientIOError{Op: "read date unavailability", Err: err}
	}

	if unavailable {
		if err := r.avail.RemoveDateUnavailability(key); err != nil {
			return false, &booking.TransientIOError{Op: "remove date unavailability", Err: err}
		}
	} else {
		if err := r.avail.SetDateUnavailability(key, true); err != nil {
			return false, &booking.TransientIOError{Op: "set date unavailability", Err: err}
		}
	}

	r.metrics.IncOverrideToggles("date")
	r.pubsub.SendMessage(pubsub.EventOverrideToggled, pubsub.OverrideEvent{
		PlayerID: playerID, Kind: "date", Key: date, Value: !unavailable,
	})
	log.Info("Date unavailability toggled", "playerID", playerID, "date", date, "unavailable", !unavailable)
	return !unavailable, nil
}

// SetGlobalAvailability records whether the player is taking part in
// scheduling at all. Setting it back to available removes the override
// so the player reverts to the default state.
func (r *Reconciler) SetGlobalAvailability(playerID string, available bool) error {
	if !r.source.IsKnownPlayer(playerID) {
		return &booking.NotFoundError{Kind: "player", ID: playerID}
	}

	var err error
	if available {
		err = r.avail.RemoveGlobalAvailability(playerID)
	} else {
		err = r.avail.SetGlobalAvailability(playerID, false)
	}
	if err != nil {
		return &booking.TransientIOError{Op: "set global availability", Err: err}
	}

	r.metrics.IncOverrideToggles("global")
	r.pubsub.SendMessage(pubsub.EventOverrideToggled, pubsub.OverrideEvent{
		PlayerID: playerID, Kind: "global", Key: playerID, Value: available,
	})
	log.Info("Global availability set", "playerID", playerID, "available", available)
	return nil
}

// allSlots normalizes and dedupes the full raw registry, past and
// booked slots included, so date lookups work for any known slot id.
func (r *Reconciler) allSlots() ([]slots.TimeSlot, error) {
	records, err := r.source.GetRawSlots()
	if err != nil {
		return nil, &booking.TransientIOError{Op: "read slots", Err: err}
	}
	raws := make([][]byte, len(records))
	for i, rec := range records {
		raws[i] = rec.Raw
	}
	return slots.Dedupe(slots.NormalizeAll(raws)), nil
}

func (r *Reconciler) findSlot(slotID string) (slots.TimeSlot, bool, error) {
	all, err := r.allSlots()
	if err != nil {
		return slots.TimeSlot{}, false, err
	}
	slot, found := slots.FindByID(all, slotID)
	return slot, found, nil
}
