package booking

import (
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/event"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/pubsub"
	"github.com/mauv0809/courtside/internal/slots"
)

// New creates a new Engine.
func New(store Store, notifier notifier.Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient) *Engine {
	return &Engine{
		store:    store,
		notifier: notifier,
		metrics:  metrics,
		pubsub:   pubsub,
	}
}

// Book transitions a pending match to scheduled by claiming the slot.
// The slot must exist among the current future, unbooked slots; the
// claim itself is committed through the store's slot_claims key, so a
// concurrent booking of the same slot loses cleanly with a ConflictError.
func (e *Engine) Book(matchID, slotID string, dryRun bool) (*event.Match, error) {
	match, err := e.getMatch(matchID)
	if err != nil {
		return nil, err
	}
	if match.IsCompleted() {
		return nil, &ValidationError{Reason: "match already has a recorded result"}
	}
	if match.Status == event.StatusScheduled {
		return nil, &ValidationError{Reason: "match is already scheduled; reschedule or cancel instead"}
	}
	if slotID == "" {
		return nil, &ValidationError{Reason: "no slot selected"}
	}

	slot, err := e.findBookableSlot(slotID, "")
	if err != nil {
		return nil, err
	}

	if dryRun {
		log.Info("[Dry Run] Would book match", "matchID", matchID, "slotID", slotID)
		return match, nil
	}

	if err := e.store.ScheduleMatch(matchID, slot.ID, slot.Start, slot.Location, slot.Field, ""); err != nil {
		return nil, e.mapStoreError("book match", slotID, err)
	}

	e.metrics.IncBookingsConfirmed()
	e.pubsub.SendMessage(pubsub.EventSlotBooked, pubsub.BookingEvent{MatchID: matchID, SlotID: slot.ID})
	e.notify(func(m *event.Match, players []event.Player) error {
		return e.notifier.SendBookingConfirmation(m, slot, players, dryRun)
	}, matchID)

	log.Info("Match booked", "matchID", matchID, "slotID", slot.ID)
	return e.getMatch(matchID)
}

// Reschedule moves a scheduled match to a different slot. The match's
// own current claim is excluded from the conflict check, so moving a
// match back into its own slot is a no-op rather than a conflict.
func (e *Engine) Reschedule(matchID, slotID string, dryRun bool) (*event.Match, error) {
	match, err := e.getMatch(matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != event.StatusScheduled {
		return nil, &ValidationError{Reason: "only a scheduled match can be rescheduled"}
	}
	if slotID == "" {
		return nil, &ValidationError{Reason: "no slot selected"}
	}

	slot, err := e.findBookableSlot(slotID, matchID)
	if err != nil {
		return nil, err
	}

	if dryRun {
		log.Info("[Dry Run] Would reschedule match", "matchID", matchID, "slotID", slotID)
		return match, nil
	}

	prevSlotID := ""
	if match.SlotID != nil {
		prevSlotID = *match.SlotID
	}
	if err := e.store.ScheduleMatch(matchID, slot.ID, slot.Start, slot.Location, slot.Field, prevSlotID); err != nil {
		return nil, e.mapStoreError("reschedule match", slotID, err)
	}

	e.metrics.IncBookingsConfirmed()
	e.pubsub.SendMessage(pubsub.EventSlotBooked, pubsub.BookingEvent{MatchID: matchID, SlotID: slot.ID})
	e.notify(func(m *event.Match, players []event.Player) error {
		return e.notifier.SendBookingConfirmation(m, slot, players, dryRun)
	}, matchID)

	log.Info("Match rescheduled", "matchID", matchID, "from", prevSlotID, "to", slot.ID)
	return e.getMatch(matchID)
}

// CancelBooking releases a scheduled match's slot and returns the match
// to pending. There is no guard beyond the match being scheduled; both
// participants and organizers may cancel.
func (e *Engine) CancelBooking(matchID string, dryRun bool) (*event.Match, error) {
	match, err := e.getMatch(matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != event.StatusScheduled {
		return nil, &ValidationError{Reason: "match is not scheduled"}
	}

	if dryRun {
		log.Info("[Dry Run] Would cancel booking", "matchID", matchID)
		return match, nil
	}

	if err := e.store.ClearSchedule(matchID); err != nil {
		return nil, e.mapStoreError("cancel booking", "", err)
	}

	e.metrics.IncBookingsCancelled()
	e.pubsub.SendMessage(pubsub.EventBookingCancelled, pubsub.BookingEvent{MatchID: matchID})
	e.notify(func(m *event.Match, players []event.Player) error {
		return e.notifier.SendBookingCancelled(m, players, dryRun)
	}, matchID)

	log.Info("Booking cancelled", "matchID", matchID)
	return e.getMatch(matchID)
}

// EnterResult records a final score and completes the match. A pending
// match may be completed directly (played outside the schedule); a
// scheduled match keeps its slot reference as a historical record.
func (e *Engine) EnterResult(matchID string, score1, score2 int, dryRun bool) (*event.Match, error) {
	match, err := e.getMatch(matchID)
	if err != nil {
		return nil, err
	}
	if match.IsCompleted() {
		return nil, &ValidationError{Reason: "match already has a recorded result"}
	}
	if score1 < 0 || score2 < 0 {
		return nil, &ValidationError{Reason: "scores must be non-negative integers"}
	}

	if dryRun {
		log.Info("[Dry Run] Would enter result", "matchID", matchID, "score1", score1, "score2", score2)
		return match, nil
	}

	if err := e.store.SetResult(matchID, score1, score2); err != nil {
		return nil, e.mapStoreError("enter result", "", err)
	}

	e.metrics.IncResultsRecorded()
	e.pubsub.SendMessage(pubsub.EventResultEntered, pubsub.BookingEvent{MatchID: matchID, Score1: &score1, Score2: &score2})
	e.notify(func(m *event.Match, players []event.Player) error {
		return e.notifier.SendResultRecorded(m, players, dryRun)
	}, matchID)

	log.Info("Result recorded", "matchID", matchID, "score1", score1, "score2", score2)
	return e.getMatch(matchID)
}

// DeleteResult removes a recorded result. Organizer-only (the caller is
// assumed to have checked the capability). Deletion is a full reset:
// scores and scheduling are both cleared and the slot is released.
func (e *Engine) DeleteResult(matchID string, dryRun bool) (*event.Match, error) {
	match, err := e.getMatch(matchID)
	if err != nil {
		return nil, err
	}
	if !match.IsCompleted() {
		return nil, &ValidationError{Reason: "match has no recorded result"}
	}

	if dryRun {
		log.Info("[Dry Run] Would delete result", "matchID", matchID)
		return match, nil
	}

	if err := e.store.ClearResult(matchID); err != nil {
		return nil, e.mapStoreError("delete result", "", err)
	}

	e.pubsub.SendMessage(pubsub.EventResultDeleted, pubsub.BookingEvent{MatchID: matchID})

	log.Info("Result deleted", "matchID", matchID)
	return e.getMatch(matchID)
}

// AvailableSlots returns the current future, unbooked slots: registry
// output minus the booking index, both recomputed from fresh reads.
func (e *Engine) AvailableSlots(now time.Time) ([]slots.TimeSlot, error) {
	records, err := e.store.GetRawSlots()
	if err != nil {
		return nil, &TransientIOError{Op: "read slots", Err: err}
	}
	matches, err := e.store.GetAllMatches()
	if err != nil {
		return nil, &TransientIOError{Op: "read matches", Err: err}
	}

	raws := make([][]byte, len(records))
	for i, r := range records {
		raws[i] = r.Raw
	}
	all := slots.Dedupe(slots.NormalizeAll(raws))
	return slots.FutureUnbooked(all, ClaimedSlotIDs(matches), now), nil
}

// findBookableSlot locates the slot among the currently available ones,
// excluding excludeMatchID's own claim from the booking index.
func (e *Engine) findBookableSlot(slotID, excludeMatchID string) (slots.TimeSlot, error) {
	records, err := e.store.GetRawSlots()
	if err != nil {
		return slots.TimeSlot{}, &TransientIOError{Op: "read slots", Err: err}
	}
	matches, err := e.store.GetAllMatches()
	if err != nil {
		return slots.TimeSlot{}, &TransientIOError{Op: "read matches", Err: err}
	}

	raws := make([][]byte, len(records))
	for i, r := range records {
		raws[i] = r.Raw
	}
	all := slots.Dedupe(slots.NormalizeAll(raws))

	slot, ok := slots.FindByID(all, slotID)
	if !ok {
		return slots.TimeSlot{}, &ValidationError{Reason: "slot not found among current slots"}
	}
	if slot.Start <= time.Now().UnixMilli() {
		return slots.TimeSlot{}, &ValidationError{Reason: "slot is in the past"}
	}

	var claimed map[string]struct{}
	if excludeMatchID == "" {
		claimed = ClaimedSlotIDs(matches)
	} else {
		claimed = ClaimedExcluding(matches, excludeMatchID)
	}
	if len(slots.FutureUnbooked([]slots.TimeSlot{slot}, claimed, time.Now())) == 0 {
		e.metrics.IncBookingConflicts()
		return slots.TimeSlot{}, &ConflictError{SlotID: slotID}
	}
	return slot, nil
}

func (e *Engine) getMatch(matchID string) (*event.Match, error) {
	match, err := e.store.GetMatch(matchID)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			return nil, &NotFoundError{Kind: "match", ID: matchID}
		}
		return nil, &TransientIOError{Op: "read match", Err: err}
	}
	return match, nil
}

// mapStoreError translates store sentinels into the engine's taxonomy.
func (e *Engine) mapStoreError(op, slotID string, err error) error {
	switch {
	case errors.Is(err, event.ErrSlotClaimed):
		e.metrics.IncBookingConflicts()
		return &ConflictError{SlotID: slotID}
	case errors.Is(err, event.ErrNotFound):
		return &NotFoundError{Kind: "match", ID: ""}
	default:
		return &TransientIOError{Op: op, Err: err}
	}
}

func (e *Engine) notify(send func(m *event.Match, players []event.Player) error, matchID string) {
	match, err := e.store.GetMatch(matchID)
	if err != nil {
		log.Error("Failed to reload match for notification", "matchID", matchID, "error", err)
		return
	}
	players, err := e.store.GetPlayers([]string{match.Player1ID, match.Player2ID})
	if err != nil {
		log.Error("Failed to load players for notification", "matchID", matchID, "error", err)
		players = nil
	}
	if err := send(match, players); err != nil {
		log.Error("Failed to send notification", "matchID", matchID, "error", err)
	}
}
