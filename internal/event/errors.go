package event

import "errors"

// Sentinel errors surfaced by the store. Callers map these onto the
// booking error taxonomy.
var (
	// ErrNotFound means the referenced match, player or slot record does
	// not exist in the current snapshot.
	ErrNotFound = errors.New("not found")
	// ErrSlotClaimed means the slot claim row already exists for another
	// match, i.e. the store's own key uniqueness rejected the booking.
	ErrSlotClaimed = errors.New("slot already claimed")
)
