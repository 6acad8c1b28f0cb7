package booking

import "fmt"

// ValidationError means the input to a booking or result operation was
// malformed. It is surfaced before any write; the operation is a no-op.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ConflictError means the chosen slot was already claimed at commit
// time. No partial state is persisted; the caller should pick another
// slot.
type ConflictError struct {
	SlotID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot %s is already booked, choose another", e.SlotID)
}

// NotFoundError means a referenced match or slot no longer exists in the
// current snapshot. The caller must refresh state.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// TransientIOError means the backing store was unreachable or a write
// timed out. The engine does not retry; the caller must re-invoke.
type TransientIOError struct {
	Op  string
	Err error
}

func (e *TransientIOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientIOError) Unwrap() error {
	return e.Err
}
