package domain

import "errors"

var (
	// ErrInvalidSelection rejects a seat pick on the client: booked, unknown
	// to the seat map, or from another flight.
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrConflict means a seat could not be booked at commit time.
	ErrConflict = errors.New("seat conflict")
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable means the inventory store did not answer a
	// compare-and-set in time. Callers may retry the whole batch.
	ErrStoreUnavailable     = errors.New("seat inventory unavailable")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidLayout        = errors.New("invalid seat layout")
	ErrDuplicate            = errors.New("already exists")
	ErrIdempotencyKeyReused = errors.New("idempotency key reused with a different seat set")
	// ErrAttemptInProgress means another instance is still running a commit
	// under the same idempotency key.
	ErrAttemptInProgress = errors.New("booking attempt in progress")
)
