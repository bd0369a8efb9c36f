package domain

import "time"

type BookingOutcome string

const (
	BookingSuccess  BookingOutcome = "SUCCESS"
	BookingConflict BookingOutcome = "CONFLICT"
)

type BookingResult struct {
	Status           BookingOutcome `json:"status"`
	FlightID         int64          `json:"flight_id"`
	AttemptID        string         `json:"attempt_id,omitempty"`
	BookedSeats      []string       `json:"booked_seats,omitempty"`
	ConflictingSeats []string       `json:"conflicting_seats,omitempty"`
	// Retryable marks conflicts caused by the store rather than by another booking.
	Retryable bool `json:"retryable"`
}

func (r BookingResult) Succeeded() bool {
	return r.Status == BookingSuccess
}

// BookingAttempt is the short-lived record of a completed commit, keyed by the
// caller's idempotency key.
type BookingAttempt struct {
	Key         string        `json:"key"`
	Fingerprint string        `json:"fingerprint"`
	Result      BookingResult `json:"result"`
	CompletedAt time.Time     `json:"completed_at"`
}
