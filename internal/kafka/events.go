package kafka

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Domenick1991/seatbooking/internal/domain"
)

type EventType string

const (
	EventBookingCommitted   EventType = "booking_committed"
	EventBookingConflicted  EventType = "booking_conflicted"
	EventCompensationFailed EventType = "compensation_failed"
)

// BookingEvent is published once per finished commit. LeakedSeats and Holder
// are only set on compensation_failed: those seats stayed BOOKED by Holder
// after a failed commit and must be released.
type BookingEvent struct {
	Type             EventType `json:"type"`
	AttemptID        string    `json:"attempt_id"`
	FlightID         int64     `json:"flight_id"`
	SeatIDs          []string  `json:"seat_ids"`
	ConflictingSeats []string  `json:"conflicting_seats,omitempty"`
	LeakedSeats      []string  `json:"leaked_seats,omitempty"`
	Holder           string    `json:"holder,omitempty"`
	Retryable        bool      `json:"retryable,omitempty"`
	At               time.Time `json:"at"`
}

// Key partitions events by flight so one flight's events stay ordered.
func (e BookingEvent) Key() string {
	return strconv.FormatInt(e.FlightID, 10)
}

// EventFromResult describes a finished commit.
func EventFromResult(result domain.BookingResult, seatIDs []string, at time.Time) BookingEvent {
	event := BookingEvent{
		Type:      EventBookingCommitted,
		AttemptID: result.AttemptID,
		FlightID:  result.FlightID,
		SeatIDs:   seatIDs,
		At:        at,
	}
	if !result.Succeeded() {
		event.Type = EventBookingConflicted
		event.ConflictingSeats = result.ConflictingSeats
		event.Retryable = result.Retryable
	}
	return event
}

func DecodeEvent(data []byte) (BookingEvent, error) {
	var event BookingEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return BookingEvent{}, fmt.Errorf("decode booking event: %w", err)
	}
	switch event.Type {
	case EventBookingCommitted, EventBookingConflicted, EventCompensationFailed:
		return event, nil
	default:
		return BookingEvent{}, fmt.Errorf("decode booking event: unknown type %q", event.Type)
	}
}
