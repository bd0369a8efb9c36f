package seatmap

import (
	"fmt"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/google/uuid"
)

// GenerateSeats returns the Rows x Cols available seats of a section for one
// flight, row-major and 1-based. newID defaults to random UUIDs.
func GenerateSeats(flightID int64, section domain.FlightSection, newID func() string) []domain.Seat {
	if newID == nil {
		newID = uuid.NewString
	}
	seats := make([]domain.Seat, 0, section.Capacity())
	for r := 1; r <= section.Rows; r++ {
		for c := 1; c <= section.Cols; c++ {
			seats = append(seats, domain.Seat{
				ID:        newID(),
				FlightID:  flightID,
				SectionID: section.ID,
				Row:       r,
				Col:       c,
				Status:    domain.SeatAvailable,
			})
		}
	}
	return seats
}

// CheckCoverage verifies that the seats of one section on one flight cover its
// geometry exactly: every coordinate once, nothing outside. Seats of other
// sections or flights are ignored.
func CheckCoverage(flightID int64, section domain.FlightSection, seats []domain.Seat) error {
	seen := make(map[[2]int]string, section.Capacity())
	ids := make(map[string]struct{}, section.Capacity())
	for _, seat := range seats {
		if seat.FlightID != flightID || seat.SectionID != section.ID {
			continue
		}
		if !section.Contains(seat.Row, seat.Col) {
			return fmt.Errorf("%w: seat %s at %d:%d outside %dx%d", domain.ErrInvalidLayout, seat.ID, seat.Row, seat.Col, section.Rows, section.Cols)
		}
		if _, dup := ids[seat.ID]; dup {
			return fmt.Errorf("%w: seat id %s repeated", domain.ErrInvalidLayout, seat.ID)
		}
		ids[seat.ID] = struct{}{}
		pos := [2]int{seat.Row, seat.Col}
		if other, dup := seen[pos]; dup {
			return fmt.Errorf("%w: seats %s and %s share %d:%d", domain.ErrInvalidLayout, other, seat.ID, seat.Row, seat.Col)
		}
		seen[pos] = seat.ID
	}
	if len(seen) != section.Capacity() {
		return fmt.Errorf("%w: section %s has %d of %d seats", domain.ErrInvalidLayout, section.ID, len(seen), section.Capacity())
	}
	return nil
}
