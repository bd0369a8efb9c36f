// Package selection holds the seats a single user has picked on a seat map
// before committing them. A Set is local, per-session state: it reserves
// nothing, and two users may pick the same seat. Conflicts surface when the
// booking is committed.
package selection

import (
	"fmt"

	"github.com/Domenick1991/seatbooking/internal/domain"
)

// SeatLookup resolves a seat id against the last projected seat map.
type SeatLookup interface {
	Seat(id string) (domain.Seat, bool)
}

// Set is not safe for concurrent use.
type Set struct {
	flightID int64
	lookup   SeatLookup
	order    []string
	members  map[string]struct{}
}

func New(flightID int64, lookup SeatLookup) *Set {
	return &Set{
		flightID: flightID,
		lookup:   lookup,
		members:  make(map[string]struct{}),
	}
}

func (s *Set) FlightID() int64 {
	return s.flightID
}

// Add selects a seat. Booked seats, seats missing from the seat map and seats
// of another flight are rejected with domain.ErrInvalidSelection. Adding a
// seat twice is a no-op.
func (s *Set) Add(seatID string) error {
	if _, ok := s.members[seatID]; ok {
		return nil
	}
	if s.lookup == nil {
		return fmt.Errorf("%w: no seat map loaded", domain.ErrInvalidSelection)
	}
	seat, ok := s.lookup.Seat(seatID)
	if !ok {
		return fmt.Errorf("%w: seat %q is not on the seat map", domain.ErrInvalidSelection, seatID)
	}
	if seat.FlightID != s.flightID {
		return fmt.Errorf("%w: seat %s belongs to flight %d, selection is for flight %d",
			domain.ErrInvalidSelection, seatID, seat.FlightID, s.flightID)
	}
	if !seat.Available() {
		return fmt.Errorf("%w: seat %s is already booked", domain.ErrInvalidSelection, seatID)
	}

	s.members[seatID] = struct{}{}
	s.order = append(s.order, seatID)
	return nil
}

func (s *Set) Remove(seatID string) {
	if _, ok := s.members[seatID]; !ok {
		return
	}
	delete(s.members, seatID)
	for i, id := range s.order {
		if id == seatID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Toggle adds the seat when absent and removes it otherwise. It reports
// whether the seat is selected afterwards.
func (s *Set) Toggle(seatID string) (bool, error) {
	if s.Contains(seatID) {
		s.Remove(seatID)
		return false, nil
	}
	if err := s.Add(seatID); err != nil {
		return false, err
	}
	return true, nil
}

// Drop removes every given seat, typically the conflicting seats of a failed
// commit.
func (s *Set) Drop(seatIDs ...string) {
	for _, id := range seatIDs {
		s.Remove(id)
	}
}

func (s *Set) Clear() {
	s.order = nil
	s.members = make(map[string]struct{})
}

// Refresh points the set at a newly projected seat map. Already selected
// seats are kept; they are checked again only at commit time.
func (s *Set) Refresh(lookup SeatLookup) {
	s.lookup = lookup
}

func (s *Set) Contains(seatID string) bool {
	_, ok := s.members[seatID]
	return ok
}

func (s *Set) Len() int {
	return len(s.order)
}

// IDs returns the selected seats in the order they were picked.
func (s *Set) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
