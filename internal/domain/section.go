package domain

import (
	"fmt"
	"time"
)

// FlightSection is a block of seats laid out as Rows x Cols. Sections are
// never resized: seats are generated from the geometry once.
type FlightSection struct {
	ID        string
	SeatClass string
	Rows      int
	Cols      int
	CreatedAt time.Time
}

func (s FlightSection) Capacity() int {
	return s.Rows * s.Cols
}

func (s FlightSection) Validate() error {
	if s.SeatClass == "" {
		return fmt.Errorf("%w: seat class is required", ErrInvalidInput)
	}
	if s.Rows <= 0 || s.Cols <= 0 {
		return fmt.Errorf("%w: rows and cols must be positive", ErrInvalidInput)
	}
	return nil
}

// Contains reports whether the 1-based coordinate lies inside the section.
func (s FlightSection) Contains(row, col int) bool {
	return row >= 1 && row <= s.Rows && col >= 1 && col <= s.Cols
}
