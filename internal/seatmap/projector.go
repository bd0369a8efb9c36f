package seatmap

import (
	"fmt"

	"github.com/Domenick1991/seatbooking/internal/domain"
)

type placement struct {
	section domain.FlightSection
	offset  int
}

// Project builds the seat grid of a flight. Sections are stacked in the
// order of flight.SectionIDs, so a seat at local row r of the k-th section is
// drawn at row r plus the rows of all sections before it. Columns are shared.
//
// Project does no I/O and never mutates its arguments.
func Project(flight domain.Flight, sections []domain.FlightSection, seats []domain.Seat) (*Grid, error) {
	byID := make(map[string]domain.FlightSection, len(sections))
	for _, s := range sections {
		byID[s.ID] = s
	}

	grid := &Grid{
		FlightID:     flight.ID,
		FlightNumber: flight.FlightNumber,
		Rows:         []int{},
		Cols:         []int{},
		Cells:        [][]Cell{},
		Bands:        []Band{},
	}

	placed := make(map[string]placement, len(flight.SectionIDs))
	height, width := 0, 0
	for _, id := range flight.SectionIDs {
		section, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: section %s of flight %d is missing", domain.ErrInvalidLayout, id, flight.ID)
		}
		if _, dup := placed[id]; dup {
			return nil, fmt.Errorf("%w: section %s listed twice on flight %d", domain.ErrInvalidLayout, id, flight.ID)
		}
		placed[id] = placement{section: section, offset: height}
		grid.Bands = append(grid.Bands, Band{
			SectionID: section.ID,
			SeatClass: section.SeatClass,
			FirstRow:  height + 1,
			LastRow:   height + section.Rows,
			Cols:      section.Cols,
		})
		height += section.Rows
		width = max(width, section.Cols)
	}

	for r := 1; r <= height; r++ {
		grid.Rows = append(grid.Rows, r)
	}
	for c := 1; c <= width; c++ {
		grid.Cols = append(grid.Cols, c)
	}
	grid.Cells = make([][]Cell, height)
	for r := range grid.Cells {
		row := make([]Cell, width)
		for c := range row {
			row[c] = Cell{Row: r + 1, Col: c + 1}
		}
		grid.Cells[r] = row
	}

	for _, seat := range seats {
		if seat.FlightID != flight.ID {
			return nil, fmt.Errorf("%w: seat %s belongs to flight %d, not %d", domain.ErrInvalidLayout, seat.ID, seat.FlightID, flight.ID)
		}
		p, ok := placed[seat.SectionID]
		if !ok {
			return nil, fmt.Errorf("%w: seat %s references unknown section %s", domain.ErrInvalidLayout, seat.ID, seat.SectionID)
		}
		if !p.section.Contains(seat.Row, seat.Col) {
			return nil, fmt.Errorf("%w: seat %s at %d:%d is outside section %s (%dx%d)",
				domain.ErrInvalidLayout, seat.ID, seat.Row, seat.Col, p.section.ID, p.section.Rows, p.section.Cols)
		}

		cell := &grid.Cells[p.offset+seat.Row-1][seat.Col-1]
		if !cell.Empty() {
			return nil, fmt.Errorf("%w: seats %s and %s share %d:%d in section %s",
				domain.ErrInvalidLayout, cell.SeatID, seat.ID, seat.Row, seat.Col, p.section.ID)
		}
		cell.SeatID = seat.ID
		cell.SectionID = seat.SectionID
		cell.SeatClass = p.section.SeatClass
		cell.SeatRow = seat.Row
		cell.Status = seat.Status

		switch seat.Status {
		case domain.SeatAvailable:
			grid.Available++
		case domain.SeatBooked:
			grid.Booked++
		}
	}

	return grid, nil
}
