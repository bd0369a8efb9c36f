// Package seatmap turns flight sections and seat records into a grid view.
package seatmap

import (
	"sort"

	"github.com/Domenick1991/seatbooking/internal/domain"
)

// Cell is one position of the grid. Row and Col are grid coordinates; a cell
// with no seat behind it is empty and cannot be selected.
type Cell struct {
	Row       int               `json:"row"`
	Col       int               `json:"col"`
	SeatID    string            `json:"seat_id,omitempty"`
	SectionID string            `json:"section_id,omitempty"`
	SeatClass string            `json:"seat_class,omitempty"`
	SeatRow   int               `json:"seat_row,omitempty"`
	Status    domain.SeatStatus `json:"status,omitempty"`
}

func (c Cell) Empty() bool {
	return c.SeatID == ""
}

func (c Cell) Selectable() bool {
	return !c.Empty() && c.Status == domain.SeatAvailable
}

// Band is the row range a section occupies in the grid.
type Band struct {
	SectionID string `json:"section_id"`
	SeatClass string `json:"seat_class"`
	FirstRow  int    `json:"first_row"`
	LastRow   int    `json:"last_row"`
	Cols      int    `json:"cols"`
}

type Grid struct {
	FlightID     int64    `json:"flight_id"`
	FlightNumber string   `json:"flight_number"`
	Rows         []int    `json:"rows"`
	Cols         []int    `json:"cols"`
	Cells        [][]Cell `json:"cells"`
	Bands        []Band   `json:"bands"`
	Available    int      `json:"available"`
	Booked       int      `json:"booked"`
}

// CellAt returns the cell at grid coordinate (row, col).
func (g *Grid) CellAt(row, col int) (Cell, bool) {
	r := sort.SearchInts(g.Rows, row)
	if r == len(g.Rows) || g.Rows[r] != row {
		return Cell{}, false
	}
	c := sort.SearchInts(g.Cols, col)
	if c == len(g.Cols) || g.Cols[c] != col {
		return Cell{}, false
	}
	return g.Cells[r][c], true
}

// Seat looks a seat up by id. It satisfies selection.SeatLookup.
func (g *Grid) Seat(id string) (domain.Seat, bool) {
	if id == "" {
		return domain.Seat{}, false
	}
	for _, row := range g.Cells {
		for _, cell := range row {
			if cell.SeatID == id {
				return domain.Seat{
					ID:        cell.SeatID,
					FlightID:  g.FlightID,
					SectionID: cell.SectionID,
					Row:       cell.SeatRow,
					Col:       cell.Col,
					Status:    cell.Status,
				}, true
			}
		}
	}
	return domain.Seat{}, false
}

// SeatCount is the number of non-empty cells.
func (g *Grid) SeatCount() int {
	return g.Available + g.Booked
}
