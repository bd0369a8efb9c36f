package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/Domenick1991/seatbooking/internal/client"
	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/seatmap"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func renderFlights(w io.Writer, flights []client.Flight) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"ID", "Flight", "From", "To", "Departure", "Arrival", "Sections"})
	for _, f := range flights {
		t.AppendRow(table.Row{
			f.ID,
			f.FlightNumber,
			f.FromAirport,
			f.ToAirport,
			f.DepartureTime.Format("2006-01-02 15:04"),
			f.ArrivalTimeOfDay,
			strings.Join(f.SectionIDs, ", "),
		})
	}
	t.Render()
}

// renderSeatMap prints one table row per grid row, with a class column
// merged across each section band.
func renderSeatMap(w io.Writer, grid *seatmap.Grid) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Flight %s  %d free / %d seats", grid.FlightNumber, grid.Available, grid.SeatCount()))

	header := table.Row{"Class", "Row"}
	for _, col := range grid.Cols {
		header = append(header, columnLetter(col))
	}
	t.AppendHeader(header)

	configs := []table.ColumnConfig{{Number: 1, AutoMerge: true}, {Number: 2, Align: text.AlignRight}}
	for i := range grid.Cols {
		configs = append(configs, table.ColumnConfig{Number: i + 3, Align: text.AlignCenter})
	}
	t.SetColumnConfigs(configs)

	for r, row := range grid.Rows {
		class := ""
		line := table.Row{"", row}
		for _, cell := range grid.Cells[r] {
			if class == "" {
				class = cell.SeatClass
			}
			line = append(line, seatToken(cell))
		}
		line[0] = class
		t.AppendRow(line)
	}
	t.SetCaption("[ ] free  [x] booked  seats are addressed as row:col, e.g. 3:2")
	t.Render()
}

func renderResult(w io.Writer, result *domain.BookingResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Status", "Attempt", "Booked", "Conflicting", "Retryable"})
	t.AppendRow(table.Row{
		result.Status,
		result.AttemptID,
		strings.Join(result.BookedSeats, ", "),
		strings.Join(result.ConflictingSeats, ", "),
		result.Retryable,
	})
	t.Render()
}

func seatToken(cell seatmap.Cell) string {
	switch {
	case cell.Empty():
		return ""
	case cell.Status == domain.SeatBooked:
		return "[x]"
	default:
		return "[ ]"
	}
}

func columnLetter(col int) string {
	if col >= 1 && col <= 26 {
		return string(rune('A' + col - 1))
	}
	return fmt.Sprintf("%d", col)
}
