package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Domenick1991/seatbooking/internal/client"
	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/seatmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	flights []client.Flight
	grid    *seatmap.Grid
	result  *domain.BookingResult
	booked  []string
	key     string
}

func (f *fakeAPI) ListFlights(ctx context.Context) ([]client.Flight, error) {
	return f.flights, nil
}

func (f *fakeAPI) GetFlightByNumber(ctx context.Context, number string) (client.Flight, error) {
	for _, fl := range f.flights {
		if fl.FlightNumber == number {
			return fl, nil
		}
	}
	return client.Flight{}, fmt.Errorf("flight %s: %w", number, domain.ErrNotFound)
}

func (f *fakeAPI) SeatMap(ctx context.Context, flightID int64) (*seatmap.Grid, error) {
	if flightID != f.grid.FlightID {
		return nil, domain.ErrNotFound
	}
	return f.grid, nil
}

func (f *fakeAPI) CommitBooking(ctx context.Context, flightID int64, seatIDs []string, key string) (*domain.BookingResult, error) {
	f.booked = seatIDs
	f.key = key
	return f.result, nil
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	section := domain.FlightSection{ID: "economy", SeatClass: "economy", Rows: 2, Cols: 2}
	flight := domain.Flight{ID: 7, FlightNumber: "SB101", SectionIDs: []string{"economy"}}
	ids := []string{"r1c1", "r1c2", "r2c1", "r2c2"}
	next := 0
	seats := seatmap.GenerateSeats(7, section, func() string { next++; return ids[next-1] })
	seats[0].Status = domain.SeatBooked
	grid, err := seatmap.Project(flight, []domain.FlightSection{section}, seats)
	require.NoError(t, err)
	return &fakeAPI{
		flights: []client.Flight{{ID: 7, FlightNumber: "SB101", FromAirport: "SVO", ToAirport: "LED", SectionIDs: []string{"economy"}}},
		grid:    grid,
		result:  &domain.BookingResult{Status: domain.BookingSuccess, FlightID: 7, BookedSeats: []string{"r1c2", "r2c1"}},
	}
}

func run(t *testing.T, api *fakeAPI, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(func(string) API { return api })
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestFlightsCommand(t *testing.T) {
	output, err := run(t, newFakeAPI(t), "flights")
	require.NoError(t, err)
	assert.Contains(t, output, "SB101")
	assert.Contains(t, output, "SVO")
}

func TestSeatMapCommand(t *testing.T) {
	output, err := run(t, newFakeAPI(t), "seatmap", "sb101")
	require.NoError(t, err)
	assert.Contains(t, output, "[x]")
	assert.Contains(t, output, "3 free / 4 seats")

	_, err = run(t, newFakeAPI(t), "seatmap", "SB999")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestBookCommand(t *testing.T) {
	api := newFakeAPI(t)
	output, err := run(t, api, "book", "7", "1:2", "r2c1", "--key", "k-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1c2", "r2c1"}, api.booked)
	assert.Equal(t, "k-1", api.key)
	assert.Contains(t, output, "SUCCESS")
}

func TestBookCommand_RejectsBookedSeat(t *testing.T) {
	api := newFakeAPI(t)
	_, err := run(t, api, "book", "7", "1:1")
	assert.True(t, errors.Is(err, domain.ErrInvalidSelection))
	assert.Nil(t, api.booked, "nothing is sent for an invalid selection")

	_, err = run(t, api, "book", "7", "9:9")
	assert.True(t, errors.Is(err, domain.ErrInvalidSelection))
}

func TestBookCommand_Conflict(t *testing.T) {
	api := newFakeAPI(t)
	api.result = &domain.BookingResult{Status: domain.BookingConflict, FlightID: 7, ConflictingSeats: []string{"r1c2"}}

	output, err := run(t, api, "book", "SB101", "r1c2")
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Contains(t, output, "CONFLICT")
	assert.NotEmpty(t, api.key)
}

func TestVersionCommand(t *testing.T) {
	output, err := run(t, newFakeAPI(t), "version")
	require.NoError(t, err)
	assert.Equal(t, "seatctl dev\n", output)
}
