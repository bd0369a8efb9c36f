package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFlight_ArrivalTimeOfDay(t *testing.T) {
	f := Flight{
		DepartureTime: time.Date(2024, 3, 1, 22, 30, 0, 0, time.UTC),
		Duration:      2*time.Hour + 45*time.Minute,
	}

	assert.Equal(t, time.Date(2024, 3, 2, 1, 15, 0, 0, time.UTC), f.ArrivalTime())
	assert.Equal(t, "01:15", f.ArrivalTimeOfDay())
}

func TestFlightSection_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		section FlightSection
		wantErr bool
	}{
		{name: "valid", section: FlightSection{SeatClass: "economy", Rows: 10, Cols: 6}},
		{name: "missing class", section: FlightSection{Rows: 1, Cols: 1}, wantErr: true},
		{name: "zero rows", section: FlightSection{SeatClass: "first", Rows: 0, Cols: 4}, wantErr: true},
		{name: "negative cols", section: FlightSection{SeatClass: "first", Rows: 2, Cols: -1}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.section.Validate()
			if tc.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidInput))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFlightSection_Contains(t *testing.T) {
	s := FlightSection{Rows: 2, Cols: 3}

	assert.True(t, s.Contains(1, 1))
	assert.True(t, s.Contains(2, 3))
	assert.False(t, s.Contains(0, 1))
	assert.False(t, s.Contains(3, 1))
	assert.False(t, s.Contains(1, 4))
	assert.Equal(t, 6, s.Capacity())
}
