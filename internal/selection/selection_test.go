package selection

import (
	"errors"
	"testing"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seatMap map[string]domain.Seat

func (m seatMap) Seat(id string) (domain.Seat, bool) {
	s, ok := m[id]
	return s, ok
}

func testMap() seatMap {
	return seatMap{
		"a": {ID: "a", FlightID: 1, Row: 1, Col: 1, Status: domain.SeatAvailable},
		"b": {ID: "b", FlightID: 1, Row: 1, Col: 2, Status: domain.SeatAvailable},
		"c": {ID: "c", FlightID: 1, Row: 2, Col: 1, Status: domain.SeatBooked},
		"x": {ID: "x", FlightID: 2, Row: 1, Col: 1, Status: domain.SeatAvailable},
	}
}

func TestSet_Add(t *testing.T) {
	set := New(1, testMap())

	require.NoError(t, set.Add("b"))
	require.NoError(t, set.Add("a"))
	require.NoError(t, set.Add("b"))

	assert.Equal(t, []string{"b", "a"}, set.IDs())
	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Contains("a"))
}

func TestSet_Add_Rejects(t *testing.T) {
	testCases := []struct {
		name   string
		seatID string
	}{
		{name: "booked seat", seatID: "c"},
		{name: "other flight", seatID: "x"},
		{name: "unknown seat", seatID: "zzz"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			set := New(1, testMap())

			err := set.Add(tc.seatID)

			assert.True(t, errors.Is(err, domain.ErrInvalidSelection), "got %v", err)
			assert.Equal(t, 0, set.Len())
		})
	}
}

func TestSet_Add_WithoutSeatMap(t *testing.T) {
	set := New(1, nil)

	err := set.Add("a")

	assert.True(t, errors.Is(err, domain.ErrInvalidSelection))
}

func TestSet_Remove(t *testing.T) {
	set := New(1, testMap())
	require.NoError(t, set.Add("a"))
	require.NoError(t, set.Add("b"))

	set.Remove("a")
	set.Remove("not-there")

	assert.Equal(t, []string{"b"}, set.IDs())
	assert.False(t, set.Contains("a"))
}

func TestSet_Toggle(t *testing.T) {
	set := New(1, testMap())

	selected, err := set.Toggle("a")
	require.NoError(t, err)
	assert.True(t, selected)

	selected, err = set.Toggle("a")
	require.NoError(t, err)
	assert.False(t, selected)

	selected, err = set.Toggle("c")
	assert.Error(t, err)
	assert.False(t, selected)
	assert.Equal(t, 0, set.Len())
}

func TestSet_ClearAndDrop(t *testing.T) {
	set := New(1, testMap())
	require.NoError(t, set.Add("a"))
	require.NoError(t, set.Add("b"))

	set.Drop("a", "missing")
	assert.Equal(t, []string{"b"}, set.IDs())

	set.Clear()
	assert.Equal(t, 0, set.Len())
	assert.Empty(t, set.IDs())
	require.NoError(t, set.Add("a"))
}

func TestSet_Refresh(t *testing.T) {
	set := New(1, testMap())
	require.NoError(t, set.Add("a"))

	updated := testMap()
	updated["b"] = domain.Seat{ID: "b", FlightID: 1, Status: domain.SeatBooked}
	set.Refresh(updated)

	assert.True(t, set.Contains("a"))
	assert.Error(t, set.Add("b"))
}

func TestSet_IDsIsACopy(t *testing.T) {
	set := New(1, testMap())
	require.NoError(t, set.Add("a"))

	ids := set.IDs()
	ids[0] = "mutated"

	assert.Equal(t, []string{"a"}, set.IDs())
}
