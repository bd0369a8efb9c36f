// Package inventorytest holds the behaviour every inventory.Store must share.
package inventorytest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/inventory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunConformance runs the shared Store checks. newStore must return an empty
// store, or one in which the flight ids used here are unused.
func RunConformance(t *testing.T, newStore func(t *testing.T) inventory.Store) {
	t.Run("create and list", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		flightID, seats := fixture(2, 3)

		require.NoError(t, store.CreateSeats(ctx, seats))

		listed, err := store.ListSeats(ctx, flightID)
		require.NoError(t, err)
		assert.Len(t, listed, len(seats))
		for _, seat := range listed {
			assert.Equal(t, flightID, seat.FlightID)
			assert.Equal(t, domain.SeatAvailable, seat.Status)
		}

		other, err := store.ListSeats(ctx, flightID+1)
		require.NoError(t, err)
		assert.Empty(t, other)
	})

	t.Run("create duplicate", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		_, seats := fixture(1, 2)

		require.NoError(t, store.CreateSeats(ctx, seats))
		err := store.CreateSeats(ctx, seats[:1])
		assert.ErrorIs(t, err, domain.ErrDuplicate)
	})

	t.Run("status of unknown seat", func(t *testing.T) {
		store := newStore(t)
		_, err := store.StatusOf(context.Background(), uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("try book succeeds once", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		_, seats := fixture(1, 1)
		require.NoError(t, store.CreateSeats(ctx, seats))
		id := seats[0].ID

		ok, err := store.TryBook(ctx, id, domain.SeatAvailable, "attempt-1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.TryBook(ctx, id, domain.SeatAvailable, "attempt-2")
		require.NoError(t, err)
		assert.False(t, ok)

		status, err := store.StatusOf(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.SeatBooked, status)
	})

	t.Run("try book unknown seat", func(t *testing.T) {
		store := newStore(t)
		ok, err := store.TryBook(context.Background(), uuid.NewString(), domain.SeatAvailable, "attempt-1")
		assert.False(t, ok)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("try book rejects bad arguments", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		_, seats := fixture(1, 1)
		require.NoError(t, store.CreateSeats(ctx, seats))

		_, err := store.TryBook(ctx, seats[0].ID, domain.SeatBooked, "attempt-1")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = store.TryBook(ctx, seats[0].ID, domain.SeatAvailable, "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		status, err := store.StatusOf(ctx, seats[0].ID)
		require.NoError(t, err)
		assert.Equal(t, domain.SeatAvailable, status)
	})

	t.Run("release only by holder", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		_, seats := fixture(1, 1)
		require.NoError(t, store.CreateSeats(ctx, seats))
		id := seats[0].ID

		ok, err := store.Release(ctx, id, "attempt-1")
		require.NoError(t, err)
		assert.False(t, ok, "available seat must not be released")

		ok, err = store.TryBook(ctx, id, domain.SeatAvailable, "attempt-1")
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = store.Release(ctx, id, "attempt-2")
		require.NoError(t, err)
		assert.False(t, ok, "another holder must not release the seat")

		ok, err = store.Release(ctx, id, "attempt-1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Release(ctx, id, "attempt-1")
		require.NoError(t, err)
		assert.False(t, ok, "second release is a no-op")

		status, err := store.StatusOf(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.SeatAvailable, status)
	})

	t.Run("concurrent try book has one winner", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		_, seats := fixture(1, 1)
		require.NoError(t, store.CreateSeats(ctx, seats))

		const contenders = 32
		var (
			wg      sync.WaitGroup
			winners atomic.Int32
			start   = make(chan struct{})
		)
		for i := 0; i < contenders; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				ok, err := store.TryBook(ctx, seats[0].ID, domain.SeatAvailable, fmt.Sprintf("attempt-%d", i))
				if err == nil && ok {
					winners.Add(1)
				}
			}(i)
		}
		close(start)
		wg.Wait()

		assert.Equal(t, int32(1), winners.Load())
	})
}

var nextFlight atomic.Int64

// fixture returns a fresh flight id and rows*cols available seats on it.
func fixture(rows, cols int) (int64, []domain.Seat) {
	flightID := 1_000_000 + nextFlight.Add(1)
	section := uuid.NewString()
	seats := make([]domain.Seat, 0, rows*cols)
	for r := 1; r <= rows; r++ {
		for c := 1; c <= cols; c++ {
			seats = append(seats, domain.Seat{
				ID:        uuid.NewString(),
				FlightID:  flightID,
				SectionID: section,
				Row:       r,
				Col:       c,
				Status:    domain.SeatAvailable,
			})
		}
	}
	return flightID, seats
}
