package inventory_test

import (
	"context"
	"testing"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/inventory"
	"github.com/Domenick1991/seatbooking/internal/inventory/inventorytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	inventorytest.RunConformance(t, func(t *testing.T) inventory.Store {
		return inventory.NewMemoryStore()
	})
}

func TestMemoryStore_ListSeatsReturnsCopies(t *testing.T) {
	store := inventory.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.CreateSeats(ctx, []domain.Seat{
		{ID: "s1", FlightID: 1, SectionID: "sec", Row: 1, Col: 1},
	}))

	seats, err := store.ListSeats(ctx, 1)
	require.NoError(t, err)
	require.Len(t, seats, 1)
	seats[0].Status = domain.SeatBooked

	status, err := store.StatusOf(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.SeatAvailable, status)
}

func TestMemoryStore_DuplicateInBatch(t *testing.T) {
	store := inventory.NewMemoryStore()
	err := store.CreateSeats(context.Background(), []domain.Seat{
		{ID: "s1", FlightID: 1, Row: 1, Col: 1},
		{ID: "s1", FlightID: 1, Row: 1, Col: 2},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	seats, err := store.ListSeats(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, seats)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	store := inventory.NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.TryBook(ctx, "s1", domain.SeatAvailable, "attempt-1")
	assert.ErrorIs(t, err, context.Canceled)
}
