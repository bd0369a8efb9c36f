package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/inventory"
	"github.com/Domenick1991/seatbooking/internal/kafka"
	"github.com/Domenick1991/seatbooking/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSeatReleaser struct {
	mock.Mock
}

func (m *MockSeatReleaser) Release(ctx context.Context, seatID, holder string) (bool, error) {
	args := m.Called(ctx, seatID, holder)
	return args.Bool(0), args.Error(1)
}

type MockSeatCache struct {
	mock.Mock
}

func (m *MockSeatCache) InvalidateSeats(ctx context.Context, flightID int64) error {
	args := m.Called(ctx, flightID)
	return args.Error(0)
}

func TestReconciler_InvalidatesOnCommitAndConflict(t *testing.T) {
	cache := &MockSeatCache{}
	r := NewReconciler(&MockSeatReleaser{}, cache, logger.Discard())
	ctx := context.Background()

	cache.On("InvalidateSeats", ctx, int64(7)).Return(nil).Once()
	cache.On("InvalidateSeats", ctx, int64(8)).Return(errors.New("redis down")).Once()

	require.NoError(t, r.HandleEvent(ctx, kafka.BookingEvent{Type: kafka.EventBookingCommitted, FlightID: 7}))
	require.NoError(t, r.HandleEvent(ctx, kafka.BookingEvent{Type: kafka.EventBookingConflicted, FlightID: 8}))
	cache.AssertExpectations(t)
}

func TestReconciler_ReleasesLeakedSeats(t *testing.T) {
	store := inventory.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.CreateSeats(ctx, []domain.Seat{
		{ID: "r1c1", FlightID: 7, Row: 1, Col: 1},
		{ID: "r1c2", FlightID: 7, Row: 1, Col: 2},
	}))
	ok, err := store.TryBook(ctx, "r1c1", domain.SeatAvailable, "attempt-1")
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = store.TryBook(ctx, "r1c2", domain.SeatAvailable, "attempt-2")
	require.NoError(t, err)
	require.True(t, ok)

	r := NewReconciler(store, nil, logger.Discard())
	require.NoError(t, r.HandleEvent(ctx, kafka.BookingEvent{
		Type:        kafka.EventCompensationFailed,
		FlightID:    7,
		AttemptID:   "attempt-1",
		Holder:      "attempt-1",
		LeakedSeats: []string{"r1c1", "r1c2", "gone"},
	}))

	assert.Zero(t, r.Pending())
	status, err := store.StatusOf(ctx, "r1c1")
	require.NoError(t, err)
	assert.Equal(t, domain.SeatAvailable, status)

	status, err = store.StatusOf(ctx, "r1c2")
	require.NoError(t, err)
	assert.Equal(t, domain.SeatBooked, status, "seat of another holder stays booked")
}

func TestReconciler_SweepRetriesPending(t *testing.T) {
	store := &MockSeatReleaser{}
	cache := &MockSeatCache{}
	r := NewReconciler(store, cache, logger.Discard())
	ctx := context.Background()

	store.On("Release", ctx, "r1c1", "attempt-1").Return(false, domain.ErrStoreUnavailable).Once()
	cache.On("InvalidateSeats", ctx, int64(7)).Return(nil)

	require.NoError(t, r.HandleEvent(ctx, kafka.BookingEvent{
		Type:        kafka.EventCompensationFailed,
		FlightID:    7,
		Holder:      "attempt-1",
		LeakedSeats: []string{"r1c1"},
	}))
	assert.Equal(t, 1, r.Pending())

	store.On("Release", ctx, "r1c1", "attempt-1").Return(false, errors.New("timeout")).Once()
	assert.Equal(t, 1, r.Sweep(ctx))

	store.On("Release", ctx, "r1c1", "attempt-1").Return(true, nil).Once()
	assert.Equal(t, 0, r.Sweep(ctx))

	store.AssertExpectations(t)
	cache.AssertNumberOfCalls(t, "InvalidateSeats", 2)
}

func TestReconciler_RunStopsOnCancel(t *testing.T) {
	r := NewReconciler(&MockSeatReleaser{}, nil, logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, time.Millisecond) }()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}
