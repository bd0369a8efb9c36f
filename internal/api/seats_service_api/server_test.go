package seats_service_api

import (
	"context"
	"fmt"
	"net"
	"testing"

	"github.com/Domenick1991/seatbooking/internal/api/apierr"
	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/logger"
	"github.com/Domenick1991/seatbooking/internal/seatmap"
	"github.com/Domenick1991/seatbooking/internal/service/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type MockSeatMapUseCase struct {
	mock.Mock
}

func (m *MockSeatMapUseCase) ProjectSeatMap(ctx context.Context, flightID int64) (*seatmap.Grid, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seatmap.Grid), args.Error(1)
}

func (m *MockSeatMapUseCase) ProjectSeatMapByNumber(ctx context.Context, number string) (*seatmap.Grid, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seatmap.Grid), args.Error(1)
}

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CommitBooking(ctx context.Context, input booking.CommitInput) (*domain.BookingResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingResult), args.Error(1)
}

func startServer(t *testing.T, seatMaps *MockSeatMapUseCase, bookings *MockBookingUseCase) *Client {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(logger.UnaryServerInterceptor(logger.Discard())))
	RegisterSeatsServiceServer(srv, NewServer(seatMaps, bookings))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewClient(conn)
}

func TestServer_ProjectSeatMap(t *testing.T) {
	seatMaps := &MockSeatMapUseCase{}
	client := startServer(t, seatMaps, &MockBookingUseCase{})

	grid := &seatmap.Grid{
		FlightID:     7,
		FlightNumber: "SB101",
		Rows:         []int{1, 2},
		Cols:         []int{1},
		Cells: [][]seatmap.Cell{
			{{Row: 1, Col: 1, SeatID: "s1", SectionID: "business", SeatClass: "business", SeatRow: 1, Status: domain.SeatBooked}},
			{{Row: 2, Col: 1, SeatID: "s2", SectionID: "business", SeatClass: "business", SeatRow: 2, Status: domain.SeatAvailable}},
		},
		Bands:     []seatmap.Band{{SectionID: "business", SeatClass: "business", FirstRow: 1, LastRow: 2, Cols: 1}},
		Available: 1,
		Booked:    1,
	}
	seatMaps.On("ProjectSeatMap", mock.Anything, int64(7)).Return(grid, nil).Once()
	seatMaps.On("ProjectSeatMapByNumber", mock.Anything, "SB101").Return(grid, nil).Once()

	got, err := client.ProjectSeatMap(context.Background(), ProjectSeatMapRequest{FlightID: 7})
	require.NoError(t, err)
	assert.Equal(t, grid, got)

	got, err = client.ProjectSeatMap(context.Background(), ProjectSeatMapRequest{FlightNumber: "SB101"})
	require.NoError(t, err)
	assert.Equal(t, grid, got)
	seatMaps.AssertExpectations(t)
}

func TestServer_ProjectSeatMapErrors(t *testing.T) {
	seatMaps := &MockSeatMapUseCase{}
	client := startServer(t, seatMaps, &MockBookingUseCase{})

	seatMaps.On("ProjectSeatMap", mock.Anything, int64(9)).Return(nil, fmt.Errorf("flight 9: %w", domain.ErrNotFound)).Once()

	_, err := client.ProjectSeatMap(context.Background(), ProjectSeatMapRequest{FlightID: 9})
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Equal(t, "NOT_FOUND", apierr.Reason(err))

	_, err = client.ProjectSeatMap(context.Background(), ProjectSeatMapRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_CommitBooking(t *testing.T) {
	bookings := &MockBookingUseCase{}
	client := startServer(t, &MockSeatMapUseCase{}, bookings)

	success := &domain.BookingResult{Status: domain.BookingSuccess, FlightID: 7, AttemptID: "a1", BookedSeats: []string{"r1c1", "r1c2"}}
	conflict := &domain.BookingResult{Status: domain.BookingConflict, FlightID: 7, ConflictingSeats: []string{"r1c1"}}
	bookings.On("CommitBooking", mock.Anything, booking.CommitInput{FlightID: 7, SeatIDs: []string{"r1c1", "r1c2"}, IdempotencyKey: "k1"}).Return(success, nil).Once()
	bookings.On("CommitBooking", mock.Anything, booking.CommitInput{FlightID: 7, SeatIDs: []string{"r1c1", "r2c1"}, IdempotencyKey: "k2"}).Return(conflict, nil).Once()

	got, err := client.CommitBooking(context.Background(), CommitBookingRequest{FlightID: 7, SeatIDs: []string{"r1c1", "r1c2"}, IdempotencyKey: "k1"})
	require.NoError(t, err)
	assert.Equal(t, success, got)

	ctx := metadata.AppendToOutgoingContext(context.Background(), IdempotencyKeyMetadata, "k2")
	got, err = client.CommitBooking(ctx, CommitBookingRequest{FlightID: 7, SeatIDs: []string{"r1c1", "r2c1"}})
	require.NoError(t, err)
	assert.False(t, got.Succeeded())
	assert.Equal(t, []string{"r1c1"}, got.ConflictingSeats)
	bookings.AssertExpectations(t)
}

func TestServer_CommitBookingErrors(t *testing.T) {
	bookings := &MockBookingUseCase{}
	client := startServer(t, &MockSeatMapUseCase{}, bookings)

	bookings.On("CommitBooking", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: seats", domain.ErrIdempotencyKeyReused)).Once()

	_, err := client.CommitBooking(context.Background(), CommitBookingRequest{FlightID: 7, SeatIDs: []string{"r1c1"}, IdempotencyKey: "k1"})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.Equal(t, "IDEMPOTENCY_KEY_REUSED", apierr.Reason(err))

	_, err = client.CommitBooking(context.Background(), CommitBookingRequest{SeatIDs: []string{"r1c1"}})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	bookings.AssertExpectations(t)
}

func TestStructRoundTrip(t *testing.T) {
	in := CommitBookingRequest{FlightID: 42, SeatIDs: []string{"a", "b"}}
	s, err := toStruct(in)
	require.NoError(t, err)
	assert.Equal(t, float64(42), s.GetFields()["flight_id"].GetNumberValue())

	var out CommitBookingRequest
	require.NoError(t, fromStruct(s, &out))
	assert.Equal(t, in, out)

	var empty CommitBookingRequest
	require.NoError(t, fromStruct(nil, &empty))
	assert.Zero(t, empty)
}
