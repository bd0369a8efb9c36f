package seats_service_api

import (
	"context"
	"fmt"

	"github.com/Domenick1991/seatbooking/internal/api/apierr"
	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/service/booking"
	"github.com/Domenick1991/seatbooking/internal/service/seatmaps"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

// IdempotencyKeyMetadata is read when the request body carries no key.
const IdempotencyKeyMetadata = "idempotency-key"

type ProjectSeatMapRequest struct {
	FlightID     int64  `json:"flight_id,omitempty"`
	FlightNumber string `json:"flight_number,omitempty"`
}

type CommitBookingRequest struct {
	FlightID       int64    `json:"flight_id"`
	SeatIDs        []string `json:"seat_ids"`
	IdempotencyKey string   `json:"idempotency_key,omitempty"`
}

// Server implements SeatsServiceServer on top of the seat map and booking
// use cases.
type Server struct {
	seatMaps seatmaps.SeatMapUseCase
	bookings booking.BookingUseCase
}

func NewServer(seatMaps seatmaps.SeatMapUseCase, bookings booking.BookingUseCase) *Server {
	return &Server{seatMaps: seatMaps, bookings: bookings}
}

func (s *Server) ProjectSeatMap(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req ProjectSeatMapRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, apierr.GRPC(fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
	}

	var err error
	var out any
	switch {
	case req.FlightNumber != "":
		out, err = s.seatMaps.ProjectSeatMapByNumber(ctx, req.FlightNumber)
	case req.FlightID > 0:
		out, err = s.seatMaps.ProjectSeatMap(ctx, req.FlightID)
	default:
		err = fmt.Errorf("%w: flight_id or flight_number is required", domain.ErrInvalidInput)
	}
	if err != nil {
		return nil, apierr.GRPC(err)
	}
	return encode(out)
}

// CommitBooking answers conflicts with an OK status; the result's status
// field tells them apart.
func (s *Server) CommitBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req CommitBookingRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, apierr.GRPC(fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
	}
	if req.FlightID <= 0 {
		return nil, apierr.GRPC(fmt.Errorf("%w: flight_id is required", domain.ErrInvalidInput))
	}
	if req.IdempotencyKey == "" {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if keys := md.Get(IdempotencyKeyMetadata); len(keys) > 0 {
				req.IdempotencyKey = keys[0]
			}
		}
	}

	result, err := s.bookings.CommitBooking(ctx, booking.CommitInput{
		FlightID:       req.FlightID,
		SeatIDs:        req.SeatIDs,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return nil, apierr.GRPC(err)
	}
	return encode(result)
}

func encode(v any) (*structpb.Struct, error) {
	out, err := toStruct(v)
	if err != nil {
		return nil, apierr.GRPC(err)
	}
	return out, nil
}

var _ SeatsServiceServer = (*Server)(nil)
