package seats_service_api

import (
	"context"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/seatmap"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls SeatsService over an existing connection. Errors are gRPC
// status errors with an ErrorInfo reason.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) ProjectSeatMap(ctx context.Context, req ProjectSeatMapRequest, opts ...grpc.CallOption) (*seatmap.Grid, error) {
	var grid seatmap.Grid
	if err := c.invoke(ctx, projectSeatMapMethod, req, &grid, opts...); err != nil {
		return nil, err
	}
	return &grid, nil
}

func (c *Client) CommitBooking(ctx context.Context, req CommitBookingRequest, opts ...grpc.CallOption) (*domain.BookingResult, error) {
	var result domain.BookingResult
	if err := c.invoke(ctx, commitBookingMethod, req, &result, opts...); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any, opts ...grpc.CallOption) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return err
	}
	return fromStruct(out, resp)
}
