package seats_service_api

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "seatbooking.v1.SeatsService"

const (
	projectSeatMapMethod = "/" + ServiceName + "/ProjectSeatMap"
	commitBookingMethod  = "/" + ServiceName + "/CommitBooking"
)

// SeatsServiceServer is served over gRPC with google.protobuf.Struct payloads
// carrying the same JSON documents as the HTTP API.
type SeatsServiceServer interface {
	ProjectSeatMap(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CommitBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SeatsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ProjectSeatMap", Handler: projectSeatMapHandler},
		{MethodName: "CommitBooking", Handler: commitBookingHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "seatbooking/v1/seats.proto",
}

func RegisterSeatsServiceServer(s grpc.ServiceRegistrar, srv SeatsServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func projectSeatMapHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SeatsServiceServer).ProjectSeatMap(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: projectSeatMapMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SeatsServiceServer).ProjectSeatMap(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func commitBookingHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SeatsServiceServer).CommitBooking(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: commitBookingMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SeatsServiceServer).CommitBooking(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// toStruct converts v through its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}
	s := new(structpb.Struct)
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("struct from %T: %w", v, err)
	}
	return s, nil
}

func fromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		s = new(structpb.Struct)
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal struct: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal into %T: %w", v, err)
	}
	return nil
}
