package services

import (
	"context"

	"github.com/golang/protobuf/ptypes/empty"
	structpb "github.com/golang/protobuf/ptypes/struct"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// The RateStat service is described by hand with well-known message types
// so that no generated code is needed:
//
//	service RateStat {
//	  rpc Stat(google.protobuf.Empty) returns (google.protobuf.Struct);
//	  rpc StatStream(google.protobuf.Empty) returns (stream google.protobuf.Struct);
//	}

const rateStatServiceName = "dcprogress.RateStat"

type RateStatServer interface {
	Stat(context.Context, *empty.Empty) (*structpb.Struct, error)
	StatStream(*empty.Empty, RateStat_StatStreamServer) error
}

type UnimplementedRateStatServer struct{}

func (UnimplementedRateStatServer) Stat(context.Context, *empty.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Stat not implemented")
}

func (UnimplementedRateStatServer) StatStream(*empty.Empty, RateStat_StatStreamServer) error {
	return status.Errorf(codes.Unimplemented, "method StatStream not implemented")
}

func RegisterRateStatServer(s *grpc.Server, srv RateStatServer) {
	s.RegisterService(&rateStatServiceDesc, srv)
}

type RateStat_StatStreamServer interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

type rateStatStatStreamServer struct {
	grpc.ServerStream
}

func (x *rateStatStatStreamServer) Send(m *structpb.Struct) error {
	return x.ServerStream.SendMsg(m)
}

func rateStatStatHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(empty.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RateStatServer).Stat(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + rateStatServiceName + "/Stat",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RateStatServer).Stat(ctx, req.(*empty.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func rateStatStatStreamHandler(srv interface{}, stream grpc.ServerStream) error {
	m := new(empty.Empty)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(RateStatServer).StatStream(m, &rateStatStatStreamServer{stream})
}

var rateStatServiceDesc = grpc.ServiceDesc{
	ServiceName: rateStatServiceName,
	HandlerType: (*RateStatServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Stat",
			Handler:    rateStatStatHandler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StatStream",
			Handler:       rateStatStatStreamHandler,
			ServerStreams: true,
		},
	},
	Metadata: "rate_stat.proto",
}
