package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/hlsync/internal/wire"
)

// CoordinatorServer is the server-side contract of wire.ServiceName.
type CoordinatorServer interface {
	Call(ctx context.Context, req *structpb.Struct) (*structpb.Value, error)
	Activate(ctx context.Context, req *emptypb.Empty) (*emptypb.Empty, error)
	Watch(req *emptypb.Empty, stream EventStream) error
}

// EventStream is the sending side of Watch.
type EventStream interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

type eventStream struct {
	grpc.ServerStream
}

func (s *eventStream) Send(m *structpb.Struct) error {
	return s.ServerStream.SendMsg(m)
}

func callHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CoordinatorServer).Call(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: wire.MethodCall}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CoordinatorServer).Call(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func activateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CoordinatorServer).Activate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: wire.MethodActivate}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CoordinatorServer).Activate(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(CoordinatorServer).Watch(in, &eventStream{stream})
}

// ServiceDesc registers CoordinatorServer implementations with a grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: wire.ServiceName,
	HandlerType: (*CoordinatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Call", Handler: callHandler},
		{MethodName: "Activate", Handler: activateHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: wire.WatchStreamDesc.StreamName, Handler: watchHandler, ServerStreams: true},
	},
}
