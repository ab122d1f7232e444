package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/hlsync/internal/coordinator/rpc"
	"github.com/dmitrijs2005/hlsync/internal/wire"
)

func (s *GRPCServer) Call(ctx context.Context, req *structpb.Struct) (*structpb.Value, error) {
	function, args, err := wire.DecodeRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	s.logger.Debug(ctx, "rpc call", "function", function, "page_id", PageIDFromContext(ctx))

	var resp rpc.Response
	select {
	case resp = <-s.router.Dispatch(ctx, rpc.Request{Function: function, Arguments: args}):
	case <-ctx.Done():
		return nil, status.FromContextError(ctx.Err()).Err()
	}

	if resp.Failed() {
		return wire.ErrorValue(resp.Error), nil
	}

	value, err := wire.EncodeValue(resp.Value)
	if err != nil {
		s.logger.Error(ctx, "unencodable rpc result", "function", function, "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}
	return value, nil
}

func (s *GRPCServer) Activate(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	pageID := PageIDFromContext(ctx)
	if pageID == "" {
		return nil, status.Error(codes.InvalidArgument, "missing page id")
	}
	s.notifier.Activate(pageID)
	s.logger.Info(ctx, "page activated", "page_id", pageID)
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) Watch(_ *emptypb.Empty, stream EventStream) error {
	ctx := stream.Context()
	pageID := PageIDFromContext(ctx)
	if pageID == "" {
		return status.Error(codes.InvalidArgument, "missing page id")
	}

	events, cancel := s.notifier.Subscribe(pageID)
	defer cancel()

	// Headers go out once the subscription exists, so a client that waits
	// for them cannot miss a change made right after.
	if err := stream.SendHeader(metadata.MD{}); err != nil {
		return err
	}

	s.logger.Info(ctx, "page subscribed", "page_id", pageID)
	defer s.logger.Info(ctx, "page unsubscribed", "page_id", pageID)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return status.Error(codes.Aborted, "subscription replaced")
			}
			msg, err := wire.EncodeEvent(ev.Key, ev.Value)
			if err != nil {
				s.logger.Warn(ctx, "unencodable event dropped", "key", ev.Key, "error", err)
				continue
			}
			if err := stream.Send(msg); err != nil {
				return err
			}
		}
	}
}
