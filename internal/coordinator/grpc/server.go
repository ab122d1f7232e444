// Package grpc exposes the coordinator over gRPC: the RPC router through
// Call, page focus through Activate and change events through Watch.
package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"

	"github.com/dmitrijs2005/hlsync/internal/coordinator/notifier"
	"github.com/dmitrijs2005/hlsync/internal/coordinator/rpc"
	"github.com/dmitrijs2005/hlsync/internal/logging"
)

type GRPCServer struct {
	address  string
	router   *rpc.Router
	notifier *notifier.Notifier
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, r *rpc.Router, n *notifier.Notifier) *GRPCServer {
	return &GRPCServer{
		address:  a,
		router:   r,
		notifier: n,
		logger:   l.With("module", "grpc_server"),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.pageIDUnaryInterceptor),
		grpc.ChainStreamInterceptor(s.pageIDStreamInterceptor),
	)
	srv.RegisterService(&ServiceDesc, s)
	return srv
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
