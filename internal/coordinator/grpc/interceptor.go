package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/dmitrijs2005/hlsync/internal/common"
)

type ctxKey string

const pageIDKey ctxKey = "pageID"

func pageIDFromMetadata(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.PageIDHeaderName); len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// PageIDFromContext returns the caller's page id, or "" for callers that
// are not page contexts (the settings panel).
func PageIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(pageIDKey).(string)
	return id
}

func withPageID(ctx context.Context) context.Context {
	if id := pageIDFromMetadata(ctx); id != "" {
		return context.WithValue(ctx, pageIDKey, id)
	}
	return ctx
}

func (s *GRPCServer) pageIDUnaryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	return handler(withPageID(ctx), req)
}

type pageStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (p *pageStream) Context() context.Context { return p.ctx }

func (s *GRPCServer) pageIDStreamInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	return handler(srv, &pageStream{ServerStream: ss, ctx: withPageID(ss.Context())})
}
