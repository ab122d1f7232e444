package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/hlsync/internal/common"
	"github.com/dmitrijs2005/hlsync/internal/wire"
)

const defaultCallTimeout = 10 * time.Second

type GRPCClient struct {
	endpointURL string
	pageID      string
	callTimeout time.Duration
	dialOptions []grpc.DialOption
	conn        *grpc.ClientConn
}

func withPageID(ctx context.Context, pageID string) context.Context {
	if pageID == "" {
		return ctx
	}
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.PageIDHeaderName, pageID)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) pageIDUnaryInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	return invoker(withPageID(ctx, s.pageID), method, req, reply, cc, opts...)
}

func (s *GRPCClient) pageIDStreamInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	return streamer(withPageID(ctx, s.pageID), desc, cc, method, opts...)
}

// NewCoordinatorClient connects to the coordinator at endpointURL. pageID
// identifies the calling page context and may be empty for the panel.
// Extra dial options are appended to the defaults.
func NewCoordinatorClient(endpointURL, pageID string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{
		endpointURL: endpointURL,
		pageID:      pageID,
		callTimeout: defaultCallTimeout,
		dialOptions: opts,
	}
	err := c.InitGRPCClient()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.pageIDUnaryInterceptor),
		grpc.WithStreamInterceptor(s.pageIDStreamInterceptor),
	}, s.dialOptions...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

// Call invokes a coordinator function by name and returns its decoded
// reply value.
func (s *GRPCClient) Call(ctx context.Context, function string, args ...any) (any, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
	}

	req, err := wire.EncodeRequest(function, args)
	if err != nil {
		return nil, err
	}

	resp := new(structpb.Value)
	if err := s.conn.Invoke(ctx, wire.MethodCall, req, resp); err != nil {
		return nil, s.mapError(err)
	}

	if msg, failed := wire.AsError(resp); failed {
		return nil, &RemoteError{Function: function, Message: msg}
	}
	return resp.AsInterface(), nil
}

func (s *GRPCClient) Activate(ctx context.Context) error {
	if s.pageID == "" {
		return ErrNoPageID
	}
	if err := s.conn.Invoke(ctx, wire.MethodActivate, &emptypb.Empty{}, new(emptypb.Empty)); err != nil {
		return s.mapError(err)
	}
	return nil
}

type streamWatcher struct {
	client *GRPCClient
	stream grpc.ClientStream
}

func (w *streamWatcher) Next() (Change, error) {
	msg := new(structpb.Struct)
	if err := w.stream.RecvMsg(msg); err != nil {
		if errors.Is(err, io.EOF) {
			return Change{}, io.EOF
		}
		return Change{}, w.client.mapError(err)
	}
	key, value, err := wire.DecodeEvent(msg)
	if err != nil {
		return Change{}, err
	}
	return Change{Key: key, Value: value}, nil
}

// Watch subscribes this page to change events. It returns once the
// coordinator has registered the subscription.
func (s *GRPCClient) Watch(ctx context.Context) (Watcher, error) {
	if s.pageID == "" {
		return nil, ErrNoPageID
	}

	stream, err := s.conn.NewStream(ctx, &wire.WatchStreamDesc, wire.MethodWatch)
	if err != nil {
		return nil, s.mapError(err)
	}
	if err := stream.SendMsg(&emptypb.Empty{}); err != nil {
		return nil, s.mapError(err)
	}
	if err := stream.CloseSend(); err != nil {
		return nil, s.mapError(err)
	}
	if _, err := stream.Header(); err != nil {
		return nil, s.mapError(err)
	}
	return &streamWatcher{client: s, stream: stream}, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.Canceled:
		return context.Canceled
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
