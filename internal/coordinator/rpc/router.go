// Package rpc is the named-function dispatch surface the coordinator exposes
// to page contexts and the settings panel. It is transport-agnostic: the gRPC
// layer decodes a request, calls Dispatch and forwards the single reply.
package rpc

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dmitrijs2005/hlsync/internal/common"
	"github.com/dmitrijs2005/hlsync/internal/logging"
)

// Request names an exposed function and its positional arguments.
type Request struct {
	Function  string
	Arguments []any
}

// Response carries either the function's value or an error message.
type Response struct {
	Value any
	Error string
}

func (r Response) Failed() bool { return r.Error != "" }

// Handler runs one exposed function.
type Handler func(ctx context.Context, args []any) (any, error)

type Router struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   logging.Logger
}

func NewRouter(l logging.Logger) *Router {
	return &Router{handlers: make(map[string]Handler), logger: l.With("module", "rpc")}
}

// Register exposes h under name, replacing any previous handler.
func (r *Router) Register(name string, h Handler) {
	r.mu.Lock()
	r.handlers[name] = h
	r.mu.Unlock()
}

// Functions lists the exposed names in sorted order.
func (r *Router) Functions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch invokes the named function asynchronously. The returned channel
// yields exactly one Response and is then closed. Unknown names get an
// explicit error reply. There is no retry and no deduplication.
func (r *Router) Dispatch(ctx context.Context, req Request) <-chan Response {
	reply := make(chan Response, 1)

	r.mu.RLock()
	h, ok := r.handlers[req.Function]
	r.mu.RUnlock()

	if !ok {
		r.logger.Warn(ctx, "unknown rpc function", "function", req.Function)
		reply <- Response{Error: fmt.Sprintf("%s %q", common.ErrorUnknownFunction, req.Function)}
		close(reply)
		return reply
	}

	go func() {
		defer close(reply)
		reply <- r.invoke(ctx, req, h)
	}()
	return reply
}

func (r *Router) invoke(ctx context.Context, req Request, h Handler) (resp Response) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error(ctx, "rpc handler panicked", "function", req.Function, "panic", p)
			resp = Response{Error: fmt.Sprintf("%s: %v", common.ErrorInternalCall, p)}
		}
	}()

	value, err := h(ctx, req.Arguments)
	if err != nil {
		r.logger.Error(ctx, "error during rpc call", "function", req.Function, "error", err)
		return Response{Error: err.Error()}
	}
	return Response{Value: value}
}
