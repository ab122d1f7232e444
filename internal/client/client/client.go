package client

import (
	"context"
)

// Change is one storageChange event received from the coordinator.
type Change struct {
	Key   string
	Value any
}

// Watcher yields change events until its context is cancelled or the
// stream breaks.
type Watcher interface {
	Next() (Change, error)
}

type Client interface {
	Close() error
	Call(ctx context.Context, function string, args ...any) (any, error)

	GetUserID(ctx context.Context) (string, error)
	GetEnabled(ctx context.Context) (bool, error)
	SetEnabled(ctx context.Context, enabled bool) error
	GetKeywordsRaw(ctx context.Context) (string, error)
	GetKeywordsList(ctx context.Context) ([]string, error)
	SetKeywordsRaw(ctx context.Context, raw string) error

	Activate(ctx context.Context) error
	Watch(ctx context.Context) (Watcher, error)
}
