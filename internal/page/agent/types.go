package agent

import (
	"context"
	"errors"
	"time"
)

// Highlighter marks keyword matches under a root node.
type Highlighter[N any] interface {
	// Highlight marks keywords under root. fullRescan asks the
	// implementation to discard existing marks under root first.
	Highlight(root N, keywords []string, fullRescan bool)
	ClearHighlighted(root N)
}

// MutationRecord lists the nodes one structural change inserted.
type MutationRecord[N any] struct {
	Added []N
}

// Document is the observable page the agent works on.
type Document[N any] interface {
	Body() N
	IsElement(n N) bool
	// Observe registers fn for structural changes under the body and
	// returns a function that removes it.
	Observe(fn func([]MutationRecord[N])) (disconnect func())
}

// Coordinator is the subset of the coordinator client the agent needs.
type Coordinator interface {
	GetEnabled(ctx context.Context) (bool, error)
	GetKeywordsList(ctx context.Context) ([]string, error)
	Activate(ctx context.Context) error
}

type State int

const (
	StateUninitialized State = iota
	StateSyncing
	StateActive
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateSyncing:
		return "syncing"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// PageSyncState is the agent's cached mirror of the settings.
type PageSyncState struct {
	Enabled  bool
	Keywords []string
}

type Config struct {
	DebounceDelay time.Duration
	// SyncRetries is how many extra attempts Start makes after a failed
	// initial sync. Zero means a single attempt.
	SyncRetries int
	RetryDelay  time.Duration
	// TrustPushedValues applies values carried by change events instead of
	// re-reading them from the coordinator.
	TrustPushedValues bool
}

const (
	DefaultDebounceDelay = 200 * time.Millisecond
	DefaultRetryDelay    = 500 * time.Millisecond
)

func DefaultConfig() Config {
	return Config{
		DebounceDelay: DefaultDebounceDelay,
		RetryDelay:    DefaultRetryDelay,
	}
}

var (
	ErrAlreadyStarted = errors.New("agent already started")
	ErrNotActive      = errors.New("agent is not active")
)
