package agent

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/hlsync/internal/common"
	"github.com/dmitrijs2005/hlsync/internal/debounce"
	"github.com/dmitrijs2005/hlsync/internal/logging"
	"github.com/dmitrijs2005/hlsync/internal/wire"
)

type Agent[N any] struct {
	doc         Document[N]
	highlighter Highlighter[N]
	coord       Coordinator
	config      Config
	logger      logging.Logger

	// mu serialises state changes and every call into the highlighter.
	mu         sync.Mutex
	state      State
	cache      PageSyncState
	pushed     []string
	debouncer  *debounce.Debouncer
	disconnect func()
	runCtx     context.Context
	cancel     context.CancelFunc
}

func New[N any](doc Document[N], h Highlighter[N], coord Coordinator, cfg Config, l logging.Logger) *Agent[N] {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = DefaultDebounceDelay
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	return &Agent[N]{
		doc:         doc,
		highlighter: h,
		coord:       coord,
		config:      cfg,
		logger:      l.With("module", "page_agent"),
	}
}

func (a *Agent[N]) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Snapshot returns a copy of the cached settings.
func (a *Agent[N]) Snapshot() PageSyncState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return PageSyncState{Enabled: a.cache.Enabled, Keywords: slices.Clone(a.cache.Keywords)}
}

func (a *Agent[N]) fetch(ctx context.Context) (PageSyncState, error) {
	var st PageSyncState

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		keywords, err := a.coord.GetKeywordsList(gctx)
		if err != nil {
			return fmt.Errorf("fetch keywords: %w", err)
		}
		st.Keywords = keywords
		return nil
	})
	g.Go(func() error {
		enabled, err := a.coord.GetEnabled(gctx)
		if err != nil {
			return fmt.Errorf("fetch enabled flag: %w", err)
		}
		st.Enabled = enabled
		return nil
	})

	if err := g.Wait(); err != nil {
		return PageSyncState{}, err
	}
	return st, nil
}

func (a *Agent[N]) syncWithRetries(ctx context.Context) (PageSyncState, error) {
	for attempt := 0; ; attempt++ {
		st, err := a.fetch(ctx)
		if err == nil {
			return st, nil
		}
		if attempt >= a.config.SyncRetries {
			return PageSyncState{}, err
		}

		a.logger.Warn(ctx, "initial sync failed, retrying", "attempt", attempt+1, "error", err)

		select {
		case <-ctx.Done():
			return PageSyncState{}, ctx.Err()
		case <-time.After(a.config.RetryDelay):
		}
	}
}

// Start performs the initial sync and, on success, the first full pass.
// ctx bounds the agent's lifetime: debounced refreshes use it too.
func (a *Agent[N]) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.state != StateUninitialized {
		a.mu.Unlock()
		return ErrAlreadyStarted
	}
	a.state = StateSyncing
	a.mu.Unlock()

	st, err := a.syncWithRetries(ctx)
	if err != nil {
		a.mu.Lock()
		a.state = StateUninitialized
		a.mu.Unlock()
		a.logger.Error(ctx, "initial sync failed, page stays unsynced", "error", err)
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.cache = st
	if st.Enabled {
		a.highlighter.Highlight(a.doc.Body(), st.Keywords, false)
	}
	a.runCtx, a.cancel = context.WithCancel(ctx)
	a.debouncer = debounce.New(a.config.DebounceDelay)
	a.disconnect = a.doc.Observe(a.handleMutations)
	a.state = StateActive

	a.logger.Info(ctx, "page agent active", "enabled", st.Enabled, "keywords", len(st.Keywords))
	return nil
}

// OnChange is the single change-event callback. Events for keys other
// than the enabled flag and the keyword list are ignored, as are events
// that arrive before the agent is active.
func (a *Agent[N]) OnChange(ctx context.Context, key string, value any) error {
	a.mu.Lock()
	active := a.state == StateActive
	a.mu.Unlock()
	if !active {
		a.logger.Debug(ctx, "change ignored, agent not active", "key", key)
		return nil
	}

	switch key {
	case common.KeyIsActive:
		return a.applyEnabled(ctx, value)
	case common.KeyKeywordsArray:
		a.scheduleKeywordsRefresh(value)
	}
	return nil
}

func (a *Agent[N]) applyEnabled(ctx context.Context, pushed any) error {
	enabled, trusted := pushed.(bool)
	if !a.config.TrustPushedValues || !trusted {
		var err error
		enabled, err = a.coord.GetEnabled(ctx)
		if err != nil {
			a.logger.Warn(ctx, "re-fetch of enabled flag failed", "error", err)
			return err
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateActive {
		return nil
	}

	a.cache.Enabled = enabled
	body := a.doc.Body()
	if enabled {
		a.highlighter.Highlight(body, a.cache.Keywords, false)
	} else {
		a.highlighter.ClearHighlighted(body)
	}
	return nil
}

func (a *Agent[N]) scheduleKeywordsRefresh(pushed any) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.pushed = nil
	if _, ok := pushed.([]any); ok && a.config.TrustPushedValues {
		a.pushed = wire.Strings(pushed)
	}
	ctx := a.runCtx
	a.debouncer.Trigger(func() { a.refreshKeywords(ctx) })
}

func (a *Agent[N]) refreshKeywords(ctx context.Context) {
	a.mu.Lock()
	keywords := a.pushed
	a.pushed = nil
	a.mu.Unlock()

	if keywords == nil {
		var err error
		keywords, err = a.coord.GetKeywordsList(ctx)
		if err != nil {
			a.logger.Warn(ctx, "re-fetch of keywords failed", "error", err)
			return
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateActive {
		return
	}

	a.cache.Keywords = keywords
	if a.cache.Enabled {
		a.highlighter.Highlight(a.doc.Body(), keywords, true)
	}
}

func (a *Agent[N]) handleMutations(records []MutationRecord[N]) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateActive || !a.cache.Enabled {
		return
	}
	for _, rec := range records {
		for _, n := range rec.Added {
			if a.doc.IsElement(n) {
				a.highlighter.Highlight(n, a.cache.Keywords, false)
			}
		}
	}
}

// Activate marks this page as focused on the coordinator and catches up on
// anything missed while it was in the background.
func (a *Agent[N]) Activate(ctx context.Context) error {
	if a.State() != StateActive {
		return ErrNotActive
	}
	if err := a.coord.Activate(ctx); err != nil {
		return err
	}

	st, err := a.fetch(ctx)
	if err != nil {
		a.logger.Warn(ctx, "refresh on activation failed", "error", err)
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateActive {
		return nil
	}

	keywordsChanged := !slices.Equal(a.cache.Keywords, st.Keywords)
	a.cache = st
	body := a.doc.Body()
	if st.Enabled {
		a.highlighter.Highlight(body, st.Keywords, keywordsChanged)
	} else {
		a.highlighter.ClearHighlighted(body)
	}
	return nil
}

// Stop disconnects the observer and cancels any pending keyword refresh.
func (a *Agent[N]) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateActive {
		return
	}
	a.debouncer.Stop()
	a.disconnect()
	a.cancel()
	a.state = StateUninitialized
}
