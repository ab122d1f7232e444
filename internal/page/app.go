// Package page runs one page context: it loads an HTML document, keeps an
// agent in sync with the coordinator, feeds inserted fragments into the
// document and renders the highlighted result to a file.
package page

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/hlsync/internal/client/client"
	"github.com/dmitrijs2005/hlsync/internal/debounce"
	"github.com/dmitrijs2005/hlsync/internal/filex"
	"github.com/dmitrijs2005/hlsync/internal/logging"
	"github.com/dmitrijs2005/hlsync/internal/page/agent"
	"github.com/dmitrijs2005/hlsync/internal/page/config"
	"github.com/dmitrijs2005/hlsync/internal/page/dom"
	"github.com/dmitrijs2005/hlsync/internal/page/feed"
)

const (
	renderDelay    = 50 * time.Millisecond
	reconnectDelay = time.Second
)

// Remote is what the page needs from the coordinator client.
type Remote interface {
	agent.Coordinator
	Watch(ctx context.Context) (client.Watcher, error)
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	remote   Remote
	doc      *dom.Document
	agent    *agent.Agent[*html.Node]
	renderer *debounce.Debouncer

	renderMu sync.Mutex
}

// renderingHighlighter re-renders the output after every highlight change.
type renderingHighlighter struct {
	inner *dom.Highlighter
	after func()
}

func (r renderingHighlighter) Highlight(root *html.Node, keywords []string, fullRescan bool) {
	r.inner.Highlight(root, keywords, fullRescan)
	r.after()
}

func (r renderingHighlighter) ClearHighlighted(root *html.Node) {
	r.inner.ClearHighlighted(root)
	r.after()
}

func NewApp(c *config.Config, remote Remote, page io.Reader, logger logging.Logger) (*App, error) {
	doc, err := dom.Parse(page)
	if err != nil {
		return nil, err
	}

	app := &App{
		config:   c,
		logger:   logger.With("page_id", c.PageID),
		remote:   remote,
		doc:      doc,
		renderer: debounce.New(renderDelay),
	}

	hl := renderingHighlighter{inner: dom.NewHighlighter(doc), after: app.scheduleRender}
	app.agent = agent.New[*html.Node](doc, hl, remote, agent.Config{
		DebounceDelay:     c.DebounceDelay,
		SyncRetries:       c.SyncRetries,
		TrustPushedValues: c.TrustPushedValues,
	}, app.logger)

	return app, nil
}

func (app *App) scheduleRender() {
	if app.config.OutputFile == "" {
		return
	}
	app.renderer.Trigger(func() {
		if err := app.render(); err != nil {
			app.logger.Error(context.Background(), "render failed", "file", app.config.OutputFile, "error", err)
		}
	})
}

func (app *App) render() error {
	app.renderMu.Lock()
	defer app.renderMu.Unlock()

	tmp := app.config.OutputFile + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := app.doc.Render(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, app.config.OutputFile)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run syncs the agent, then follows change events and, when configured,
// the fragment directory until ctx is cancelled or the process is
// signalled. A failed initial sync ends Run with the error.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	app.initSignalHandler(cancelFunc)

	var fragments *feed.FragmentFeed
	if app.config.WatchDir != "" {
		dir, err := filex.EnsureDir(app.config.WatchDir)
		if err != nil {
			return err
		}
		if fragments, err = feed.New(dir, feed.DefaultSettle, app.insertFragment, app.logger); err != nil {
			return err
		}
	}

	if err := app.agent.Start(ctx); err != nil {
		if fragments != nil {
			_ = fragments.Close()
		}
		return fmt.Errorf("initial sync: %w", err)
	}
	defer app.agent.Stop()
	defer app.renderer.Stop()

	app.scheduleRender()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.followChanges(gctx) })
	if fragments != nil {
		g.Go(func() error { return fragments.Run(gctx) })
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if app.config.OutputFile != "" {
		if rerr := app.render(); rerr != nil {
			app.logger.Error(ctx, "final render failed", "error", rerr)
		}
	}
	return err
}

func (app *App) insertFragment(_ context.Context, name, fragment string) error {
	nodes, err := app.doc.AppendHTML(fragment)
	if err != nil {
		return err
	}
	app.logger.Info(context.Background(), "fragment inserted", "file", name, "nodes", len(nodes))
	app.scheduleRender()
	return nil
}

// followChanges feeds coordinator events to the agent, resubscribing after
// a broken stream. Each resubscription re-activates the page to catch up.
func (app *App) followChanges(ctx context.Context) error {
	first := true
	for {
		if !first {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(reconnectDelay):
			}
		}
		first = false

		w, err := app.remote.Watch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			app.logger.Warn(ctx, "subscribe failed", "error", err)
			continue
		}
		if err := app.agent.Activate(ctx); err != nil {
			app.logger.Warn(ctx, "activation failed", "error", err)
		}

		for {
			change, err := w.Next()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				app.logger.Warn(ctx, "change stream broken", "error", err)
				break
			}
			if err := app.agent.OnChange(ctx, change.Key, change.Value); err != nil {
				app.logger.Warn(ctx, "change not applied", "key", change.Key, "error", err)
			}
		}
	}
}
