// Package coordinator assembles the settings coordinator: the store, the
// settings service behind the RPC router, the change notifier and the gRPC
// endpoint pages and the panel talk to.
package coordinator

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/hlsync/internal/coordinator/config"
	gs "github.com/dmitrijs2005/hlsync/internal/coordinator/grpc"
	"github.com/dmitrijs2005/hlsync/internal/coordinator/notifier"
	"github.com/dmitrijs2005/hlsync/internal/coordinator/rpc"
	"github.com/dmitrijs2005/hlsync/internal/coordinator/settings"
	"github.com/dmitrijs2005/hlsync/internal/coordinator/storage"
	"github.com/dmitrijs2005/hlsync/internal/logging"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	store    storage.Store
	notifier *notifier.Notifier
	router   *rpc.Router
	detach   func()
	server   *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	policy, err := notifier.ParsePolicy(c.NotifyPolicy)
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, c.StoreDSN)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	observed := storage.NewObserved(store)
	n := notifier.New(policy, c.EventBuffer, logger)
	detach := n.Attach(observed)

	router := rpc.NewRouter(logger)
	rpc.RegisterSettings(router, settings.NewService(observed, logger))

	return &App{
		config:   c,
		logger:   logger,
		store:    store,
		notifier: n,
		router:   router,
		detach:   detach,
		server:   gs.NewGRPCServer(c.EndpointAddrGRPC, logger, router, n),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves on the configured address until ctx is cancelled or the
// process is signalled.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	app.logStart(ctx)
	defer app.close(ctx)

	return app.server.Run(ctx)
}

// Serve runs the gRPC endpoint on lis and releases the store when it stops.
func (app *App) Serve(ctx context.Context, lis net.Listener) error {
	app.logStart(ctx)
	defer app.close(ctx)

	return app.server.Serve(ctx, lis)
}

func (app *App) logStart(ctx context.Context) {
	app.logger.Info(ctx, "Starting coordinator...",
		"store", storage.Describe(app.config.StoreDSN),
		"policy", app.config.NotifyPolicy,
		"functions", app.router.Functions(),
	)
}

func (app *App) close(ctx context.Context) {
	app.detach()
	if err := app.store.Close(); err != nil {
		app.logger.Error(ctx, "store close error", "error", err)
	}
}
