// Package server wires the alias registry: it opens the configured store,
// runs migrations, and serves the HTTP API alongside the cleanup job until
// a termination signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/factshare/internal/logging"
	"github.com/dmitrijs2005/factshare/internal/server/cleanup"
	"github.com/dmitrijs2005/factshare/internal/server/config"
	"github.com/dmitrijs2005/factshare/internal/server/httpapi"
	"github.com/dmitrijs2005/factshare/internal/server/metrics"
	"github.com/dmitrijs2005/factshare/internal/server/repositories/aliases"
	"github.com/dmitrijs2005/factshare/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/factshare/internal/server/services"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	repomanager  repomanager.RepositoryManager
	aliasService *services.AliasService
	metrics      *metrics.Metrics
}

// newRepositoryManager is a seam for tests.
var newRepositoryManager = func(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	switch c.Store {
	case config.StorePostgres:
		db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return repomanager.NewPostgresRepositoryManager(db)
	case config.StoreRedis:
		return repomanager.NewRedisRepositoryManager(c.RedisURL, aliases.WithKeyPrefix(c.RedisKeyPrefix))
	default:
		return repomanager.NewMemoryRepositoryManager(), nil
	}
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger := logging.New(c.LogLevel, c.LogFormat, os.Stdout)

	rm, err := newRepositoryManager(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}
	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	m := metrics.New()
	as := services.NewAliasService(rm.Aliases(), c, logger, m)

	return &App{config: c, logger: logger, repomanager: rm, aliasService: as, metrics: m}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	h := httpapi.NewHandler(app.aliasService, app.config.PublicOrigin, app.logger)
	s := httpapi.NewServer(app.config.Addr, httpapi.NewRouter(h, app.metrics, app.logger), app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startCleanup(ctx context.Context) {
	if app.config.CleanupSchedule == "" {
		return
	}
	job, err := cleanup.New(app.config.CleanupSchedule, app.aliasService, app.logger)
	if err != nil {
		app.logger.Error(ctx, "cleanup disabled", "error", err)
		return
	}
	job.Run(ctx)
}

// Run blocks until ctx is cancelled or a signal arrives, then releases the
// store.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "store", app.config.Store)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startCleanup(ctx)
	}()

	wg.Wait()

	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(ctx, "store close failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
