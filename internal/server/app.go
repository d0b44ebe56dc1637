// Package server wires the configured sheet and blob backends into the
// leaderboard service and runs its HTTP API and gRPC health endpoint until
// the context is cancelled or a signal arrives.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/lookboard/internal/logging"
	"github.com/dmitrijs2005/lookboard/internal/server/blobs"
	"github.com/dmitrijs2005/lookboard/internal/server/config"
	"github.com/dmitrijs2005/lookboard/internal/server/httpapi"
	"github.com/dmitrijs2005/lookboard/internal/server/leaderboard"
	"github.com/dmitrijs2005/lookboard/internal/server/sheets"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/lookboard/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	opener  sheets.Opener
	service *leaderboard.Service
	closers []func() error
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	app := &App{config: c, logger: logger}

	opener, err := app.openSheets(ctx)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("sheet backend init error: %w", err)
	}
	app.opener = opener

	store, err := app.openBlobs(ctx)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("blob backend init error: %w", err)
	}

	tb, err := leaderboard.ParseTieBreak(c.TieBreak)
	if err != nil {
		app.Close()
		return nil, err
	}

	mgr := blobs.NewManager(store, c.BlobNamespace, logger)
	mgr.MaxBytes = c.BlobMaxBytes
	repo := leaderboard.NewSheetRepository(opener, c.SheetName, mgr, tb, logger)
	app.service = leaderboard.NewService(repo, mgr, leaderboard.Options{
		Capacity: c.Capacity,
		TieBreak: tb,
		Timeout:  c.RemoteTimeout,
	}, logger)

	return app, nil
}

func (app *App) openSheets(ctx context.Context) (sheets.Opener, error) {
	switch app.config.SheetBackend {
	case config.SheetMemory:
		return sheets.NewMemoryOpener(), nil
	case config.SheetPostgres, config.SheetSQLite:
		driver, dsn := sheets.DriverPostgres, app.config.DatabaseDSN
		if app.config.SheetBackend == config.SheetSQLite {
			driver, dsn = sheets.DriverSQLite, app.config.SQLitePath
		}
		db, err := sheets.OpenDB(driver, dsn)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, db.Close)
		if err := sheets.RunMigrations(ctx, db, driver); err != nil {
			return nil, err
		}
		return sheets.NewSQLOpener(db, driver), nil
	case config.SheetRedis:
		o := sheets.NewRedisOpener(sheets.RedisConfig{
			Addr:        app.config.RedisAddr,
			Password:    app.config.RedisPassword,
			DB:          app.config.RedisDB,
			KeyPrefix:   app.config.RedisKeyPrefix,
			DialTimeout: app.config.RemoteTimeout,
		})
		app.closers = append(app.closers, o.Close)
		return o, nil
	}
	return nil, fmt.Errorf("unknown sheet backend %q", app.config.SheetBackend)
}

func (app *App) openBlobs(ctx context.Context) (blobs.Store, error) {
	switch app.config.BlobBackend {
	case config.BlobMemory:
		return blobs.NewMemoryStore(app.config.PublicBaseURL), nil
	case config.BlobS3:
		return blobs.NewS3Store(ctx, blobs.S3Config{
			AccessKey:       app.config.S3RootUser,
			SecretKey:       app.config.S3RootPassword,
			Bucket:          app.config.S3Bucket,
			Region:          app.config.S3Region,
			Endpoint:        app.config.S3BaseEndpoint,
			PublicBaseURL:   app.config.PublicBaseURL,
			PublicRead:      app.config.PublicRead,
			ThumbnailPrefix: app.config.ThumbnailPrefix,
		})
	}
	return nil, fmt.Errorf("unknown blob backend %q", app.config.BlobBackend)
}

// Service exposes the leaderboard for in-process callers.
func (app *App) Service() *leaderboard.Service { return app.service }

// probe reports whether the sheet can be opened.
func (app *App) probe(ctx context.Context) error {
	_, err := app.opener.Open(ctx, app.config.SheetName)
	return err
}

// Close releases backend connections.
func (app *App) Close() error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		errs = append(errs, app.closers[i]())
	}
	app.closers = nil
	return errors.Join(errs...)
}

func (app *App) runHTTPServer(ctx context.Context) error {
	srv := &http.Server{
		Addr:    app.config.HTTPAddr,
		Handler: httpapi.NewMux(app.service, app.probe, app.logger),
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	listen, err := net.Listen("tcp", app.config.HTTPAddr)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.config.ShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())
	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM/SIGQUIT arrives. A
// failing server stops the other one.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...",
		"sheet_backend", app.config.SheetBackend,
		"blob_backend", app.config.BlobBackend,
		"capacity", app.config.Capacity)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.runHTTPServer(ctx)
	})
	g.Go(func() error {
		s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.probe, app.config.HealthInterval)
		return s.Run(ctx)
	})

	err := g.Wait()
	if cerr := app.Close(); cerr != nil {
		app.logger.Error(ctx, "close backends", "error", cerr)
	}
	return err
}
