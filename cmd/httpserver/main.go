package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moviecatalog/httpserver"
	"moviecatalog/movie"
	"moviecatalog/pkg/config"
	"moviecatalog/pkg/logger"
	"moviecatalog/pkg/sentry"
	"moviecatalog/storage"

	sentrygo "github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		zap.Must(zap.NewProduction()).Sugar().Fatalw("cannot load config", "error", err)
	}

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		zap.Must(zap.NewProduction()).Sugar().Fatalw("cannot build logger", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Errorw("server stopped with error", "error", err)
	}
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run serves until ctx is cancelled or the listener fails. Cleanups are
// deferred here so they run on every exit path.
func run(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) error {
	err := sentrygo.Init(sentrygo.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.AppEnv,
		AttachStacktrace: true,
	})
	if err != nil {
		return fmt.Errorf("init sentry: %w", err)
	}
	defer sentrygo.Flush(sentry.FlushTime)

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		sentry.Error(err)
		return fmt.Errorf("open %s movie store: %w", cfg.DB.Driver, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Errorw("close movie store", "error", err)
		}
	}()

	server, err := httpserver.New(
		httpserver.WithConfig(cfg),
		httpserver.WithLogger(log),
		httpserver.WithMovieService(movie.NewUsecase(store.Repository)),
	)
	if err != nil {
		return fmt.Errorf("build http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("server started", "addr", server.Addr, "driver", cfg.DB.Driver)
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			sentry.Error(err)
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Infow("server stopped")
	return nil
}
