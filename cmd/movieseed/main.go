package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"moviecatalog/movie"
	"moviecatalog/pkg/config"
	"moviecatalog/pkg/logger"
	"moviecatalog/storage"

	"go.uber.org/zap"
)

//go:embed movies.csv
var defaultMovies string

func main() {
	var (
		csvPath string
		limit   int
	)

	flag.StringVar(&csvPath, "csv", "", "Path to a movies CSV (title,country,director,description); defaults to the bundled catalog")
	flag.IntVar(&limit, "limit", 0, "Limit number of rows to import (0 = all)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		zap.Must(zap.NewProduction()).Sugar().Fatalw("load config failed", "error", err)
	}

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		zap.Must(zap.NewProduction()).Sugar().Fatalw("cannot build logger", "error", err)
	}

	err = run(context.Background(), cfg, log, csvPath, limit)
	if err != nil {
		log.Errorw("import failed", "error", err)
	}
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run returns instead of exiting so the store and csv file are always closed.
func run(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger, csvPath string, limit int) error {
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s movie store: %w", cfg.DB.Driver, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Errorw("close movie store", "error", err)
		}
	}()

	var src io.Reader = strings.NewReader(defaultMovies)
	if csvPath != "" {
		f, err := os.Open(csvPath)
		if err != nil {
			return fmt.Errorf("open csv: %w", err)
		}
		defer f.Close()
		src = f
	}

	res, err := seedMovies(ctx, movie.NewUsecase(store.Repository), src, limit)
	if err != nil {
		return fmt.Errorf("seed after %d created, %d skipped: %w", res.Created, res.Skipped, err)
	}

	log.Infow("import completed", "created", res.Created, "skipped", res.Skipped)
	return nil
}
