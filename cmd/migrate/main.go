package main

import (
	"flag"
	"fmt"
	"os"

	"moviecatalog/pkg/config"
	"moviecatalog/pkg/logger"
	"moviecatalog/postgres"
	"moviecatalog/storage"

	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"
)

func main() {
	var (
		dir  string
		down bool
	)
	flag.StringVar(&dir, "dir", "migrations", "Directory holding the SQL migrations")
	flag.BoolVar(&down, "down", false, "Roll back the most recent migration instead of applying")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		zap.Must(zap.NewProduction()).Sugar().Fatalw("cannot load config", "error", err)
	}

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		zap.Must(zap.NewProduction()).Sugar().Fatalw("cannot build logger", "error", err)
	}

	err = run(cfg, log, dir, down)
	if err != nil {
		log.Errorw("migration failed", "dir", dir, "down", down, "error", err)
	}
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.SugaredLogger, dir string, down bool) error {
	// SQLite tables are created on open and DynamoDB tables are provisioned
	// outside the service.
	if cfg.DB.Driver != config.DriverPostgres {
		return fmt.Errorf("sql migrations only apply to postgres, got driver %q", cfg.DB.Driver)
	}

	db, err := postgres.NewConnection(storage.PostgresOptions(cfg))
	if err != nil {
		return fmt.Errorf("connect to db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get db instance: %w", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			log.Errorw("close db", "error", err)
		}
	}()

	migrations := &migrate.FileMigrationSource{
		Dir: dir,
	}

	direction, limit := migrate.Up, 0
	if down {
		direction, limit = migrate.Down, 1
	}

	total, err := migrate.ExecMax(sqlDB, "postgres", migrations, direction, limit)
	if err != nil {
		return fmt.Errorf("execute migrations: %w", err)
	}

	log.Infow("migrations executed", "total", total, "dir", dir, "down", down)
	return nil
}
