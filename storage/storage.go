// Package storage opens the movie repository selected by DB_DRIVER.
package storage

import (
	"context"
	"fmt"
	"strconv"

	"moviecatalog/dynamodb"
	"moviecatalog/movie"
	"moviecatalog/pkg/config"
	"moviecatalog/postgres"
	"moviecatalog/sqlite"

	"gorm.io/gorm"
)

// Store is an opened repository and the function releasing its connection.
type Store struct {
	Repository movie.Repository
	Close      func() error
}

func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.DB.Driver {
	case config.DriverPostgres:
		db, err := postgres.NewConnection(PostgresOptions(cfg))
		if err != nil {
			return nil, fmt.Errorf("storage: open postgres: %w", err)
		}
		return gormStore(db)

	case config.DriverSQLite:
		db, err := sqlite.NewConnection(cfg.DB.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("storage: open sqlite: %w", err)
		}
		return gormStore(db)

	case config.DriverDynamoDB:
		client, err := dynamodb.NewClient(ctx, dynamodb.Options{
			Region:       cfg.DynamoDB.Region,
			Endpoint:     cfg.DynamoDB.Endpoint,
			AccessKey:    cfg.DynamoDB.AccessKey,
			SecretKey:    cfg.DynamoDB.SecretKey,
			SessionToken: cfg.DynamoDB.SessionToken,
		})
		if err != nil {
			return nil, fmt.Errorf("storage: open dynamodb: %w", err)
		}
		repo := dynamodb.NewMovieRepository(client, cfg.DynamoDB.MoviesTable, cfg.DynamoDB.CountersTable)
		return &Store{Repository: repo, Close: func() error { return nil }}, nil

	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", cfg.DB.Driver)
	}
}

func PostgresOptions(cfg *config.Config) postgres.Options {
	return postgres.Options{
		DBName:   cfg.DB.Name,
		DBUser:   cfg.DB.User,
		Password: cfg.DB.Pass,
		Host:     cfg.DB.Host,
		Port:     strconv.Itoa(cfg.DB.Port),
		SSLMode:  cfg.DB.EnableSSL,
	}
}

func gormStore(db *gorm.DB) (*Store, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("storage: get db instance: %w", err)
	}
	return &Store{
		Repository: postgres.NewMovieRepository(db),
		Close:      sqlDB.Close,
	}, nil
}
