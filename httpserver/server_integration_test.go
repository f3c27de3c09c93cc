package httpserver_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"moviecatalog/httpserver"
	"moviecatalog/movie"
	"moviecatalog/movie/movietest"
	"moviecatalog/postgres"
	"moviecatalog/sqlite"

	"github.com/docker/go-connections/nat"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

func TestMovieResource_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("starts a postgres container")
	}
	db := MustCreateTestDatabase(t)
	MigrateTestDatabase(t, db, "../migrations")

	runMovieResourceRoundTrip(t, postgres.NewMovieRepository(db))
}

func TestMovieResource_SQLite(t *testing.T) {
	db, err := sqlite.NewConnection(filepath.Join(t.TempDir(), "movies.db"))
	require.NoError(t, err)

	runMovieResourceRoundTrip(t, postgres.NewMovieRepository(db))
}

// runMovieResourceRoundTrip drives the full stack over HTTP against a fresh
// repository seeded with the catalog's two "Planet" movies.
func runMovieResourceRoundTrip(t *testing.T, repo movie.Repository) {
	seeded := movietest.Seed(t, repo,
		movie.Movie{Title: "FirstMovie", Description: "My first movie", Director: "Me", Country: "Planet"},
		movie.Movie{Title: "SecondMovie", Description: "My second movie", Director: "Me", Country: "Planet"},
	)
	server := MustCreateServer(t, repo)
	firstID, _ := seeded[0].ID()

	t.Run("list all", func(t *testing.T) {
		rec := serve(server, httptest.NewRequest(http.MethodGet, "/movies", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, seeded, decodeMovies(t, rec))
	})

	t.Run("get by title and country", func(t *testing.T) {
		rec := serve(server, httptest.NewRequest(http.MethodGet, "/movies/title/FirstMovie", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, seeded[0], decodeMovie(t, rec))

		rec = serve(server, httptest.NewRequest(http.MethodGet, "/movies/country/Planet", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeMovies(t, rec), 2)
	})

	t.Run("create then get", func(t *testing.T) {
		rec := serve(server, newJSONRequest(t, http.MethodPost, "/movies", map[string]string{
			"title":   "Transformers",
			"country": "Estados Unidos",
		}))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		created := decodeMovie(t, rec)
		id, ok := created.ID()
		require.True(t, ok)
		location := rec.Header().Get("Location")
		assert.Regexp(t, `^/movies/\d+$`, location)

		rec = serve(server, httptest.NewRequest(http.MethodGet, location, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		got := decodeMovie(t, rec)
		assert.Equal(t, "Transformers", got.Title)
		assert.Equal(t, movie.Saved(id), got.Identity)

		rec = serve(server, httptest.NewRequest(http.MethodGet, "/movies/country/Estados%20Unidos", nil))
		assert.Equal(t, []movie.Movie{created}, decodeMovies(t, rec))
	})

	t.Run("create with a persisted id is rejected", func(t *testing.T) {
		rec := serve(server, newJSONRequest(t, http.MethodPost, "/movies", map[string]interface{}{
			"id":    firstID,
			"title": "FirstMovie",
		}))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("update then get", func(t *testing.T) {
		path := "/movies/" + itoa(firstID)
		rec := serve(server, newJSONRequest(t, http.MethodPut, path, map[string]string{"title": "Novo"}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "Novo", decodeMovie(t, rec).Title)

		rec = serve(server, httptest.NewRequest(http.MethodGet, path, nil))
		updated := decodeMovie(t, rec)
		assert.Equal(t, "Novo", updated.Title)
		assert.Equal(t, "Planet", updated.Country)
	})

	t.Run("missing id is 404 everywhere", func(t *testing.T) {
		rec := serve(server, httptest.NewRequest(http.MethodGet, "/movies/99", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = serve(server, newJSONRequest(t, http.MethodPut, "/movies/99", map[string]string{"title": "Spider Man"}))
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = serve(server, httptest.NewRequest(http.MethodDelete, "/movies/99", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = serve(server, httptest.NewRequest(http.MethodGet, "/movies/title/Spider%20Man", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, "failed update must not create")
	})

	t.Run("delete then get", func(t *testing.T) {
		path := "/movies/" + itoa(firstID)
		rec := serve(server, httptest.NewRequest(http.MethodDelete, path, nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = serve(server, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = serve(server, httptest.NewRequest(http.MethodDelete, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func MustCreateServer(t testing.TB, repo movie.Repository) *httpserver.Server {
	t.Helper()
	return newTestServer(t, testConfig(), movie.NewUsecase(repo))
}

// MustCreateTestDatabase starts a PostgreSQL container and returns a GORM connection to it.
func MustCreateTestDatabase(t testing.TB) *gorm.DB {
	t.Helper()
	ctx := context.Background()
	dbName, dbUser, dbPass := "test_movies", "test", "testpass"
	postgre, err := pgcontainer.RunContainer(ctx,
		testcontainers.WithImage("docker.io/postgres:15.2-alpine"),
		pgcontainer.WithDatabase(dbName),
		pgcontainer.WithUsername(dbUser),
		pgcontainer.WithPassword(dbPass),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		assert.NoError(t, postgre.Terminate(ctx), "failed to terminate postgres container")
	})

	host, port := extractHostAndPort(t, ctx, postgre)
	db, err := postgres.NewConnection(postgres.Options{
		DBName:   dbName,
		DBUser:   dbUser,
		Password: dbPass,
		Host:     host,
		Port:     port.Port(),
	})
	require.NoError(t, err, "failed to connect to postgres database")

	return db
}

func extractHostAndPort(t testing.TB, ctx context.Context, postgre *pgcontainer.PostgresContainer) (string, nat.Port) {
	t.Helper()
	host, err := postgre.Host(ctx)
	require.NoError(t, err, "failed to get container host")

	port, err := postgre.MappedPort(ctx, "5432")
	require.NoError(t, err, "failed to get mapped port")
	return host, port
}

// MigrateTestDatabase runs all migration files against the test database.
func MigrateTestDatabase(t testing.TB, db *gorm.DB, migrationPath string) {
	t.Helper()
	migrations := &migrate.FileMigrationSource{
		Dir: migrationPath,
	}

	sqlDB, err := db.DB()
	require.NoError(t, err, "failed to get sql.DB from gorm.DB")

	_, err = migrate.Exec(sqlDB, "postgres", migrations, migrate.Up)
	require.NoError(t, err, "failed to run database migrations")
}
