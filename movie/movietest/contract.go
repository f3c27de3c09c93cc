// Package movietest holds a behavioural test suite that every
// movie.Repository implementation must pass.
package movietest

import (
	"context"
	"testing"

	"moviecatalog/movie"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty repository. It is called once per subtest.
type Factory func(t *testing.T) movie.Repository

// Seed persists movies in order and returns them with their identities.
func Seed(t testing.TB, r movie.Repository, movies ...movie.Movie) []movie.Movie {
	t.Helper()
	saved := make([]movie.Movie, len(movies))
	for i, m := range movies {
		require.NoError(t, r.Persist(context.Background(), &m))
		saved[i] = m
	}
	return saved
}

// RunRepositoryContract runs the repository behaviour suite against newRepo.
func RunRepositoryContract(t *testing.T, newRepo Factory) {
	ctx := context.Background()

	t.Run("list all returns empty slice on empty store", func(t *testing.T) {
		r := newRepo(t)

		movies, err := r.ListAll(ctx)

		require.NoError(t, err)
		assert.NotNil(t, movies)
		assert.Empty(t, movies)
	})

	t.Run("list all returns every movie ordered by id", func(t *testing.T) {
		r := newRepo(t)
		saved := Seed(t, r,
			movie.Movie{Title: "FirstMovie", Country: "Planet"},
			movie.Movie{Title: "SecondMovie", Country: "Planet"},
		)

		movies, err := r.ListAll(ctx)

		require.NoError(t, err)
		assert.Equal(t, saved, movies)
	})

	t.Run("persist assigns identity and find by id returns an equal record", func(t *testing.T) {
		r := newRepo(t)
		m := movie.Movie{Title: "Transformers", Description: "robots", Director: "Michael Bay", Country: "Estados Unidos"}

		require.NoError(t, r.Persist(ctx, &m))

		id, ok := m.ID()
		require.True(t, ok, "persist should assign an id")
		l, err := r.FindByID(ctx, id)
		require.NoError(t, err)
		found, ok := l.Get()
		require.True(t, ok)
		assert.Equal(t, m, found)
	})

	t.Run("persist replaces a stale identity", func(t *testing.T) {
		r := newRepo(t)
		m := movie.Movie{Identity: movie.Saved(4242), Title: "Stale"}

		require.NoError(t, r.Persist(ctx, &m))

		id, ok := m.ID()
		require.True(t, ok)
		assert.NotEqual(t, int64(4242), id)
		l, err := r.FindByID(ctx, 4242)
		require.NoError(t, err)
		_, found := l.Get()
		assert.False(t, found)
	})

	t.Run("find by id is absent for unknown id", func(t *testing.T) {
		r := newRepo(t)

		l, err := r.FindByID(ctx, 99)

		require.NoError(t, err)
		_, ok := l.Get()
		assert.False(t, ok)
	})

	t.Run("find by title matches exactly", func(t *testing.T) {
		r := newRepo(t)
		saved := Seed(t, r,
			movie.Movie{Title: "FirstMovie", Country: "Planet"},
			movie.Movie{Title: "First", Country: "Elsewhere"},
		)

		l, err := r.FindByTitle(ctx, "FirstMovie")
		require.NoError(t, err)
		found, ok := l.Get()
		require.True(t, ok)
		assert.Equal(t, saved[0], found)

		l, err = r.FindByTitle(ctx, "Movie")
		require.NoError(t, err)
		_, ok = l.Get()
		assert.False(t, ok)

		l, err = r.FindByTitle(ctx, "firstmovie")
		require.NoError(t, err)
		_, ok = l.Get()
		assert.False(t, ok, "title lookup is case sensitive")
	})

	t.Run("find by title returns lowest id on duplicates", func(t *testing.T) {
		r := newRepo(t)
		saved := Seed(t, r,
			movie.Movie{Title: "Remake", Country: "A"},
			movie.Movie{Title: "Remake", Country: "B"},
		)

		l, err := r.FindByTitle(ctx, "Remake")

		require.NoError(t, err)
		found, ok := l.Get()
		require.True(t, ok)
		assert.Equal(t, saved[0], found)
	})

	t.Run("find by country returns exactly the matching records", func(t *testing.T) {
		r := newRepo(t)
		saved := Seed(t, r,
			movie.Movie{Title: "FirstMovie", Country: "Planet"},
			movie.Movie{Title: "Other", Country: "planet"},
			movie.Movie{Title: "SecondMovie", Country: "Planet"},
			movie.Movie{Title: "Far", Country: "Planeta"},
		)

		movies, err := r.FindByCountry(ctx, "Planet")

		require.NoError(t, err)
		assert.Equal(t, []movie.Movie{saved[0], saved[2]}, movies)
	})

	t.Run("find by country with empty string is not a wildcard", func(t *testing.T) {
		r := newRepo(t)
		Seed(t, r, movie.Movie{Title: "FirstMovie", Country: "Olá Mundo"})

		movies, err := r.FindByCountry(ctx, "")

		require.NoError(t, err)
		assert.NotNil(t, movies)
		assert.Empty(t, movies)
	})

	t.Run("find by country with empty string matches empty countries", func(t *testing.T) {
		r := newRepo(t)
		saved := Seed(t, r,
			movie.Movie{Title: "Nowhere"},
			movie.Movie{Title: "Somewhere", Country: "Olá Mundo"},
		)

		movies, err := r.FindByCountry(ctx, "")

		require.NoError(t, err)
		assert.Equal(t, []movie.Movie{saved[0]}, movies)
	})

	t.Run("is persistent reflects the store", func(t *testing.T) {
		r := newRepo(t)
		saved := Seed(t, r, movie.Movie{Title: "FirstMovie"})

		persistent, err := r.IsPersistent(ctx, saved[0])
		require.NoError(t, err)
		assert.True(t, persistent)

		persistent, err = r.IsPersistent(ctx, movie.Movie{Title: "FirstMovie"})
		require.NoError(t, err)
		assert.False(t, persistent, "unsaved movie is never persistent")

		persistent, err = r.IsPersistent(ctx, movie.Movie{Identity: movie.Saved(999), Title: "FirstMovie"})
		require.NoError(t, err)
		assert.False(t, persistent, "unknown id is not persistent")
	})

	t.Run("update applies present fields to existing record", func(t *testing.T) {
		r := newRepo(t)
		saved := Seed(t, r, movie.Movie{Title: "FirstMovie", Director: "Me", Country: "Planet"})
		id, _ := saved[0].ID()
		title := "Novo"

		l, err := r.Update(ctx, id, movie.Patch{Title: &title})

		require.NoError(t, err)
		updated, ok := l.Get()
		require.True(t, ok)
		expected := movie.Movie{Identity: movie.Saved(id), Title: "Novo", Director: "Me", Country: "Planet"}
		assert.Equal(t, expected, updated)

		l, err = r.FindByID(ctx, id)
		require.NoError(t, err)
		reloaded, _ := l.Get()
		assert.Equal(t, expected, reloaded)
	})

	t.Run("update of unknown id creates nothing", func(t *testing.T) {
		r := newRepo(t)
		title := "Spider Man"

		l, err := r.Update(ctx, 999, movie.Patch{Title: &title})

		require.NoError(t, err)
		_, ok := l.Get()
		assert.False(t, ok)
		movies, err := r.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, movies)
	})

	t.Run("delete removes the record once", func(t *testing.T) {
		r := newRepo(t)
		saved := Seed(t, r,
			movie.Movie{Title: "FirstMovie"},
			movie.Movie{Title: "SecondMovie"},
		)
		id, _ := saved[0].ID()

		deleted, err := r.DeleteByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = r.DeleteByID(ctx, id)
		require.NoError(t, err)
		assert.False(t, deleted, "second delete of the same id")

		l, err := r.FindByID(ctx, id)
		require.NoError(t, err)
		_, ok := l.Get()
		assert.False(t, ok)
	})

	t.Run("delete of unknown id leaves store unchanged", func(t *testing.T) {
		r := newRepo(t)
		saved := Seed(t, r, movie.Movie{Title: "FirstMovie"})

		deleted, err := r.DeleteByID(ctx, 999)

		require.NoError(t, err)
		assert.False(t, deleted)
		movies, err := r.ListAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, saved, movies)
	})
}
