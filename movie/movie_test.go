package movie_test

import (
	"encoding/json"
	"testing"

	"moviecatalog/movie"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentity(t *testing.T) {
	t.Run("zero value is unsaved", func(t *testing.T) {
		var m movie.Movie

		_, ok := m.ID()

		assert.False(t, ok)
		assert.Equal(t, movie.Unsaved(), m.Identity)
	})

	t.Run("saved identity carries its id", func(t *testing.T) {
		id, ok := movie.Saved(42).ID()

		assert.True(t, ok)
		assert.Equal(t, int64(42), id)
	})
}

func TestMovieJSON(t *testing.T) {
	t.Run("unsaved movie omits id", func(t *testing.T) {
		data, err := json.Marshal(movie.Movie{Title: "Transformers", Country: "Estados Unidos"})

		require.NoError(t, err)
		assert.JSONEq(t, `{"title":"Transformers","description":"","director":"","country":"Estados Unidos"}`, string(data))
	})

	t.Run("saved movie writes id", func(t *testing.T) {
		data, err := json.Marshal(movie.Movie{Identity: movie.Saved(1), Title: "FirstMovie", Country: "Planet"})

		require.NoError(t, err)
		assert.JSONEq(t, `{"id":1,"title":"FirstMovie","description":"","director":"","country":"Planet"}`, string(data))
	})
}

func TestPatchApply(t *testing.T) {
	original := movie.Movie{
		Identity:    movie.Saved(1),
		Title:       "FirstMovie",
		Description: "first",
		Director:    "Me",
		Country:     "Planet",
	}

	t.Run("applies only present fields", func(t *testing.T) {
		title := "Novo"
		country := ""

		updated := movie.Patch{Title: &title, Country: &country}.Apply(original)

		assert.Equal(t, movie.Movie{
			Identity:    movie.Saved(1),
			Title:       "Novo",
			Description: "first",
			Director:    "Me",
			Country:     "",
		}, updated)
	})

	t.Run("empty patch leaves movie unchanged", func(t *testing.T) {
		p := movie.Patch{}

		assert.True(t, p.IsEmpty())
		assert.Equal(t, original, p.Apply(original))
	})
}

func TestLookup(t *testing.T) {
	m, ok := movie.Absent().Get()
	assert.False(t, ok)
	assert.Equal(t, movie.Movie{}, m)

	m, ok = movie.Found(movie.Movie{Title: "x"}).Get()
	assert.True(t, ok)
	assert.Equal(t, "x", m.Title)
}
