package httpserver

import (
	"moviecatalog/movie"
)

// MovieRequest is the create payload. A client-sent id is kept so the
// service can reject payloads the store already holds.
type MovieRequest struct {
	ID          *int64 `json:"id"`
	Title       string `json:"title" validate:"max=255"`
	Description string `json:"description" validate:"max=255"`
	Director    string `json:"director" validate:"max=255"`
	Country     string `json:"country" validate:"max=255"`
}

func (r MovieRequest) ToMovie() movie.Movie {
	m := movie.Movie{
		Title:       r.Title,
		Description: r.Description,
		Director:    r.Director,
		Country:     r.Country,
	}
	if r.ID != nil {
		m.Identity = movie.Saved(*r.ID)
	}
	return m
}

// UpdateMovieRequest is the update payload; absent fields stay nil and are
// left untouched. Any id in the body is ignored in favour of the path id.
type UpdateMovieRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty,max=255"`
	Director    *string `json:"director" validate:"omitempty,max=255"`
	Country     *string `json:"country" validate:"omitempty,max=255"`
}

func (r UpdateMovieRequest) ToPatch() movie.Patch {
	return movie.Patch{
		Title:       r.Title,
		Description: r.Description,
		Director:    r.Director,
		Country:     r.Country,
	}
}
