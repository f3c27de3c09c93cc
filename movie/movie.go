package movie

import (
	"encoding/json"

	"moviecatalog/errs"
)

var (
	ErrMovieNotFound          = errs.Errorf(errs.ENOTFOUND, "movie: not found")
	ErrMovieAlreadyPersistent = errs.Errorf(errs.EINVALID, "movie: already persistent")
	ErrInvalidID              = errs.Errorf(errs.EINVALID, "movie: invalid id")
)

// Identity is the store identity of a movie. The zero value is Unsaved.
type Identity struct {
	id    int64
	saved bool
}

// Unsaved is the identity of a movie the store has not assigned an id to.
func Unsaved() Identity {
	return Identity{}
}

// Saved is the identity of a movie stored under id.
func Saved(id int64) Identity {
	return Identity{id: id, saved: true}
}

// ID returns the store-assigned id and whether there is one.
func (i Identity) ID() (int64, bool) {
	return i.id, i.saved
}

func (i Identity) IsSaved() bool {
	return i.saved
}

type Movie struct {
	Identity    Identity
	Title       string
	Description string
	Director    string
	Country     string
}

// ID is shorthand for m.Identity.ID().
func (m Movie) ID() (int64, bool) {
	return m.Identity.ID()
}

type movieJSON struct {
	ID          *int64 `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Director    string `json:"director"`
	Country     string `json:"country"`
}

// MarshalJSON writes "id" only for saved movies.
func (m Movie) MarshalJSON() ([]byte, error) {
	v := movieJSON{
		Title:       m.Title,
		Description: m.Description,
		Director:    m.Director,
		Country:     m.Country,
	}
	if id, ok := m.ID(); ok {
		v.ID = &id
	}
	return json.Marshal(v)
}

// Lookup is the result of a single-movie find: either a movie or nothing.
type Lookup struct {
	movie Movie
	found bool
}

func Found(m Movie) Lookup {
	return Lookup{movie: m, found: true}
}

func Absent() Lookup {
	return Lookup{}
}

func (l Lookup) Get() (Movie, bool) {
	return l.movie, l.found
}

// Patch holds the fields present in an update payload. Nil fields are left
// untouched by Apply.
type Patch struct {
	Title       *string
	Description *string
	Director    *string
	Country     *string
}

// Apply returns m with every present field of p assigned. The identity is never changed.
func (p Patch) Apply(m Movie) Movie {
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.Director != nil {
		m.Director = *p.Director
	}
	if p.Country != nil {
		m.Country = *p.Country
	}
	return m
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Director == nil && p.Country == nil
}
