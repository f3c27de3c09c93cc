package movie

import (
	"context"

	"moviecatalog/errs"
)

type Service interface {
	ListMovies(ctx context.Context) ([]Movie, error)
	GetMovie(ctx context.Context, id int64) (Movie, error)
	GetMovieByTitle(ctx context.Context, title string) (Movie, error)
	ListMoviesByCountry(ctx context.Context, country string) ([]Movie, error)
	CreateMovie(ctx context.Context, m Movie) (Movie, error)
	UpdateMovie(ctx context.Context, id int64, p Patch) (Movie, error)
	DeleteMovie(ctx context.Context, id int64) error
}

// Repository owns persisted movies. "Not found" is reported as an absent
// Lookup, an empty slice or false, never as an error; errors are store failures.
type Repository interface {
	ListAll(ctx context.Context) ([]Movie, error)
	FindByID(ctx context.Context, id int64) (Lookup, error)
	FindByTitle(ctx context.Context, title string) (Lookup, error)
	FindByCountry(ctx context.Context, country string) ([]Movie, error)
	// Persist stores m under a fresh store-assigned id and sets m.Identity to it.
	Persist(ctx context.Context, m *Movie) error
	IsPersistent(ctx context.Context, m Movie) (bool, error)
	Update(ctx context.Context, id int64, p Patch) (Lookup, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
}

type Usecase struct {
	r Repository
}

func NewUsecase(r Repository) *Usecase {
	return &Usecase{r: r}
}

func (uc *Usecase) ListMovies(ctx context.Context) ([]Movie, error) {
	movies, err := uc.r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(movies), nil
}

func (uc *Usecase) GetMovie(ctx context.Context, id int64) (Movie, error) {
	l, err := uc.r.FindByID(ctx, id)
	if err != nil {
		return Movie{}, err
	}
	return present(l)
}

func (uc *Usecase) GetMovieByTitle(ctx context.Context, title string) (Movie, error) {
	l, err := uc.r.FindByTitle(ctx, title)
	if err != nil {
		return Movie{}, err
	}
	return present(l)
}

func (uc *Usecase) ListMoviesByCountry(ctx context.Context, country string) ([]Movie, error) {
	movies, err := uc.r.FindByCountry(ctx, country)
	if err != nil {
		return nil, err
	}
	return nonNil(movies), nil
}

// CreateMovie persists m unless the repository already knows it. Whether m
// is known is decided by the store, not by the id carried in the payload.
func (uc *Usecase) CreateMovie(ctx context.Context, m Movie) (Movie, error) {
	persistent, err := uc.r.IsPersistent(ctx, m)
	if err != nil {
		return Movie{}, err
	}
	if persistent {
		return Movie{}, ErrMovieAlreadyPersistent
	}

	if err := uc.r.Persist(ctx, &m); err != nil {
		return Movie{}, err
	}
	if !m.Identity.IsSaved() {
		return Movie{}, errs.Errorf(errs.EINTERNAL, "movie: store did not assign an id")
	}
	return m, nil
}

func (uc *Usecase) UpdateMovie(ctx context.Context, id int64, p Patch) (Movie, error) {
	l, err := uc.r.Update(ctx, id, p)
	if err != nil {
		return Movie{}, err
	}
	return present(l)
}

func (uc *Usecase) DeleteMovie(ctx context.Context, id int64) error {
	deleted, err := uc.r.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrMovieNotFound
	}
	return nil
}

func present(l Lookup) (Movie, error) {
	m, ok := l.Get()
	if !ok {
		return Movie{}, ErrMovieNotFound
	}
	return m, nil
}

func nonNil(movies []Movie) []Movie {
	if movies == nil {
		return []Movie{}
	}
	return movies
}
