package postgres

import (
	"context"
	"fmt"

	"moviecatalog/movie"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// MovieModel represents the database model for movies
type MovieModel struct {
	ID          int64  `gorm:"primaryKey"`
	Title       string `gorm:"size:255;not null;default:'';index"`
	Description string `gorm:"size:255;not null;default:''"`
	Director    string `gorm:"size:255;not null;default:''"`
	Country     string `gorm:"size:255;not null;default:'';index"`
}

// TableName specifies the table name for GORM
func (MovieModel) TableName() string {
	return "movies"
}

// MovieRepository implements [movie.Repository] on top of gorm. It only uses
// portable SQL, so it also runs on the sqlite connection.
type MovieRepository struct {
	db *gorm.DB
}

// NewMovieRepository creates a new movie repository
func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// ListAll implements [movie.Repository].
func (r *MovieRepository) ListAll(ctx context.Context) ([]movie.Movie, error) {
	var models []MovieModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("postgres: list movies: %w", err)
	}
	return toDomainMovies(models), nil
}

// FindByID implements [movie.Repository].
func (r *MovieRepository) FindByID(ctx context.Context, id int64) (movie.Lookup, error) {
	l, err := findOne(r.db.WithContext(ctx).Where("id = ?", id))
	if err != nil {
		return movie.Absent(), fmt.Errorf("postgres: find movie %d: %w", id, err)
	}
	return l, nil
}

// FindByTitle implements [movie.Repository]. Titles are not unique in the
// table; the lowest id wins.
func (r *MovieRepository) FindByTitle(ctx context.Context, title string) (movie.Lookup, error) {
	l, err := findOne(r.db.WithContext(ctx).Where("title = ?", title))
	if err != nil {
		return movie.Absent(), fmt.Errorf("postgres: find movie by title: %w", err)
	}
	return l, nil
}

// FindByCountry implements [movie.Repository].
func (r *MovieRepository) FindByCountry(ctx context.Context, country string) ([]movie.Movie, error) {
	var models []MovieModel
	err := r.db.WithContext(ctx).Where("country = ?", country).Order("id").Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("postgres: find movies by country: %w", err)
	}
	return toDomainMovies(models), nil
}

// Persist implements [movie.Repository].
func (r *MovieRepository) Persist(ctx context.Context, m *movie.Movie) error {
	model := toModelMovie(*m)
	model.ID = 0

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&model).Error
	})
	if err != nil {
		return fmt.Errorf("postgres: persist movie: %w", err)
	}

	m.Identity = movie.Saved(model.ID)
	return nil
}

// IsPersistent implements [movie.Repository].
func (r *MovieRepository) IsPersistent(ctx context.Context, m movie.Movie) (bool, error) {
	id, ok := m.ID()
	if !ok {
		return false, nil
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&MovieModel{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("postgres: check movie %d: %w", id, err)
	}
	return count > 0, nil
}

// Update implements [movie.Repository]. The read and the write share one
// transaction. The write is a plain UPDATE keyed by id, so a row deleted
// in between yields Absent and is never re-inserted.
func (r *MovieRepository) Update(ctx context.Context, id int64, p movie.Patch) (movie.Lookup, error) {
	result := movie.Absent()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var models []MovieModel
		if err := tx.Where("id = ?", id).Limit(1).Find(&models).Error; err != nil {
			return err
		}
		if len(models) == 0 {
			return nil
		}

		updated := p.Apply(toDomainMovie(models[0]))
		res := tx.Model(&MovieModel{}).Where("id = ?", id).Updates(map[string]interface{}{
			"title":       updated.Title,
			"description": updated.Description,
			"director":    updated.Director,
			"country":     updated.Country,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		result = movie.Found(updated)
		return nil
	})
	if err != nil {
		return movie.Absent(), fmt.Errorf("postgres: update movie %d: %w", id, err)
	}
	return result, nil
}

// DeleteByID implements [movie.Repository].
func (r *MovieRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&MovieModel{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("postgres: delete movie %d: %w", id, err)
	}
	return deleted, nil
}

func findOne(q *gorm.DB) (movie.Lookup, error) {
	var models []MovieModel
	if err := q.Order("id").Limit(1).Find(&models).Error; err != nil {
		return movie.Absent(), err
	}
	if len(models) == 0 {
		return movie.Absent(), nil
	}
	return movie.Found(toDomainMovie(models[0])), nil
}

func toDomainMovies(models []MovieModel) []movie.Movie {
	return lo.Map(models, func(model MovieModel, _ int) movie.Movie {
		return toDomainMovie(model)
	})
}

func toDomainMovie(model MovieModel) movie.Movie {
	return movie.Movie{
		Identity:    movie.Saved(model.ID),
		Title:       model.Title,
		Description: model.Description,
		Director:    model.Director,
		Country:     model.Country,
	}
}

func toModelMovie(m movie.Movie) MovieModel {
	id, _ := m.ID()
	return MovieModel{
		ID:          id,
		Title:       m.Title,
		Description: m.Description,
		Director:    m.Director,
		Country:     m.Country,
	}
}
