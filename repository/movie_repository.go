package repository

import (
	"context"

	"mediagate/model"

	"gorm.io/gorm"
)

// MovieRepository lists movies. Movies have no write path yet.
type MovieRepository interface {
	ListMovies(ctx context.Context) ([]model.Movie, error)
}

type gormMovieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) MovieRepository {
	return &gormMovieRepository{db: db}
}

// ListMovies returns movies newest first.
func (r *gormMovieRepository) ListMovies(ctx context.Context) ([]model.Movie, error) {
	movies := make([]model.Movie, 0)
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&movies).Error; err != nil {
		return nil, dbErr("list movies", err)
	}
	return movies, nil
}
