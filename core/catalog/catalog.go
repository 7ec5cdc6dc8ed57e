package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mediagate/cache"
	"mediagate/logger"
	"mediagate/model"
	"mediagate/repository"
	"mediagate/storage"
)

const (
	// SignedURLTTL is how long a download URL stays valid.
	SignedURLTTL = time.Hour
	// cachedURLMargin keeps a cached URL from being served close to expiry.
	cachedURLMargin = 5 * time.Minute
)

// Service answers catalog reads.
type Service struct {
	albums repository.AlbumRepository
	movies repository.MovieRepository
	store  storage.ObjectStore
	cache  cache.Catalog
}

// NewService creates the catalog service. A nil cache disables caching.
func NewService(albums repository.AlbumRepository, movies repository.MovieRepository, store storage.ObjectStore, catalog cache.Catalog) *Service {
	if catalog == nil {
		catalog = cache.Nop{}
	}
	return &Service{albums: albums, movies: movies, store: store, cache: catalog}
}

// ListAlbums returns every album, newest first, each with its tracks in order.
func (s *Service) ListAlbums(ctx context.Context) ([]model.Album, error) {
	if albums, ok := s.cache.GetAlbums(ctx); ok {
		logger.Debug("[Catalog] albums served from cache", logger.Int("count", len(albums)))
		return albums, nil
	}
	albums, err := s.albums.ListAlbumsWithTracks(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetAlbums(ctx, albums)
	return albums, nil
}

// ListMovies returns every movie, newest first.
func (s *Service) ListMovies(ctx context.Context) ([]model.Movie, error) {
	return s.movies.ListMovies(ctx)
}

// NormalizePath converts backslashes to slashes and trims separators from
// both ends.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	return strings.Trim(p, "/")
}

// DownloadURL returns a signed URL for the object at path. A missing object
// yields storage.ErrNotFound, also when a URL for it is still cached.
func (s *Service) DownloadURL(ctx context.Context, path string) (string, error) {
	key := NormalizePath(path)
	if key == "" {
		return "", fmt.Errorf("%w: empty path", storage.ErrNotFound)
	}
	if u, ok := s.cache.GetSignedURL(ctx, key); ok {
		exists, err := s.store.Exists(ctx, key)
		if err != nil {
			return "", err
		}
		if exists {
			return u, nil
		}
		s.cache.InvalidateSignedURL(ctx, key)
		logger.Info("[Catalog] cached url dropped, object gone", logger.String("key", key))
		return "", fmt.Errorf("%w: %s", storage.ErrNotFound, key)
	}

	if _, err := s.store.Authorize(ctx); err != nil {
		return "", err
	}
	u, err := s.store.SignedURL(ctx, s.store.Bucket(), key, SignedURLTTL)
	if err != nil {
		return "", err
	}
	s.cache.SetSignedURL(ctx, key, u, SignedURLTTL-cachedURLMargin)
	logger.Debug("[Catalog] signed url issued", logger.String("key", key))
	return u, nil
}
