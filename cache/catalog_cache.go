package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"mediagate/logger"
	"mediagate/model"

	"github.com/redis/go-redis/v9"
)

const (
	albumsKey    = "mediagate:catalog:albums"
	signedURLKey = "mediagate:signed:"
)

// Catalog caches the album listing and signed download URLs. Misses and
// backend failures both report ok=false so callers fall back to the source.
type Catalog interface {
	GetAlbums(ctx context.Context) ([]model.Album, bool)
	SetAlbums(ctx context.Context, albums []model.Album)
	InvalidateAlbums(ctx context.Context)
	GetSignedURL(ctx context.Context, path string) (string, bool)
	SetSignedURL(ctx context.Context, path, url string, ttl time.Duration)
	InvalidateSignedURL(ctx context.Context, path string)
}

// Nop never caches anything.
type Nop struct{}

func (Nop) GetAlbums(context.Context) ([]model.Album, bool) { return nil, false }
func (Nop) SetAlbums(context.Context, []model.Album) {}
func (Nop) InvalidateAlbums(context.Context) {}
func (Nop) GetSignedURL(context.Context, string) (string, bool) { return "", false }
func (Nop) SetSignedURL(context.Context, string, string, time.Duration) {}
func (Nop) InvalidateSignedURL(context.Context, string) {}

// RedisCatalog stores catalog entries in Redis.
type RedisCatalog struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCatalog caches the album listing for ttl.
func NewRedisCatalog(client *redis.Client, ttl time.Duration) *RedisCatalog {
	return &RedisCatalog{client: client, ttl: ttl}
}

func (c *RedisCatalog) GetAlbums(ctx context.Context) ([]model.Album, bool) {
	raw, err := c.client.Get(ctx, albumsKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("[Cache] read albums failed", logger.ErrorField(err))
		}
		return nil, false
	}
	var albums []model.Album
	if err := json.Unmarshal(raw, &albums); err != nil {
		logger.Warn("[Cache] corrupt albums entry", logger.ErrorField(err))
		return nil, false
	}
	return albums, true
}

func (c *RedisCatalog) SetAlbums(ctx context.Context, albums []model.Album) {
	raw, err := json.Marshal(albums)
	if err != nil {
		logger.Warn("[Cache] encode albums failed", logger.ErrorField(err))
		return
	}
	if err := c.client.Set(ctx, albumsKey, raw, c.ttl).Err(); err != nil {
		logger.Warn("[Cache] write albums failed", logger.ErrorField(err))
	}
}

func (c *RedisCatalog) InvalidateAlbums(ctx context.Context) {
	if err := c.client.Del(ctx, albumsKey).Err(); err != nil {
		logger.Warn("[Cache] invalidate albums failed", logger.ErrorField(err))
	}
}

func (c *RedisCatalog) GetSignedURL(ctx context.Context, path string) (string, bool) {
	u, err := c.client.Get(ctx, signedURLKey+path).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("[Cache] read signed url failed", logger.String("path", path), logger.ErrorField(err))
		}
		return "", false
	}
	return u, true
}

// SetSignedURL keeps url for ttl; a non-positive ttl is ignored.
func (c *RedisCatalog) SetSignedURL(ctx context.Context, path, url string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := c.client.Set(ctx, signedURLKey+path, url, ttl).Err(); err != nil {
		logger.Warn("[Cache] write signed url failed", logger.String("path", path), logger.ErrorField(err))
	}
}

func (c *RedisCatalog) InvalidateSignedURL(ctx context.Context, path string) {
	if err := c.client.Del(ctx, signedURLKey+path).Err(); err != nil {
		logger.Warn("[Cache] invalidate signed url failed", logger.String("path", path), logger.ErrorField(err))
	}
}
