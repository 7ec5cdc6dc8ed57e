package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"time"

	"mediagate/cache"
	"mediagate/logger"
	"mediagate/model"
	"mediagate/repository"
	"mediagate/storage"
)

var (
	ErrMissingTitle = errors.New("album title is required")
	ErrMissingCover = errors.New("cover image is required")
)

// File is one uploaded file. Open is called at most once, right before the
// upload, and the returned handle is always closed.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// TrackResult records what happened to one submitted track.
type TrackResult struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	TrackNumber int    `json:"trackNumber"`
	TrackID     int64  `json:"trackId,omitempty"`
	Key         string `json:"key,omitempty"`
	Err         error  `json:"-"`
	Error       string `json:"error,omitempty"`
}

// OK reports whether the track was uploaded and persisted.
func (r TrackResult) OK() bool { return r.Err == nil }

// Result summarises an album creation.
type Result struct {
	AlbumID   int64         `json:"albumId"`
	CoverKey  string        `json:"coverKey"`
	Tracks    []TrackResult `json:"tracks"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
}

// Service uploads albums to the object store and records them.
type Service struct {
	store  storage.ObjectStore
	albums repository.AlbumRepository
	cache  cache.Catalog
	now    func() time.Time
}

// NewService creates an ingestion service. A nil cache disables invalidation.
func NewService(store storage.ObjectStore, albums repository.AlbumRepository, catalog cache.Catalog) *Service {
	if catalog == nil {
		catalog = cache.Nop{}
	}
	return &Service{store: store, albums: albums, cache: catalog, now: time.Now}
}

// CreateAlbum uploads the cover, creates the album row, then uploads and records
// each track in order. A failing track is reported in the result and does not
// stop the remaining tracks. The returned error is non-nil only when the album
// itself could not be created.
func (s *Service) CreateAlbum(ctx context.Context, title string, cover *File, tracks []File) (*Result, error) {
	if title == "" {
		return nil, ErrMissingTitle
	}
	if cover == nil {
		return nil, ErrMissingCover
	}
	logger.Info("[Ingest] album creation started",
		logger.String("title", title),
		logger.Int("tracks", len(tracks)))

	if _, err := s.store.Authorize(ctx); err != nil {
		return nil, fmt.Errorf("authorize store: %w", err)
	}

	keys := newKeyGen(s.now)

	coverKey := keys.next(cover.Name)
	if err := s.upload(ctx, cover, coverKey); err != nil {
		return nil, fmt.Errorf("upload cover: %w", err)
	}
	logger.Debug("[Ingest] cover uploaded", logger.String("key", coverKey))

	album := &model.Album{Title: title, CoverImagePath: coverKey}
	albumID, err := s.albums.CreateAlbum(ctx, album)
	if err != nil {
		return nil, fmt.Errorf("create album row: %w", err)
	}
	logger.Info("[Ingest] album row created", logger.Int64("albumId", albumID))

	res := &Result{AlbumID: albumID, CoverKey: coverKey, Tracks: make([]TrackResult, 0, len(tracks))}
	for i := range tracks {
		tr := s.addTrack(ctx, albumID, i, &tracks[i], keys)
		if tr.OK() {
			res.Succeeded++
		} else {
			res.Failed++
			logger.Error("[Ingest] track failed, continuing",
				logger.Int64("albumId", albumID),
				logger.Int("track", i+1),
				logger.String("name", tr.Name),
				logger.ErrorField(tr.Err))
		}
		res.Tracks = append(res.Tracks, tr)
	}

	s.cache.InvalidateAlbums(ctx)
	logger.Info("[Ingest] album creation completed",
		logger.Int64("albumId", albumID),
		logger.Int("succeeded", res.Succeeded),
		logger.Int("failed", res.Failed))
	return res, nil
}

func (s *Service) addTrack(ctx context.Context, albumID int64, index int, f *File, keys *keyGen) TrackResult {
	tr := TrackResult{Index: index, Name: f.Name, TrackNumber: index + 1}
	fail := func(err error) TrackResult {
		tr.Err = err
		tr.Error = err.Error()
		return tr
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	tr.Key = keys.next(f.Name)
	if err := s.upload(ctx, f, tr.Key); err != nil {
		return fail(fmt.Errorf("upload: %w", err))
	}

	id, err := s.albums.CreateTrack(ctx, &model.Track{
		AlbumID:     albumID,
		Title:       f.Name,
		TrackNumber: tr.TrackNumber,
		FilePath:    tr.Key,
		B2FileName:  tr.Key,
	})
	if err != nil {
		// the uploaded object is left behind; cleanup only removes rows
		return fail(fmt.Errorf("record track: %w", err))
	}
	tr.TrackID = id
	return tr
}

// upload opens f, streams it to the store under key and closes it.
func (s *Service) upload(ctx context.Context, f *File, key string) error {
	if f.Open == nil {
		return fmt.Errorf("file %q has no content", f.Name)
	}
	target, err := s.store.UploadTarget(ctx, s.store.Bucket())
	if err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %q: %w", f.Name, err)
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil {
			logger.Warn("[Ingest] close upload handle failed", logger.String("name", f.Name), logger.ErrorField(cerr))
		}
	}()
	return s.store.Upload(ctx, target, key, rc, f.Size, f.ContentType)
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9.]`)

// SanitizeName replaces every character other than ASCII letters, digits and
// dots with an underscore.
func SanitizeName(name string) string {
	return unsafeKeyChars.ReplaceAllString(name, "_")
}

// ObjectKey is "<unix millis>-<sanitized name>".
func ObjectKey(t time.Time, name string) string {
	return strconv.FormatInt(t.UnixMilli(), 10) + "-" + SanitizeName(name)
}

// keyGen hands out object keys that are unique within one request even when
// two files with the same name arrive in the same millisecond.
type keyGen struct {
	now  func() time.Time
	seen map[string]struct{}
}

func newKeyGen(now func() time.Time) *keyGen {
	return &keyGen{now: now, seen: make(map[string]struct{})}
}

func (g *keyGen) next(name string) string {
	t := g.now()
	for {
		key := ObjectKey(t, name)
		if _, dup := g.seen[key]; !dup {
			g.seen[key] = struct{}{}
			return key
		}
		t = t.Add(time.Millisecond)
	}
}
