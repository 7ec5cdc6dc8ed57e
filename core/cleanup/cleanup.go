package cleanup

import (
	"context"
	"fmt"

	"mediagate/cache"
	"mediagate/logger"
	"mediagate/model"
	"mediagate/repository"
	"mediagate/storage"

	"github.com/zeebo/errs"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the number of in-flight existence checks.
const DefaultConcurrency = 4

// Error is the class of per-row failures collected during a pass.
var Error = errs.Class("cleanup")

// Report describes one cleanup pass.
type Report struct {
	AlbumsChecked int      `json:"albumsChecked"`
	TracksChecked int      `json:"tracksChecked"`
	AlbumsRemoved int      `json:"albumsRemoved"`
	TracksRemoved int      `json:"tracksRemoved"`
	Errors        []string `json:"errors,omitempty"`

	err errs.Group
}

// Err combines every per-row failure, or nil when there were none.
func (r *Report) Err() error { return r.err.Err() }

func (r *Report) fail(err error) {
	r.err.Add(err)
	r.Errors = append(r.Errors, err.Error())
}

// Service removes rows whose objects are gone from the store.
type Service struct {
	albums      repository.AlbumRepository
	store       storage.ObjectStore
	cache       cache.Catalog
	concurrency int
}

// NewService creates a cleanup service. A nil cache disables invalidation.
func NewService(albums repository.AlbumRepository, store storage.ObjectStore, catalog cache.Catalog) *Service {
	if catalog == nil {
		catalog = cache.Nop{}
	}
	return &Service{albums: albums, store: store, cache: catalog, concurrency: DefaultConcurrency}
}

type row struct {
	album  bool
	file   model.StoredFile
	exists bool
	err    error
}

// CleanupOrphans checks every album cover and track file and deletes the rows
// whose object is missing. A row whose check fails is kept and reported. The
// returned error is non-nil only when the rows could not be listed.
func (s *Service) CleanupOrphans(ctx context.Context) (*Report, error) {
	albumFiles, err := s.albums.ListAlbumFiles(ctx)
	if err != nil {
		return nil, err
	}
	trackFiles, err := s.albums.ListTrackFiles(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]row, 0, len(albumFiles)+len(trackFiles))
	for _, f := range trackFiles {
		rows = append(rows, row{file: f})
	}
	for _, f := range albumFiles {
		rows = append(rows, row{album: true, file: f})
	}

	logger.Info("[Cleanup] checking objects",
		logger.Int("albums", len(albumFiles)),
		logger.Int("tracks", len(trackFiles)))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range rows {
		r := &rows[i]
		if r.file.Path == "" {
			continue
		}
		g.Go(func() error {
			r.exists, r.err = s.store.Exists(ctx, r.file.Path)
			return nil
		})
	}
	_ = g.Wait()

	report := &Report{AlbumsChecked: len(albumFiles), TracksChecked: len(trackFiles)}
	for _, r := range rows {
		kind := "track"
		if r.album {
			kind = "album"
		}
		if r.err != nil {
			report.fail(Error.New("check %s %d (%s): %v", kind, r.file.ID, r.file.Path, r.err))
			continue
		}
		if r.exists {
			continue
		}

		// tracks come first so an album cascade never hides a track removal
		if r.album {
			err = s.albums.DeleteAlbum(ctx, r.file.ID)
		} else {
			err = s.albums.DeleteTrack(ctx, r.file.ID)
		}
		if err != nil {
			report.fail(Error.Wrap(fmt.Errorf("delete %s %d: %w", kind, r.file.ID, err)))
			continue
		}
		logger.Info("[Cleanup] removed orphan row",
			logger.String("kind", kind),
			logger.Int64("id", r.file.ID),
			logger.String("path", r.file.Path))
		if r.album {
			report.AlbumsRemoved++
		} else {
			report.TracksRemoved++
		}
	}

	if report.AlbumsRemoved+report.TracksRemoved > 0 {
		s.cache.InvalidateAlbums(ctx)
	}
	logger.Info("[Cleanup] pass completed",
		logger.Int("albumsRemoved", report.AlbumsRemoved),
		logger.Int("tracksRemoved", report.TracksRemoved),
		logger.Int("errors", len(report.Errors)))
	return report, nil
}
