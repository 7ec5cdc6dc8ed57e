package catalog

import (
	"context"
	"testing"
	"time"

	"mediagate/cache"
	"mediagate/db/dbtest"
	"mediagate/model"
	"mediagate/repository"
	"mediagate/storage"
	"mediagate/storage/storagetest"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestCatalog(t *testing.T, c cache.Catalog) (*Service, *gorm.DB, *storagetest.Memory) {
	t.Helper()
	gdb := dbtest.SQLite(t)
	store := storagetest.NewMemory("media")
	svc := NewService(repository.NewAlbumRepository(gdb), repository.NewMovieRepository(gdb), store, c)
	return svc, gdb, store
}

func newRedisCatalog(t *testing.T) (*cache.RedisCatalog, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewRedisCatalog(client, time.Minute), mr
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"/a/b.mp3/":        "a/b.mp3",
		`\music\x.mp3`:     "music/x.mp3",
		"plain.jpg":        "plain.jpg",
		"//":               "",
		`dir\sub/file.mp3`: "dir/sub/file.mp3",
	}
	for in, want := range cases {
		require.Equal(t, want, NormalizePath(in), in)
	}
}

func TestListAlbumsFiltersEmptyTracks(t *testing.T) {
	ctx := context.Background()
	svc, gdb, _ := newTestCatalog(t, nil)

	empty := model.Album{Title: "Empty", CoverImagePath: "e.jpg"}
	require.NoError(t, gdb.Omit("Tracks").Create(&empty).Error)
	full := model.Album{Title: "Full", CoverImagePath: "f.jpg"}
	require.NoError(t, gdb.Omit("Tracks").Create(&full).Error)
	require.NoError(t, gdb.Create(&model.Track{AlbumID: full.ID, Title: "b", TrackNumber: 2, FilePath: "b.mp3"}).Error)
	require.NoError(t, gdb.Create(&model.Track{AlbumID: full.ID, Title: "a", TrackNumber: 1, FilePath: "a.mp3"}).Error)

	albums, err := svc.ListAlbums(ctx)
	require.NoError(t, err)
	require.Len(t, albums, 2)
	require.Equal(t, "Full", albums[0].Title)
	require.Equal(t, "a", albums[0].Tracks[0].Title)
	require.Equal(t, "b", albums[0].Tracks[1].Title)
	require.Equal(t, "Empty", albums[1].Title)
	require.NotNil(t, albums[1].Tracks)
	require.Empty(t, albums[1].Tracks)
	for _, a := range albums {
		for _, tr := range a.Tracks {
			require.NotZero(t, tr.ID)
		}
	}
}

func TestListAlbumsUsesCache(t *testing.T) {
	ctx := context.Background()
	rc, mr := newRedisCatalog(t)
	svc, gdb, _ := newTestCatalog(t, rc)

	first := model.Album{Title: "First", CoverImagePath: "1.jpg"}
	require.NoError(t, gdb.Omit("Tracks").Create(&first).Error)

	albums, err := svc.ListAlbums(ctx)
	require.NoError(t, err)
	require.Len(t, albums, 1)
	require.True(t, mr.Exists("mediagate:catalog:albums"))

	second := model.Album{Title: "Second", CoverImagePath: "2.jpg"}
	require.NoError(t, gdb.Omit("Tracks").Create(&second).Error)

	albums, err = svc.ListAlbums(ctx)
	require.NoError(t, err)
	require.Len(t, albums, 1, "served from cache")

	rc.InvalidateAlbums(ctx)
	albums, err = svc.ListAlbums(ctx)
	require.NoError(t, err)
	require.Len(t, albums, 2)
}

func TestListAlbumsSurvivesCacheOutage(t *testing.T) {
	rc, mr := newRedisCatalog(t)
	svc, gdb, _ := newTestCatalog(t, rc)
	require.NoError(t, gdb.Omit("Tracks").Create(&model.Album{Title: "A", CoverImagePath: "a.jpg"}).Error)

	mr.Close()
	albums, err := svc.ListAlbums(context.Background())
	require.NoError(t, err)
	require.Len(t, albums, 1)
}

func TestListMoviesNewestFirst(t *testing.T) {
	svc, gdb, _ := newTestCatalog(t, nil)
	old := time.Now().Add(-time.Hour)
	require.NoError(t, gdb.Create(&model.Movie{Title: "Old", CreatedAt: old}).Error)
	require.NoError(t, gdb.Create(&model.Movie{Title: "New", CreatedAt: time.Now()}).Error)

	movies, err := svc.ListMovies(context.Background())
	require.NoError(t, err)
	require.Len(t, movies, 2)
	require.Equal(t, "New", movies[0].Title)
}

func TestDownloadURL(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newTestCatalog(t, nil)
	store.Put("music/song.mp3", storagetest.Object{Data: []byte("x")})

	u, err := svc.DownloadURL(ctx, `/music\song.mp3/`)
	require.NoError(t, err)
	require.Equal(t, "https://store.test/media/music/song.mp3?expires=3600", u)
}

func TestDownloadURLMissingObject(t *testing.T) {
	svc, _, _ := newTestCatalog(t, nil)

	_, err := svc.DownloadURL(context.Background(), "nope.mp3")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = svc.DownloadURL(context.Background(), "/")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDownloadURLStoreUnavailable(t *testing.T) {
	svc, _, store := newTestCatalog(t, nil)
	store.Put("a.mp3", storagetest.Object{})
	store.AuthorizeErr = storage.ErrStoreUnavailable

	_, err := svc.DownloadURL(context.Background(), "a.mp3")
	require.ErrorIs(t, err, storage.ErrStoreUnavailable)
	require.NotErrorIs(t, err, storage.ErrNotFound)
}

func TestDownloadURLCached(t *testing.T) {
	ctx := context.Background()
	rc, mr := newRedisCatalog(t)
	svc, _, store := newTestCatalog(t, rc)
	store.Put("a.mp3", storagetest.Object{})

	u, err := svc.DownloadURL(ctx, "a.mp3")
	require.NoError(t, err)
	require.Equal(t, SignedURLTTL-cachedURLMargin, mr.TTL("mediagate:signed:a.mp3"))

	cached, err := svc.DownloadURL(ctx, "a.mp3")
	require.NoError(t, err)
	require.Equal(t, u, cached)
}

func TestDownloadURLCachedButObjectDeleted(t *testing.T) {
	ctx := context.Background()
	rc, mr := newRedisCatalog(t)
	svc, _, store := newTestCatalog(t, rc)
	store.Put("gone.mp3", storagetest.Object{})

	_, err := svc.DownloadURL(ctx, "gone.mp3")
	require.NoError(t, err)
	require.True(t, mr.Exists("mediagate:signed:gone.mp3"))

	store.Delete("gone.mp3")
	_, err = svc.DownloadURL(ctx, "gone.mp3")
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.False(t, mr.Exists("mediagate:signed:gone.mp3"))
}

func TestDownloadURLCachedExistsCheckFails(t *testing.T) {
	ctx := context.Background()
	rc, _ := newRedisCatalog(t)
	svc, _, store := newTestCatalog(t, rc)
	store.Put("a.mp3", storagetest.Object{})

	_, err := svc.DownloadURL(ctx, "a.mp3")
	require.NoError(t, err)

	store.ExistsErr = func(string) error { return storage.ErrStoreUnavailable }
	_, err = svc.DownloadURL(ctx, "a.mp3")
	require.ErrorIs(t, err, storage.ErrStoreUnavailable)
}
