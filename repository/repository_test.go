package repository

import (
	"context"
	"testing"
	"time"

	"mediagate/db/dbtest"
	"mediagate/model"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestAdminLookups(t *testing.T) {
	ctx := context.Background()
	repo := NewAdminRepository(dbtest.SQLite(t))

	id, err := repo.Create(ctx, &model.AdminUser{Username: "root", PasswordHash: "h", AdminCode: strPtr("424242")})
	require.NoError(t, err)
	require.NotZero(t, id)

	admin, err := repo.GetByUsername(ctx, "root")
	require.NoError(t, err)
	require.Equal(t, id, admin.ID)

	admin, err = repo.GetByAdminCode(ctx, "424242")
	require.NoError(t, err)
	require.Equal(t, "root", admin.Username)

	admin, err = repo.GetByUsername(ctx, "nobody")
	require.NoError(t, err)
	require.Nil(t, admin)

	admin, err = repo.GetByAdminCode(ctx, "")
	require.NoError(t, err)
	require.Nil(t, admin)
}

func TestUserByCode(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(dbtest.SQLite(t))

	_, err := repo.Create(ctx, &model.User{Code: "123456"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &model.User{Code: "777777", IsAdmin: true})
	require.NoError(t, err)

	user, err := repo.GetByCode(ctx, "123456")
	require.NoError(t, err)
	require.False(t, user.IsAdmin)

	user, err = repo.GetByCode(ctx, "777777")
	require.NoError(t, err)
	require.True(t, user.IsAdmin)

	user, err = repo.GetByCode(ctx, "999999")
	require.NoError(t, err)
	require.Nil(t, user)

	_, err = repo.Create(ctx, &model.User{Code: "123456"})
	require.ErrorIs(t, err, ErrDatabase)
}

func TestListAlbumsWithTracks(t *testing.T) {
	ctx := context.Background()
	repo := NewAlbumRepository(dbtest.SQLite(t))

	first := &model.Album{Title: "First", CoverImagePath: "1-first.jpg"}
	_, err := repo.CreateAlbum(ctx, first)
	require.NoError(t, err)
	empty := &model.Album{Title: "Empty", CoverImagePath: "2-empty.jpg"}
	_, err = repo.CreateAlbum(ctx, empty)
	require.NoError(t, err)

	// inserted out of order on purpose
	for _, n := range []int{3, 1, 2} {
		_, err := repo.CreateTrack(ctx, &model.Track{
			AlbumID:     first.ID,
			Title:       "t",
			TrackNumber: n,
			FilePath:    "track.mp3",
		})
		require.NoError(t, err)
	}

	albums, err := repo.ListAlbumsWithTracks(ctx)
	require.NoError(t, err)
	require.Len(t, albums, 2)

	require.Equal(t, empty.ID, albums[0].ID)
	require.NotNil(t, albums[0].Tracks)
	require.Empty(t, albums[0].Tracks)

	require.Equal(t, first.ID, albums[1].ID)
	require.Len(t, albums[1].Tracks, 3)
	for i, track := range albums[1].Tracks {
		require.NotZero(t, track.ID)
		require.Equal(t, i+1, track.TrackNumber)
	}
}

func TestTrackNumberUniquePerAlbum(t *testing.T) {
	ctx := context.Background()
	repo := NewAlbumRepository(dbtest.SQLite(t))

	album := &model.Album{Title: "A", CoverImagePath: "a.jpg"}
	_, err := repo.CreateAlbum(ctx, album)
	require.NoError(t, err)

	_, err = repo.CreateTrack(ctx, &model.Track{AlbumID: album.ID, Title: "x", TrackNumber: 1, FilePath: "x"})
	require.NoError(t, err)
	_, err = repo.CreateTrack(ctx, &model.Track{AlbumID: album.ID, Title: "y", TrackNumber: 1, FilePath: "y"})
	require.ErrorIs(t, err, ErrDatabase)
}

func TestFilesAndDeletes(t *testing.T) {
	ctx := context.Background()
	repo := NewAlbumRepository(dbtest.SQLite(t))

	album := &model.Album{Title: "A", CoverImagePath: "cover.jpg"}
	_, err := repo.CreateAlbum(ctx, album)
	require.NoError(t, err)
	trackID, err := repo.CreateTrack(ctx, &model.Track{AlbumID: album.ID, Title: "x", TrackNumber: 1, FilePath: "x.mp3"})
	require.NoError(t, err)

	albumFiles, err := repo.ListAlbumFiles(ctx)
	require.NoError(t, err)
	require.Equal(t, []model.StoredFile{{ID: album.ID, Path: "cover.jpg"}}, albumFiles)

	trackFiles, err := repo.ListTrackFiles(ctx)
	require.NoError(t, err)
	require.Equal(t, []model.StoredFile{{ID: trackID, Path: "x.mp3"}}, trackFiles)

	require.NoError(t, repo.DeleteAlbum(ctx, album.ID))

	trackFiles, err = repo.ListTrackFiles(ctx)
	require.NoError(t, err)
	require.Empty(t, trackFiles)

	albums, err := repo.ListAlbumsWithTracks(ctx)
	require.NoError(t, err)
	require.Empty(t, albums)
}

func TestListMoviesNewestFirst(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.SQLite(t)
	now := time.Now()
	require.NoError(t, gdb.Create(&model.Movie{Title: "old", CreatedAt: now.Add(-time.Hour)}).Error)
	require.NoError(t, gdb.Create(&model.Movie{Title: "new", CreatedAt: now}).Error)

	movies, err := NewMovieRepository(gdb).ListMovies(ctx)
	require.NoError(t, err)
	require.Len(t, movies, 2)
	require.Equal(t, "new", movies[0].Title)
}

func TestListMoviesEmpty(t *testing.T) {
	movies, err := NewMovieRepository(dbtest.SQLite(t)).ListMovies(context.Background())
	require.NoError(t, err)
	require.NotNil(t, movies)
	require.Empty(t, movies)
}
