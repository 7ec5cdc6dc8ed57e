package repository

import (
	"context"
	"database/sql"

	"mediagate/model"

	"gorm.io/gorm"
)

// AlbumRepository 定义专辑相关的数据库操作接口
type AlbumRepository interface {
	// CreateAlbum 创建新专辑
	CreateAlbum(ctx context.Context, album *model.Album) (int64, error)

	// CreateTrack 添加一首歌曲到专辑
	CreateTrack(ctx context.Context, track *model.Track) (int64, error)

	// ListAlbumsWithTracks 获取所有专辑及其歌曲，最新的专辑在前
	ListAlbumsWithTracks(ctx context.Context) ([]model.Album, error)

	// ListAlbumFiles returns every album id with its cover key.
	ListAlbumFiles(ctx context.Context) ([]model.StoredFile, error)

	// ListTrackFiles returns every track id with its file key.
	ListTrackFiles(ctx context.Context) ([]model.StoredFile, error)

	// DeleteAlbum 删除专辑及其歌曲
	DeleteAlbum(ctx context.Context, id int64) error

	// DeleteTrack 删除歌曲
	DeleteTrack(ctx context.Context, id int64) error
}

// GormAlbumRepository gorm实现的专辑仓库
type GormAlbumRepository struct {
	db *gorm.DB
}

// NewAlbumRepository 创建新的专辑仓库实例
func NewAlbumRepository(db *gorm.DB) *GormAlbumRepository {
	return &GormAlbumRepository{db: db}
}

func (r *GormAlbumRepository) CreateAlbum(ctx context.Context, album *model.Album) (int64, error) {
	row := model.Album{Title: album.Title, CoverImagePath: album.CoverImagePath}
	if err := r.db.WithContext(ctx).Omit("Tracks").Create(&row).Error; err != nil {
		return 0, dbErr("create album", err)
	}
	album.ID = row.ID
	album.CreatedAt = row.CreatedAt
	return row.ID, nil
}

func (r *GormAlbumRepository) CreateTrack(ctx context.Context, track *model.Track) (int64, error) {
	if err := r.db.WithContext(ctx).Create(track).Error; err != nil {
		return 0, dbErr("create track", err)
	}
	return track.ID, nil
}

// albumTrackRow is one row of the albums LEFT JOIN tracks query. Track columns
// are NULL for albums without tracks.
type albumTrackRow struct {
	AlbumID        int64
	AlbumTitle     string
	CoverImagePath string
	TrackID        sql.NullInt64
	TrackTitle     sql.NullString
	TrackNumber    sql.NullInt64
	FilePath       sql.NullString
}

// ListAlbumsWithTracks runs a single join and folds the rows into albums.
func (r *GormAlbumRepository) ListAlbumsWithTracks(ctx context.Context) ([]model.Album, error) {
	var rows []albumTrackRow
	err := r.db.WithContext(ctx).
		Table("albums AS a").
		Select(`a.id AS album_id, a.title AS album_title, a.cover_image_path AS cover_image_path,
			t.id AS track_id, t.title AS track_title, t.track_number AS track_number, t.file_path AS file_path`).
		Joins("LEFT JOIN tracks AS t ON t.album_id = a.id").
		Order("a.id DESC").
		Order("t.track_number ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, dbErr("list albums", err)
	}
	return foldAlbumRows(rows), nil
}

func foldAlbumRows(rows []albumTrackRow) []model.Album {
	albums := make([]model.Album, 0)
	index := make(map[int64]int)
	for _, row := range rows {
		i, ok := index[row.AlbumID]
		if !ok {
			albums = append(albums, model.Album{
				ID:             row.AlbumID,
				Title:          row.AlbumTitle,
				CoverImagePath: row.CoverImagePath,
				Tracks:         []model.Track{},
			})
			i = len(albums) - 1
			index[row.AlbumID] = i
		}
		// the join yields a single all-NULL track for an empty album
		if !row.TrackID.Valid {
			continue
		}
		albums[i].Tracks = append(albums[i].Tracks, model.Track{
			ID:          row.TrackID.Int64,
			AlbumID:     row.AlbumID,
			Title:       row.TrackTitle.String,
			TrackNumber: int(row.TrackNumber.Int64),
			FilePath:    row.FilePath.String,
		})
	}
	return albums
}

func (r *GormAlbumRepository) ListAlbumFiles(ctx context.Context) ([]model.StoredFile, error) {
	var files []model.StoredFile
	err := r.db.WithContext(ctx).Model(&model.Album{}).
		Select("id, cover_image_path AS path").
		Order("id").
		Scan(&files).Error
	if err != nil {
		return nil, dbErr("list album files", err)
	}
	return files, nil
}

func (r *GormAlbumRepository) ListTrackFiles(ctx context.Context) ([]model.StoredFile, error) {
	var files []model.StoredFile
	err := r.db.WithContext(ctx).Model(&model.Track{}).
		Select("id, file_path AS path").
		Order("id").
		Scan(&files).Error
	if err != nil {
		return nil, dbErr("list track files", err)
	}
	return files, nil
}

func (r *GormAlbumRepository) DeleteAlbum(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("album_id = ?", id).Delete(&model.Track{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Album{}, id).Error
	})
	if err != nil {
		return dbErr("delete album", err)
	}
	return nil
}

func (r *GormAlbumRepository) DeleteTrack(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&model.Track{}, id).Error; err != nil {
		return dbErr("delete track", err)
	}
	return nil
}
