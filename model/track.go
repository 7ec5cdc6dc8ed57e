package model

import "time"

// Track belongs to exactly one album; TrackNumber is 1-based and unique per album.
type Track struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	AlbumID     int64     `gorm:"not null;uniqueIndex:idx_album_track_number,priority:1" json:"-"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	TrackNumber int       `gorm:"not null;uniqueIndex:idx_album_track_number,priority:2" json:"track_number"`
	FilePath    string    `gorm:"size:767;not null" json:"file_path"`
	B2FileName  string    `gorm:"column:b2_file_name;size:767" json:"-"`
	CreatedAt   time.Time `json:"-"`
}

func (Track) TableName() string { return "tracks" }
