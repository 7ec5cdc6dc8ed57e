package model

import "time"

// Album 表示一张专辑
type Album struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	Title          string    `gorm:"size:255;not null" json:"title"`
	CoverImagePath string    `gorm:"size:767;not null" json:"cover_image_path"`
	CreatedAt      time.Time `json:"-"`
	Tracks         []Track   `gorm:"foreignKey:AlbumID;constraint:OnDelete:CASCADE" json:"tracks"`
}

func (Album) TableName() string { return "albums" }

// StoredFile is a row id paired with the object-store key it references.
type StoredFile struct {
	ID   int64
	Path string
}
