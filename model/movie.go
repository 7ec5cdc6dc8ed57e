package model

import "time"

// Movie is listed read-only; there is no ingestion path for movies yet.
type Movie struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	Title          string    `gorm:"size:255;not null" json:"title"`
	Description    string    `gorm:"type:text" json:"description"`
	FilePath       string    `gorm:"size:767" json:"file_path"`
	CoverImagePath string    `gorm:"size:767" json:"cover_image_path"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Movie) TableName() string { return "movies" }

// All returns every model the schema migration manages.
func All() []interface{} {
	return []interface{}{&AdminUser{}, &User{}, &Album{}, &Track{}, &Movie{}}
}
