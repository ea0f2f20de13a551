package database

import (
	"gorm.io/gorm"
)

// Download is one asset written to a storage.
type Download struct {
	gorm.Model
	Resource string `gorm:"index;not null"`
	Source   string `gorm:"not null"`
	Storage  string
	Path     string `gorm:"index"`
	Bytes    int64
	MimeType string
}
