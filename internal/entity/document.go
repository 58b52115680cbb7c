package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document is one logical legal document, identified by its unique hash.
// The unique hash is content-independent when the source file carries a
// reliable creation timestamp, so edits to the same file produce new
// versions of this row rather than new rows.
type Document struct {
	ID          uuid.UUID `gorm:"type:text;primaryKey" json:"id"`
	Title       string    `gorm:"type:text" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Type        string    `gorm:"type:text" json:"type"`
	UniqueHash  string    `gorm:"type:text;uniqueIndex" json:"unique_hash"`
	RootPath    string    `gorm:"type:text" json:"root_path"`
	CreatedAt   time.Time `json:"created_at"`

	Versions []Version `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Document) TableName() string { return "documents" }
