package entity

import (
	"time"

	"github.com/google/uuid"
)

// Version is one immutable revision of a document. A content change always
// creates a new row; rows are never mutated after creation.
type Version struct {
	ID         uuid.UUID  `gorm:"type:text;primaryKey" json:"id"`
	DocumentID uuid.UUID  `gorm:"type:text;index" json:"document_id"`
	VersionTag string     `gorm:"type:text" json:"version_tag"`
	FilePath   string     `gorm:"type:text" json:"file_path"`
	FileHash   string     `gorm:"type:text;uniqueIndex" json:"file_hash"`
	AuthorID   *uuid.UUID `gorm:"type:text" json:"author_id,omitempty"`
	Comment    string     `gorm:"type:text" json:"comment"`
	SizeMB     float64    `json:"size_mb"`
	UpdatedAt  time.Time  `gorm:"index" json:"updated_at"`

	Analyzed       *AnalyzedContent `gorm:"foreignKey:VersionID;constraint:OnDelete:CASCADE" json:"-"`
	SpellingErrors []SpellingError  `gorm:"foreignKey:VersionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Version) TableName() string { return "versions" }
