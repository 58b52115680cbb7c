package entity

import "github.com/google/uuid"

// AnalyzedContent holds the extracted full text and classified entities for
// one version. At most one row per version; re-analysis upserts in place.
type AnalyzedContent struct {
	ID        uuid.UUID `gorm:"type:text;primaryKey" json:"id"`
	VersionID uuid.UUID `gorm:"type:text;uniqueIndex" json:"version_id"`
	FullText  string    `gorm:"type:text" json:"full_text"`
	Entities  Entities  `gorm:"serializer:json" json:"entities"`
}

func (AnalyzedContent) TableName() string { return "analyzed_content" }
