package entity

import "github.com/google/uuid"

// SpellingError is one out-of-dictionary word found in a version's text.
// The set is replaced wholesale on re-analysis, never merged.
type SpellingError struct {
	ID        uuid.UUID `gorm:"type:text;primaryKey" json:"id"`
	VersionID uuid.UUID `gorm:"type:text;index" json:"version_id"`
	Word      string    `gorm:"type:text" json:"word"`
}

func (SpellingError) TableName() string { return "spelling_errors" }
