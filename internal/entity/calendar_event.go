package entity

import "github.com/google/uuid"

// CalendarEvent is an append-only legal-calendar row generated from a
// date-type entity. There is no dedup key: reprocessing a changed version
// inserts fresh rows.
type CalendarEvent struct {
	ID         uuid.UUID `gorm:"type:text;primaryKey" json:"id"`
	DocumentID uuid.UUID `gorm:"type:text;index" json:"document_id"`
	Event      string    `gorm:"type:text" json:"event"`
	Date       string    `gorm:"type:text" json:"date"`
	Time       *string   `gorm:"type:text" json:"time,omitempty"`
}

func (CalendarEvent) TableName() string { return "legal_calendar" }
