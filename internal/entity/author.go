package entity

import (
	"strings"

	"github.com/google/uuid"
)

// Author is deduplicated by the (first name, last name) pair; get-or-create
// is the only creation path.
type Author struct {
	ID        uuid.UUID  `gorm:"type:text;primaryKey" json:"id"`
	FirstName string     `gorm:"type:text;uniqueIndex:idx_authors_name" json:"first_name"`
	LastName  string     `gorm:"type:text;uniqueIndex:idx_authors_name" json:"last_name"`
	UserID    *uuid.UUID `gorm:"type:text" json:"user_id,omitempty"`
}

func (Author) TableName() string { return "authors" }

func (a Author) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// SplitFullName splits a full name into first and last: the final
// whitespace-delimited token is the last name, everything before it the
// first name. Single-token names get an empty last name.
func SplitFullName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
}
