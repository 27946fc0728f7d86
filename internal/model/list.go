package model

import (
	"github.com/google/uuid"
)

// List is a sibling-ordered container of cards. BoardID is immutable after
// creation; ordering among lists of one board is (position asc, id asc).
type List struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Title    string    `gorm:"not null"`
	Position float64   `gorm:"not null;default:65535"`
	BoardID  uuid.UUID `gorm:"type:uuid;not null;index"`
	SoftDelete

	Board Board `gorm:"foreignKey:BoardID"`
}
