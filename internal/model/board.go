package model

import (
	"time"

	"github.com/google/uuid"
)

// Board is the top of the ownership chain. OwnerID is set at creation and
// never changes.
type Board struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Title     string    `gorm:"not null"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
	SoftDelete

	Owner User `gorm:"foreignKey:OwnerID"`
}
