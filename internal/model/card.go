package model

import (
	"github.com/google/uuid"
)

// Card is the leaf of the hierarchy. ListID is the only mutable foreign key
// in the model; it changes exclusively through the move operation.
type Card struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Title       string    `gorm:"not null"`
	Description string
	Position    float64   `gorm:"not null;default:65535"`
	ListID      uuid.UUID `gorm:"type:uuid;not null;index"`
	SoftDelete

	List List `gorm:"foreignKey:ListID"`
}
