package model

import "time"

// SoftDelete is embedded in every record that is destroyed by tombstoning
// instead of physical deletion. The row stays in storage with all foreign
// keys intact; read paths hide it via the visibility predicate.
type SoftDelete struct {
	Deleted   bool       `gorm:"not null;default:false" json:"deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Visible reports whether the record should appear in default reads.
func (s *SoftDelete) Visible() bool {
	return !s.Deleted
}

// Tombstone marks the record deleted. The transition is one-way: calling it
// on an already-tombstoned record is a no-op, so the first deletion
// timestamp is never overwritten.
func (s *SoftDelete) Tombstone(now time.Time) {
	if s.Deleted {
		return
	}
	s.Deleted = true
	s.DeletedAt = &now
}
