package repository

import "gorm.io/gorm"

// visible filters out tombstoned rows. Every read that enumerates children
// applies it at its own level; a parent's tombstone never hides children by
// itself.
func visible(db *gorm.DB) *gorm.DB {
	return db.Where("deleted = ?", false)
}

// siblingOrder makes enumeration total and reproducible: position is the
// sort key, id breaks ties between equal positions.
func siblingOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position asc, id asc")
}
