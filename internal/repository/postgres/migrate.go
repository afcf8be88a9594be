package postgres

import "gorm.io/gorm"

// AutoMigrate creates or updates the tables backing this repository
// package.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&programConfigRow{},
		&marketplaceOverrideRow{},
		&candidateRow{},
		&rawRecordRow{},
	)
}
