package models

import (
	"gorm.io/gorm"
)

// MigrateTable creates or alters the schema. Parents come before children so
// foreign keys resolve.
func MigrateTable(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Zone{},
		&Category{},
		&Expense{},
		&UserZone{},
	)
}
