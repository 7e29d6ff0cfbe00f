package model

import "gorm.io/gorm"

func InstallDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Profile{},
		&Chat{},
		&Message{},
		&MessageImage{},
		&BlacklistedToken{},
	)
}
